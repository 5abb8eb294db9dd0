// SPDX-License-Identifier: MIT
//
// Package build carries the metadata linked into the binary:
//
//	go build -ldflags "-X .../pkg/build.buildVersion=0.9.7 -X .../pkg/build.buildCommit=$(git rev-parse HEAD) ..."
//
// Development builds have no flags and report "mrswatson" and "unknown".
package build

import (
	"errors"
	"fmt"
)

const (
	DefaultName = "mrswatson"
	unknown     = "unknown"
)

// Info describes the running binary.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

func (i Info) String() string {
	return fmt.Sprintf("%s version %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = defaultInfo()
)

func defaultInfo() Info {
	return Info{Name: DefaultName, Time: unknown, Commit: unknown, Version: unknown}
}

// Initialize copies the linked flags into the build info. Every missing
// flag is reported in the returned error and keeps its fallback value, so
// callers may log the error and carry on.
func Initialize() error {
	buildInfo = defaultInfo()
	var errs []error
	set := func(dst *string, val, flag string) {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s is required", flag))
			return
		}
		*dst = val
	}
	set(&buildInfo.Name, buildName, "BuildName")
	set(&buildInfo.Time, buildTime, "BuildTime")
	set(&buildInfo.Commit, buildCommit, "BuildCommit")
	set(&buildInfo.Version, buildVersion, "BuildVersion")
	return errors.Join(errs...)
}

// Get returns the current build information.
func Get() Info {
	return buildInfo
}
