// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/teragonaudio/MrsWatson-sub000/cmd"
	"github.com/teragonaudio/MrsWatson-sub000/internal/exitcode"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/pkg/build"
)

// main is the entry point of the offline host. The program flow has three
// phases:
//
// 1. Startup:
//   - Initialize build information
//   - Parse command line arguments and load the configuration
//   - Execute one-off commands (listings, info, version)
//
// 2. Processing:
//   - Open the plugin chain, input, output and progress transports
//   - Run the engine block by block until input, MIDI and tail run out
//
// 3. Shutdown:
//   - Close the chain and transports
//   - Map the outcome to a process return code
func main() {
	code := run()
	if code != exitcode.Success && code != exitcode.NotRun {
		log.Errorf("%s exiting with code %d (%s)", build.Get().Name, code, code)
	}
	os.Exit(int(code))
}

func run() exitcode.Code {
	// ==================== STARTUP PHASE ====================

	if err := build.Initialize(); err != nil {
		log.Debugf("Development build: %v", err)
	}

	inv, err := cmd.ParseArgs(os.Args[1:], os.Stdout)
	if err != nil {
		log.Errorf("%v", err)
		return exitcode.FromError(err)
	}

	switch inv.Command {
	case cmd.CommandNone:
		return exitcode.FromError(exitcode.ErrNotRun)
	case cmd.CommandListPlugins:
		cmd.ListPlugins(os.Stdout, inv.Config.Plugins.Root)
		return exitcode.NotRun
	case cmd.CommandListFileTypes:
		cmd.ListFileTypes(os.Stdout)
		return exitcode.NotRun
	case cmd.CommandVersion:
		cmd.PrintVersion(os.Stdout)
		return exitcode.NotRun
	case cmd.CommandInfo:
		if err := cmd.ShowInfo(os.Stdout, inv.Config); err != nil {
			log.Errorf("%v", err)
			return exitcode.FromError(err)
		}
		return exitcode.NotRun
	}

	// ==================== PROCESSING PHASE ====================

	// A signal cancels the run between blocks; the cause carries the
	// signal into the return code.
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case sig := <-signals:
			log.Warnf("Caught signal %s, stopping after the current block", sig)
			cancel(&exitcode.SignalError{Signal: sig})
		case <-ctx.Done():
		}
	}()

	res, err := cmd.Process(ctx, inv.Config, cmd.IO{Stdin: os.Stdin, Stdout: os.Stdout})

	// ==================== SHUTDOWN PHASE ====================

	if err != nil {
		log.Errorf("%v", err)
		return exitcode.FromError(err)
	}
	if res.Dropouts > 0 {
		log.Warnf("%d dropouts occurred during processing", res.Dropouts)
	}
	if out := inv.Config.IO.Output; out != "" && out != "-" {
		log.Infof("Output written to '%s'", out)
	}
	return exitcode.Success
}
