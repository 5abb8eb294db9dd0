// SPDX-License-Identifier: MIT
// Package transport reports the progress of a run to observers outside
// the process.
package transport

import "errors"

// Transport defines a generic interface for sending events.
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// Progress is sent after every processed block and once more, with Done
// set, when the run ends.
type Progress struct {
	RunID    string `json:"run_id"`
	Frame    uint64 `json:"frame"`
	Block    uint32 `json:"block"`
	Dropouts uint32 `json:"dropouts"`
	Done     bool   `json:"done"`
}

// Multi fans every event out to several transports.
type Multi []Transport

func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
