// SPDX-License-Identifier: MIT
package transport

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// LoggingTransport writes events to the debug log.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	log.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the event. It never fails.
func (lt *LoggingTransport) Send(data any) error {
	switch p := data.(type) {
	case Progress:
		if p.Done {
			log.Debugf("Progress: run %s finished at frame %d after %d blocks, %d dropouts", p.RunID, p.Frame, p.Block, p.Dropouts)
		} else {
			log.Debugf("Progress: block %d, frame %d", p.Block, p.Frame)
		}
	default:
		log.Debugf("Transport event (%T): %+v", data, data)
	}
	return nil
}

func (lt *LoggingTransport) Close() error { return nil }

var _ Transport = (*LoggingTransport)(nil)
