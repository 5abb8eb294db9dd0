// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/internal/transport"
)

// DefaultInterval is used when a publisher is created with a non-positive
// interval.
const DefaultInterval = 16 * time.Millisecond

/*
Packet is the datagram layout, BigEndian:

	|<- 4 ->|<--- 8 --->|<--- 8 --->|<- 4 ->|<--- 4 --->|
	+-------+-----------+-----------+-------+-----------+
	|  Seq  | Timestamp |   Frame   | Block | Dropouts  |
	| uint32|   int64   |  uint64   | uint32|  uint32   |
	+-------+-----------+-----------+-------+-----------+

Timestamp is nanoseconds since the Unix epoch.
*/
type Packet struct {
	Seq       uint32
	Timestamp int64
	Frame     uint64
	Block     uint32
	Dropouts  uint32
}

// PacketSize is the encoded size of a Packet.
const PacketSize = 4 + 8 + 8 + 4 + 4

// DecodePacket parses a datagram written by a Publisher.
func DecodePacket(b []byte) (Packet, error) {
	var p Packet
	if len(b) != PacketSize {
		return p, fmt.Errorf("progress packet must be %d bytes, got %d", PacketSize, len(b))
	}
	err := binary.Read(bytes.NewReader(b), binary.BigEndian, &p)
	return p, err
}

// Publisher keeps the latest Progress it was sent and transmits it on a
// fixed interval, so a fast run does not flood the network. It implements
// transport.Transport.
type Publisher struct {
	sender   *Sender
	interval time.Duration

	mu       sync.Mutex
	latest   transport.Progress
	dirty    bool
	seq      uint32
	packet   *bytes.Buffer
	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewPublisher(interval time.Duration, sender *Sender) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("UDPPublisher: UDP sender cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
		log.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}
	return &Publisher{
		sender:   sender,
		interval: interval,
		packet:   new(bytes.Buffer),
	}, nil
}

// Start launches the publishing goroutine. Calling it again while running
// does nothing.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ticker != nil {
		log.Warnf("UDPPublisher: Start called but already running.")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker, done := p.ticker, p.doneChan
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		log.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish(false)
			case <-done:
				return
			}
		}
	}()
}

// Stop ends the publishing goroutine and waits for it.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()
	p.wg.Wait()
}

// Send records data as the latest snapshot when it is a Progress. Other
// events are ignored.
func (p *Publisher) Send(data any) error {
	progress, ok := data.(transport.Progress)
	if !ok {
		return nil
	}
	p.mu.Lock()
	p.latest = progress
	p.dirty = true
	p.mu.Unlock()
	return nil
}

// publish sends the latest snapshot if it changed since the last packet,
// or unconditionally when force is set.
func (p *Publisher) publish(force bool) {
	p.mu.Lock()
	if !p.dirty && !force {
		p.mu.Unlock()
		return
	}
	p.seq++
	pkt := Packet{
		Seq:       p.seq,
		Timestamp: time.Now().UnixNano(),
		Frame:     p.latest.Frame,
		Block:     p.latest.Block,
		Dropouts:  p.latest.Dropouts,
	}
	p.dirty = false
	p.packet.Reset()
	err := binary.Write(p.packet, binary.BigEndian, pkt)
	data := bytes.Clone(p.packet.Bytes())
	p.mu.Unlock()

	if err != nil {
		log.Errorf("UDPPublisher: Error packing progress: %v", err)
		return
	}
	if err := p.sender.Send(data); err == nil {
		log.Debugf("UDPPublisher: Sent packet %d (%d bytes)", pkt.Seq, len(data))
	}
}

// Close stops publishing, sends the final snapshot and closes the sender.
func (p *Publisher) Close() error {
	p.Stop()
	p.publish(true)
	return p.sender.Close()
}

var _ transport.Transport = (*Publisher)(nil)
