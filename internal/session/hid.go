package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jigpu/radalert-go/internal/protocol"
	"github.com/jigpu/radalert-go/internal/transport"
	"github.com/jigpu/radalert-go/pkg/radalert"
)

const (
	hidReceiveTimeout  = 4 * time.Second
	hidPeriodicQueryAt = 5
)

// hidQuerier is the subset of *transport.HIDTransport a HIDSession needs
// beyond the Transport interface: a synchronous feature-report fetch.
type hidQuerier interface {
	TriggerQuery(ctx context.Context) ([]byte, error)
}

// HIDSession drives a transport.Transport speaking discrete 15-byte HID
// status reports, each already a complete frame (unlike BLE's notification
// stream). Each received report replaces the buffer outright; a failed
// decode just resets the run of consecutive successes required to reach
// StateActive, discarding any stale report left over from a prior session.
type HIDSession struct {
	transport transport.Transport
	querier   hidQuerier
	onStatus  func(*radalert.HIDStatus)
	onQuery   func(*radalert.HIDQuery)

	mu        sync.Mutex
	state     State
	recvBuf   []byte
	lastRaw   []byte
	lastID    *uint8
	syncCount int

	Stats Stats
}

// NewHIDSession wraps t, using querier for on-demand feature-report
// queries. Passing a *transport.HIDTransport for both satisfies both
// parameters.
func NewHIDSession(t transport.Transport, querier hidQuerier, onStatus func(*radalert.HIDStatus), onQuery func(*radalert.HIDQuery)) *HIDSession {
	return &HIDSession{
		transport: t,
		querier:   querier,
		onStatus:  onStatus,
		onQuery:   onQuery,
		state:     StateSyncing,
	}
}

func (s *HIDSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Spin writes the start sentinel, then loops reading/decoding status
// reports until ctx is cancelled or idleThreshold consecutive timeouts
// elapse. Every hidPeriodicQueryAt'th processed report also triggers an
// on-demand feature-report query.
func (s *HIDSession) Spin(ctx context.Context) error {
	if err := s.transport.Send(ctx, transport.StartSentinel); err != nil {
		s.setState(StateClosed)
		return err
	}

	idle := 0
	iteration := 0

	for {
		select {
		case <-ctx.Done():
			s.setState(StateClosed)
			return ctx.Err()
		default:
		}

		report, err := s.transport.Receive(ctx, hidReceiveTimeout)
		if err != nil {
			s.setState(StateClosed)
			return err
		}

		if report == nil {
			idle++
			if idle >= idleThreshold {
				s.setState(StateClosed)
				return radalert.NewError(radalert.KindTransportClosed, "HIDSession.Spin", nil)
			}
			continue
		}
		idle = 0

		s.mu.Lock()
		duplicate := s.lastRaw != nil && bytes.Equal(report, s.lastRaw)
		if !duplicate {
			s.lastRaw = append([]byte(nil), report...)
			s.recvBuf = report
		}
		s.mu.Unlock()

		if duplicate {
			// The peripheral re-sent the same report we already processed;
			// nothing changed, so there is nothing new to decode.
			continue
		}

		s.process(ctx)

		iteration++
		if iteration%hidPeriodicQueryAt == 0 {
			if err := s.doQuery(ctx); err != nil {
				s.setState(StateClosed)
				return err
			}
		}
	}
}

func (s *HIDSession) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// process attempts to decode the single report currently buffered. Unlike
// BLE's notification stream, each HID report is already a complete frame;
// there is nothing to resynchronize within a report, only across them, so
// one failed decode simply resets the run of consecutive successes.
func (s *HIDSession) process(ctx context.Context) {
	s.mu.Lock()
	status, err := s.decodeLocked()
	s.mu.Unlock()

	if err != nil {
		var rerr *radalert.Error
		if errors.As(err, &rerr) && rerr.Kind == radalert.KindMalformed {
			s.Stats.malformed.Add(1)
		}
		s.Stats.resyncs.Add(1)
		s.desynchronize()
		s.setState(StateSyncing)
		return
	}

	if ackErr := s.transport.Send(ctx, transport.AckSentinel); ackErr != nil {
		return
	}

	s.mu.Lock()
	s.syncCount++
	synced := s.syncCount >= syncThreshold
	s.mu.Unlock()

	if synced {
		s.setState(StateActive)
	} else {
		s.setState(StateSyncing)
	}
	s.Stats.decoded.Add(1)
	s.onStatus(status)
}

func (s *HIDSession) decodeLocked() (*radalert.HIDStatus, error) {
	if len(s.recvBuf) < protocol.HIDStatusSize {
		return nil, radalert.NewError(radalert.KindFrameShort, "HIDSession.decode", nil)
	}
	status, err := protocol.DecodeHIDStatus(s.recvBuf[:protocol.HIDStatusSize])
	if err != nil {
		return nil, err
	}

	if s.lastID != nil {
		want := (*s.lastID + 1) % 256
		if want != status.ID() {
			prev := *s.lastID
			s.lastID = nil
			s.Stats.seqJumps.Add(1)
			return nil, radalert.NewError(radalert.KindSeqJump, "HIDSession.decode",
				seqJumpError{from: prev, to: status.ID()})
		}
	}
	id := status.ID()
	s.lastID = &id
	return status, nil
}

func (s *HIDSession) desynchronize() {
	s.mu.Lock()
	s.syncCount = 0
	s.lastID = nil
	s.mu.Unlock()
}

func (s *HIDSession) doQuery(ctx context.Context) error {
	buf, err := s.querier.TriggerQuery(ctx)
	if err != nil {
		return err
	}
	if err := s.transport.Send(ctx, transport.StartSentinel); err != nil {
		return err
	}
	query, err := protocol.DecodeHIDQuery(buf)
	if err != nil {
		return nil
	}
	s.onQuery(query)
	return nil
}

// TriggerQuery immediately performs an on-demand feature-report query
// outside the normal periodic cadence.
func (s *HIDSession) TriggerQuery(ctx context.Context) error {
	return s.doQuery(ctx)
}
