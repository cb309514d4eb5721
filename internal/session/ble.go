package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jigpu/radalert-go/internal/protocol"
	"github.com/jigpu/radalert-go/internal/transport"
	"github.com/jigpu/radalert-go/pkg/radalert"
)

const (
	bleReceiveTimeout  = 8500 * time.Millisecond
	blePeriodicQueryAt = 5 // send a "?" after every 5th processed chunk
)

// bleDeviceInfoProvider is the subset of *transport.BLETransport a
// BLESession needs beyond the Transport interface: a best-effort read of
// the standard Device Information service.
type bleDeviceInfoProvider interface {
	DeviceInfo() (radalert.DeviceInfo, bool)
}

// BLESession drives a transport.Transport speaking the 16-byte BLE
// transparent-UART framing: it reassembles notification chunks into
// 16-byte frames, resynchronizes on decode failure, tracks rolling packet
// IDs, and maintains the ack-or-timeout keepalive the peripheral expects.
type BLESession struct {
	transport transport.Transport
	infoer    bleDeviceInfoProvider
	onStatus  func(*radalert.BLEStatus)
	onQuery   func(*radalert.BLEQuery)

	mu         sync.Mutex
	state      State
	recvBuf    []byte
	cmdBuf     []string
	lastID     *uint8
	syncCount  int
	deviceInfo radalert.DeviceInfo
	hasInfo    bool

	Stats Stats
}

// NewBLESession wraps t. onStatus and onQuery are invoked synchronously
// from Spin's goroutine for every decoded record; callers needing
// concurrency must hand records off themselves. If t also implements a
// best-effort DeviceInfo() (as *transport.BLETransport does), Spin reads it
// once at startup.
func NewBLESession(t transport.Transport, onStatus func(*radalert.BLEStatus), onQuery func(*radalert.BLEQuery)) *BLESession {
	s := &BLESession{
		transport: t,
		onStatus:  onStatus,
		onQuery:   onQuery,
		state:     StateSyncing,
	}
	s.infoer, _ = t.(bleDeviceInfoProvider)
	return s
}

// State reports the session's current lifecycle state.
func (s *BLESession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DeviceInfo returns the Device Information service strings read at Spin
// startup, if the peripheral exposed the service and the underlying
// transport supports reading it. The bool is true once Spin has completed
// that read and the service was found; otherwise it stays false.
func (s *BLESession) DeviceInfo() (radalert.DeviceInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceInfo, s.hasInfo
}

// TriggerQuery enqueues a "?" command to be sent ahead of the next ack.
func (s *BLESession) TriggerQuery() {
	s.mu.Lock()
	s.cmdBuf = append(s.cmdBuf, "?")
	s.mu.Unlock()
}

// Terminate enqueues a "Z" command, which causes the peripheral to drop the
// connection.
func (s *BLESession) Terminate() {
	s.mu.Lock()
	s.cmdBuf = append(s.cmdBuf, "Z")
	s.mu.Unlock()
}

// Spin runs until ctx is cancelled, the transport reports a fatal error, or
// idleThreshold consecutive receive timeouts elapse. It always returns a
// non-nil error (ctx.Err() on cooperative cancellation).
func (s *BLESession) Spin(ctx context.Context) error {
	if s.infoer != nil {
		if info, ok := s.infoer.DeviceInfo(); ok {
			s.mu.Lock()
			s.deviceInfo = info
			s.hasInfo = true
			s.mu.Unlock()
		}
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

		chunk, err := s.transport.Receive(ctx, bleReceiveTimeout)
		if err != nil {
			s.setState(StateClosed)
			return err
		}

		if chunk == nil {
			idle++
			if idle >= idleThreshold {
				s.setState(StateClosed)
				return radalert.NewError(radalert.KindTransportClosed, "BLESession.Spin", nil)
			}
			continue
		}
		idle = 0

		s.mu.Lock()
		s.recvBuf = append(s.recvBuf, chunk...)
		s.mu.Unlock()

		s.process()

		iteration++
		if iteration%blePeriodicQueryAt == 0 {
			s.TriggerQuery()
		}

		if err := s.drainCommands(ctx); err != nil {
			s.setState(StateClosed)
			return err
		}
	}
}

func (s *BLESession) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// process decodes every fully-buffered frame in recvBuf, dispatching a
// callback and queuing an ack for each successfully decoded frame. A
// structurally malformed frame advances the buffer by one byte and resets
// the run of consecutive successes; a rolling-id discontinuity discards
// the frame (it was still well formed) without dispatching it. Either way
// the session drops back to StateSyncing and must see syncThreshold
// consecutive good frames before StateActive is reported again.
func (s *BLESession) process() {
	for {
		s.mu.Lock()
		if len(s.recvBuf) < protocol.BLEFrameSize {
			s.mu.Unlock()
			return
		}

		status, query, err := s.decodeLocked()
		if err != nil {
			var rerr *radalert.Error
			if errors.As(err, &rerr) && rerr.Kind == radalert.KindSeqJump {
				// Frame parsed fine; only the rolling id was discontinuous.
				s.recvBuf = s.recvBuf[protocol.BLEFrameSize:]
			} else {
				s.recvBuf = s.recvBuf[1:]
				if errors.As(err, &rerr) && rerr.Kind == radalert.KindMalformed {
					s.Stats.malformed.Add(1)
				}
			}
			s.syncCount = 0
			s.Stats.resyncs.Add(1)
			s.mu.Unlock()

			s.queueAck()
			s.setState(StateSyncing)
			continue
		}

		s.recvBuf = s.recvBuf[protocol.BLEFrameSize:]
		s.syncCount++
		synced := s.syncCount >= syncThreshold
		s.mu.Unlock()

		s.queueAck()
		s.Stats.decoded.Add(1)
		if synced {
			s.setState(StateActive)
		} else {
			s.setState(StateSyncing)
		}
		if status != nil {
			s.onStatus(status)
		}
		if query != nil {
			s.onQuery(query)
		}
	}
}

// decodeLocked attempts to decode the next frame from recvBuf without
// consuming it; caller holds s.mu.
func (s *BLESession) decodeLocked() (*radalert.BLEStatus, *radalert.BLEQuery, error) {
	if len(s.recvBuf) < protocol.BLEFrameSize {
		return nil, nil, radalert.NewError(radalert.KindFrameShort, "BLESession.decode", nil)
	}
	status, query, err := protocol.DecodeBLE(s.recvBuf[:protocol.BLEFrameSize])
	if err != nil {
		return nil, nil, err
	}

	if status != nil {
		if s.lastID != nil {
			want := (*s.lastID + 1) % 256
			if want != status.ID() {
				prev := *s.lastID
				s.lastID = nil
				s.Stats.seqJumps.Add(1)
				return nil, nil, radalert.NewError(radalert.KindSeqJump, "BLESession.decode",
					seqJumpError{from: prev, to: status.ID()})
			}
		}
		id := status.ID()
		s.lastID = &id
	}

	return status, query, nil
}

func (s *BLESession) queueAck() {
	s.mu.Lock()
	s.cmdBuf = append(s.cmdBuf, "X")
	s.mu.Unlock()
}

func (s *BLESession) drainCommands(ctx context.Context) error {
	for {
		s.mu.Lock()
		if len(s.cmdBuf) == 0 {
			s.mu.Unlock()
			return nil
		}
		cmd := s.cmdBuf[0]
		s.cmdBuf = s.cmdBuf[1:]
		s.mu.Unlock()

		if err := s.transport.Send(ctx, []byte(cmd+"\n")); err != nil {
			return err
		}
	}
}

type seqJumpError struct {
	from, to uint8
}

func (e seqJumpError) Error() string {
	return fmt.Sprintf("packet id jump from %d to %d", e.from, e.to)
}
