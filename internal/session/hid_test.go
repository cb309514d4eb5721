package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

// fakeHIDTransport is a transport.Transport + hidQuerier driven by a
// scripted list of reports; a nil entry simulates a receive timeout and
// anything past the end of the script simulates the peripheral going away.
type fakeHIDTransport struct {
	mu      sync.Mutex
	reports [][]byte
	sent    [][]byte
}

func (f *fakeHIDTransport) Send(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]byte(nil), data...))
	return nil
}

func (f *fakeHIDTransport) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reports) == 0 {
		return nil, radalert.NewError(radalert.KindTransportClosed, "fakeHIDTransport.Receive", nil)
	}
	r := f.reports[0]
	f.reports = f.reports[1:]
	return r, nil
}

func (f *fakeHIDTransport) Close() error { return nil }

func (f *fakeHIDTransport) TriggerQuery(ctx context.Context) ([]byte, error) {
	return nil, radalert.NewError(radalert.KindNotAvailable, "fakeHIDTransport.TriggerQuery", nil)
}

// hidStatusReport builds a minimal valid 15-byte HID status report with the
// given rolling packet id.
func hidStatusReport(t *testing.T, id byte) []byte {
	buf := hx(t, "0A 00 00 00 00 00 00 00 00 00 00 00 00 00 00")
	buf[4] = id
	return buf
}

func TestHIDSessionDedup(t *testing.T) {
	report := hidStatusReport(t, 0)
	next := hidStatusReport(t, 1)

	tp := &fakeHIDTransport{reports: [][]byte{report, report, report, report, report, next}}

	var statuses []*radalert.HIDStatus
	sess := NewHIDSession(tp, tp,
		func(s *radalert.HIDStatus) { statuses = append(statuses, s) },
		func(q *radalert.HIDQuery) {},
	)

	err := sess.Spin(context.Background())
	if err == nil {
		t.Fatalf("expected Spin to end once reports are exhausted")
	}
	var rerr *radalert.Error
	if !errors.As(err, &rerr) || rerr.Kind != radalert.KindTransportClosed {
		t.Fatalf("unexpected Spin error: %v", err)
	}

	if len(statuses) != 2 {
		t.Fatalf("expected exactly 2 dispatched statuses (1 new + 1 after the duplicates), got %d", len(statuses))
	}
	if got := statuses[0].ID(); got != 0 {
		t.Errorf("first dispatched id = %d, want 0", got)
	}
	if got := statuses[1].ID(); got != 1 {
		t.Errorf("second dispatched id = %d, want 1", got)
	}
}

func TestHIDSessionSequenceJump(t *testing.T) {
	tp := &fakeHIDTransport{}
	ctx := context.Background()

	var statuses []*radalert.HIDStatus
	sess := NewHIDSession(tp, tp,
		func(s *radalert.HIDStatus) { statuses = append(statuses, s) },
		func(q *radalert.HIDQuery) {},
	)

	sess.recvBuf = hidStatusReport(t, 0x10)
	sess.process(ctx)
	sess.recvBuf = hidStatusReport(t, 0x12)
	sess.process(ctx)

	if len(statuses) != 1 {
		t.Fatalf("expected exactly one dispatched status before the jump, got %d", len(statuses))
	}
	if got := statuses[0].ID(); got != 0x10 {
		t.Errorf("dispatched id = %#x, want 0x10", got)
	}
	if sess.Stats.SeqJumps() != 1 {
		t.Errorf("SeqJumps = %d, want 1", sess.Stats.SeqJumps())
	}
	if sess.State() != StateSyncing {
		t.Errorf("State = %v, want StateSyncing after a jump", sess.State())
	}
}

func TestHIDSessionAcksEveryReport(t *testing.T) {
	tp := &fakeHIDTransport{reports: [][]byte{hidStatusReport(t, 0)}}
	sess := NewHIDSession(tp, tp, func(*radalert.HIDStatus) {}, func(*radalert.HIDQuery) {})

	sess.Spin(context.Background())

	tp.mu.Lock()
	defer tp.mu.Unlock()
	// The start sentinel plus one ack for the single decoded report.
	if len(tp.sent) != 2 {
		t.Fatalf("sent = %d frames, want 2 (start sentinel + ack)", len(tp.sent))
	}
}

func TestHIDSessionReachesActiveAfterFiveGoodReports(t *testing.T) {
	tp := &fakeHIDTransport{}
	ctx := context.Background()

	var statuses []*radalert.HIDStatus
	sess := NewHIDSession(tp, tp,
		func(s *radalert.HIDStatus) { statuses = append(statuses, s) },
		func(q *radalert.HIDQuery) {},
	)

	for i := 0; i < 5; i++ {
		sess.recvBuf = hidStatusReport(t, byte(i))
		sess.process(ctx)
	}

	if len(statuses) != 5 {
		t.Fatalf("expected 5 dispatched statuses, got %d", len(statuses))
	}
	if sess.State() != StateActive {
		t.Errorf("State = %v, want StateActive", sess.State())
	}
}
