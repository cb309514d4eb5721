package session

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

// fakeTransport is a Transport whose Receive calls are driven by a
// scripted list of chunks (nil meaning "timeout") and whose Send calls are
// recorded for assertion.
type fakeTransport struct {
	mu     sync.Mutex
	chunks [][]byte
	sent   []string
	closed bool
}

func (f *fakeTransport) Send(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, string(data))
	return nil
}

func (f *fakeTransport) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.chunks) == 0 {
		return nil, radalert.NewError(radalert.KindTransportClosed, "fakeTransport.Receive", nil)
	}
	c := f.chunks[0]
	f.chunks = f.chunks[1:]
	return c, nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTransport) sentCommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

// fakeInfoTransport is a fakeTransport that also implements
// bleDeviceInfoProvider, as *transport.BLETransport does.
type fakeInfoTransport struct {
	fakeTransport
	info  radalert.DeviceInfo
	found bool
	reads int
}

func (f *fakeInfoTransport) DeviceInfo() (radalert.DeviceInfo, bool) {
	f.reads++
	return f.info, f.found
}

func TestBLESessionReadsDeviceInfoAtSpinStartup(t *testing.T) {
	tp := &fakeInfoTransport{
		fakeTransport: fakeTransport{chunks: [][]byte{statusFrame(t, 0)}},
		info:          radalert.DeviceInfo{Manufacturer: "SE International", Model: "Monitor 200"},
		found:         true,
	}

	sess := NewBLESession(tp, func(*radalert.BLEStatus) {}, func(*radalert.BLEQuery) {})

	if _, ok := sess.DeviceInfo(); ok {
		t.Fatal("DeviceInfo should report not-found before Spin runs")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Spin(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		if info, ok := sess.DeviceInfo(); ok {
			if info.Manufacturer != "SE International" || info.Model != "Monitor 200" {
				t.Errorf("DeviceInfo = %+v, want Manufacturer=SE International Model=Monitor 200", info)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for Spin to populate DeviceInfo")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	<-done

	if tp.reads != 1 {
		t.Errorf("underlying DeviceInfo() called %d times, want exactly 1", tp.reads)
	}
}

func TestBLESessionSkipsDeviceInfoWhenTransportDoesNotSupportIt(t *testing.T) {
	tp := &fakeTransport{chunks: [][]byte{statusFrame(t, 0)}}
	sess := NewBLESession(tp, func(*radalert.BLEStatus) {}, func(*radalert.BLEQuery) {})

	if sess.infoer != nil {
		t.Fatal("infoer should be nil for a transport that doesn't implement bleDeviceInfoProvider")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Spin(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()

	if _, ok := sess.DeviceInfo(); ok {
		t.Error("DeviceInfo should never report found for a transport lacking the capability")
	}
}

func hx(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// statusFrame builds a minimal valid 16-byte BLE status frame with the
// given rolling packet id.
func statusFrame(t *testing.T, id byte) []byte {
	// Byte 7 (part of the unchecked "value" field) is FF so that a
	// one-byte-misaligned read of this frame lands FF in the mode field
	// and is rejected as invalid, instead of accidentally decoding.
	buf := hx(t, "0A 00 00 00 00 00 00 FF 00 00 30 00 00 00 10 00")
	buf[15] = id
	return buf
}

func TestBLESessionSequenceJump(t *testing.T) {
	tp := &fakeTransport{
		chunks: [][]byte{
			append(append([]byte{}, statusFrame(t, 0x10)...), statusFrame(t, 0x12)...),
		},
	}

	var statuses []*radalert.BLEStatus
	sess := NewBLESession(tp,
		func(s *radalert.BLEStatus) { statuses = append(statuses, s) },
		func(q *radalert.BLEQuery) {},
	)

	sess.recvBuf = tp.chunks[0]
	sess.process()

	if len(statuses) != 1 {
		t.Fatalf("expected exactly one dispatched status before the jump, got %d", len(statuses))
	}
	if got := statuses[0].ID(); got != 0x10 {
		t.Errorf("first dispatched id = %#x, want 0x10", got)
	}
	if sess.Stats.SeqJumps() != 1 {
		t.Errorf("SeqJumps = %d, want 1", sess.Stats.SeqJumps())
	}
}

func TestBLESessionResync(t *testing.T) {
	frames := []byte{0xAA}
	for i := 0; i < 5; i++ {
		frames = append(frames, statusFrame(t, byte(i))...)
	}

	tp := &fakeTransport{chunks: [][]byte{frames}}

	var statuses []*radalert.BLEStatus
	sess := NewBLESession(tp,
		func(s *radalert.BLEStatus) { statuses = append(statuses, s) },
		func(q *radalert.BLEQuery) {},
	)

	sess.recvBuf = tp.chunks[0]
	sess.process()

	if len(statuses) != 5 {
		t.Fatalf("expected 5 dispatched statuses after resync, got %d", len(statuses))
	}
	if sess.State() != StateActive {
		t.Errorf("State = %v, want StateActive", sess.State())
	}
}

func TestBLESessionAcksEveryFrame(t *testing.T) {
	tp := &fakeTransport{chunks: [][]byte{statusFrame(t, 0)}}
	sess := NewBLESession(tp, func(*radalert.BLEStatus) {}, func(*radalert.BLEQuery) {})

	sess.recvBuf = tp.chunks[0]
	sess.process()
	ctx := context.Background()
	if err := sess.drainCommands(ctx); err != nil {
		t.Fatalf("drainCommands: %v", err)
	}

	sent := tp.sentCommands()
	if len(sent) != 1 || sent[0] != "X\n" {
		t.Fatalf("sent = %v, want exactly one ack", sent)
	}
}

func TestBLESessionTriggerQueryBeforeAck(t *testing.T) {
	tp := &fakeTransport{chunks: [][]byte{statusFrame(t, 0)}}
	sess := NewBLESession(tp, func(*radalert.BLEStatus) {}, func(*radalert.BLEQuery) {})

	sess.TriggerQuery()
	sess.recvBuf = tp.chunks[0]
	sess.process()

	ctx := context.Background()
	if err := sess.drainCommands(ctx); err != nil {
		t.Fatalf("drainCommands: %v", err)
	}

	sent := tp.sentCommands()
	if len(sent) != 2 || sent[0] != "?\n" || sent[1] != "X\n" {
		t.Fatalf("sent = %v, want [?\\n X\\n]", sent)
	}
}
