package transport

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

const (
	// USBVendorID and USBProductID identify the Radiation Alert USB HID interface.
	USBVendorID  gousb.ID = 0x1781
	USBProductID gousb.ID = 0x08E9

	hidEndpointOut = 0x01
	hidEndpointIn  = 0x81

	hidReadSize = 25 // oversized read; only the leading 15 bytes carry status

	hidFeatureReportID  = 0x00
	hidFeatureReportLen = 65 // 1 report-id byte + 64 payload bytes

	// hidRequestTypeGetReport / hidRequestGetReport are the standard HID
	// class control-transfer values for GET_REPORT(Feature).
	hidRequestTypeGetReport = 0xA1
	hidRequestGetReport     = 0x01
	hidReportTypeFeature    = 0x03
)

// StartSentinel is written once per spin() cycle to (re)prime the device's
// HID reporting.
var StartSentinel = []byte{0x46, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// AckSentinel is written after every successfully decoded status report.
var AckSentinel = []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// HIDTransport is a direct-USB (gousb) implementation of Transport for the
// Radiation Alert HID interface. It bypasses the OS HID driver the same way
// the teacher's direct-USB ASIC driver does, and deduplicates consecutive
// identical interrupt reads since the device keeps re-reporting stale data
// until something actually changes.
type HIDTransport struct {
	mu sync.Mutex

	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	epOut  *gousb.OutEndpoint
	epIn   *gousb.InEndpoint

	lastPoll []byte
	closed   bool
}

// OpenHID opens the Radiation Alert device via direct USB access at the
// given vendor/product ID pair (defaulting callers should pass
// USBVendorID/USBProductID).
func OpenHID(vid, pid gousb.ID) (*HIDTransport, error) {
	const op = "OpenHID"
	ctx := gousb.NewContext()

	device, err := ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		ctx.Close()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}
	if device == nil {
		ctx.Close()
		return nil, radalert.NewError(radalert.KindTransportOpen, op,
			fmt.Errorf("device not found (VID:0x%04x PID:0x%04x)", vid, pid))
	}

	config, err := device.Config(1)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}

	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		device.Close()
		ctx.Close()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}

	epOut, err := intf.OutEndpoint(hidEndpointOut)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}

	epIn, err := intf.InEndpoint(hidEndpointIn)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}

	return &HIDTransport{
		ctx: ctx, device: device, config: config, intf: intf, epOut: epOut, epIn: epIn,
	}, nil
}

func (t *HIDTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return radalert.NewError(radalert.KindTransportClosed, "HIDTransport.Send", nil)
	}
	if _, err := t.epOut.WriteContext(ctx, data); err != nil {
		return radalert.NewError(radalert.KindTransportIo, "HIDTransport.Send", err)
	}
	return nil
}

// Receive polls the interrupt endpoint until new (non-duplicate) data
// arrives or timeout elapses. A timeout with no new data returns (nil, nil).
func (t *HIDTransport) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	const pollInterval = 200 * time.Millisecond
	deadline := time.Now().Add(timeout)

	for {
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return nil, radalert.NewError(radalert.KindTransportClosed, "HIDTransport.Receive", nil)
		}
		epIn := t.epIn
		t.mu.Unlock()

		buf := make([]byte, hidReadSize)
		readCtx, cancel := context.WithTimeout(ctx, pollInterval)
		n, err := epIn.ReadContext(readCtx, buf)
		cancel()
		if err != nil {
			if time.Now().After(deadline) {
				return nil, nil
			}
			select {
			case <-ctx.Done():
				return nil, radalert.NewError(radalert.KindTransportClosed, "HIDTransport.Receive", ctx.Err())
			default:
			}
			continue
		}

		buf = buf[:n]
		t.mu.Lock()
		dup := bytes.Equal(buf, t.lastPoll)
		if !dup {
			t.lastPoll = append([]byte(nil), buf...)
		}
		t.mu.Unlock()

		if !dup {
			return buf, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
	}
}

// TriggerQuery performs a synchronous HID GET_REPORT(Feature) control
// transfer and returns the 64-byte query payload with its leading report-id
// byte stripped.
func (t *HIDTransport) TriggerQuery(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, radalert.NewError(radalert.KindTransportClosed, "HIDTransport.TriggerQuery", nil)
	}

	buf := make([]byte, hidFeatureReportLen)
	wValue := uint16(hidReportTypeFeature)<<8 | uint16(hidFeatureReportID)
	n, err := t.device.Control(hidRequestTypeGetReport, hidRequestGetReport, wValue, 0, buf)
	if err != nil {
		return nil, radalert.NewError(radalert.KindTransportIo, "HIDTransport.TriggerQuery", err)
	}
	if n < 1 {
		return nil, radalert.NewError(radalert.KindFrameShort, "HIDTransport.TriggerQuery", nil)
	}
	return buf[1:n], nil
}

func (t *HIDTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.intf != nil {
		t.intf.Close()
	}
	if t.config != nil {
		t.config.Close()
	}
	if t.device != nil {
		t.device.Close()
	}
	if t.ctx != nil {
		t.ctx.Close()
	}
	return nil
}
