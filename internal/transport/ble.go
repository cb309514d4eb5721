package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

// Well-known UUIDs for the Microchip/ISSC BM70 transparent-UART service and
// the standard Device Information service.
var (
	transparentServiceUUID = mustParseUUID("49535343-fe7d-4ae5-8fa9-9fafd205e455")
	transparentTxUUID      = mustParseUUID("49535343-1e4d-4bd9-ba61-23c647249616")
	transparentRxUUID      = mustParseUUID("49535343-8841-43f4-a8d4-ecbe34729bb3")

	deviceInfoServiceUUID = mustParseUUID("0000180a-0000-1000-8000-00805f9b34fb")

	manufacturerNameUUID = mustParseUUID("00002a29-0000-1000-8000-00805f9b34fb")
	modelNumberUUID      = mustParseUUID("00002a24-0000-1000-8000-00805f9b34fb")
	serialNumberUUID     = mustParseUUID("00002a25-0000-1000-8000-00805f9b34fb")
	hardwareRevisionUUID = mustParseUUID("00002a27-0000-1000-8000-00805f9b34fb")
	firmwareRevisionUUID = mustParseUUID("00002a26-0000-1000-8000-00805f9b34fb")
	softwareRevisionUUID = mustParseUUID("00002a28-0000-1000-8000-00805f9b34fb")
)

func mustParseUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

var defaultAdapter = bluetooth.DefaultAdapter

// BLETransport is a tinygo.org/x/bluetooth central-role implementation of
// Transport against the transparent-UART service. Notifications arrive
// asynchronously off a background goroutine and are buffered into recvCh;
// Receive drains that channel with a timeout.
type BLETransport struct {
	mu      sync.Mutex
	device  bluetooth.Device
	tx      bluetooth.DeviceCharacteristic
	rx      bluetooth.DeviceCharacteristic
	recvCh  chan []byte
	closeCh chan struct{}
	closed  bool
}

// DialBLE scans for and connects to the peripheral at addr, discovers the
// transparent-UART service and enables notifications on its TX
// characteristic; Send writes to the RX characteristic. addr is the platform-native MAC/UUID string as reported by
// a prior Scan.
func DialBLE(ctx context.Context, addr string) (*BLETransport, error) {
	const op = "DialBLE"

	if err := defaultAdapter.Enable(); err != nil {
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}

	var found bluetooth.ScanResult
	foundCh := make(chan struct{})
	scanErrCh := make(chan error, 1)

	go func() {
		err := defaultAdapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.Address.String() == addr {
				found = result
				adapter.StopScan()
				close(foundCh)
			}
		})
		if err != nil {
			scanErrCh <- err
		}
	}()

	select {
	case <-foundCh:
	case err := <-scanErrCh:
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	case <-ctx.Done():
		defaultAdapter.StopScan()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, ctx.Err())
	case <-time.After(30 * time.Second):
		defaultAdapter.StopScan()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, errors.New("scan timed out before finding device"))
	}

	device, err := defaultAdapter.Connect(found.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{transparentServiceUUID})
	if err != nil || len(services) == 0 {
		device.Disconnect()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}
	svc := services[0]

	chars, err := svc.DiscoverCharacteristics([]bluetooth.UUID{transparentTxUUID, transparentRxUUID})
	if err != nil {
		device.Disconnect()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}

	var tx, rx bluetooth.DeviceCharacteristic
	for _, c := range chars {
		switch c.UUID() {
		case transparentTxUUID:
			tx = c
		case transparentRxUUID:
			rx = c
		}
	}

	t := &BLETransport{
		device:  device,
		tx:      tx,
		rx:      rx,
		recvCh:  make(chan []byte, 32),
		closeCh: make(chan struct{}),
	}

	err = tx.EnableNotifications(func(buf []byte) {
		cp := append([]byte(nil), buf...)
		select {
		case t.recvCh <- cp:
		default:
		}
	})
	if err != nil {
		device.Disconnect()
		return nil, radalert.NewError(radalert.KindTransportOpen, op, err)
	}

	return t, nil
}

// DeviceInfo is a best-effort read of the standard Device Information
// service's manufacturer/model/serial/hardware/firmware/software revision
// strings. The bool return is false when the service is absent or its
// characteristics cannot be discovered; a found-but-partially-populated
// DeviceInfo still reports true, since peripherals routinely omit
// individual characteristics.
func (t *BLETransport) DeviceInfo() (radalert.DeviceInfo, bool) {
	var info radalert.DeviceInfo

	services, err := t.device.DiscoverServices([]bluetooth.UUID{deviceInfoServiceUUID})
	if err != nil || len(services) == 0 {
		return info, false
	}

	chars, err := services[0].DiscoverCharacteristics(nil)
	if err != nil {
		return info, false
	}

	buf := make([]byte, 256)
	read := func(c bluetooth.DeviceCharacteristic) string {
		n, err := c.Read(buf)
		if err != nil {
			return ""
		}
		return string(buf[:n])
	}
	for _, c := range chars {
		switch c.UUID() {
		case manufacturerNameUUID:
			info.Manufacturer = read(c)
		case modelNumberUUID:
			info.Model = read(c)
		case serialNumberUUID:
			info.SerialNumber = read(c)
		case hardwareRevisionUUID:
			info.HardwareRevision = read(c)
		case firmwareRevisionUUID:
			info.FirmwareRevision = read(c)
		case softwareRevisionUUID:
			info.SoftwareRevision = read(c)
		}
	}
	return info, true
}

func (t *BLETransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return radalert.NewError(radalert.KindTransportClosed, "BLETransport.Send", nil)
	}
	rx := t.rx
	t.mu.Unlock()

	if _, err := rx.Write(data); err != nil {
		return radalert.NewError(radalert.KindTransportIo, "BLETransport.Send", err)
	}
	return nil
}

func (t *BLETransport) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case buf := <-t.recvCh:
		return buf, nil
	case <-t.closeCh:
		return nil, radalert.NewError(radalert.KindTransportClosed, "BLETransport.Receive", nil)
	case <-ctx.Done():
		return nil, radalert.NewError(radalert.KindTransportClosed, "BLETransport.Receive", ctx.Err())
	case <-timer.C:
		return nil, nil
	}
}

func (t *BLETransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.closeCh)
	return t.device.Disconnect()
}
