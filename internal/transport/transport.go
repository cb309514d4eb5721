// Package transport abstracts the BLE transparent-UART and USB HID links
// behind a uniform byte-stream capability: send, receive-with-timeout, and
// close. internal/session drives a Transport; it never knows which concrete
// implementation it holds.
package transport

import (
	"context"
	"time"
)

// Transport is the minimal capability surface a session engine needs from
// either the BLE or HID link. Implementations must be safe to Close from any
// goroutine while Receive is blocked in another.
type Transport interface {
	// Send writes bytes to the link, best-effort. A failed write is a
	// *radalert.Error with KindTransportIo; Send on an already-closed
	// transport returns KindTransportClosed.
	Send(ctx context.Context, data []byte) error

	// Receive blocks until new bytes arrive (returned as an opaque chunk),
	// timeout elapses (returns nil, nil), or the link drops
	// (*radalert.Error with KindTransportClosed).
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)

	// Close is idempotent and releases every resource held by the transport.
	Close() error
}
