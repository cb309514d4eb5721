// Package protocol implements pure byte-to-record decoding for the two
// wire formats the geiger counters speak: 16-byte BLE transparent-UART
// frames and 15-byte / 64-byte USB HID reports. Nothing in this package
// performs I/O; it is exercised by internal/session and tested directly
// with hex fixtures.
package protocol

// BLEFrameSize is the fixed length of both BLE status and query frames.
const BLEFrameSize = 16

// HIDStatusSize is the fixed length of an HID status interrupt report.
const HIDStatusSize = 15

// HIDQuerySize is the fixed length of an HID query feature report, after
// the leading report-id byte has been stripped by the transport.
const HIDQuerySize = 64

var querySentinel = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}

// IsBLEQueryFrame reports whether the first four bytes of buf match the
// query sentinel (FF FF FF FF); if not, buf is a status frame. buf must be
// at least 4 bytes; callers are expected to have already checked length.
func IsBLEQueryFrame(buf []byte) bool {
	return buf[0] == querySentinel[0] && buf[1] == querySentinel[1] &&
		buf[2] == querySentinel[2] && buf[3] == querySentinel[3]
}
