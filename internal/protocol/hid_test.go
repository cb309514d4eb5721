package protocol

import (
	"testing"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

func TestDecodeHIDStatus(t *testing.T) {
	// cps=10 value=0 mode=0(cpm) unknown1=0 unknown2=0 id=0x42
	buf := hexBytes(t, "0A 00 00 00 42 00 00 00 00 00 00 00 00 00 00")

	status, err := DecodeHIDStatus(buf)
	if err != nil {
		t.Fatalf("DecodeHIDStatus: %v", err)
	}
	if got := status.CPS(); got != 10 {
		t.Errorf("CPS = %d, want 10", got)
	}
	if got := status.ID(); got != 0x42 {
		t.Errorf("ID = %#x, want 0x42", got)
	}
	if got := status.Mode(); got != radalert.ModeCPM {
		t.Errorf("Mode = %v, want ModeCPM", got)
	}
	if _, err := status.CPM(); err == nil {
		t.Errorf("expected CPM to be unavailable on HID status records")
	}
	if !status.IsCharging() {
		t.Errorf("expected IsCharging to always be true for HID status records")
	}
}

func TestDecodeHIDStatusWrongSize(t *testing.T) {
	if _, err := DecodeHIDStatus(make([]byte, 10)); err == nil {
		t.Fatalf("expected an error for a short buffer")
	}
}

func buildHIDQueryFixture(t *testing.T) []byte {
	t.Helper()
	buf := make([]byte, HIDQuerySize)

	copy(buf[offSerial:], "1234567")
	copy(buf[offIsotopeName:], "Cs-137\x00")

	buf[offStatus] = 0 // no status bits set
	le16(buf, offAlarm, 1000)
	buf[offDay] = 15
	buf[offMonth] = 6
	buf[offYear] = 24
	buf[offContrast] = 32
	le16(buf, offDeadtimeRecip, 11111)
	for i := 0; i < 8; i++ {
		le16(buf, offCalEfficiencies+i*2, 100)
	}
	le16(buf, offCountDuration, 60)
	buf[offBacklightDuration] = 10
	le16(buf, offConversion, 1000)
	le16(buf, offDatalogInterval, 5)

	return buf
}

func le16(buf []byte, offset int, v uint16) {
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
}

func TestDecodeHIDQuery(t *testing.T) {
	buf := buildHIDQueryFixture(t)

	query, err := DecodeHIDQuery(buf)
	if err != nil {
		t.Fatalf("DecodeHIDQuery: %v", err)
	}

	if got := query.AlarmLevel(); got != 1000 {
		t.Errorf("AlarmLevel = %d, want 1000", got)
	}
	if got := query.ConversionFactor(); got != 1000 {
		t.Errorf("ConversionFactor = %d, want 1000", got)
	}
	serial, err := query.SerialNumber()
	if err != nil {
		t.Fatalf("SerialNumber: %v", err)
	}
	if serial != "1234567" {
		t.Errorf("SerialNumber = %q, want %q", serial, "1234567")
	}
	cal, ok, err := query.CalibrationDate()
	if err != nil {
		t.Fatalf("CalibrationDate: %v", err)
	}
	if !ok {
		t.Fatalf("expected a valid calibration date")
	}
	if cal.Year() != 2024 || int(cal.Month()) != 6 || cal.Day() != 15 {
		t.Errorf("CalibrationDate = %v, want 2024-06-15", cal)
	}
}

func TestDecodeHIDQueryInvalidDate(t *testing.T) {
	buf := buildHIDQueryFixture(t)
	buf[offMonth] = 13 // no such month

	_, err := DecodeHIDQuery(buf)
	if err == nil {
		t.Fatalf("expected an invalid calibration date to fail validation")
	}
}

func TestDecodeHIDQueryWrongSize(t *testing.T) {
	if _, err := DecodeHIDQuery(make([]byte, 10)); err == nil {
		t.Fatalf("expected an error for a short buffer")
	}
}
