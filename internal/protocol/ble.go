package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

// DecodeBLE identifies and decodes the next 16-byte BLE frame in buf. Exactly
// one of the two return records is non-nil on success. buf must be exactly
// BLEFrameSize bytes; shorter buffers are the caller's responsibility to
// detect (ErrFrameShort) before calling this function.
func DecodeBLE(buf []byte) (status *radalert.BLEStatus, query *radalert.BLEQuery, err error) {
	if len(buf) != BLEFrameSize {
		return nil, nil, radalert.NewError(radalert.KindMalformed, "DecodeBLE",
			fmt.Errorf("expected %d bytes, got %d", BLEFrameSize, len(buf)))
	}

	if IsBLEQueryFrame(buf) {
		q, err := decodeBLEQuery(buf)
		return nil, q, err
	}
	s, err := decodeBLEStatus(buf)
	return s, nil, err
}

// decodeBLEStatus unpacks "<2IHHB3B": cps, value, mode, cpm_lo, cpm_hi,
// reserved, status-bits, id.
func decodeBLEStatus(buf []byte) (*radalert.BLEStatus, error) {
	const op = "decodeBLEStatus"

	cps := binary.LittleEndian.Uint32(buf[0:4])
	value := binary.LittleEndian.Uint32(buf[4:8])
	mode := radalert.Mode(binary.LittleEndian.Uint16(buf[8:10]))
	cpmLo := binary.LittleEndian.Uint16(buf[10:12])
	cpmHi := buf[12]
	reserved := buf[13]
	statusBits := buf[14]
	id := buf[15]

	cpm := uint32(cpmLo) | uint32(cpmHi)<<16

	power := statusBits & 0x7
	alarmAlerting := (statusBits>>3)&1 != 0
	alarmSet := (statusBits>>4)&1 != 0
	alarmSilenced := (statusBits>>5)&1 != 0
	unknownBits := (statusBits >> 6) & 0x3

	if err := validateStatusCPS(op, cps); err != nil {
		return nil, err
	}
	if err := validateBLEStatusCPM(op, cpm); err != nil {
		return nil, err
	}
	if err := validatePower(op, power); err != nil {
		return nil, err
	}
	if err := validateAlarmBits(op, alarmSet, alarmAlerting, alarmSilenced); err != nil {
		return nil, err
	}
	if err := validateMode(op, mode); err != nil {
		return nil, err
	}

	return radalert.NewBLEStatus(cps, value, mode, cpm, power,
		alarmSet, alarmAlerting, alarmSilenced, id, unknownBits, reserved), nil
}

// decodeBLEQuery unpacks "<I4HI": sentinel, alarm, reserved, deadtime
// reciprocal, conversion, trailer.
func decodeBLEQuery(buf []byte) (*radalert.BLEQuery, error) {
	const op = "decodeBLEQuery"

	sentinel := binary.LittleEndian.Uint32(buf[0:4])
	alarm := binary.LittleEndian.Uint16(buf[4:6])
	reserved := binary.LittleEndian.Uint16(buf[6:8])
	dead := binary.LittleEndian.Uint16(buf[8:10])
	conv := binary.LittleEndian.Uint16(buf[10:12])
	trailer := binary.LittleEndian.Uint32(buf[12:16])

	if err := validateQueryAlarm(op, alarm); err != nil {
		return nil, err
	}
	if err := validateDeadtimeReciprocal(op, dead); err != nil {
		return nil, err
	}
	if err := validateConversion(op, conv); err != nil {
		return nil, err
	}

	return radalert.NewBLEQuery(sentinel, alarm, reserved, dead, conv, trailer), nil
}
