package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

// DecodeHIDStatus unpacks a 15-byte HID status report: "<IBIBBI>" =
// cps(4), id(1), value(4), mode(1), unknown1(1), unknown2(4).
func DecodeHIDStatus(buf []byte) (*radalert.HIDStatus, error) {
	const op = "DecodeHIDStatus"
	if len(buf) != HIDStatusSize {
		return nil, radalert.NewError(radalert.KindMalformed, op,
			fmt.Errorf("expected %d bytes, got %d", HIDStatusSize, len(buf)))
	}

	cps := binary.LittleEndian.Uint32(buf[0:4])
	id := buf[4]
	value := binary.LittleEndian.Uint32(buf[5:9])
	mode := radalert.Mode(buf[9])
	unknown1 := buf[10]
	unknown2 := binary.LittleEndian.Uint32(buf[11:15])

	if err := validateStatusCPS(op, cps); err != nil {
		return nil, err
	}
	if err := validateMode(op, mode); err != nil {
		return nil, err
	}

	return radalert.NewHIDStatus(cps, id, value, mode, unknown1, unknown2), nil
}

// hidQueryLayout describes the byte offsets of the 64-byte HID query report,
// following the original protocol notes' fieldspec in declaration order.
const (
	offSerial            = 0  // 7 bytes, ASCII
	offIsotopeName       = 7  // 7 bytes, ASCII, reserved
	offUnkB              = 14 // 2 bytes, reserved
	offStatus            = 16 // 1 byte
	offAlarm             = 17 // 2 bytes
	offUnkC              = 19 // 2 bytes, reserved
	offDay               = 21 // 1 byte
	offUnkD              = 22 // 2 bytes, reserved
	offMonth             = 24 // 1 byte
	offYear              = 25 // 1 byte
	offUnkE              = 26 // 1 byte, reserved
	offContrast          = 27 // 1 byte
	offDeadtimeRecip     = 28 // 2 bytes
	offCalEfficiencies   = 30 // 16 bytes (8 x uint16)
	offCountDuration     = 46 // 2 bytes
	offBacklightDuration = 48 // 1 byte
	offConversion        = 49 // 2 bytes
	offDatalogInterval   = 51 // 2 bytes
	offUnkG              = 53 // 11 bytes, reserved
)

// DecodeHIDQuery unpacks a 64-byte HID query feature report (the leading
// report-id byte is expected to have already been stripped by the transport).
func DecodeHIDQuery(buf []byte) (*radalert.HIDQuery, error) {
	const op = "DecodeHIDQuery"
	if len(buf) != HIDQuerySize {
		return nil, radalert.NewError(radalert.KindMalformed, op,
			fmt.Errorf("expected %d bytes, got %d", HIDQuerySize, len(buf)))
	}

	serial := strings.TrimRight(string(buf[offSerial:offSerial+7]), "\x00")
	isotopeName := string(buf[offIsotopeName : offIsotopeName+7])

	status := buf[offStatus]
	alarm := binary.LittleEndian.Uint16(buf[offAlarm : offAlarm+2])
	day := buf[offDay]
	month := buf[offMonth]
	year := buf[offYear]
	contrast := buf[offContrast]
	dead := binary.LittleEndian.Uint16(buf[offDeadtimeRecip : offDeadtimeRecip+2])

	var calEfficiencies [8]uint16
	for i := 0; i < 8; i++ {
		o := offCalEfficiencies + i*2
		calEfficiencies[i] = binary.LittleEndian.Uint16(buf[o : o+2])
	}

	countDuration := binary.LittleEndian.Uint16(buf[offCountDuration : offCountDuration+2])
	backlightDuration := buf[offBacklightDuration]
	conv := binary.LittleEndian.Uint16(buf[offConversion : offConversion+2])
	datalogInterval := binary.LittleEndian.Uint16(buf[offDatalogInterval : offDatalogInterval+2])

	if err := validateQueryAlarm(op, alarm); err != nil {
		return nil, err
	}
	if err := validateCalibrationDate(op, year, month, day); err != nil {
		return nil, err
	}
	if err := validateContrast(op, contrast); err != nil {
		return nil, err
	}
	if err := validateDeadtimeReciprocal(op, dead); err != nil {
		return nil, err
	}
	if err := validateCountDuration(op, countDuration); err != nil {
		return nil, err
	}
	if err := validateBacklightDuration(op, backlightDuration); err != nil {
		return nil, err
	}
	if err := validateConversion(op, conv); err != nil {
		return nil, err
	}
	if err := validateDatalogInterval(op, datalogInterval); err != nil {
		return nil, err
	}

	return radalert.NewHIDQuery(radalert.HIDQueryFields{
		Serial: serial, Day: day, Month: month, Year: year,
		Contrast: contrast, DeadtimeReciprocal: dead, Alarm: alarm,
		CountDuration: countDuration, BacklightDuration: backlightDuration,
		Conversion: conv, DatalogInterval: datalogInterval,

		AutoAveraging:   status&(1<<0) != 0,
		DatalogCircular: status&(1<<1) != 0,
		AlarmSet:        status&(1<<2) != 0,
		AudibleClicks:   status&(1<<3) != 0,
		AudibleBeeps:    status&(1<<4) != 0,
		Reserved5:       status&(1<<5) != 0,
		DatalogEnabled:  status&(1<<6) != 0,
		Reserved7:       status&(1<<7) != 0,

		IsotopeName:     isotopeName,
		CalEfficiencies: calEfficiencies,
	}), nil
}
