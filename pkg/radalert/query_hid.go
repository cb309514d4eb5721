package radalert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HIDQuery is a query record decoded from a 64-byte USB HID feature report.
// Every field documented in the original protocol notes is available.
type HIDQuery struct {
	serial            string
	day, month, year  uint8 // year is years since 2000
	contrast          uint8
	deadtimeReciprocal uint16
	alarm             uint16
	countDuration     uint16
	backlightDuration uint8
	conversion        uint16
	datalogInterval   uint16

	autoAveraging   bool
	datalogCircular bool
	alarmSet        bool
	audibleClicks   bool
	audibleBeeps    bool
	datalogEnabled  bool

	unk []UnknownField
}

// HIDQueryFields groups the raw, already-unpacked fields of a 64-byte HID
// query report for NewHIDQuery; it mirrors the byte layout directly rather
// than taking a dozen positional arguments.
type HIDQueryFields struct {
	Serial             string
	Day, Month, Year   uint8
	Contrast           uint8
	DeadtimeReciprocal uint16
	Alarm              uint16
	CountDuration      uint16
	BacklightDuration  uint8
	Conversion         uint16
	DatalogInterval    uint16

	AutoAveraging   bool
	DatalogCircular bool
	AlarmSet        bool
	AudibleClicks   bool
	AudibleBeeps    bool
	DatalogEnabled  bool
	Reserved5       bool // status bit 5, observed always false
	Reserved7       bool // status bit 7, observed always false

	// Reserved fields, kept only for unknown-field diagnostics.
	IsotopeName string // 7 ASCII bytes, expected "\0\0Co-60"
	CalEfficiencies [8]uint16 // expected 0x2710 (10000) for each isotope slot
}

// NewHIDQuery constructs an HIDQuery from already-unpacked field values.
func NewHIDQuery(f HIDQueryFields) *HIDQuery {
	q := &HIDQuery{
		serial: f.Serial, day: f.Day, month: f.Month, year: f.Year,
		contrast: f.Contrast, deadtimeReciprocal: f.DeadtimeReciprocal, alarm: f.Alarm,
		countDuration: f.CountDuration, backlightDuration: f.BacklightDuration,
		conversion: f.Conversion, datalogInterval: f.DatalogInterval,
		autoAveraging: f.AutoAveraging, datalogCircular: f.DatalogCircular, alarmSet: f.AlarmSet,
		audibleClicks: f.AudibleClicks, audibleBeeps: f.AudibleBeeps, datalogEnabled: f.DatalogEnabled,
	}
	const expectIsotope = "\x00\x00Co-60"
	if f.IsotopeName != "" && f.IsotopeName != expectIsotope {
		q.unk = append(q.unk, UnknownField{Name: "isotope_name"})
	}
	for i, eff := range f.CalEfficiencies {
		if eff != 0x2710 {
			q.unk = append(q.unk, UnknownField{Name: fmt.Sprintf("cal_efficiency_%d", i), Value: uint64(eff), Expected: 0x2710})
		}
	}
	if f.Reserved5 {
		q.unk = append(q.unk, UnknownField{Name: "status_bit5", Value: 1, Expected: 0})
	}
	if f.Reserved7 {
		q.unk = append(q.unk, UnknownField{Name: "status_bit7", Value: 1, Expected: 0})
	}
	return q
}

func (q *HIDQuery) AlarmLevel() uint32 { return uint32(q.alarm) }

func (q *HIDQuery) ConversionFactor() uint32 { return uint32(q.conversion) }

func (q *HIDQuery) Deadtime() float64 { return 1 / float64(q.deadtimeReciprocal) }

func (q *HIDQuery) SerialNumber() (string, error) {
	trimmed := strings.TrimLeft(q.serial, "\x00")
	if _, err := strconv.Atoi(trimmed); err != nil {
		return q.serial, nil
	}
	return trimmed, nil
}

func (q *HIDQuery) CalibrationDate() (time.Time, bool, error) {
	t := time.Date(int(q.year)+2000, time.Month(q.month), int(q.day), 0, 0, 0, 0, time.UTC)
	if t.Equal(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func (q *HIDQuery) Contrast() (float64, error) { return float64(q.contrast) / 64.0, nil }

func (q *HIDQuery) CountDuration() (uint32, error) { return uint32(q.countDuration), nil }

func (q *HIDQuery) BacklightDuration() (uint32, error) { return uint32(q.backlightDuration), nil }

func (q *HIDQuery) DatalogInterval() (uint32, error) { return uint32(q.datalogInterval), nil }

func (q *HIDQuery) AlarmIsSet() (bool, error) { return q.alarmSet, nil }

func (q *HIDQuery) AutoAveragingEnabled() (bool, error) { return q.autoAveraging, nil }

func (q *HIDQuery) AudibleBeeps() (bool, error) { return q.audibleBeeps, nil }

func (q *HIDQuery) AudibleClicks() (bool, error) { return q.audibleClicks, nil }

func (q *HIDQuery) DatalogEnabled() (bool, error) { return q.datalogEnabled, nil }

func (q *HIDQuery) DatalogIsCircular() (bool, error) { return q.datalogCircular, nil }

func (q *HIDQuery) UnknownFields() []UnknownField { return q.unk }
