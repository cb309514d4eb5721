package radalert

import "time"

// UnknownField records a reserved byte/field whose observed value differed
// from the constant the original protocol notes expect it to hold. These are
// non-fatal diagnostics, never decode failures.
type UnknownField struct {
	Name     string
	Value    uint64
	Expected uint64
}

// Status is a periodic telemetry record, one of which is expected roughly
// once per second while a session is ACTIVE. Accessors for fields the
// producing transport does not carry return an error satisfying
// errors.Is(err, ErrNotAvailable).
type Status interface {
	// CPS is the number of counts observed in the last second.
	CPS() uint32
	// CPM is the device's own rolling counts-per-minute figure. BLE only.
	CPM() (uint32, error)
	// ID is the rolling 8-bit packet counter.
	ID() uint8
	// Mode is the device's current display mode.
	Mode() Mode
	// DisplayValue is the on-screen value scaled per Mode.
	DisplayValue() float64
	// DisplayUnits is the unit string associated with Mode.
	DisplayUnits() string
	// Power is the raw 0-5 battery/charging indicator.
	Power() uint8
	// IsCharging reports whether Power indicates the device is charging.
	IsCharging() bool
	// BatteryPercent is the battery level as a percentage, or false if charging.
	BatteryPercent() (float64, bool)
	// AlarmState is the derived alarm state. BLE only.
	AlarmState() (AlarmState, error)
	// UnknownFields lists reserved-field diagnostics observed in this record.
	UnknownFields() []UnknownField
}

// Query is a response to an on-demand "?" request. Fields the producing
// transport does not carry return an error satisfying
// errors.Is(err, ErrNotAvailable); HID carries every field, BLE only the
// starred subset from the original protocol notes (alarm level, conversion
// factor, deadtime).
type Query interface {
	// AlarmLevel is the configured alarm threshold in CPM, even if disabled.
	AlarmLevel() uint32
	// ConversionFactor is the CPM-per-(mR/h) calibration figure.
	ConversionFactor() uint32
	// Deadtime is the tube deadtime in seconds (reciprocal of the raw field).
	Deadtime() float64

	// SerialNumber is the device's serial number. HID only.
	SerialNumber() (string, error)
	// CalibrationDate is the date of last calibration, or ok=false if unset
	// (the device reports the sentinel date 2000-01-01). HID only.
	CalibrationDate() (t time.Time, ok bool, err error)
	// Contrast is the LCD contrast as a fraction of its maximum (64 counts). HID only.
	Contrast() (float64, error)
	// CountDuration is the timed-count duration in seconds. HID only.
	CountDuration() (uint32, error)
	// BacklightDuration is how long the backlight stays lit, in seconds. HID only.
	BacklightDuration() (uint32, error)
	// DatalogInterval is the datalog sampling interval in minutes. HID only.
	DatalogInterval() (uint32, error)
	// AlarmIsSet reports whether the device's alarm has been armed. HID only.
	AlarmIsSet() (bool, error)
	// AutoAveragingEnabled reports whether auto-averaging mode is enabled. HID only.
	AutoAveragingEnabled() (bool, error)
	// AudibleBeeps reports whether the device produces audible beeps. HID only.
	AudibleBeeps() (bool, error)
	// AudibleClicks reports whether the device produces audible click sounds. HID only.
	AudibleClicks() (bool, error)
	// DatalogEnabled reports whether the datalog function is active. HID only.
	DatalogEnabled() (bool, error)
	// DatalogIsCircular reports whether the datalog buffer wraps. HID only.
	DatalogIsCircular() (bool, error)
	// UnknownFields lists reserved-field diagnostics observed in this record.
	UnknownFields() []UnknownField
}

func notAvailable(op string) error {
	return NewError(KindNotAvailable, op, nil)
}
