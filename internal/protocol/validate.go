package protocol

import (
	"fmt"
	"time"

	"github.com/jigpu/radalert-go/pkg/radalert"
)

func outOfRange(op, format string, args ...any) error {
	return radalert.NewError(radalert.KindOutOfRange, op, fmt.Errorf(format, args...))
}

func validateStatusCPS(op string, cps uint32) error {
	if cps > 750_000 {
		return outOfRange(op, "cps = %d is unreasonably large", cps)
	}
	return nil
}

func validateBLEStatusCPM(op string, cpm uint32) error {
	if cpm > 450_000 {
		return outOfRange(op, "cpm = %d is unreasonably large", cpm)
	}
	return nil
}

func validatePower(op string, power uint8) error {
	if power > 5 {
		return outOfRange(op, "power = %d is not a known state", power)
	}
	return nil
}

func validateMode(op string, mode radalert.Mode) error {
	if !radalert.ValidMode(mode) {
		return outOfRange(op, "mode = %d is not a known state", mode)
	}
	return nil
}

func validateAlarmBits(op string, set, alerting, silenced bool) error {
	if alerting && !set {
		return outOfRange(op, "alarm cannot be alerting if not set")
	}
	if silenced && !alerting {
		return outOfRange(op, "alarm cannot be silenced if not alerting")
	}
	return nil
}

func validateQueryAlarm(op string, alarm uint16) error {
	if uint32(alarm) > 235_400 {
		return outOfRange(op, "alarm = %d outside expected range", alarm)
	}
	return nil
}

func validateDeadtimeReciprocal(op string, dead uint16) error {
	if dead == 0 {
		return outOfRange(op, "deadtime reciprocal may not be zero")
	}
	return nil
}

func validateConversion(op string, conv uint16) error {
	if conv < 200 || conv > 7000 {
		return outOfRange(op, "conversion = %d outside expected range", conv)
	}
	return nil
}

func validateCalibrationDate(op string, year, month, day uint8) error {
	// A zero month/day (or any combination time.Date can't normalize to
	// itself) indicates an invalid calendar date, mirroring the original
	// decoder's use of a strict date constructor.
	t := time.Date(int(year)+2000, time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
	if int(t.Day()) != int(day) || t.Month() != time.Month(month) || t.Year() != int(year)+2000 {
		return outOfRange(op, "calibration date %04d-%02d-%02d is invalid", int(year)+2000, month, day)
	}
	return nil
}

func validateContrast(op string, contrast uint8) error {
	if contrast > 64 {
		return outOfRange(op, "contrast = %d outside expected range", contrast)
	}
	return nil
}

func validateCountDuration(op string, d uint16) error {
	if d < 1 || uint32(d) >= 24*60*60 {
		return outOfRange(op, "count_duration = %d outside expected range", d)
	}
	return nil
}

func validateBacklightDuration(op string, d uint8) error {
	if d > 30 {
		return outOfRange(op, "backlight_duration = %d outside expected range", d)
	}
	return nil
}

func validateDatalogInterval(op string, d uint16) error {
	if d < 1 || d > 60 {
		return outOfRange(op, "datalog_interval = %d outside expected range", d)
	}
	return nil
}
