package radalert

import "time"

// BLEQuery is a query record decoded from a 16-byte BLE transparent-UART
// frame. Only alarm level, conversion factor, and deadtime are available;
// every other accessor returns ErrNotAvailable, matching the original
// protocol's BLE-side decoder.
type BLEQuery struct {
	alarm             uint16
	deadtimeReciprocal uint16
	conversion        uint16
	unk []UnknownField
}

// NewBLEQuery constructs a BLEQuery from already-unpacked field values.
// sentinel and trailer are the leading/trailing 0xFFFFFFFF framing words and
// reserved is the always-zero field between alarm and deadtimeReciprocal;
// all three are recorded only as unknown-field diagnostics.
func NewBLEQuery(sentinel uint32, alarm, reserved, deadtimeReciprocal, conversion uint16, trailer uint32) *BLEQuery {
	q := &BLEQuery{alarm: alarm, deadtimeReciprocal: deadtimeReciprocal, conversion: conversion}
	if sentinel != 0xFFFFFFFF {
		q.unk = append(q.unk, UnknownField{Name: "sentinel", Value: uint64(sentinel), Expected: 0xFFFFFFFF})
	}
	if reserved != 0 {
		q.unk = append(q.unk, UnknownField{Name: "reserved", Value: uint64(reserved), Expected: 0})
	}
	if trailer != 0xFFFFFFFF {
		q.unk = append(q.unk, UnknownField{Name: "trailer", Value: uint64(trailer), Expected: 0xFFFFFFFF})
	}
	return q
}

func (q *BLEQuery) AlarmLevel() uint32 { return uint32(q.alarm) }

func (q *BLEQuery) ConversionFactor() uint32 { return uint32(q.conversion) }

func (q *BLEQuery) Deadtime() float64 { return 1 / float64(q.deadtimeReciprocal) }

func (q *BLEQuery) SerialNumber() (string, error) { return "", notAvailable("BLEQuery.SerialNumber") }

func (q *BLEQuery) CalibrationDate() (time.Time, bool, error) {
	return time.Time{}, false, notAvailable("BLEQuery.CalibrationDate")
}

func (q *BLEQuery) Contrast() (float64, error) { return 0, notAvailable("BLEQuery.Contrast") }

func (q *BLEQuery) CountDuration() (uint32, error) { return 0, notAvailable("BLEQuery.CountDuration") }

func (q *BLEQuery) BacklightDuration() (uint32, error) {
	return 0, notAvailable("BLEQuery.BacklightDuration")
}

func (q *BLEQuery) DatalogInterval() (uint32, error) {
	return 0, notAvailable("BLEQuery.DatalogInterval")
}

func (q *BLEQuery) AlarmIsSet() (bool, error) { return false, notAvailable("BLEQuery.AlarmIsSet") }

func (q *BLEQuery) AutoAveragingEnabled() (bool, error) {
	return false, notAvailable("BLEQuery.AutoAveragingEnabled")
}

func (q *BLEQuery) AudibleBeeps() (bool, error) { return false, notAvailable("BLEQuery.AudibleBeeps") }

func (q *BLEQuery) AudibleClicks() (bool, error) {
	return false, notAvailable("BLEQuery.AudibleClicks")
}

func (q *BLEQuery) DatalogEnabled() (bool, error) {
	return false, notAvailable("BLEQuery.DatalogEnabled")
}

func (q *BLEQuery) DatalogIsCircular() (bool, error) {
	return false, notAvailable("BLEQuery.DatalogIsCircular")
}

func (q *BLEQuery) UnknownFields() []UnknownField { return q.unk }
