package radalert

// BLEStatus is a status record decoded from a 16-byte BLE transparent-UART
// frame. It carries every field, including the device's own rolling CPM.
type BLEStatus struct {
	cps           uint32
	value         uint32
	mode          Mode
	cpm           uint32
	power         uint8
	alarmSet      bool
	alarmAlerting bool
	alarmSilenced bool
	id            uint8
	unknownBits   uint8 // reserved bits 6-7 of the status byte
	unk1          uint8 // reserved byte at offset 13
	unknown       []UnknownField
}

// NewBLEStatus constructs a BLEStatus from already-unpacked field values.
// Byte-level unpacking lives in internal/protocol; this constructor is the
// seam protocol decoding uses to hand back a typed, immutable record.
func NewBLEStatus(cps, value uint32, mode Mode, cpm uint32, power uint8,
	alarmSet, alarmAlerting, alarmSilenced bool, id uint8, unknownBits, unk1 uint8) *BLEStatus {

	s := &BLEStatus{
		cps: cps, value: value, mode: mode, cpm: cpm, power: power,
		alarmSet: alarmSet, alarmAlerting: alarmAlerting, alarmSilenced: alarmSilenced,
		id: id, unknownBits: unknownBits, unk1: unk1,
	}
	if unknownBits != 0 {
		s.unknown = append(s.unknown, UnknownField{Name: "unknown_bits", Value: uint64(unknownBits), Expected: 0})
	}
	if unk1 != 0 {
		s.unknown = append(s.unknown, UnknownField{Name: "unk1", Value: uint64(unk1), Expected: 0})
	}
	return s
}

func (s *BLEStatus) CPS() uint32 { return s.cps }

func (s *BLEStatus) CPM() (uint32, error) { return s.cpm, nil }

func (s *BLEStatus) ID() uint8 { return s.id }

func (s *BLEStatus) Mode() Mode { return s.mode }

func (s *BLEStatus) DisplayValue() float64 {
	v, _ := s.mode.Scale(float64(s.value))
	return v
}

func (s *BLEStatus) DisplayUnits() string {
	u, _ := s.mode.Units()
	return u
}

func (s *BLEStatus) Power() uint8 { return s.power }

func (s *BLEStatus) IsCharging() bool { return s.power == 5 }

func (s *BLEStatus) BatteryPercent() (float64, bool) {
	if s.IsCharging() {
		return 0, false
	}
	return float64(s.power) / 4 * 100, true
}

func (s *BLEStatus) AlarmState() (AlarmState, error) {
	return DeriveAlarmState(s.alarmSet, s.alarmAlerting, s.alarmSilenced), nil
}

func (s *BLEStatus) UnknownFields() []UnknownField { return s.unknown }
