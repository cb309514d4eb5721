package radalert

// HIDStatus is a status record decoded from a 15-byte USB HID interrupt
// report. It does not carry cpm or alarm state; those accessors return
// ErrNotAvailable.
type HIDStatus struct {
	cps      uint32
	value    uint32
	mode     Mode
	id       uint8
	unknown1 uint8
	unknown2 uint32
	unk      []UnknownField
}

// NewHIDStatus constructs an HIDStatus from already-unpacked field values.
func NewHIDStatus(cps uint32, id uint8, value uint32, mode Mode, unknown1 uint8, unknown2 uint32) *HIDStatus {
	s := &HIDStatus{cps: cps, value: value, mode: mode, id: id, unknown1: unknown1, unknown2: unknown2}
	if unknown1 != 0 {
		s.unk = append(s.unk, UnknownField{Name: "unknown1", Value: uint64(unknown1), Expected: 0})
	}
	if unknown2 != 0 {
		s.unk = append(s.unk, UnknownField{Name: "unknown2", Value: uint64(unknown2), Expected: 0})
	}
	return s
}

func (s *HIDStatus) CPS() uint32 { return s.cps }

func (s *HIDStatus) CPM() (uint32, error) { return 0, notAvailable("HIDStatus.CPM") }

func (s *HIDStatus) ID() uint8 { return s.id }

func (s *HIDStatus) Mode() Mode { return s.mode }

func (s *HIDStatus) DisplayValue() float64 {
	v, _ := s.mode.Scale(float64(s.value))
	return v
}

func (s *HIDStatus) DisplayUnits() string {
	u, _ := s.mode.Units()
	return u
}

// Power is always reported as "charging" on HID; the device exposes no
// other battery telemetry over this transport.
func (s *HIDStatus) Power() uint8 { return 5 }

func (s *HIDStatus) IsCharging() bool { return true }

func (s *HIDStatus) BatteryPercent() (float64, bool) { return 0, false }

func (s *HIDStatus) AlarmState() (AlarmState, error) {
	return AlarmDisabled, notAvailable("HIDStatus.AlarmState")
}

func (s *HIDStatus) UnknownFields() []UnknownField { return s.unk }
