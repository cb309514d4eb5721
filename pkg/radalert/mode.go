package radalert

// Mode is the device's on-screen display mode, which determines both the
// unit and the scale factor applied to the raw on-screen value.
type Mode uint8

const (
	ModeCPM      Mode = 0
	ModeCPS      Mode = 1
	ModeMicroRh  Mode = 2
	ModeMicroSvh Mode = 3
	ModeCounts   Mode = 20
	ModeMRh      Mode = 23
)

type modeInfo struct {
	unit  string
	scale func(float64) float64
}

func identity(x float64) float64 { return x }

var modeTable = map[Mode]modeInfo{
	ModeCPM:      {"cpm", identity},
	ModeCPS:      {"cps", func(x float64) float64 { return x / 10 }},
	ModeMicroRh:  {"µR/h", identity},
	ModeMicroSvh: {"µSv/h", func(x float64) float64 { return x / 1000 }},
	ModeCounts:   {"counts", identity},
	ModeMRh:      {"mR/h", func(x float64) float64 { return x / 1000 }},
}

// ValidMode reports whether m is one of the device's known display modes.
func ValidMode(m Mode) bool {
	_, ok := modeTable[m]
	return ok
}

// Units returns the display unit string for m, or false if m is unknown.
func (m Mode) Units() (string, bool) {
	info, ok := modeTable[m]
	if !ok {
		return "", false
	}
	return info.unit, true
}

// Scale applies m's display scale to a raw on-screen value, or reports false
// if m is unknown.
func (m Mode) Scale(raw float64) (float64, bool) {
	info, ok := modeTable[m]
	if !ok {
		return 0, false
	}
	return info.scale(raw), true
}
