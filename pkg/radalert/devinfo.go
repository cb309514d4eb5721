package radalert

// DeviceInfo holds the strings opportunistically read from the BLE
// peripheral's standard Device Information service after connecting.
// Every field is best-effort: a peripheral that doesn't expose a given
// characteristic simply leaves it empty.
type DeviceInfo struct {
	Manufacturer     string
	Model            string
	SerialNumber     string
	HardwareRevision string
	FirmwareRevision string
	SoftwareRevision string
}
