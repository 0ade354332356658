// File: internal/viewport/devices.go
package viewport

import (
	"sort"
	"strings"
)

// Device is a named viewport preset.
type Device struct {
	Name   string
	Width  int
	Height int
	// Mobile toggles mobile emulation (touch events, meta viewport) in the driver.
	Mobile bool
	// ScaleFactor is the device pixel ratio.
	ScaleFactor float64
}

// Category classifies the device by width.
func (d Device) Category() Category { return Classify(d.Width) }

// DefaultDevice is returned by DeviceByName for unknown names.
var DefaultDevice = Device{Name: "desktop", Width: 1920, Height: 1080, ScaleFactor: 1}

var devices = map[string]Device{
	"iphone-se": {Name: "iphone-se", Width: 375, Height: 667, Mobile: true, ScaleFactor: 2},
	"iphone-12": {Name: "iphone-12", Width: 390, Height: 844, Mobile: true, ScaleFactor: 3},
	"pixel-5":   {Name: "pixel-5", Width: 393, Height: 851, Mobile: true, ScaleFactor: 2.75},
	"ipad":      {Name: "ipad", Width: 768, Height: 1024, Mobile: true, ScaleFactor: 2},
	"ipad-pro":  {Name: "ipad-pro", Width: 1024, Height: 1366, Mobile: true, ScaleFactor: 2},
	"laptop":    {Name: "laptop", Width: 1366, Height: 768, ScaleFactor: 1},
	"desktop":   DefaultDevice,
}

// DeviceByName returns the preset registered under name (case-insensitive).
// It always returns a usable device: unknown names yield DefaultDevice and ok=false.
func DeviceByName(name string) (d Device, ok bool) {
	d, ok = devices[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return DefaultDevice, false
	}
	return d, true
}

// DeviceNames returns the registered preset names in sorted order.
func DeviceNames() []string {
	names := make([]string, 0, len(devices))
	for n := range devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultDeviceFor returns the representative preset for a category, used when a
// caller forces a category without giving explicit dimensions.
func DefaultDeviceFor(c Category) Device {
	switch c {
	case Mobile:
		return devices["iphone-se"]
	case Tablet:
		return devices["ipad"]
	default:
		return DefaultDevice
	}
}
