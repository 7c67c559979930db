package usbtransport

import (
	"github.com/google/gousb"

	"github.com/accuchek/phd-reader/internal/catalog"
	"github.com/accuchek/phd-reader/pkg/phd/phderr"
)

// DeviceDescriptor identifies one attached, validated AccuChek device:
// enough for Open to re-acquire the exact same device, and enough for a
// shell to present to the user.
type DeviceDescriptor struct {
	VendorID  uint16
	ProductID uint16
	Name      string
	Bus       int
	Address   int
}

// Logger is the minimal leveled-logging capability Discovery needs.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

// Discover walks every attached USB device, keeping only those whose
// vendor/product pair is in cat and whose descriptor shape matches the
// four AccuChek rules. Devices are opened only long enough to inspect
// their descriptor; Discovery never holds a claim open.
func Discover(cat *catalog.Catalog, logger Logger) ([]DeviceDescriptor, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	ctx := gousb.NewContext()
	defer ctx.Close()

	var found []DeviceDescriptor
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		_, ok := cat.Lookup(uint16(desc.Vendor), uint16(desc.Product))
		return ok
	})
	if err != nil {
		return nil, phderr.Wrap(phderr.IO, "enumerate usb devices", err)
	}
	defer func() {
		for _, d := range devices {
			d.Close()
		}
	}()

	for _, dev := range devices {
		entry, ok := cat.Lookup(uint16(dev.Desc.Vendor), uint16(dev.Desc.Product))
		if !ok {
			continue
		}
		if !isValidAccuChekShape(dev.Desc) {
			logger.Warnf("usbtransport: device vendor=0x%04x product=0x%04x does not match expected descriptor shape, skipping",
				dev.Desc.Vendor, dev.Desc.Product)
			continue
		}
		logger.Debugf("usbtransport: found %s at bus=%d addr=%d", entry.Name, dev.Desc.Bus, dev.Desc.Address)
		found = append(found, DeviceDescriptor{
			VendorID:  uint16(dev.Desc.Vendor),
			ProductID: uint16(dev.Desc.Product),
			Name:      entry.Name,
			Bus:       dev.Desc.Bus,
			Address:   dev.Desc.Address,
		})
	}

	return found, nil
}

// isValidAccuChekShape checks the four shape rules: exactly one
// configuration, one interface with one alternate setting, and exactly
// two 64-byte bulk endpoints, one in each direction.
func isValidAccuChekShape(desc *gousb.DeviceDesc) bool {
	if len(desc.Configs) != 1 {
		return false
	}
	for _, cfg := range desc.Configs {
		if len(cfg.Interfaces) != 1 {
			return false
		}
		intf := cfg.Interfaces[0]
		if len(intf.AltSettings) != 1 {
			return false
		}
		return hasBulkInOut(intf.AltSettings[0].Endpoints)
	}
	return false
}

func hasBulkInOut(endpoints map[gousb.EndpointAddress]gousb.EndpointDesc) bool {
	if len(endpoints) != 2 {
		return false
	}
	var hasIn, hasOut bool
	for _, ep := range endpoints {
		if ep.TransferType != gousb.TransferTypeBulk || ep.MaxPacketSize != bulkPacketSize {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionIn:
			hasIn = true
		case gousb.EndpointDirectionOut:
			hasOut = true
		}
	}
	return hasIn && hasOut
}
