// Package catalog loads the TOML document of supported AccuChek device
// vendor/product IDs that Discovery (internal/usbtransport) matches
// attached USB devices against.
package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Entry describes one supported device in the catalog. VendorID and
// ProductID accept decimal or 0x-prefixed hex in the TOML source; go-toml
// decodes both into the same uint16.
type Entry struct {
	VendorID  uint16 `toml:"vendor_id" validate:"required"`
	ProductID uint16 `toml:"product_id" validate:"required"`
	Name      string `toml:"name" validate:"required,max=128"`
}

type document struct {
	Devices []Entry `toml:"devices"`
}

// Catalog is the validated set of supported devices, keyed for fast lookup
// by Discovery's per-device filter function.
type Catalog struct {
	entries []Entry
	byID    map[[2]uint16]Entry
}

var validate = validator.New()

// Load reads and parses a TOML catalog document from path. Entries that
// fail validation are skipped with a warning rather than aborting the
// whole load, mirroring Discovery's own skip-don't-abort policy.
func Load(path string, logger Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data, logger)
}

// Parse decodes and validates a TOML catalog document already in memory.
func Parse(data []byte, logger Logger) (*Catalog, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse toml: %w", err)
	}

	c := &Catalog{byID: make(map[[2]uint16]Entry, len(doc.Devices))}
	for _, e := range doc.Devices {
		if err := validate.Struct(e); err != nil {
			logger.Warnf("catalog: skipping invalid entry %+v: %v", e, err)
			continue
		}
		key := [2]uint16{e.VendorID, e.ProductID}
		if _, dup := c.byID[key]; dup {
			logger.Warnf("catalog: duplicate entry for vendor=0x%04x product=0x%04x, keeping first", e.VendorID, e.ProductID)
			continue
		}
		c.byID[key] = e
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Lookup reports the catalog entry for a given vendor/product pair.
func (c *Catalog) Lookup(vendorID, productID uint16) (Entry, bool) {
	e, ok := c.byID[[2]uint16{vendorID, productID}]
	return e, ok
}

// Entries returns the validated entries in load order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Logger is the minimal leveled-logging capability catalog needs.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}
