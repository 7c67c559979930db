// Package usbtransport adapts github.com/google/gousb to the
// pkg/phd/transport.Transport port, and discovers attached AccuChek
// devices against a catalog.
package usbtransport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"

	"github.com/accuchek/phd-reader/pkg/phd/phderr"
	"github.com/accuchek/phd-reader/pkg/phd/transport"
)

const (
	endpointOut    = 0x01
	endpointIn     = 0x81
	getStatusReq   = 0x00
	controlInMask  = 0x80 // Direction: In, Type: Standard, Recipient: Device
	bulkPacketSize = 64
)

// Adapter drives one USB bulk pipe for the lifetime of a single download
// session. It implements transport.Transport.
type Adapter struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	config  *gousb.Config
	intf    *gousb.Interface
	epOut   *gousb.OutEndpoint
	epIn    *gousb.InEndpoint
	timeout time.Duration
}

// Open claims interface 0, alt setting 0 of the exact device desc
// identifies (matched by bus and address, not just vendor/product, so two
// identical-model meters on the same host resolve to the one the caller
// actually selected), and sets up its bulk endpoints. Every call the
// returned Adapter makes is bounded by timeout. The caller owns the
// Adapter exclusively until Close.
func Open(desc DeviceDescriptor, timeout time.Duration) (*Adapter, error) {
	ctx := gousb.NewContext()

	devices, err := ctx.OpenDevices(func(d *gousb.DeviceDesc) bool {
		return d.Bus == desc.Bus && d.Address == desc.Address
	})
	if err != nil {
		ctx.Close()
		return nil, phderr.Wrap(phderr.IO, "open usb device", err)
	}
	closeExcept := func(keep *gousb.Device) {
		for _, d := range devices {
			if d != keep {
				d.Close()
			}
		}
	}
	if len(devices) == 0 {
		ctx.Close()
		return nil, phderr.New(phderr.DeviceNotFound, "open usb device",
			fmt.Sprintf("no device at bus=%d address=%d (vendor=0x%04x product=0x%04x)",
				desc.Bus, desc.Address, desc.VendorID, desc.ProductID))
	}
	dev := devices[0]
	closeExcept(dev)

	if err := dev.SetAutoDetach(true); err != nil {
		// Not fatal: some platforms have no kernel driver to detach.
	}

	config, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, phderr.Wrap(phderr.IO, "set usb configuration", err)
	}

	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		dev.Close()
		ctx.Close()
		return nil, phderr.Wrap(phderr.IO, "claim usb interface", err)
	}

	epOut, err := intf.OutEndpoint(endpointOut)
	if err != nil {
		intf.Close()
		config.Close()
		dev.Close()
		ctx.Close()
		return nil, phderr.Wrap(phderr.IO, "open bulk out endpoint", err)
	}

	epIn, err := intf.InEndpoint(endpointIn)
	if err != nil {
		intf.Close()
		config.Close()
		dev.Close()
		ctx.Close()
		return nil, phderr.Wrap(phderr.IO, "open bulk in endpoint", err)
	}

	if timeout <= 0 {
		timeout = transport.DefaultTimeout
	}

	return &Adapter{ctx: ctx, dev: dev, config: config, intf: intf, epOut: epOut, epIn: epIn, timeout: timeout}, nil
}

func (a *Adapter) Write(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	n, err := a.epOut.WriteContext(ctx, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return n, phderr.Wrap(phderr.Timeout, "bulk write", err)
		}
		return n, phderr.Wrap(phderr.IO, "bulk write", err)
	}
	return n, nil
}

func (a *Adapter) Read(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	n, err := a.epIn.ReadContext(ctx, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return n, phderr.Wrap(phderr.Timeout, "bulk read", err)
		}
		return n, phderr.Wrap(phderr.IO, "bulk read", err)
	}
	return n, nil
}

// ControlIn issues the standard GET_STATUS control transfer phase 1 uses
// to probe the device before the bulk pairing handshake begins, bounded
// by the same per-call timeout as the bulk endpoints.
func (a *Adapter) ControlIn(p []byte) (int, error) {
	a.dev.ControlTimeout = a.timeout
	n, err := a.dev.Control(controlInMask, getStatusReq, 0, 0, p)
	if err != nil {
		return n, phderr.Wrap(phderr.IO, "control transfer", err)
	}
	return n, nil
}

// Close releases resources in the order interface, config, device,
// context, matching the teacher's USBDevice.Close ordering.
func (a *Adapter) Close() error {
	if a.intf != nil {
		a.intf.Close()
	}
	if a.config != nil {
		if err := a.config.Close(); err != nil {
			return phderr.Wrap(phderr.IO, "close usb config", err)
		}
	}
	if a.dev != nil {
		if err := a.dev.Close(); err != nil {
			return phderr.Wrap(phderr.IO, "close usb device", err)
		}
	}
	if a.ctx != nil {
		if err := a.ctx.Close(); err != nil {
			return phderr.Wrap(phderr.IO, "close usb context", err)
		}
	}
	return nil
}
