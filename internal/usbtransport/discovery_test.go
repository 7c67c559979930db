package usbtransport

import (
	"testing"

	"github.com/google/gousb"
)

func validAltSetting() gousb.InterfaceSetting {
	return gousb.InterfaceSetting{
		Endpoints: map[gousb.EndpointAddress]gousb.EndpointDesc{
			0x01: {Direction: gousb.EndpointDirectionOut, TransferType: gousb.TransferTypeBulk, MaxPacketSize: 64},
			0x81: {Direction: gousb.EndpointDirectionIn, TransferType: gousb.TransferTypeBulk, MaxPacketSize: 64},
		},
	}
}

func TestIsValidAccuChekShape(t *testing.T) {
	desc := &gousb.DeviceDesc{
		Configs: map[int]gousb.ConfigDesc{
			1: {Interfaces: []gousb.InterfaceDesc{{AltSettings: []gousb.InterfaceSetting{validAltSetting()}}}},
		},
	}
	if !isValidAccuChekShape(desc) {
		t.Fatal("expected valid shape to pass")
	}
}

func TestIsValidAccuChekShapeRejectsExtraConfig(t *testing.T) {
	desc := &gousb.DeviceDesc{
		Configs: map[int]gousb.ConfigDesc{
			1: {Interfaces: []gousb.InterfaceDesc{{AltSettings: []gousb.InterfaceSetting{validAltSetting()}}}},
			2: {Interfaces: []gousb.InterfaceDesc{{AltSettings: []gousb.InterfaceSetting{validAltSetting()}}}},
		},
	}
	if isValidAccuChekShape(desc) {
		t.Fatal("expected extra configuration to fail validation")
	}
}

func TestIsValidAccuChekShapeRejectsExtraInterface(t *testing.T) {
	desc := &gousb.DeviceDesc{
		Configs: map[int]gousb.ConfigDesc{
			1: {Interfaces: []gousb.InterfaceDesc{
				{AltSettings: []gousb.InterfaceSetting{validAltSetting()}},
				{AltSettings: []gousb.InterfaceSetting{validAltSetting()}},
			}},
		},
	}
	if isValidAccuChekShape(desc) {
		t.Fatal("expected extra interface to fail validation")
	}
}

func TestIsValidAccuChekShapeRejectsWrongPacketSize(t *testing.T) {
	bad := validAltSetting()
	bad.Endpoints[0x01] = gousb.EndpointDesc{Direction: gousb.EndpointDirectionOut, TransferType: gousb.TransferTypeBulk, MaxPacketSize: 32}
	desc := &gousb.DeviceDesc{
		Configs: map[int]gousb.ConfigDesc{
			1: {Interfaces: []gousb.InterfaceDesc{{AltSettings: []gousb.InterfaceSetting{bad}}}},
		},
	}
	if isValidAccuChekShape(desc) {
		t.Fatal("expected non-64-byte endpoint to fail validation")
	}
}

func TestIsValidAccuChekShapeRejectsMissingDirection(t *testing.T) {
	onlyOut := gousb.InterfaceSetting{
		Endpoints: map[gousb.EndpointAddress]gousb.EndpointDesc{
			0x01: {Direction: gousb.EndpointDirectionOut, TransferType: gousb.TransferTypeBulk, MaxPacketSize: 64},
			0x02: {Direction: gousb.EndpointDirectionOut, TransferType: gousb.TransferTypeBulk, MaxPacketSize: 64},
		},
	}
	desc := &gousb.DeviceDesc{
		Configs: map[int]gousb.ConfigDesc{
			1: {Interfaces: []gousb.InterfaceDesc{{AltSettings: []gousb.InterfaceSetting{onlyOut}}}},
		},
	}
	if isValidAccuChekShape(desc) {
		t.Fatal("expected missing bulk-in endpoint to fail validation")
	}
}
