// Package apdu implements the big-endian, length-prefixed framing used by
// the 11073-20601 association and measurement-transfer dialog.
package apdu

// APDU type tags (the first u16 of every frame on the wire).
const (
	TypeAssocResp    uint16 = 0xE300
	TypeAssocRelReq  uint16 = 0xE400
	TypePresentation uint16 = 0xE700
)

// Data-APDU invoke/response codes carried inside a presentation APDU.
const (
	InvokeGet                    uint16 = 0x0103
	InvokeConfirmedAction        uint16 = 0x0107
	ResponseConfirmedEventReport uint16 = 0x0201
)

// Event and action type codes.
const (
	EventNotiConfig      uint16 = 0x0D1C
	EventNotiSegmentData uint16 = 0x0D21

	ActionSegGetInfo  uint16 = 0x0C0D
	ActionSegTrigXfer uint16 = 0x0C1C
)

// MOCPMStore is the managed-object class for the PM-store, used to locate
// the store's handle in the configuration response (phase 4).
const MOCPMStore uint16 = 61
