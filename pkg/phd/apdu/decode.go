package apdu

// Frame is the generic [type, length, ...payload] view of any APDU on the
// wire: length is the byte count following the length field itself.
type Frame struct {
	Type   uint16
	Length uint16
	Body   []byte
}

// DecodeFrame splits buf into its type/length header and body. It does not
// require buf to be exactly Length+4 bytes long, since receive buffers are
// frequently over-read into a fixed-size scratch buffer.
func DecodeFrame(buf []byte) Frame {
	r := NewReader(buf)
	f := Frame{Type: r.U16(), Length: r.U16()}
	end := 4 + int(f.Length)
	if end > len(buf) {
		end = len(buf)
	}
	f.Body = buf[4:end]
	return f
}

// AssociationResponseFields is the decoded form of AssociationResponse,
// used to round-trip-check the codec.
type AssociationResponseFields struct {
	ConfigResult       uint16
	DataProtoID        uint16
	ProtocolVersion    uint32
	EncodingRules      uint16
	NomenclatureVer    uint32
	FunctionalUnits    uint32
	SystemType         uint32
	SystemID           uint32
}

// DecodeAssociationResponse parses the 48-byte phase-3 frame back into its
// semantic fields.
func DecodeAssociationResponse(buf []byte) AssociationResponseFields {
	r := NewReader(buf)
	r.Skip(4) // type, length
	cfg := r.U16()
	proto := r.U16()
	r.Skip(2) // data-proto-info length
	ver := r.U32()
	enc := r.U16()
	nom := r.U32()
	fu := r.U32()
	sysType := r.U32()
	r.Skip(2) // system-id length
	sysID := r.U32()
	return AssociationResponseFields{
		ConfigResult:    cfg,
		DataProtoID:     proto,
		ProtocolVersion: ver,
		EncodingRules:   enc,
		NomenclatureVer: nom,
		FunctionalUnits: fu,
		SystemType:      sysType,
		SystemID:        sysID,
	}
}

// ConfigAcceptedFields is the decoded form of ConfigAccepted.
type ConfigAcceptedFields struct {
	InvokeID       uint16
	EventType      uint16
	ConfigReportID uint16
	ConfigResult   uint16
}

func DecodeConfigAccepted(buf []byte) ConfigAcceptedFields {
	r := NewReader(buf)
	r.Skip(6) // type, length, inner-length
	invoke := r.U16()
	r.Skip(2) // data-apdu choice (ResponseConfirmedEventReport)
	r.Skip(2) // data-apdu length
	r.Skip(2) // obj-handle
	r.Skip(4) // currentTime
	evt := r.U16()
	r.Skip(2) // event-info length
	reportID := r.U16()
	result := r.U16()
	return ConfigAcceptedFields{InvokeID: invoke, EventType: evt, ConfigReportID: reportID, ConfigResult: result}
}

// MDSAttributeGetFields is the decoded form of MDSAttributeGet.
type MDSAttributeGetFields struct {
	InvokeID  uint16
	ObjHandle uint16
}

func DecodeMDSAttributeGet(buf []byte) MDSAttributeGetFields {
	r := NewReader(buf)
	r.Skip(6)
	invoke := r.U16()
	r.Skip(4) // choice, length
	handle := r.U16()
	return MDSAttributeGetFields{InvokeID: invoke, ObjHandle: handle}
}

// SegmentInfoRequestFields is the decoded form of SegmentInfoRequest.
type SegmentInfoRequestFields struct {
	InvokeID      uint16
	PMStoreHandle uint16
	ActionType    uint16
}

func DecodeSegmentInfoRequest(buf []byte) SegmentInfoRequestFields {
	r := NewReader(buf)
	r.Skip(6)
	invoke := r.U16()
	r.Skip(4)
	handle := r.U16()
	action := r.U16()
	return SegmentInfoRequestFields{InvokeID: invoke, PMStoreHandle: handle, ActionType: action}
}

// SegmentTransferTriggerFields is the decoded form of SegmentTransferTrigger.
type SegmentTransferTriggerFields struct {
	InvokeID      uint16
	PMStoreHandle uint16
	ActionType    uint16
	SegmentIndex  uint16
}

func DecodeSegmentTransferTrigger(buf []byte) SegmentTransferTriggerFields {
	r := NewReader(buf)
	r.Skip(6)
	invoke := r.U16()
	r.Skip(4)
	handle := r.U16()
	action := r.U16()
	r.Skip(2) // action-payload length
	idx := r.U16()
	return SegmentTransferTriggerFields{InvokeID: invoke, PMStoreHandle: handle, ActionType: action, SegmentIndex: idx}
}

// SegmentAckFields is the decoded form of SegmentAck.
type SegmentAckFields struct {
	InvokeID      uint16
	PMStoreHandle uint16
	EventType     uint16
	U0, U1        uint32
	U2            uint16
	Status        uint16
}

func DecodeSegmentAck(buf []byte) SegmentAckFields {
	r := NewReader(buf)
	r.Skip(6)
	invoke := r.U16()
	r.Skip(4)
	handle := r.U16()
	r.Skip(4) // relative-time
	evt := r.U16()
	r.Skip(2) // event-info length
	u0 := r.U32()
	u1 := r.U32()
	u2 := r.U16()
	status := r.U16()
	return SegmentAckFields{InvokeID: invoke, PMStoreHandle: handle, EventType: evt, U0: u0, U1: u1, U2: u2, Status: status}
}

// AssociationReleaseRequestFields is the decoded form of
// AssociationReleaseRequest.
type AssociationReleaseRequestFields struct {
	ReleaseReason uint16
}

func DecodeAssociationReleaseRequest(buf []byte) AssociationReleaseRequestFields {
	r := NewReader(buf)
	r.Skip(4)
	return AssociationReleaseRequestFields{ReleaseReason: r.U16()}
}

// FindPMStoreHandle scans a phase-4 configuration response for the first
// managed object of class MOCPMStore, returning its handle. n is the
// number of valid bytes in buf (the transport read count, which may be
// less than len(buf)).
//
// The object table begins at offset 24: a u16 count, 2 padding bytes, then
// count objects of {class:u16, handle:u16, attr_count:u16, size:u16}
// followed by size bytes of attribute data.
func FindPMStoreHandle(buf []byte, n int) (uint16, bool) {
	const tableStart = 24
	if n < tableStart+4 {
		return 0, false
	}
	count := ReadU16(buf, tableStart)
	offset := tableStart + 4
	for i := 0; i < int(count); i++ {
		if offset+8 > n {
			break
		}
		class := ReadU16(buf, offset)
		handle := ReadU16(buf, offset+2)
		size := ReadU16(buf, offset+6)
		if class == MOCPMStore {
			return handle, true
		}
		offset += 8 + int(size)
	}
	return 0, false
}
