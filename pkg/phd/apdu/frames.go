package apdu

// SystemID is the fixed manager identity advertised in the association
// response (phase 3). Production deployments may want a per-host value
// instead; kept a literal per spec's open question.
const SystemID uint32 = 0x12345678

// AssociationResponse builds the 48-byte phase-3 frame that accepts the
// agent's association request with "accepted-unknown-config" (0x0003) and
// MDER encoding rules (0x8000).
func AssociationResponse() []byte {
	return NewWriter().
		U16(TypeAssocResp).
		U16(44). // length following this field
		U16(0x0003).
		U16(20601). // data-proto-id
		U16(38).    // data-proto-info length
		U32(0x80000002).
		U16(0x8000).
		U32(0x80000000).
		U32(0).
		U32(0x80000000).
		U16(8). // system-id length
		U32(SystemID).
		U32(0).
		U32(0).
		U32(0).
		U16(0).
		Build()
}

// ConfigAccepted builds the phase-5 presentation APDU reporting that the
// device's configuration was accepted.
func ConfigAccepted(invokeID uint16) []byte {
	return NewWriter().
		U16(TypePresentation).
		U16(22).
		U16(20).
		U16(invokeID).
		U16(ResponseConfirmedEventReport).
		U16(14).
		U16(0). // obj-handle
		U32(0). // currentTime
		U16(EventNotiConfig).
		U16(4).
		U16(0x4000). // config-report-id
		U16(0).      // config-result = accepted
		Build()
}

// MDSAttributeGet builds the phase-6 presentation APDU requesting the MDS
// object's attributes.
func MDSAttributeGet(invokeID uint16) []byte {
	return NewWriter().
		U16(TypePresentation).
		U16(14).
		U16(12).
		U16(invokeID).
		U16(InvokeGet).
		U16(6).
		U16(0). // obj-handle
		U32(0). // currentTime
		Build()
}

// SegmentInfoRequest builds the phase-8 presentation APDU requesting
// segment info for all segments of the PM-store at pmStoreHandle.
func SegmentInfoRequest(invokeID, pmStoreHandle uint16) []byte {
	return NewWriter().
		U16(TypePresentation).
		U16(20).
		U16(18).
		U16(invokeID).
		U16(InvokeConfirmedAction).
		U16(12).
		U16(pmStoreHandle).
		U16(ActionSegGetInfo).
		U16(6).
		U16(1). // all segments
		U16(2).
		U16(0).
		Build()
}

// SegmentTransferTrigger builds the phase-10 presentation APDU requesting
// transfer of segment index 0.
func SegmentTransferTrigger(invokeID, pmStoreHandle uint16) []byte {
	return NewWriter().
		U16(TypePresentation).
		U16(16).
		U16(14).
		U16(invokeID).
		U16(InvokeConfirmedAction).
		U16(8).
		U16(pmStoreHandle).
		U16(ActionSegTrigXfer).
		U16(2).
		U16(0). // segment index
		Build()
}

// SegmentAck builds the phase-12.5 ACK sent after each data segment is
// consumed, echoing u0/u1/u2 captured verbatim from that segment's header.
func SegmentAck(invokeID, pmStoreHandle uint16, u0, u1 uint32, u2 uint16) []byte {
	return NewWriter().
		U16(TypePresentation).
		U16(30).
		U16(28).
		U16(invokeID).
		U16(ResponseConfirmedEventReport).
		U16(22).
		U16(pmStoreHandle).
		U32(0xFFFFFFFF). // relative-time
		U16(EventNotiSegmentData).
		U16(12).
		U32(u0).
		U32(u1).
		U16(u2).
		U16(0x0080). // status bits: a fixed literal, not varied per segment
		Build()
}

// AssociationReleaseRequest builds the phase-13 normal-release frame.
func AssociationReleaseRequest() []byte {
	return NewWriter().
		U16(TypeAssocRelReq).
		U16(2).
		U16(0). // normal release
		Build()
}
