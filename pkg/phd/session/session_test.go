package session

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accuchek/phd-reader/pkg/phd/transport"
)

// put16 writes a big-endian uint16 into buf at off, growing buf if needed.
func put16(buf []byte, off int, v uint16) []byte {
	for len(buf) < off+2 {
		buf = append(buf, 0)
	}
	binary.BigEndian.PutUint16(buf[off:], v)
	return buf
}

// buildConfigFrame builds a phase-4 configuration event buffer with the
// invoke-id at offset 6 and, if includePMStore, a one-entry object table
// at offset 24 advertising a PM-store (class 61) at pmHandle.
func buildConfigFrame(invokeID, pmHandle uint16, includePMStore bool) []byte {
	buf := make([]byte, 28)
	buf = put16(buf, 6, invokeID)
	if includePMStore {
		buf = put16(buf, 24, 1) // one object
		buf = put16(buf, 28, 61) // class = PM-store
		buf = put16(buf, 30, pmHandle)
		buf = put16(buf, 32, 0) // attr count
		buf = put16(buf, 34, 0) // object size
	} else {
		buf = put16(buf, 24, 0) // zero objects
	}
	return buf
}

// buildHeaderFrame builds a minimal phase-7/9/11 response carrying only an
// updated invoke-id at offset 6.
func buildHeaderFrame(invokeID uint16) []byte {
	buf := make([]byte, 16)
	buf = put16(buf, 6, invokeID)
	return buf
}

type segEntry struct {
	cc, yy, mm, dd, hh, mn int
	value                  uint16
	status                 uint16
}

// buildSegmentFrame builds a phase-12 data-segment buffer: invoke-id at
// offset 6, entry count at offset 30, entries at stride 12 starting at
// offset 30, each entry's 18-byte window holding the BCD timestamp,
// value, and status. last sets the terminal-segment bit in byte 32.
func buildSegmentFrame(invokeID uint16, entries []segEntry, last bool) []byte {
	const base = 30
	size := base + 18
	if n := len(entries); n > 1 {
		size = base + (n-1)*12 + 18
	}
	buf := make([]byte, size)
	buf = put16(buf, 6, invokeID)
	buf = put16(buf, 30, uint16(len(entries)))
	offset := base
	bcd := func(v int) byte {
		return byte(((v/10)%10)<<4 | (v % 10))
	}
	for _, e := range entries {
		buf[offset+6] = bcd(e.cc)
		buf[offset+7] = bcd(e.yy)
		buf[offset+8] = bcd(e.mm)
		buf[offset+9] = bcd(e.dd)
		buf[offset+10] = bcd(e.hh)
		buf[offset+11] = bcd(e.mn)
		buf = put16(buf, offset+14, e.value)
		buf = put16(buf, offset+16, e.status)
		offset += 12
	}
	if len(buf) < 33 {
		buf = append(buf, make([]byte, 33-len(buf))...)
	}
	if last {
		buf[32] |= 0x40
	}
	return buf
}

// newHappyPathMock wires a full 13-phase recv queue for a single-entry,
// single-segment, successful download.
func newHappyPathMock() *transport.Mock {
	m := transport.NewMock(
		make([]byte, 64), // phase 2: association request
		buildConfigFrame(0x0001, 42, true),  // phase 4
		buildHeaderFrame(0x0002),             // phase 7
		buildHeaderFrame(0x0003),             // phase 9
		buildHeaderFrame(0x0004),             // phase 11
		buildSegmentFrame(0x0005, []segEntry{
			{cc: 20, yy: 24, mm: 3, dd: 15, hh: 9, mn: 30, value: 105, status: 0},
		}, true), // phase 12
		make([]byte, 8), // phase 13: release confirmation
	)
	m.ControlInResult = []byte{0, 0}
	return m
}

func TestDownload_HappyPath(t *testing.T) {
	m := newHappyPathMock()
	samples, err := Download(m, nil)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	s := samples[0]
	assert.Equal(t, 0, s.ID)
	assert.Equal(t, uint16(105), s.MgDL)
	assert.InDelta(t, 105.0/18.0, s.MmolL, 1e-9)
	assert.Equal(t, "20 24/03/15 09:30", s.Timestamp)
	assert.True(t, m.Closed)
}

func TestDownload_StatusFilteredEntry(t *testing.T) {
	m := transport.NewMock(
		make([]byte, 64),
		buildConfigFrame(0x0001, 42, true),
		buildHeaderFrame(0x0002),
		buildHeaderFrame(0x0003),
		buildHeaderFrame(0x0004),
		buildSegmentFrame(0x0005, []segEntry{
			{cc: 20, yy: 24, mm: 1, dd: 1, hh: 8, mn: 0, value: 90, status: 0},
			{cc: 20, yy: 24, mm: 1, dd: 1, hh: 8, mn: 5, value: 999, status: 1}, // non-zero status dropped
		}, true),
		make([]byte, 8),
	)
	m.ControlInResult = []byte{0, 0}

	samples, err := Download(m, nil)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, uint16(90), samples[0].MgDL)
}

func TestDownload_MultiSegment(t *testing.T) {
	m := transport.NewMock(
		make([]byte, 64),
		buildConfigFrame(0x0001, 42, true),
		buildHeaderFrame(0x0002),
		buildHeaderFrame(0x0003),
		buildHeaderFrame(0x0004),
		buildSegmentFrame(0x0005, []segEntry{
			{cc: 20, yy: 24, mm: 1, dd: 1, hh: 8, mn: 0, value: 90, status: 0},
		}, false),
		buildSegmentFrame(0x0006, []segEntry{
			{cc: 20, yy: 24, mm: 1, dd: 2, hh: 8, mn: 0, value: 110, status: 0},
		}, true),
		make([]byte, 8),
	)
	m.ControlInResult = []byte{0, 0}

	samples, err := Download(m, nil)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 0, samples[0].ID)
	assert.Equal(t, 1, samples[1].ID)
	assert.Equal(t, uint16(90), samples[0].MgDL)
	assert.Equal(t, uint16(110), samples[1].MgDL)
}

func TestDownload_MissingPMStore(t *testing.T) {
	m := transport.NewMock(
		make([]byte, 64),
		buildConfigFrame(0x0001, 0, false),
	)
	m.ControlInResult = []byte{0, 0}

	samples, err := Download(m, nil)
	assert.Nil(t, samples)
	assert.Error(t, err)
	assert.True(t, m.Closed)
}

func TestDownload_ShortSegmentEndsStream(t *testing.T) {
	m := transport.NewMock(
		make([]byte, 64),
		buildConfigFrame(0x0001, 42, true),
		buildHeaderFrame(0x0002),
		buildHeaderFrame(0x0003),
		buildHeaderFrame(0x0004),
		make([]byte, 10), // short segment, below the 33-byte floor
		make([]byte, 8),  // release confirmation
	)
	m.ControlInResult = []byte{0, 0}

	samples, err := Download(m, nil)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestDownload_InvokeIDPropagation(t *testing.T) {
	m := newHappyPathMock()
	_, err := Download(m, nil)
	require.NoError(t, err)
	require.NotEmpty(t, m.Sent)

	// The final segment ACK must echo the invoke-id refreshed from the
	// data-segment header (0x0005), not an earlier phase's id.
	lastSent := m.Sent[len(m.Sent)-2] // ack precedes the release request
	gotInvokeID := binary.BigEndian.Uint16(lastSent[6:8])
	assert.Equal(t, uint16(0x0005), gotInvokeID)
}

func TestDownload_ControlProbeFailure(t *testing.T) {
	m := transport.NewMock()
	m.ControlInErr = assert.AnError

	samples, err := Download(m, nil)
	assert.Nil(t, samples)
	assert.Error(t, err)
	assert.True(t, m.Closed)
}
