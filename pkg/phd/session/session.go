// Package session drives the 13-phase 11073-20601 association,
// configuration, and PM-store transfer dialog against a Transport.
package session

import (
	"github.com/google/uuid"

	"github.com/accuchek/phd-reader/pkg/phd/apdu"
	"github.com/accuchek/phd-reader/pkg/phd/phderr"
	"github.com/accuchek/phd-reader/pkg/phd/sample"
	"github.com/accuchek/phd-reader/pkg/phd/segment"
	"github.com/accuchek/phd-reader/pkg/phd/transport"
)

// Logger is the minimal leveled-logging capability the session needs. It
// lets tests inject a no-op or buffering implementation instead of the
// process-wide file logger.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// State is the per-download session state: phase, invoke-id, the PM-store
// handle discovered at phase 4, and the receive scratch buffer.
type State struct {
	Phase         int
	InvokeID      uint16
	PMStoreHandle uint16
	buf           []byte
}

func newState() *State {
	return &State{Phase: 1, buf: make([]byte, 1024)}
}

// Download drives the full 13-phase dialog over t and returns the decoded
// samples. The transport is closed (releasing any claimed interface) on
// every exit path, success or failure. No retries are attempted inside
// the core; callers may retry the whole download.
func Download(t transport.Transport, logger Logger) ([]sample.Sample, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	correlation := uuid.NewString()
	st := newState()
	defer func() {
		if err := t.Close(); err != nil {
			logger.Warnf("session %s: close transport: %v", correlation, err)
		}
	}()

	logger.Debugf("session %s: phase 1 control probe", correlation)
	probe := make([]byte, 2)
	if _, err := t.ControlIn(probe); err != nil {
		return nil, phderr.Wrap(phderr.IO, "control probe", err)
	}
	st.Phase = 2

	logger.Debugf("session %s: phase 2 receive association request", correlation)
	if _, err := readInto(t, st.buf[:64]); err != nil {
		return nil, phderr.Wrap(phderr.IO, "receive association request", err)
	}
	st.Phase = 3

	logger.Debugf("session %s: phase 3 send association response", correlation)
	if err := writeAll(t, apdu.AssociationResponse()); err != nil {
		return nil, err
	}
	st.Phase = 4

	logger.Debugf("session %s: phase 4 receive configuration event", correlation)
	n, err := readInto(t, st.buf[:1024])
	if err != nil {
		return nil, phderr.Wrap(phderr.IO, "receive configuration event", err)
	}
	st.refreshInvokeID()
	handle, ok := apdu.FindPMStoreHandle(st.buf, n)
	if !ok {
		return nil, phderr.New(phderr.Parse, "locate PM-store", "PM Store not found")
	}
	st.PMStoreHandle = handle
	st.Phase = 5

	logger.Debugf("session %s: phase 5 send config-accepted event report", correlation)
	if err := writeAll(t, apdu.ConfigAccepted(st.InvokeID)); err != nil {
		return nil, err
	}
	st.Phase = 6

	logger.Debugf("session %s: phase 6 send MDS attribute GET", correlation)
	if err := writeAll(t, apdu.MDSAttributeGet(st.InvokeID+1)); err != nil {
		return nil, err
	}
	st.Phase = 7

	logger.Debugf("session %s: phase 7 receive MDS response", correlation)
	if _, err := readInto(t, st.buf[:1024]); err != nil {
		return nil, phderr.Wrap(phderr.IO, "receive MDS response", err)
	}
	st.refreshInvokeID()
	st.Phase = 8

	logger.Debugf("session %s: phase 8 send segment-info action", correlation)
	if err := writeAll(t, apdu.SegmentInfoRequest(st.InvokeID+1, st.PMStoreHandle)); err != nil {
		return nil, err
	}
	st.Phase = 9

	logger.Debugf("session %s: phase 9 receive action response", correlation)
	if _, err := readInto(t, st.buf[:1024]); err != nil {
		return nil, phderr.Wrap(phderr.IO, "receive action response", err)
	}
	st.refreshInvokeID()
	st.Phase = 10

	logger.Debugf("session %s: phase 10 send segment transfer trigger", correlation)
	if err := writeAll(t, apdu.SegmentTransferTrigger(st.InvokeID+1, st.PMStoreHandle)); err != nil {
		return nil, err
	}
	st.Phase = 11

	logger.Debugf("session %s: phase 11 receive segment headers", correlation)
	if _, err := readInto(t, st.buf[:1024]); err != nil {
		return nil, phderr.Wrap(phderr.IO, "receive segment headers", err)
	}
	st.refreshInvokeID()
	st.Phase = 12

	samples, err := st.readDataSegments(t, logger, correlation)
	if err != nil {
		return nil, err
	}
	st.Phase = 13

	logger.Debugf("session %s: phase 13 release", correlation)
	if err := writeAll(t, apdu.AssociationReleaseRequest()); err != nil {
		return nil, err
	}
	if _, err := readInto(t, st.buf[:1024]); err != nil {
		return nil, phderr.Wrap(phderr.IO, "receive release confirmation", err)
	}

	return samples, nil
}

// readDataSegments implements phase 12's receive/parse/ACK loop.
func (st *State) readDataSegments(t transport.Transport, logger Logger, correlation string) ([]sample.Sample, error) {
	var all []sample.Sample
	nextID := 0

	for {
		n, err := readInto(t, st.buf[:1024])
		if err != nil {
			return nil, phderr.Wrap(phderr.IO, "receive data segment", err)
		}
		if n < 33 {
			logger.Warnf("session %s: short segment (%d bytes), treating as end of stream", correlation, n)
			break
		}

		statusByte := st.buf[32]
		st.refreshInvokeID()

		u0 := apdu.ReadU32(st.buf, 22)
		u1 := apdu.ReadU32(st.buf, 26)
		u2 := apdu.ReadU16(st.buf, 30)

		samples := segment.Parse(st.buf, n, &nextID)
		all = append(all, samples...)

		ack := apdu.SegmentAck(st.InvokeID, st.PMStoreHandle, u0, u1, u2)
		if err := writeAll(t, ack); err != nil {
			return nil, err
		}

		if statusByte&0x40 != 0 {
			logger.Debugf("session %s: last segment received", correlation)
			break
		}
	}

	return all, nil
}

// refreshInvokeID pulls the invoke-id from bytes [6:8] of the most
// recently received buffer.
func (st *State) refreshInvokeID() {
	st.InvokeID = apdu.ReadU16(st.buf, 6)
}

func readInto(t transport.Transport, p []byte) (int, error) {
	return t.Read(p)
}

func writeAll(t transport.Transport, frame []byte) error {
	n, err := t.Write(frame)
	if err != nil {
		return phderr.Wrap(phderr.IO, "write frame", err)
	}
	if n != len(frame) {
		return phderr.New(phderr.Transfer, "write frame", "short write")
	}
	return nil
}
