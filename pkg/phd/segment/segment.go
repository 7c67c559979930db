// Package segment decodes PM-store data-segment payloads into samples.
package segment

import (
	"fmt"
	"time"

	"github.com/accuchek/phd-reader/pkg/phd/apdu"
	"github.com/accuchek/phd-reader/pkg/phd/sample"
)

// entryStride is the distance the cursor advances between entries. Per
// spec, this is smaller than the 18-byte window each entry reads from,
// so consecutive entries' field reads overlap. This is deliberate and
// must be preserved for bit-identical output against the source device
// traces (see spec.md §9 open questions).
const entryStride = 12

// entryBase is the offset of the first entry relative to the start of the
// buffer.
const entryBase = 30

// Parse decodes the data segment in buf[:n], appending valid samples
// (status == 0) to the running counter *nextID, and returns them in
// arrival order. It never returns an error: short or zero-entry segments
// simply yield fewer samples, per spec.md §8's boundary rules.
func Parse(buf []byte, n int, nextID *int) []sample.Sample {
	if n < entryBase+2 {
		return nil
	}
	nbEntries := int(apdu.ReadU16(buf, entryBase))
	samples := make([]sample.Sample, 0, nbEntries)

	offset := entryBase
	for i := 0; i < nbEntries; i++ {
		if offset+18 > n {
			break
		}

		cc := apdu.BCDDecode(buf[offset+6])
		yy := apdu.BCDDecode(buf[offset+7])
		mm := apdu.BCDDecode(buf[offset+8])
		dd := apdu.BCDDecode(buf[offset+9])
		hh := apdu.BCDDecode(buf[offset+10])
		mn := apdu.BCDDecode(buf[offset+11])

		value := apdu.ReadU16(buf, offset+14)
		status := apdu.ReadU16(buf, offset+16)

		offset += entryStride

		if status != 0 {
			continue
		}

		year := cc*100 + yy
		local := time.Date(year, time.Month(mm), dd, hh, mn, 0, 0, time.Local)

		s := sample.Sample{
			ID:        *nextID,
			Epoch:     local.Unix(),
			Timestamp: formatTimestamp(cc, yy, mm, dd, hh, mn),
			MgDL:      value,
			MmolL:     float64(value) / 18.0,
		}
		samples = append(samples, s)
		*nextID++
	}

	return samples
}

func formatTimestamp(cc, yy, mm, dd, hh, mn int) string {
	return fmt.Sprintf("%02d %02d/%02d/%02d %02d:%02d", cc, yy, mm, dd, hh, mn)
}
