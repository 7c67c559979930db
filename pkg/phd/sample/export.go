package sample

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON pretty-prints samples, preserving field order id, epoch,
// timestamp, mg/dL, mmol/L.
func WriteJSON(w io.Writer, samples []Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(samples)
}

// WriteCSV writes the header row "ID,Timestamp,Epoch,mg/dL,mmol/L" followed
// by one row per sample, mmol/L formatted to one decimal place.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Timestamp", "Epoch", "mg/dL", "mmol/L"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.ID),
			s.Timestamp,
			strconv.FormatInt(s.Epoch, 10),
			strconv.FormatUint(uint64(s.MgDL), 10),
			strconv.FormatFloat(s.MmolL, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
