package renderer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	reviews "github.com/cloudon7281/investment-reviews"
)

func renderTimeTable(r *renderer, t *reviews.TimeTable) {
	r.Printf("| Date | %s |\n", strings.Join(t.Columns, " | "))
	r.Printf("|:---|%s\n", strings.Repeat("---:|", len(t.Columns)))
	for i, day := range t.Days {
		r.Printf("| %s |", day)
		for _, v := range t.Values[i] {
			r.Printf(" %.2f |", v)
		}
		r.Printf("\n")
	}
	r.Printf("\n")
}

func renderPriceTable(r *renderer, t *reviews.PriceTable) {
	r.Printf("| Date | %s |\n", strings.Join(t.Columns, " | "))
	r.Printf("|:---|%s\n", strings.Repeat("---:|", len(t.Columns)))
	for i, day := range t.Days {
		r.Printf("| %s | %s |\n", day, strings.Join(t.Cells[i], " | "))
	}
	r.Printf("\n")
}

// TimeTableCSV writes the daily valuation table as CSV, for charting in a
// spreadsheet.
func TimeTableCSV(w io.Writer, t *reviews.TimeTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Date"}, t.Columns...)); err != nil {
		return err
	}
	for i, day := range t.Days {
		record := make([]string, 0, len(t.Columns)+1)
		record = append(record, day.String())
		for _, v := range t.Values[i] {
			record = append(record, fmt.Sprintf("%.2f", v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PriceTableCSV writes the daily price table as CSV.
func PriceTableCSV(w io.Writer, t *reviews.PriceTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Date"}, t.Columns...)); err != nil {
		return err
	}
	for i, day := range t.Days {
		if err := cw.Write(append([]string{day.String()}, t.Cells[i]...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
