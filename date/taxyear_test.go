package date

import (
	"slices"
	"testing"
	"time"
)

func TestTaxYearRange(t *testing.T) {
	r := TaxYear(2024).Range()
	if r.From != New(2023, time.April, 6) {
		t.Errorf("From = %v, want 2023-04-06", r.From)
	}
	if r.To != New(2024, time.April, 5) {
		t.Errorf("To = %v, want 2024-04-05", r.To)
	}
	if !r.Contains(New(2023, time.December, 25)) {
		t.Error("range should contain 2023-12-25")
	}
	if r.Contains(New(2024, time.April, 6)) {
		t.Error("range should not contain 2024-04-06")
	}
}

func TestParseTaxYear(t *testing.T) {
	tests := []struct {
		in   string
		want TaxYear
		err  bool
	}{
		{in: "2024", want: 2024},
		{in: "FY2024", want: 2024},
		{in: "fy2021", want: 2021},
		{in: "24", err: true},
		{in: "FY", err: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTaxYear(tc.in)
			if (err != nil) != tc.err {
				t.Fatalf("ParseTaxYear(%q) error = %v, want err=%v", tc.in, err, tc.err)
			}
			if err == nil && got != tc.want {
				t.Errorf("ParseTaxYear(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseYears(t *testing.T) {
	tests := []struct {
		in   string
		want []int
		err  bool
	}{
		{in: "2023", want: []int{2023}},
		{in: "2023,2025", want: []int{2023, 2025}},
		{in: "2023-2025", want: []int{2023, 2024, 2025}},
		{in: "2025,2023-2024,2023", want: []int{2023, 2024, 2025}},
		{in: "2025-2023", err: true},
		{in: "20xx", err: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseYears(tc.in)
			if (err != nil) != tc.err {
				t.Fatalf("ParseYears(%q) error = %v, want err=%v", tc.in, err, tc.err)
			}
			if err == nil && !slices.Equal(got, tc.want) {
				t.Errorf("ParseYears(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
