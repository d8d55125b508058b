package charts

import (
	"bytes"
	"testing"

	"district-dashboard/internal/models"
	"district-dashboard/internal/testutil"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func fixtureHistory() []models.QuarterRecord {
	var history []models.QuarterRecord
	for _, p := range testutil.Periods {
		history = append(history, testutil.QuarterRecord("3110001", "강남역", "11680640", "역삼1동", "D", p.Year, p.Quarter, 4, 10000))
	}
	return history
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name  string
		value func(models.QuarterRecord) float64
	}{
		{"sales per store", models.QuarterRecord.SalesPerStore},
		{"floating population", func(r models.QuarterRecord) float64 { return r.FloatingPopulation }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Trend(&buf, "3110001", tt.name, fixtureHistory(), tt.value); err != nil {
				t.Fatalf("Trend() error = %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngSignature) {
				t.Error("Trend() output is not a PNG")
			}
		})
	}

	var buf bytes.Buffer
	if err := Trend(&buf, "empty", "Sales", nil, models.QuarterRecord.SalesPerStore); err == nil {
		t.Error("Trend() without quarters should fail")
	}
}

func TestStores(t *testing.T) {
	var buf bytes.Buffer
	if err := Stores(&buf, "3110001", fixtureHistory()); err != nil {
		t.Fatalf("Stores() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngSignature) {
		t.Error("Stores() output is not a PNG")
	}

	buf.Reset()
	if err := Stores(&buf, "empty", nil); err == nil {
		t.Error("Stores() without quarters should fail")
	}
}

func TestTimeslots(t *testing.T) {
	var buf bytes.Buffer
	if err := Timeslots(&buf, "slots", "Sales", []float64{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatalf("Timeslots() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngSignature) {
		t.Error("Timeslots() output is not a PNG")
	}

	if err := Timeslots(&buf, "short", "Sales", []float64{1, 2}); err == nil {
		t.Error("Timeslots() with the wrong number of values should fail")
	}
}

func TestEstimate(t *testing.T) {
	est := &models.Estimate{Selection: testutil.Selection(testutil.AreaGangnam)}
	for i, slot := range models.Timeslots {
		est.Slots = append(est.Slots, models.SlotEstimate{Timeslot: slot, Sales: float64(1000 * (i + 1))})
	}

	var buf bytes.Buffer
	if err := Estimate(&buf, est); err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Estimate() wrote nothing")
	}
}
