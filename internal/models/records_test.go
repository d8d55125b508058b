package models

import "testing"

func TestPeriod_Previous(t *testing.T) {
	tests := []struct {
		in   Period
		want Period
	}{
		{Period{2023, 3}, Period{2023, 2}},
		{Period{2023, 1}, Period{2022, 4}},
	}
	for _, tt := range tests {
		if got := tt.in.Previous(); got != tt.want {
			t.Errorf("%v.Previous() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPeriod_Next(t *testing.T) {
	if got := (Period{2023, 3}).Next(); got != (Period{2023, 4}) {
		t.Errorf("2023Q3.Next() = %v", got)
	}
	if got := (Period{2023, 4}).Next(); got != (Period{2024, 1}) {
		t.Errorf("2023Q4.Next() = %v", got)
	}
}

func TestPeriod_Before(t *testing.T) {
	if !(Period{2022, 4}).Before(Period{2023, 1}) {
		t.Error("2022Q4 should be before 2023Q1")
	}
	if (Period{2023, 2}).Before(Period{2023, 2}) {
		t.Error("a period is not before itself")
	}
}

func TestQuarterRecord_Derived(t *testing.T) {
	r := QuarterRecord{
		Sales:               1000,
		StoreCount:          3,
		ResidentPopulation:  200,
		ResidentByAge:       AgeBands{20, 40, 60, 40, 20, 20},
		WorkplacePopulation: 0,
	}

	if got := r.SalesPerStore(); got != 333 {
		t.Errorf("SalesPerStore() = %v, want 333", got)
	}
	if got := r.ResidentRatios()[2]; got != 0.3 {
		t.Errorf("ResidentRatios()[2] = %v, want 0.3", got)
	}
	if got := r.WorkplaceRatios(); got != (AgeBands{}) {
		t.Errorf("WorkplaceRatios() with zero total = %v, want zeros", got)
	}
	if got := (QuarterRecord{Sales: 10}).SalesPerStore(); got != 0 {
		t.Errorf("SalesPerStore() with zero stores = %v, want 0", got)
	}
}

func TestTimeslot_Index(t *testing.T) {
	if Slot14To17.Index() != 3 {
		t.Errorf("Slot14To17.Index() = %d", Slot14To17.Index())
	}
	if Timeslot("24~25").Valid() {
		t.Error("unknown slot should be invalid")
	}
}
