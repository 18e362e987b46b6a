package scheduling

import (
	"errors"
	"reflect"
	"testing"
)

func TestGenerateSlots_LunchExample(t *testing.T) {
	slots, err := GenerateSlots("10:00", "18:00", 15, "13:00", 45)
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	for _, s := range slots {
		switch s.Start {
		case "13:00", "13:15", "13:30":
			t.Fatalf("slot %s overlaps lunch", s.Start)
		}
	}

	var afterLunch string
	for _, s := range slots {
		if s.Start >= "13:00" {
			afterLunch = s.Start
			break
		}
	}
	if afterLunch != "13:45" {
		t.Fatalf("expected first post-lunch slot 13:45, got %s", afterLunch)
	}

	// 32 slots in 8h minus 3 lunch slots.
	if len(slots) != 29 {
		t.Fatalf("expected 29 slots, got %d", len(slots))
	}
	if slots[0].Start != "10:00" || slots[len(slots)-1].End != "18:00" {
		t.Fatalf("unexpected bounds %s..%s", slots[0].Start, slots[len(slots)-1].End)
	}
}

func TestGenerateSlots_Properties(t *testing.T) {
	tests := []struct {
		name        string
		start, end  string
		length      int
		lunch       string
		lunchLength int
	}{
		{"twelve hour clock", "10:00 AM", "06:00 PM", 15, "13:00", 45},
		{"odd length", "09:10", "17:05", 20, "12:50", 30},
		{"lunch outside window", "14:00", "18:00", 30, "13:00", 45},
		{"long slots", "08:00", "20:00", 50, "13:00", 60},
		{"unaligned lunch", "10:00", "12:00", 15, "10:20", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(tt.start, tt.end, tt.length, tt.lunch, tt.lunchLength)
			if err != nil {
				t.Fatalf("GenerateSlots: %v", err)
			}

			workStart, _ := ParseClock(tt.start)
			workEnd, _ := ParseClock(tt.end)
			lunchStart, _ := ParseClock(tt.lunch)
			lunchEnd := lunchStart + tt.lunchLength

			prev := -1
			for _, s := range slots {
				start, _ := ParseClock(s.Start)
				end, _ := ParseClock(s.End)
				if end-start != tt.length {
					t.Fatalf("slot %s-%s has wrong length", s.Start, s.End)
				}
				if start < workStart || end > workEnd {
					t.Fatalf("slot %s-%s outside working hours", s.Start, s.End)
				}
				if start < lunchEnd && end > lunchStart {
					t.Fatalf("slot %s-%s overlaps lunch", s.Start, s.End)
				}
				if start <= prev {
					t.Fatalf("slots not strictly ordered at %s", s.Start)
				}
				if s.Booked || s.Past {
					t.Fatalf("fresh slot %s carries booking flags", s.Start)
				}
				prev = start
			}
		})
	}
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	g := Grid{SlotLength: 15, LunchStart: "13:00", LunchLength: 45}
	a, err := g.Generate("10:00 AM", "06:00 PM")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, _ := g.Generate("10:00 AM", "06:00 PM")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different grids")
	}
}

func TestGenerateSlots_NoTrailingPartialSlot(t *testing.T) {
	slots, err := GenerateSlots("10:00", "10:40", 15, "13:00", 45)
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	if len(slots) != 2 || slots[1].End != "10:30" {
		t.Fatalf("expected two slots ending 10:30, got %+v", slots)
	}
}

func TestGenerateSlots_Errors(t *testing.T) {
	if _, err := GenerateSlots("ten", "18:00", 15, "13:00", 45); !errors.Is(err, ErrMalformedTime) {
		t.Fatalf("expected ErrMalformedTime, got %v", err)
	}
	if _, err := GenerateSlots("10:00", "18:00", 0, "13:00", 45); !errors.Is(err, ErrInvalidSlotLength) {
		t.Fatalf("expected ErrInvalidSlotLength, got %v", err)
	}
}

func TestGenerateSlots_EmptyWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"reversed", "06:00 PM", "10:00 AM"},
		{"zero length", "10:00", "10:00"},
		{"shorter than one slot", "10:00", "10:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(tt.start, tt.end, 15, "13:00", 45)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if slots == nil || len(slots) != 0 {
				t.Fatalf("expected empty non-nil grid, got %#v", slots)
			}
		})
	}
}

func TestMarkBookedAndPast(t *testing.T) {
	slots, _ := GenerateSlots("10:00", "11:00", 15, "13:00", 45)
	slots = MarkBooked(slots, []string{"10:30"})
	slots = MarkPast(slots, "10:20")

	want := []Slot{
		{Start: "10:00", End: "10:15", Booked: true, Past: true},
		{Start: "10:15", End: "10:30", Booked: true, Past: true},
		{Start: "10:30", End: "10:45", Booked: true},
		{Start: "10:45", End: "11:00"},
	}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("got %+v", slots)
	}
	if _, ok := FindSlot(slots, "10:50"); ok {
		t.Fatal("10:50 is not a slot start")
	}
	if s, ok := FindSlot(slots, "10:15"); !ok || !s.Past {
		t.Fatalf("FindSlot(10:15) = %+v, %v", s, ok)
	}
}
