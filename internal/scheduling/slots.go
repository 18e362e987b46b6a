package scheduling

import (
	"errors"
	"fmt"
)

var ErrInvalidSlotLength = errors.New("slot length must be positive")

// Slot is one bookable interval of a doctor's day. Slots are never stored;
// they are derived from working hours on every request.
type Slot struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Booked bool   `json:"booked"`
	Past   bool   `json:"past,omitempty"`
}

// Grid holds the hospital-wide slot parameters. Booking and reschedule views
// must use the same Grid so both agree on what a slot start means.
type Grid struct {
	SlotLength  int    // minutes
	LunchStart  string // clock string
	LunchLength int    // minutes
}

// Generate builds the slot grid for a doctor's working window.
func (g Grid) Generate(workStart, workEnd string) ([]Slot, error) {
	return GenerateSlots(workStart, workEnd, g.SlotLength, g.LunchStart, g.LunchLength)
}

// GenerateSlots walks [workStart, workEnd) in steps of slotLength minutes.
// Slots overlapping the lunch window are skipped entirely and a trailing
// partial slot is never emitted. Every slot comes back with Booked=false.
func GenerateSlots(workStart, workEnd string, slotLength int, lunchStart string, lunchLength int) ([]Slot, error) {
	if slotLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlotLength, slotLength)
	}

	startMin, err := ParseClock(workStart)
	if err != nil {
		return nil, err
	}
	endMin, err := ParseClock(workEnd)
	if err != nil {
		return nil, err
	}
	lunchMin, err := ParseClock(lunchStart)
	if err != nil {
		return nil, err
	}
	lunchEnd := lunchMin + lunchLength

	if endMin <= startMin {
		return []Slot{}, nil
	}

	slots := make([]Slot, 0, (endMin-startMin)/slotLength+1)
	for cursor := startMin; cursor+slotLength <= endMin; cursor += slotLength {
		slotStart, slotEnd := cursor, cursor+slotLength
		if slotStart < lunchEnd && slotEnd > lunchMin {
			continue
		}
		slots = append(slots, Slot{
			Start: FormatClock(slotStart),
			End:   FormatClock(slotEnd),
		})
	}

	return slots, nil
}

// MarkBooked flags every slot whose start appears in bookedTimes.
func MarkBooked(slots []Slot, bookedTimes []string) []Slot {
	booked := make(map[string]struct{}, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = struct{}{}
	}
	for i := range slots {
		if _, ok := booked[slots[i].Start]; ok {
			slots[i].Booked = true
		}
	}
	return slots
}

// MarkPast greys out slots that start before nowClock ("HH:MM").
// Past slots are kept in the grid but reported as booked.
func MarkPast(slots []Slot, nowClock string) []Slot {
	for i := range slots {
		if slots[i].Start < nowClock {
			slots[i].Past = true
			slots[i].Booked = true
		}
	}
	return slots
}

// FindSlot returns the slot beginning at start.
func FindSlot(slots []Slot, start string) (Slot, bool) {
	for _, s := range slots {
		if s.Start == start {
			return s, true
		}
	}
	return Slot{}, false
}
