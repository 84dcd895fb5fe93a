package appointment

import "time"

// Working window for bookable slots. Slots are generated at SlotInterval
// steps from WorkdayStartHour up to but excluding WorkdayEndHour, so the
// last candidate of a standard day is 17:30.
const (
	WorkdayStartHour = 9
	WorkdayEndHour   = 18
	SlotInterval     = 30 * time.Minute
)

// DaySlots returns every candidate start time of the working window as
// "HH:mm" strings in increasing order.
func DaySlots() []string {
	start := time.Date(0, 1, 1, WorkdayStartHour, 0, 0, 0, time.UTC)
	end := time.Date(0, 1, 1, WorkdayEndHour, 0, 0, 0, time.UTC)

	var slots []string
	for t := start; t.Before(end); t = t.Add(SlotInterval) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots
}

// AvailableSlots returns DaySlots minus the start times of the given
// bookings. Only exact start-time collisions are excluded; a booking's
// duration does not shadow neighbouring slots here, unlike the
// duration-aware conflict check applied at creation. That asymmetry is
// long-standing observed behavior and is kept as-is.
func AvailableSlots(booked []*Appointment) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, a := range booked {
		taken[a.ScheduledAt.Format("15:04")] = struct{}{}
	}

	var available []string
	for _, slot := range DaySlots() {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}
	return available
}

// WithinWorkingHours reports whether t falls inside the bookable window.
// The window is half-open, so nothing at or past WorkdayEndHour books.
func WithinWorkingHours(t time.Time) bool {
	h := t.Hour()
	return h >= WorkdayStartHour && h < WorkdayEndHour
}
