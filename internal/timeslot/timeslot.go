package timeslot

import "time"

// Slot is one of the six fixed daily time bands.
type Slot string

const (
	MorningRush Slot = "morning_rush"
	MorningLate Slot = "morning_late"
	Afternoon   Slot = "afternoon"
	EveningRush Slot = "evening_rush"
	EveningLate Slot = "evening_late"
	OffPeak     Slot = "off_peak"
)

// kstOffsetHours converts a UTC hour to the local civil hour used for
// classification, independent of the host timezone.
const kstOffsetHours = 9

// HourKST returns the civil hour (0-23) of a timestamp in UTC+9.
func HourKST(t time.Time) int {
	return (t.UTC().Hour() + kstOffsetHours) % 24
}

// Classify maps a timestamp to its time band. Bands are half-open, so a
// boundary hour belongs to the later band (hour 9 is morning_late).
// Hours 22-23 and 0-6 are off_peak by explicit default.
func Classify(t time.Time) Slot {
	hour := HourKST(t)

	switch {
	case hour >= 7 && hour < 9:
		return MorningRush
	case hour >= 9 && hour < 11:
		return MorningLate
	case hour >= 11 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 19:
		return EveningRush
	case hour >= 19 && hour < 22:
		return EveningLate
	default:
		return OffPeak
	}
}

// Current classifies the current instant.
func Current() Slot {
	return Classify(time.Now())
}

// All returns every slot in band order.
func All() []Slot {
	return []Slot{MorningRush, MorningLate, Afternoon, EveningRush, EveningLate, OffPeak}
}

// Valid reports whether s names a known slot.
func Valid(s string) bool {
	for _, slot := range All() {
		if string(slot) == s {
			return true
		}
	}
	return false
}
