package domain

import "time"

// TimeRange is a half-open interval [Start, End)
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// IsValid returns true if the range is non-empty
func (r TimeRange) IsValid() bool {
	return r.End.After(r.Start)
}

// Overlaps checks a real intersection of two half-open ranges.
// Ranges that only touch (one ends exactly where the other starts) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Interval is a booked [Start, End) with buffers kept around it
type Interval struct {
	Start        time.Time
	End          time.Time
	BufferBefore time.Duration
	BufferAfter  time.Duration
}

// NewInterval builds an interval from buffer minutes
func NewInterval(start, end time.Time, bufferBeforeMinutes, bufferAfterMinutes int) Interval {
	return Interval{
		Start:        start,
		End:          end,
		BufferBefore: time.Duration(bufferBeforeMinutes) * time.Minute,
		BufferAfter:  time.Duration(bufferAfterMinutes) * time.Minute,
	}
}

// Occupied returns [Start - BufferBefore, End + BufferAfter)
func (i Interval) Occupied() TimeRange {
	return TimeRange{
		Start: i.Start.Add(-i.BufferBefore),
		End:   i.End.Add(i.BufferAfter),
	}
}

// Overlaps compares occupied intervals
func (i Interval) Overlaps(other Interval) bool {
	return i.Occupied().Overlaps(other.Occupied())
}

// ComputeEnd returns start + duration + sum of addon extra minutes
func ComputeEnd(start time.Time, durationMinutes int, addons []BookingAddon) time.Time {
	total := durationMinutes
	for _, a := range addons {
		total += a.ExtraDurationMinutesSnapshot
	}
	return start.Add(time.Duration(total) * time.Minute)
}
