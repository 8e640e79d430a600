package trail

// Track is the mutable ledger of currently open [Segment] values for one
// top-level [Deserialize] call. The access decorators push a segment before
// descending into an element and pop it only once that element has resolved
// successfully, so at any instant the Track mirrors the path from the
// document root to the value under construction. A failing descent leaves
// its segments in place, which is exactly the path reported by the error.
//
// A Track belongs to exactly one call. It must not be shared across
// concurrent invocations; every call creates its own.
type Track struct {
	segments []Segment
}

// NewTrack returns an empty Track.
func NewTrack() *Track {
	return &Track{}
}

// Push appends a segment to the open end of the Track.
func (t *Track) Push(segment Segment) {
	t.segments = append(t.segments, segment)
}

// Pop removes the most recently pushed segment. Callers invoke it only after
// the guarded nested operation has succeeded; a failing operation leaves the
// segment in place.
func (t *Track) Pop() {
	if len(t.segments) == 0 {
		panic("pop on empty track")
	}

	t.segments = t.segments[:len(t.segments)-1]
}

// Depth returns the number of currently open segments.
func (t *Track) Depth() int {
	return len(t.segments)
}

// Snapshot returns the currently open segments as an immutable [Path],
// root to leaf. Later pushes and pops do not affect the returned Path.
func (t *Track) Snapshot() Path {
	return NewPath(t.segments...)
}
