package trail

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// SegmentKind identifies which kind of hop a [Segment] describes.
type SegmentKind int

const (
	// KindMapKey is a hop through a map entry or struct field.
	KindMapKey SegmentKind = iota

	// KindSeqIndex is a hop into a sequence element.
	KindSeqIndex

	// KindVariant is a hop into an enum variant payload.
	KindVariant

	// KindUnknown marks a hop whose map key could not be resolved.
	KindUnknown
)

// Segment is a single hop in a [Path]: a map key, a sequence index, an enum
// variant name, or unknown. Segments are comparable values; equality is
// structural.
type Segment struct {
	kind  SegmentKind
	name  string
	index int
}

// MapKey returns a Segment describing a hop through the map entry or struct
// field named key.
func MapKey(key string) Segment {
	return Segment{kind: KindMapKey, name: key}
}

// SeqIndex returns a Segment describing a hop into the sequence element at
// the given zero based index.
func SeqIndex(index int) Segment {
	return Segment{kind: KindSeqIndex, index: index}
}

// Variant returns a Segment describing a hop into the payload of the enum
// variant with the given name.
func Variant(name string) Segment {
	return Segment{kind: KindVariant, name: name}
}

// Unknown returns a Segment for a map entry whose key could not be rendered,
// e.g. because deserializing the key itself failed.
func Unknown() Segment {
	return Segment{kind: KindUnknown}
}

// Kind returns the kind of this Segment.
func (s Segment) Kind() SegmentKind {
	return s.kind
}

// Key returns the map key or variant name of this Segment. It is empty for
// other kinds.
func (s Segment) Key() string {
	return s.name
}

// Index returns the sequence index of this Segment. It is zero for other
// kinds.
func (s Segment) Index() int {
	return s.index
}

func (s Segment) String() string {
	switch s.kind {
	case KindSeqIndex:
		return "[" + strconv.Itoa(s.index) + "]"
	case KindUnknown:
		return "?"
	default:
		return s.name
	}
}

// Path is the ordered sequence of [Segment] values leading from the document
// root to one node. A Path is immutable once built.
type Path struct {
	segments []Segment
}

// NewPath builds a Path from the given segments in root to leaf order.
// The segments are copied.
func NewPath(segments ...Segment) Path {
	return Path{segments: slices.Clone(segments)}
}

// Len returns the number of segments in the Path.
func (p Path) Len() int {
	return len(p.segments)
}

// Segments iterates over the segments of the Path in root to leaf order.
func (p Path) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for _, segment := range p.segments {
			if !yield(segment) {
				break
			}
		}
	}
}

// Equal reports whether both paths consist of the same segment sequence.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p.segments, other.segments)
}

// String renders the Path in dot and bracket notation, e.g.
// "dependencies.serde.version" or "items[3].name". Sequence indices attach
// to the previous segment without a separating dot. The empty Path renders
// as the empty string.
func (p Path) String() string {
	var sb strings.Builder

	for _, segment := range p.segments {
		if segment.kind != KindSeqIndex && sb.Len() > 0 {
			sb.WriteByte('.')
		}

		sb.WriteString(segment.String())
	}

	return sb.String()
}
