package trail

import (
	"fmt"
	"strconv"
)

// trackedVisitor forwards scalar visits verbatim. A lone scalar carries no
// structure worth tracking. Composite visits wrap the backend's access
// object before handing it to the real visitor, since only the access layer
// observes individual keys, indices and variants as they are produced.
type trackedVisitor struct {
	v     Visitor
	track *Track
}

func (t trackedVisitor) VisitBool(value bool) (any, error) {
	return t.v.VisitBool(value)
}

func (t trackedVisitor) VisitInt(value int64) (any, error) {
	return t.v.VisitInt(value)
}

func (t trackedVisitor) VisitUint(value uint64) (any, error) {
	return t.v.VisitUint(value)
}

func (t trackedVisitor) VisitFloat(value float64) (any, error) {
	return t.v.VisitFloat(value)
}

func (t trackedVisitor) VisitString(value string) (any, error) {
	return t.v.VisitString(value)
}

func (t trackedVisitor) VisitBytes(value []byte) (any, error) {
	return t.v.VisitBytes(value)
}

func (t trackedVisitor) VisitNil() (any, error) {
	return t.v.VisitNil()
}

func (t trackedVisitor) VisitSome(de Deserializer) (any, error) {
	return t.v.VisitSome(Wrap(de, t.track))
}

func (t trackedVisitor) VisitSeq(seq SeqAccess) (any, error) {
	return t.v.VisitSeq(&trackedSeqAccess{seq: seq, track: t.track})
}

func (t trackedVisitor) VisitMap(m MapAccess) (any, error) {
	return t.v.VisitMap(&trackedMapAccess{m: m, track: t.track})
}

func (t trackedVisitor) VisitEnum(e EnumAccess) (any, error) {
	return t.v.VisitEnum(&trackedEnumAccess{e: e, track: t.track})
}

// nested re-wraps the Deserializer a seed will receive, so structure inside
// an element stays on the same track.
func nested(seed Seed, track *Track) Seed {
	return func(de Deserializer) (any, error) {
		return seed(Wrap(de, track))
	}
}

type trackedSeqAccess struct {
	seq   SeqAccess
	track *Track
	index int
}

func (t *trackedSeqAccess) NextElement(seed Seed) (any, bool, error) {
	t.track.Push(SeqIndex(t.index))

	value, ok, err := t.seq.NextElement(nested(seed, t.track))
	if err != nil {
		return nil, false, err
	}

	if ok {
		t.index++
	}

	// exhaustion counts as success, the speculative index must not leak
	t.track.Pop()

	return value, ok, nil
}

type trackedMapAccess struct {
	m     MapAccess
	track *Track
}

func (t *trackedMapAccess) NextKey(seed Seed) (any, bool, error) {
	var capture capturedKey

	key, ok, err := t.m.NextKey(capture.seed(seed))
	if err != nil {
		// the key itself could not be resolved. push Unknown so the
		// error still carries some path.
		t.track.Push(Unknown())
		return nil, false, err
	}

	if !ok {
		return nil, false, nil
	}

	t.track.Push(capture.segment())

	return key, true, nil
}

func (t *trackedMapAccess) NextValue(seed Seed) (any, error) {
	value, err := t.m.NextValue(nested(seed, t.track))
	if err != nil {
		return nil, err
	}

	t.track.Pop()

	return value, nil
}

type trackedEnumAccess struct {
	e        EnumAccess
	track    *Track
	variant  string
	resolved bool
}

func (t *trackedEnumAccess) Variant() (string, error) {
	name, err := t.e.Variant()
	if err != nil {
		return "", err
	}

	t.variant = name
	t.resolved = true

	return name, nil
}

func (t *trackedEnumAccess) Payload(seed Seed) (any, error) {
	// a consumer that skips Variant leaves us without a name to report
	segment := Unknown()
	if t.resolved {
		segment = Variant(t.variant)
	}

	t.track.Push(segment)

	value, err := t.e.Payload(nested(seed, t.track))
	if err != nil {
		return nil, err
	}

	t.track.Pop()

	return value, nil
}

// capturedKey watches a key deserialization go past and derives a display
// form for the MapKey segment. Strings are used directly, other scalars
// through their display form. Keys that never produce a scalar stay Unknown.
type capturedKey struct {
	set     bool
	display string
}

func (c *capturedKey) record(display string) {
	c.set = true
	c.display = display
}

func (c *capturedKey) segment() Segment {
	if !c.set {
		return Unknown()
	}

	return MapKey(c.display)
}

// seed interposes a capturing deserializer between the backend and the
// consumer's key seed.
func (c *capturedKey) seed(seed Seed) Seed {
	return func(de Deserializer) (any, error) {
		return seed(captureDeserializer{de: de, capture: c})
	}
}

// captureDeserializer forwards every request to the backend, teeing scalar
// visits into the capture on the way back to the consumer's visitor.
type captureDeserializer struct {
	de      Deserializer
	capture *capturedKey
}

func (d captureDeserializer) visitor(v Visitor) Visitor {
	return captureVisitor{v: v, capture: d.capture}
}

func (d captureDeserializer) DeserializeAny(v Visitor) (any, error) {
	return d.de.DeserializeAny(d.visitor(v))
}

func (d captureDeserializer) DeserializeBool(v Visitor) (any, error) {
	return d.de.DeserializeBool(d.visitor(v))
}

func (d captureDeserializer) DeserializeInt(v Visitor) (any, error) {
	return d.de.DeserializeInt(d.visitor(v))
}

func (d captureDeserializer) DeserializeUint(v Visitor) (any, error) {
	return d.de.DeserializeUint(d.visitor(v))
}

func (d captureDeserializer) DeserializeFloat(v Visitor) (any, error) {
	return d.de.DeserializeFloat(d.visitor(v))
}

func (d captureDeserializer) DeserializeString(v Visitor) (any, error) {
	return d.de.DeserializeString(d.visitor(v))
}

func (d captureDeserializer) DeserializeBytes(v Visitor) (any, error) {
	return d.de.DeserializeBytes(d.visitor(v))
}

func (d captureDeserializer) DeserializeOption(v Visitor) (any, error) {
	return d.de.DeserializeOption(d.visitor(v))
}

func (d captureDeserializer) DeserializeSeq(v Visitor) (any, error) {
	return d.de.DeserializeSeq(d.visitor(v))
}

func (d captureDeserializer) DeserializeTuple(size int, v Visitor) (any, error) {
	return d.de.DeserializeTuple(size, d.visitor(v))
}

func (d captureDeserializer) DeserializeMap(v Visitor) (any, error) {
	return d.de.DeserializeMap(d.visitor(v))
}

func (d captureDeserializer) DeserializeStruct(name string, fields []string, v Visitor) (any, error) {
	return d.de.DeserializeStruct(name, fields, d.visitor(v))
}

func (d captureDeserializer) DeserializeEnum(name string, variants []string, v Visitor) (any, error) {
	return d.de.DeserializeEnum(name, variants, d.visitor(v))
}

func (d captureDeserializer) DeserializeIdentifier(v Visitor) (any, error) {
	return d.de.DeserializeIdentifier(d.visitor(v))
}

type captureVisitor struct {
	v       Visitor
	capture *capturedKey
}

func (c captureVisitor) VisitBool(value bool) (any, error) {
	c.capture.record(strconv.FormatBool(value))
	return c.v.VisitBool(value)
}

func (c captureVisitor) VisitInt(value int64) (any, error) {
	c.capture.record(strconv.FormatInt(value, 10))
	return c.v.VisitInt(value)
}

func (c captureVisitor) VisitUint(value uint64) (any, error) {
	c.capture.record(strconv.FormatUint(value, 10))
	return c.v.VisitUint(value)
}

func (c captureVisitor) VisitFloat(value float64) (any, error) {
	c.capture.record(strconv.FormatFloat(value, 'g', -1, 64))
	return c.v.VisitFloat(value)
}

func (c captureVisitor) VisitString(value string) (any, error) {
	c.capture.record(value)
	return c.v.VisitString(value)
}

func (c captureVisitor) VisitBytes(value []byte) (any, error) {
	// best effort, bytes rarely make readable keys
	c.capture.record(fmt.Sprintf("%v", value))
	return c.v.VisitBytes(value)
}

func (c captureVisitor) VisitNil() (any, error) {
	return c.v.VisitNil()
}

func (c captureVisitor) VisitSome(de Deserializer) (any, error) {
	return c.v.VisitSome(de)
}

func (c captureVisitor) VisitSeq(seq SeqAccess) (any, error) {
	return c.v.VisitSeq(seq)
}

func (c captureVisitor) VisitMap(m MapAccess) (any, error) {
	return c.v.VisitMap(m)
}

func (c captureVisitor) VisitEnum(e EnumAccess) (any, error) {
	return c.v.VisitEnum(e)
}
