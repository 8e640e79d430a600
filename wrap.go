package trail

// Deserialize runs seed against the given backend with path tracking. On
// success the produced value is returned unchanged, exactly as seed would
// have produced it against the bare backend. On failure the returned error
// is an [*Error] pairing the backend's error with the path from the document
// root to the failing value.
func Deserialize(de Deserializer, seed Seed) (any, error) {
	track := NewTrack()

	value, err := seed(Wrap(de, track))
	if err != nil {
		return nil, NewError(track.Snapshot(), err)
	}

	return value, nil
}

// Wrap decorates a backend Deserializer so that every key, index and variant
// streaming past is recorded on track. Most callers want [Deserialize]
// instead; Wrap is for consumers that manage their own Track, e.g. to attach
// the path to an error type of their own.
func Wrap(de Deserializer, track *Track) Deserializer {
	return trackedDeserializer{de: de, track: track}
}

// trackedDeserializer forwards every request to the backend untouched,
// substituting the caller's visitor with a tracked one. It never pushes or
// pops the track itself; only the access decorators observe which key,
// index or variant is being entered.
type trackedDeserializer struct {
	de    Deserializer
	track *Track
}

func (d trackedDeserializer) visitor(v Visitor) Visitor {
	return trackedVisitor{v: v, track: d.track}
}

func (d trackedDeserializer) DeserializeAny(v Visitor) (any, error) {
	return d.de.DeserializeAny(d.visitor(v))
}

func (d trackedDeserializer) DeserializeBool(v Visitor) (any, error) {
	return d.de.DeserializeBool(d.visitor(v))
}

func (d trackedDeserializer) DeserializeInt(v Visitor) (any, error) {
	return d.de.DeserializeInt(d.visitor(v))
}

func (d trackedDeserializer) DeserializeUint(v Visitor) (any, error) {
	return d.de.DeserializeUint(d.visitor(v))
}

func (d trackedDeserializer) DeserializeFloat(v Visitor) (any, error) {
	return d.de.DeserializeFloat(d.visitor(v))
}

func (d trackedDeserializer) DeserializeString(v Visitor) (any, error) {
	return d.de.DeserializeString(d.visitor(v))
}

func (d trackedDeserializer) DeserializeBytes(v Visitor) (any, error) {
	return d.de.DeserializeBytes(d.visitor(v))
}

func (d trackedDeserializer) DeserializeOption(v Visitor) (any, error) {
	return d.de.DeserializeOption(d.visitor(v))
}

func (d trackedDeserializer) DeserializeSeq(v Visitor) (any, error) {
	return d.de.DeserializeSeq(d.visitor(v))
}

func (d trackedDeserializer) DeserializeTuple(size int, v Visitor) (any, error) {
	return d.de.DeserializeTuple(size, d.visitor(v))
}

func (d trackedDeserializer) DeserializeMap(v Visitor) (any, error) {
	return d.de.DeserializeMap(d.visitor(v))
}

func (d trackedDeserializer) DeserializeStruct(name string, fields []string, v Visitor) (any, error) {
	return d.de.DeserializeStruct(name, fields, d.visitor(v))
}

func (d trackedDeserializer) DeserializeEnum(name string, variants []string, v Visitor) (any, error) {
	return d.de.DeserializeEnum(name, variants, d.visitor(v))
}

func (d trackedDeserializer) DeserializeIdentifier(v Visitor) (any, error) {
	return d.de.DeserializeIdentifier(d.visitor(v))
}
