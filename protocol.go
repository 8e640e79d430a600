package trail

// Seed builds one value out of a [Deserializer]. It is the hook through which
// the composite access interfaces hand a nested value back to the consumer:
// the backend supplies a Deserializer positioned on the element, the Seed
// drives it and returns whatever it constructed.
//
// Seeds nest naturally. A Seed for a struct field is usually a closure over
// the field's target that calls back into the same machinery with the
// element's Deserializer.
type Seed func(de Deserializer) (any, error)

// Deserializer represents the abstract interface to a pull-based
// deserialization backend. It defines one operation per primitive or
// composite shape; each operation interprets the current value as that shape
// and delivers it through the given [Visitor], returning whatever the
// visitor produced.
//
// A self-describing backend (JSON, YAML, a decoded value tree) is free to
// ignore the shape hint and dispatch on the data itself; the hints exist for
// backends that need them, e.g. positional or binary formats.
//
// There is no requirement for a Deserializer to be reusable: a streaming
// implementation may only support a single pass over its input.
type Deserializer interface {
	// DeserializeAny lets the backend pick the shape from the data.
	DeserializeAny(v Visitor) (any, error)

	DeserializeBool(v Visitor) (any, error)
	DeserializeInt(v Visitor) (any, error)
	DeserializeUint(v Visitor) (any, error)
	DeserializeFloat(v Visitor) (any, error)
	DeserializeString(v Visitor) (any, error)
	DeserializeBytes(v Visitor) (any, error)

	// DeserializeOption interprets the current value as an optional one,
	// calling either [Visitor.VisitNil] or [Visitor.VisitSome].
	DeserializeOption(v Visitor) (any, error)

	// DeserializeSeq interprets the current value as a sequence and hands a
	// [SeqAccess] to [Visitor.VisitSeq].
	DeserializeSeq(v Visitor) (any, error)

	// DeserializeTuple is DeserializeSeq for a sequence of known size.
	DeserializeTuple(size int, v Visitor) (any, error)

	// DeserializeMap interprets the current value as a map and hands a
	// [MapAccess] to [Visitor.VisitMap].
	DeserializeMap(v Visitor) (any, error)

	// DeserializeStruct is DeserializeMap with the target's name and field
	// names as hints.
	DeserializeStruct(name string, fields []string, v Visitor) (any, error)

	// DeserializeEnum interprets the current value as an externally tagged
	// variant and hands an [EnumAccess] to [Visitor.VisitEnum].
	DeserializeEnum(name string, variants []string, v Visitor) (any, error)

	// DeserializeIdentifier interprets the current value as a map key or
	// variant identifier.
	DeserializeIdentifier(v Visitor) (any, error)
}

// Visitor is the consumer half of the protocol: one visit per shape the
// backend may deliver. The backend calls exactly one visit method per
// [Deserializer] operation.
//
// Implementations rarely support every shape. Embed [UnexpectedVisitor] to
// fail cleanly for everything not overridden.
type Visitor interface {
	VisitBool(value bool) (any, error)
	VisitInt(value int64) (any, error)
	VisitUint(value uint64) (any, error)
	VisitFloat(value float64) (any, error)
	VisitString(value string) (any, error)
	VisitBytes(value []byte) (any, error)

	// VisitNil is called for null, none and unit values.
	VisitNil() (any, error)

	// VisitSome is called for an optional value that is present. The given
	// Deserializer is positioned on the inner value.
	VisitSome(de Deserializer) (any, error)

	VisitSeq(seq SeqAccess) (any, error)
	VisitMap(m MapAccess) (any, error)
	VisitEnum(e EnumAccess) (any, error)
}

// SeqAccess delivers the elements of a sequence one at a time.
type SeqAccess interface {
	// NextElement deserializes the next element of the sequence through
	// seed. ok is false once the sequence is exhausted; seed is not invoked
	// in that case.
	NextElement(seed Seed) (value any, ok bool, err error)
}

// MapAccess delivers the entries of a map as alternating key and value
// calls. Consumers call NextKey and, if it yielded a key, NextValue exactly
// once before the next NextKey.
type MapAccess interface {
	// NextKey deserializes the next key of the map through seed. ok is
	// false once the map is exhausted; seed is not invoked in that case.
	NextKey(seed Seed) (key any, ok bool, err error)

	// NextValue deserializes the value belonging to the most recently
	// yielded key through seed.
	NextValue(seed Seed) (value any, err error)
}

// EnumAccess delivers one externally tagged variant: first the identifier,
// then the payload.
type EnumAccess interface {
	// Variant resolves the name of the variant.
	Variant() (string, error)

	// Payload deserializes the payload of the resolved variant through
	// seed. Unit variants deliver a nil payload. Call Variant first:
	// without a resolved name an error in the payload is reported at an
	// unknown segment.
	Payload(seed Seed) (value any, err error)
}
