package trail

import (
	"fmt"
	"maps"
	"slices"
)

// ValueSource adapts a decoded value tree to the [Deserializer] protocol.
// It handles the value shapes the usual parsers produce: nil, bool, the int
// and float kinds, string, []byte, []any and maps. Map entries are delivered
// in sorted key order, so errors are deterministic.
//
// ValueSource is self describing and ignores most shape hints, much like a
// JSON backend would. [Deserializer.DeserializeOption] maps nil onto a
// missing value, and [Deserializer.DeserializeEnum] interprets a string as a
// unit variant and a single entry map as an externally tagged variant over
// its payload.
type ValueSource struct {
	value any
}

var _ Deserializer = ValueSource{}

// FromValue adapts a decoded value tree, e.g. the output of a json or yaml
// parser, to the [Deserializer] protocol.
func FromValue(value any) ValueSource {
	return ValueSource{value: value}
}

func (s ValueSource) visitValue(v Visitor) (any, error) {
	switch value := s.value.(type) {
	case nil:
		return v.VisitNil()

	case bool:
		return v.VisitBool(value)

	case int:
		return v.VisitInt(int64(value))

	case int8:
		return v.VisitInt(int64(value))

	case int16:
		return v.VisitInt(int64(value))

	case int32:
		return v.VisitInt(int64(value))

	case int64:
		return v.VisitInt(value)

	case uint:
		return v.VisitUint(uint64(value))

	case uint8:
		return v.VisitUint(uint64(value))

	case uint16:
		return v.VisitUint(uint64(value))

	case uint32:
		return v.VisitUint(uint64(value))

	case uint64:
		return v.VisitUint(value)

	case float32:
		return v.VisitFloat(float64(value))

	case float64:
		return v.VisitFloat(value)

	case string:
		return v.VisitString(value)

	case []byte:
		return v.VisitBytes(value)

	case []any:
		return v.VisitSeq(&valueSeqAccess{elements: value})

	case map[string]any:
		keys := slices.Sorted(maps.Keys(value))
		return v.VisitMap(&valueMapAccess{keys: keys, lookup: func(key string) any {
			return value[key]
		}})

	case map[any]any:
		// non string keys render best effort through their display form
		byDisplay := make(map[string]any, len(value))
		for key, entry := range value {
			byDisplay[fmt.Sprint(key)] = keyedEntry{key: key, value: entry}
		}

		keys := slices.Sorted(maps.Keys(byDisplay))
		return v.VisitMap(&valueMapAccess{keys: keys, raw: true, lookup: func(key string) any {
			return byDisplay[key]
		}})

	default:
		return nil, fmt.Errorf("value of type %T: %w", value, ErrNotSupported)
	}
}

func (s ValueSource) DeserializeAny(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeBool(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeInt(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeUint(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeFloat(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeString(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeBytes(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeOption(v Visitor) (any, error) {
	if s.value == nil {
		return v.VisitNil()
	}

	return v.VisitSome(s)
}

func (s ValueSource) DeserializeSeq(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeTuple(size int, v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeMap(v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeStruct(name string, fields []string, v Visitor) (any, error) {
	return s.visitValue(v)
}

func (s ValueSource) DeserializeEnum(name string, variants []string, v Visitor) (any, error) {
	switch value := s.value.(type) {
	case string:
		// a bare string is a unit variant
		return v.VisitEnum(&valueEnumAccess{name: value})

	case map[string]any:
		if len(value) != 1 {
			return nil, fmt.Errorf("enum from map with %d entries: %w", len(value), ErrNotSupported)
		}

		for variant, payload := range value {
			return v.VisitEnum(&valueEnumAccess{name: variant, payload: payload})
		}

		panic("unreachable")

	default:
		return nil, fmt.Errorf("enum from value of type %T: %w", value, ErrNotSupported)
	}
}

func (s ValueSource) DeserializeIdentifier(v Visitor) (any, error) {
	return s.visitValue(v)
}

type valueSeqAccess struct {
	elements []any
	index    int
}

func (a *valueSeqAccess) NextElement(seed Seed) (any, bool, error) {
	if a.index >= len(a.elements) {
		return nil, false, nil
	}

	element := a.elements[a.index]
	a.index++

	value, err := seed(FromValue(element))
	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

// keyedEntry keeps the original key of a non string keyed map entry next to
// its value, so NextKey can deliver the key typed as the document had it.
type keyedEntry struct {
	key   any
	value any
}

type valueMapAccess struct {
	keys   []string
	lookup func(key string) any
	raw    bool
	index  int
}

func (a *valueMapAccess) NextKey(seed Seed) (any, bool, error) {
	if a.index >= len(a.keys) {
		return nil, false, nil
	}

	key := any(a.keys[a.index])
	if a.raw {
		key = a.lookup(a.keys[a.index]).(keyedEntry).key
	}

	value, err := seed(FromValue(key))
	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

func (a *valueMapAccess) NextValue(seed Seed) (any, error) {
	entry := a.lookup(a.keys[a.index])
	a.index++

	if a.raw {
		entry = entry.(keyedEntry).value
	}

	return seed(FromValue(entry))
}

type valueEnumAccess struct {
	name    string
	payload any
}

func (a *valueEnumAccess) Variant() (string, error) {
	return a.name, nil
}

func (a *valueEnumAccess) Payload(seed Seed) (any, error) {
	return seed(FromValue(a.payload))
}
