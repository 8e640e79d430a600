package trail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testPackage struct {
	Name         string                    `json:"name"`
	Dependencies map[string]testDependency `json:"dependencies"`
}

type testDependency struct {
	Version string `json:"version"`
}

// pathOf extracts the reported path from an Unmarshal or Deserialize error.
func pathOf(t *testing.T, err error) Path {
	t.Helper()

	var pathErr *Error
	require.ErrorAs(t, err, &pathErr)

	return pathErr.Path()
}

func TestPathNestedMapKey(t *testing.T) {
	source := FromValue(map[string]any{
		"name": "demo",
		"dependencies": map[string]any{
			"serde": map[string]any{
				"version": 1,
			},
		},
	})

	_, err := UnmarshalNew[testPackage](source)
	require.Error(t, err)

	path := pathOf(t, err)
	require.Equal(t, "dependencies.serde.version", path.String())
	require.Equal(t, "dependencies.serde.version: unexpected int, want string", err.Error())
}

func TestPathSeqIndex(t *testing.T) {
	source := FromValue([]any{1, 2, "x", 4})

	_, err := UnmarshalNew[[]int64](source)
	require.Error(t, err)
	require.Equal(t, "[2]", pathOf(t, err).String())
}

func TestPathNestedSeq(t *testing.T) {
	source := FromValue(map[string]any{
		"rows": []any{
			[]any{1, 2},
			[]any{3, "x"},
		},
	})

	_, err := UnmarshalNew[map[string][][]int64](source)
	require.Error(t, err)
	require.Equal(t, "rows[1][1]", pathOf(t, err).String())
}

func TestPathTopLevelField(t *testing.T) {
	type target struct {
		A int32 `json:"a"`
	}

	source := FromValue(map[string]any{"a": "x"})

	_, err := UnmarshalNew[target](source)
	require.Error(t, err)
	require.Equal(t, "a", pathOf(t, err).String())
}

// intPayloadVisitor accepts an enum whose payload must be an int.
type intPayloadVisitor struct {
	UnexpectedVisitor
}

func (v intPayloadVisitor) VisitEnum(e EnumAccess) (any, error) {
	name, err := e.Variant()
	if err != nil {
		return nil, err
	}

	if name != "Foo" {
		return nil, errors.New("unknown variant " + name)
	}

	return e.Payload(func(de Deserializer) (any, error) {
		return de.DeserializeInt(int64Visitor{UnexpectedVisitor{Want: "int"}})
	})
}

type int64Visitor struct {
	UnexpectedVisitor
}

func (v int64Visitor) VisitInt(value int64) (any, error) {
	return value, nil
}

func TestPathEnumVariant(t *testing.T) {
	seed := func(de Deserializer) (any, error) {
		return de.DeserializeEnum("Value", []string{"Foo"}, intPayloadVisitor{UnexpectedVisitor{Want: "enum"}})
	}

	_, err := Deserialize(FromValue(map[string]any{"Foo": "x"}), seed)
	require.Error(t, err)
	require.Equal(t, "Foo", pathOf(t, err).String())

	value, err := Deserialize(FromValue(map[string]any{"Foo": 42}), seed)
	require.NoError(t, err)
	require.Equal(t, int64(42), value)
}

// payloadOnlyVisitor skips Variant and asks for the payload directly.
type payloadOnlyVisitor struct {
	UnexpectedVisitor
}

func (v payloadOnlyVisitor) VisitEnum(e EnumAccess) (any, error) {
	return e.Payload(func(de Deserializer) (any, error) {
		return de.DeserializeInt(int64Visitor{UnexpectedVisitor{Want: "int"}})
	})
}

func TestEnumPayloadWithoutVariantName(t *testing.T) {
	seed := func(de Deserializer) (any, error) {
		return de.DeserializeEnum("Value", []string{"Foo"}, payloadOnlyVisitor{UnexpectedVisitor{Want: "enum"}})
	}

	_, err := Deserialize(FromValue(map[string]any{"Foo": "x"}), seed)
	require.Error(t, err)

	// with no resolved variant name the failing payload reports Unknown
	path := pathOf(t, err)
	require.Equal(t, "?", path.String())
	require.Equal(t, KindUnknown, firstSegment(path).Kind())
}

func TestSuccessPassThrough(t *testing.T) {
	tree := map[string]any{
		"name":     "demo",
		"accepted": true,
		"scores":   []any{1, 2, 3},
		"nested":   map[string]any{"pi": 3.14},
	}

	// the decorated run must produce exactly what the bare backend produces
	bare, err := anyValue(FromValue(tree))
	require.NoError(t, err)

	decorated, err := Deserialize(FromValue(tree), anyValue)
	require.NoError(t, err)

	require.Equal(t, bare, decorated)
}

func TestRootFailureEmptyPath(t *testing.T) {
	var target int64
	err := Unmarshal(FromValue("x"), &target)
	require.Error(t, err)

	path := pathOf(t, err)
	require.Equal(t, 0, path.Len())
	require.Equal(t, "", path.String())

	// no leading separator when the path is empty
	require.Equal(t, "unexpected string, want int", err.Error())
}

func TestTrackEmptyAfterSuccess(t *testing.T) {
	tree := map[string]any{
		"items": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		},
	}

	track := NewTrack()

	value, err := anyValue(Wrap(FromValue(tree), track))
	require.NoError(t, err)
	require.NotNil(t, value)

	require.Equal(t, 0, track.Depth())
}

type deepMap map[string]deepMap

func TestDeepNestingPath(t *testing.T) {
	const depth = 50

	tree := any("x")
	for range depth {
		tree = map[string]any{"a": tree}
	}

	var target deepMap
	err := Unmarshal(FromValue(tree), &target)
	require.Error(t, err)

	path := pathOf(t, err)
	require.Equal(t, depth, path.Len())

	for segment := range path.Segments() {
		require.Equal(t, MapKey("a"), segment)
	}
}

func TestNonStringKeySegment(t *testing.T) {
	source := FromValue(map[any]any{
		7: map[any]any{
			"version": true,
		},
	})

	var target map[int64]map[string]string
	err := Unmarshal(source, &target)
	require.Error(t, err)
	require.Equal(t, "7.version", pathOf(t, err).String())
}

func TestUnknownKeySegment(t *testing.T) {
	// the key itself can not be deserialized into an int
	source := FromValue(map[any]any{true: "x"})

	var target map[int64]string
	err := Unmarshal(source, &target)
	require.Error(t, err)

	path := pathOf(t, err)
	require.Equal(t, "?", path.String())
	require.Equal(t, KindUnknown, firstSegment(path).Kind())
}

func firstSegment(path Path) Segment {
	for segment := range path.Segments() {
		return segment
	}

	panic("empty path")
}

func TestErrorExposesBackendError(t *testing.T) {
	source := FromValue(map[string]any{"a": "x"})

	var target struct {
		A bool `json:"a"`
	}

	err := Unmarshal(source, &target)
	require.Error(t, err)

	var unexpected *UnexpectedTypeError
	require.ErrorAs(t, err, &unexpected)
	require.Equal(t, "bool", unexpected.Want)
	require.Equal(t, "string", unexpected.Got)
}

func TestManualTrack(t *testing.T) {
	source := FromValue(map[string]any{"values": []any{1, "two", 3}})

	track := NewTrack()
	de := Wrap(source, track)

	_, err := de.DeserializeMap(failOnStringVisitor{UnexpectedVisitor{Want: "map"}})
	require.Error(t, err)

	// the caller snapshots the track and attaches the path itself
	pathErr := NewError(track.Snapshot(), err)
	require.Equal(t, "values[1]", pathErr.Path().String())
	require.ErrorIs(t, pathErr, err)
}

// failOnStringVisitor drains maps and sequences of ints, failing on the
// first string it encounters.
type failOnStringVisitor struct {
	UnexpectedVisitor
}

func (v failOnStringVisitor) VisitMap(m MapAccess) (any, error) {
	for {
		_, ok, err := m.NextKey(identifierValue)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, nil
		}

		if _, err := m.NextValue(func(de Deserializer) (any, error) {
			return de.DeserializeSeq(failOnStringVisitor{UnexpectedVisitor{Want: "sequence"}})
		}); err != nil {
			return nil, err
		}
	}
}

func (v failOnStringVisitor) VisitSeq(seq SeqAccess) (any, error) {
	for {
		_, ok, err := seq.NextElement(func(de Deserializer) (any, error) {
			return de.DeserializeInt(int64Visitor{UnexpectedVisitor{Want: "int"}})
		})
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, nil
		}
	}
}
