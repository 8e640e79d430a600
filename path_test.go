package trail

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathString(t *testing.T) {
	testcases := []struct {
		Name     string
		Path     Path
		Expected string
	}{
		{
			Name:     "empty",
			Path:     NewPath(),
			Expected: "",
		},
		{
			Name:     "keys only",
			Path:     NewPath(MapKey("dependencies"), MapKey("serde"), MapKey("version")),
			Expected: "dependencies.serde.version",
		},
		{
			Name:     "index attaches without dot",
			Path:     NewPath(MapKey("items"), SeqIndex(3), MapKey("name")),
			Expected: "items[3].name",
		},
		{
			Name:     "index at the root",
			Path:     NewPath(SeqIndex(2)),
			Expected: "[2]",
		},
		{
			Name:     "nested indices",
			Path:     NewPath(MapKey("rows"), SeqIndex(1), SeqIndex(0)),
			Expected: "rows[1][0]",
		},
		{
			Name:     "variant",
			Path:     NewPath(MapKey("job"), Variant("Cron"), MapKey("schedule")),
			Expected: "job.Cron.schedule",
		},
		{
			Name:     "unknown key",
			Path:     NewPath(MapKey("outer"), Unknown()),
			Expected: "outer.?",
		},
	}

	for _, testcase := range testcases {
		t.Run(testcase.Name, func(t *testing.T) {
			require.Equal(t, testcase.Expected, testcase.Path.String())

			// rendering must be stable
			require.Equal(t, testcase.Path.String(), testcase.Path.String())
		})
	}
}

func TestPathEqual(t *testing.T) {
	a := NewPath(MapKey("a"), SeqIndex(1))
	b := NewPath(MapKey("a"), SeqIndex(1))
	c := NewPath(MapKey("a"), SeqIndex(1))

	require.True(t, a.Equal(a))
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))
	require.True(t, b.Equal(c))
	require.True(t, a.Equal(c))

	require.False(t, a.Equal(NewPath(MapKey("a"), SeqIndex(2))))
	require.False(t, a.Equal(NewPath(MapKey("a"))))
	require.False(t, a.Equal(NewPath(SeqIndex(1), MapKey("a"))))
	require.False(t, NewPath(MapKey("a")).Equal(NewPath(Variant("a"))))
}

func TestPathSegments(t *testing.T) {
	path := NewPath(MapKey("a"), SeqIndex(7), Variant("Foo"), Unknown())

	segments := slices.Collect(path.Segments())
	require.Equal(t, []Segment{MapKey("a"), SeqIndex(7), Variant("Foo"), Unknown()}, segments)

	require.Equal(t, 4, path.Len())

	require.Equal(t, KindMapKey, segments[0].Kind())
	require.Equal(t, "a", segments[0].Key())
	require.Equal(t, KindSeqIndex, segments[1].Kind())
	require.Equal(t, 7, segments[1].Index())
	require.Equal(t, KindVariant, segments[2].Kind())
	require.Equal(t, "Foo", segments[2].Key())
	require.Equal(t, KindUnknown, segments[3].Kind())
}

func TestPathImmutable(t *testing.T) {
	segments := []Segment{MapKey("a"), MapKey("b")}
	path := NewPath(segments...)

	segments[1] = MapKey("mutated")
	require.Equal(t, "a.b", path.String())
}
