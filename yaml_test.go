package trail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromYAML(t *testing.T) {
	source, err := FromYAML([]byte(`
name: demo
dependencies:
  serde:
    version: 1
`))
	require.NoError(t, err)

	_, err = UnmarshalNew[testPackage](source)
	require.Error(t, err)
	require.Equal(t, "dependencies.serde.version", pathOf(t, err).String())
}

func TestFromYAMLSuccess(t *testing.T) {
	source, err := FromYAML([]byte(`
name: demo
dependencies:
  serde:
    version: "1.0.219"
`))
	require.NoError(t, err)

	value, err := UnmarshalNew[testPackage](source)
	require.NoError(t, err)
	require.Equal(t, testPackage{
		Name: "demo",
		Dependencies: map[string]testDependency{
			"serde": {Version: "1.0.219"},
		},
	}, value)
}

func TestFromYAMLInvalid(t *testing.T) {
	_, err := FromYAML([]byte("{b0rked"))
	require.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	source, err := FromJSON([]byte(`{"items": [{"name": "a"}, {"name": 2}]}`))
	require.NoError(t, err)

	type item struct {
		Name string `json:"name"`
	}

	var target struct {
		Items []item `json:"items"`
	}

	err = Unmarshal(source, &target)
	require.Error(t, err)
	require.Equal(t, "items[1].name", pathOf(t, err).String())
}
