// Package trail augments a pull-based, visitor-driven deserialization backend
// with exact structural path reporting on failure. A generic "unexpected string,
// want int" becomes "dependencies.serde.version: unexpected string, want int"
// without touching the backend, the data format or the target types.
//
// The [Deserializer] interface defines access to a serialized value in the
// pull-parser style: the backend drives a [Visitor] one call at a time and
// delivers sequence elements, map entries and enum variants through the
// composite access interfaces. [Wrap] decorates any such backend so that the
// keys, indices and variant names streaming past are recorded on a [Track];
// when a call fails, [Deserialize] snapshots the still-open segments into an
// [Error] carrying the full root-to-leaf [Path].
//
// On top of the protocol the package ships a reflection [Decoder] to
// [Unmarshal] data onto go types (structs, slices, maps, etc) similar to
// encoding/json, and [ValueSource], a ready-to-use backend over decoded
// value trees (see [FromYAML] and [FromJSON]).
package trail
