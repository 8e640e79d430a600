package trail

import (
	"reflect"
	"strings"
)

type field struct {
	Name  string
	Type  reflect.Type
	Index []int
}

type fieldCandidate struct {
	field    field
	explicit bool
}

// fieldsOf resolves the deserializable fields of a struct type, honoring the
// given struct tag for renames and skips, flattening embedded structs and
// applying go's usual shadowing rules: a shallower field hides deeper ones,
// and among fields at equal depth an explicitly tagged one wins. Names that
// stay ambiguous are dropped silently.
func fieldsOf(ty reflect.Type, structTag string) []field {
	if ty.Kind() != reflect.Struct {
		panic("not a struct")
	}

	type queued struct {
		ty     reflect.Type
		parent []int
	}

	// walk the type breadth first so candidates for a name arrive ordered
	// by embedding depth
	queue := []queued{{ty: ty}}

	candidates := map[string][]fieldCandidate{}

	var order []string

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for idx := range item.ty.NumField() {
			fi := item.ty.Field(idx)
			if !fi.IsExported() {
				continue
			}

			name, explicit := fieldName(fi, structTag)
			if name == "" {
				// skipped via tag
				continue
			}

			// full cap forces a copy so sibling fields do not share the
			// parent's backing array
			parent := item.parent
			index := append(parent[:len(parent):len(parent)], fi.Index...)

			if fi.Anonymous && !explicit {
				if fi.Type.Kind() != reflect.Struct {
					continue
				}

				queue = append(queue, queued{fi.Type, index})
				continue
			}

			if len(candidates[name]) == 0 {
				order = append(order, name)
			}

			candidates[name] = append(candidates[name], fieldCandidate{
				explicit: explicit,
				field: field{
					Name:  name,
					Index: index,
					Type:  fi.Type,
				},
			})
		}
	}

	var fields []field

	for _, name := range order {
		if winner, ok := resolve(candidates[name]); ok {
			fields = append(fields, winner)
		}
	}

	return fields
}

// resolve picks the winning candidate for one name, if any.
func resolve(candidates []fieldCandidate) (field, bool) {
	if len(candidates) == 0 {
		panic("candidates are empty")
	}

	// only the shallowest candidates are visible. bfs order guarantees
	// they form a prefix.
	depth := len(candidates[0].field.Index)

	visible := candidates[:1]
	for _, candidate := range candidates[1:] {
		if len(candidate.field.Index) < depth {
			panic("candidates are not sorted")
		}

		if len(candidate.field.Index) > depth {
			break
		}

		visible = candidates[:len(visible)+1]
	}

	if len(visible) == 1 {
		return visible[0].field, true
	}

	// several fields at the same depth. an explicit tag wins, but only if
	// it is the single explicit one.
	var winner field
	var explicitCount int

	for _, candidate := range visible {
		if candidate.explicit {
			winner = candidate.field
			explicitCount++
		}
	}

	if explicitCount == 1 {
		return winner, true
	}

	return field{}, false
}

func fieldName(fi reflect.StructField, structTag string) (name string, explicit bool) {
	tag := fi.Tag.Get(structTag)

	if tag == "" {
		return fi.Name, false
	}

	if tag == "-" {
		// empty name means: skip this field
		return "", true
	}

	idx := strings.IndexByte(tag, ',')
	switch {
	case idx == -1:
		// no options, the full tag is the explicit name
		return tag, true

	case idx > 0:
		// non empty alias before the options
		return tag[:idx], true

	default:
		// options only, keep the field name
		return fi.Name, false
	}
}
