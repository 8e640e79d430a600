package trail

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/exp/constraints"
)

// Unmarshal decodes the value the backend is positioned on into target,
// which must be a non-nil pointer. Failures come back as [*Error] carrying
// the path to the offending value.
func Unmarshal(de Deserializer, target any) error {
	return dec.Unmarshal(de, target)
}

// UnmarshalNew decodes a new instance of T from the backend.
func UnmarshalNew[T any](de Deserializer) (T, error) {
	return UnmarshalNewWith[T](&dec, de)
}

// UnmarshalNewWith decodes a new instance of T using the given Decoder.
func UnmarshalNewWith[T any](dec *Decoder, de Deserializer) (T, error) {
	var target T
	err := dec.Unmarshal(de, &target)
	return target, err
}

// A setter decodes the value a Deserializer is positioned on into the given
// reflect.Value
type setter func(Deserializer, reflect.Value) error

// A set of types that are currently in construction
type typeSet map[reflect.Type]struct{}

var tyTextUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
var tyEnumValue = reflect.TypeFor[EnumValue]()

// The default Decoder instance.
var dec Decoder

// Decoder can be used to customize unmarshalling. This type is typesafe.
type Decoder struct {
	// the struct tag that is used
	structTag string

	// Cache for setters, indexed by reflect.Type
	setterCache sync.Map

	// Require values for struct fields. Set to true to fail with ErrNoValue
	// if a field is missing in the source map
	requireValues bool
}

func NewDecoder() *Decoder {
	return &Decoder{
		structTag: "json",
	}
}

func (d *Decoder) WithTag(structTag string) *Decoder {
	if d.structTag == structTag {
		return d
	}

	return &Decoder{
		structTag:     structTag,
		requireValues: d.requireValues,
	}
}

func (d *Decoder) RequireValues() *Decoder {
	if d.requireValues {
		return d
	}

	return &Decoder{
		structTag:     d.structTag,
		requireValues: true,
	}
}

func (d *Decoder) Unmarshal(de Deserializer, target any) error {
	targetValue := reflect.ValueOf(target).Elem()

	// build the setter for the targets type
	set, err := d.setterOf(typeSet{}, targetValue.Type())
	if err != nil {
		return err
	}

	_, err = Deserialize(de, func(de Deserializer) (any, error) {
		return nil, set(de, targetValue)
	})

	return err
}

func (d *Decoder) setterOf(inConstruction typeSet, ty reflect.Type) (setter, error) {
	if cached, ok := d.setterCache.Load(ty); ok {
		return cached.(setter), nil
	}

	if _, ok := inConstruction[ty]; ok {
		// detected a cycle. return a setter that does a cache lookup when executed.
		// we assume that the actual setter will be in the cache once this setter is executed.
		lazySetter := func(de Deserializer, target reflect.Value) error {
			cached, _ := d.setterCache.Load(ty)
			return cached.(setter)(de, target)
		}

		return lazySetter, nil
	}

	inConstruction[ty] = struct{}{}

	set, err := d.makeSetterOf(inConstruction, ty)
	if err != nil {
		return nil, err
	}

	d.setterCache.Store(ty, set)

	return set, nil
}

func (d *Decoder) makeSetterOf(inConstruction typeSet, ty reflect.Type) (setter, error) {
	if ty == tyEnumValue {
		return setEnumValue, nil
	}

	if reflect.PointerTo(ty).Implements(tyTextUnmarshaler) {
		return setTextUnmarshaler, nil
	}

	switch ty.Kind() {
	case reflect.Bool:
		return setBool, nil

	case reflect.Int:
		return makeIntSetter[int](math.MinInt, math.MaxInt), nil

	case reflect.Int8:
		return makeIntSetter[int8](math.MinInt8, math.MaxInt8), nil

	case reflect.Int16:
		return makeIntSetter[int16](math.MinInt16, math.MaxInt16), nil

	case reflect.Int32:
		return makeIntSetter[int32](math.MinInt32, math.MaxInt32), nil

	case reflect.Int64:
		return makeIntSetter[int64](math.MinInt64, math.MaxInt64), nil

	case reflect.Uint:
		return makeUintSetter[uint](math.MaxUint), nil

	case reflect.Uint8:
		return makeUintSetter[uint8](math.MaxUint8), nil

	case reflect.Uint16:
		return makeUintSetter[uint16](math.MaxUint16), nil

	case reflect.Uint32:
		return makeUintSetter[uint32](math.MaxUint32), nil

	case reflect.Uint64:
		return makeUintSetter[uint64](math.MaxUint64), nil

	case reflect.Float32, reflect.Float64:
		return setFloat, nil

	case reflect.String:
		return setString, nil

	case reflect.Pointer:
		return d.makeSetPointer(inConstruction, ty)

	case reflect.Struct:
		return d.makeSetStruct(inConstruction, ty)

	case reflect.Slice:
		if ty.Elem().Kind() == reflect.Uint8 {
			return setBytes, nil
		}

		return d.makeSetSlice(inConstruction, ty)

	case reflect.Array:
		return d.makeSetArray(inConstruction, ty)

	case reflect.Map:
		return d.makeSetMap(inConstruction, ty)

	case reflect.Interface:
		if ty.NumMethod() == 0 {
			return setAny, nil
		}

		return nil, NotSupportedError{Type: ty}

	default:
		return nil, NotSupportedError{Type: ty}
	}
}

func setBool(de Deserializer, target reflect.Value) error {
	_, err := de.DeserializeBool(boolVisitor{UnexpectedVisitor{Want: "bool"}, target})
	return err
}

type boolVisitor struct {
	UnexpectedVisitor
	target reflect.Value
}

func (v boolVisitor) VisitBool(value bool) (any, error) {
	v.target.SetBool(value)
	return nil, nil
}

func rangeError[T constraints.Integer](value any) error {
	var zero T
	return fmt.Errorf("invalid %T value %v: %w", zero, value, strconv.ErrRange)
}

func makeIntSetter[T constraints.Signed](minValue, maxValue int64) setter {
	return func(de Deserializer, target reflect.Value) error {
		_, err := de.DeserializeInt(intVisitor[T]{UnexpectedVisitor{Want: "int"}, target, minValue, maxValue})
		return err
	}
}

type intVisitor[T constraints.Signed] struct {
	UnexpectedVisitor
	target   reflect.Value
	min, max int64
}

func (v intVisitor[T]) VisitInt(value int64) (any, error) {
	if value < v.min || value > v.max {
		return nil, rangeError[T](value)
	}

	v.target.SetInt(value)
	return nil, nil
}

func (v intVisitor[T]) VisitUint(value uint64) (any, error) {
	if value > math.MaxInt64 || int64(value) > v.max {
		return nil, rangeError[T](value)
	}

	return v.VisitInt(int64(value))
}

func makeUintSetter[T constraints.Unsigned](maxValue uint64) setter {
	return func(de Deserializer, target reflect.Value) error {
		_, err := de.DeserializeUint(uintVisitor[T]{UnexpectedVisitor{Want: "uint"}, target, maxValue})
		return err
	}
}

type uintVisitor[T constraints.Unsigned] struct {
	UnexpectedVisitor
	target reflect.Value
	max    uint64
}

func (v uintVisitor[T]) VisitUint(value uint64) (any, error) {
	if value > v.max {
		return nil, rangeError[T](value)
	}

	v.target.SetUint(value)
	return nil, nil
}

func (v uintVisitor[T]) VisitInt(value int64) (any, error) {
	if value < 0 {
		return nil, rangeError[T](value)
	}

	return v.VisitUint(uint64(value))
}

func setFloat(de Deserializer, target reflect.Value) error {
	_, err := de.DeserializeFloat(floatVisitor{UnexpectedVisitor{Want: "float"}, target})
	return err
}

type floatVisitor struct {
	UnexpectedVisitor
	target reflect.Value
}

func (v floatVisitor) VisitFloat(value float64) (any, error) {
	v.target.SetFloat(value)
	return nil, nil
}

func (v floatVisitor) VisitInt(value int64) (any, error) {
	v.target.SetFloat(float64(value))
	return nil, nil
}

func (v floatVisitor) VisitUint(value uint64) (any, error) {
	v.target.SetFloat(float64(value))
	return nil, nil
}

func setString(de Deserializer, target reflect.Value) error {
	_, err := de.DeserializeString(stringVisitor{UnexpectedVisitor{Want: "string"}, target})
	return err
}

type stringVisitor struct {
	UnexpectedVisitor
	target reflect.Value
}

func (v stringVisitor) VisitString(value string) (any, error) {
	v.target.SetString(value)
	return nil, nil
}

func setBytes(de Deserializer, target reflect.Value) error {
	_, err := de.DeserializeBytes(bytesVisitor{UnexpectedVisitor{Want: "bytes"}, target})
	return err
}

type bytesVisitor struct {
	UnexpectedVisitor
	target reflect.Value
}

func (v bytesVisitor) VisitBytes(value []byte) (any, error) {
	v.target.SetBytes(slices.Clone(value))
	return nil, nil
}

func (v bytesVisitor) VisitString(value string) (any, error) {
	v.target.SetBytes([]byte(value))
	return nil, nil
}

func setTextUnmarshaler(de Deserializer, target reflect.Value) error {
	_, err := de.DeserializeString(textVisitor{UnexpectedVisitor{Want: "string"}, target})
	return err
}

type textVisitor struct {
	UnexpectedVisitor
	target reflect.Value
}

func (v textVisitor) VisitString(value string) (any, error) {
	m := v.target.Addr().Interface().(encoding.TextUnmarshaler)
	return nil, m.UnmarshalText([]byte(value))
}

func (d *Decoder) makeSetPointer(inConstruction typeSet, ty reflect.Type) (setter, error) {
	pointeeType := ty.Elem()

	pointeeSetter, err := d.setterOf(inConstruction, pointeeType)
	if err != nil {
		return nil, err
	}

	set := func(de Deserializer, target reflect.Value) error {
		_, err := de.DeserializeOption(optionVisitor{
			UnexpectedVisitor: UnexpectedVisitor{Want: "option"},
			target:            target,
			pointee:           pointeeType,
			set:               pointeeSetter,
		})
		return err
	}

	return set, nil
}

type optionVisitor struct {
	UnexpectedVisitor
	target  reflect.Value
	pointee reflect.Type
	set     setter
}

func (v optionVisitor) VisitNil() (any, error) {
	v.target.SetZero()
	return nil, nil
}

func (v optionVisitor) VisitSome(de Deserializer) (any, error) {
	// newValue is a pointer to an instance of the pointee type
	newValue := reflect.New(v.pointee)
	if err := v.set(de, newValue.Elem()); err != nil {
		return nil, err
	}

	v.target.Set(newValue)
	return nil, nil
}

func (d *Decoder) makeSetStruct(inConstruction typeSet, ty reflect.Type) (setter, error) {
	structTag := d.structTag
	if structTag == "" {
		structTag = "json"
	}

	fields := fieldsOf(ty, structTag)

	var setters []setter
	fieldNames := make([]string, len(fields))
	byName := make(map[string]int, len(fields))

	for idx, field := range fields {
		set, err := d.setterOf(inConstruction, field.Type)
		if err != nil {
			return nil, fmt.Errorf("setter for field %q: %w", field.Name, err)
		}

		setters = append(setters, set)
		fieldNames[idx] = field.Name
		byName[field.Name] = idx
	}

	name := ty.Name()

	set := func(de Deserializer, target reflect.Value) error {
		_, err := de.DeserializeStruct(name, fieldNames, structVisitor{
			UnexpectedVisitor: UnexpectedVisitor{Want: "map"},
			target:            target,
			fields:            fields,
			setters:           setters,
			byName:            byName,
			requireValues:     d.requireValues,
		})
		return err
	}

	return set, nil
}

type structVisitor struct {
	UnexpectedVisitor
	target        reflect.Value
	fields        []field
	setters       []setter
	byName        map[string]int
	requireValues bool
}

func (v structVisitor) VisitMap(m MapAccess) (any, error) {
	seen := make([]bool, len(v.fields))

	for {
		key, ok, err := m.NextKey(identifierValue)
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}

		idx, found := v.byName[key.(string)]
		if !found {
			// no matching field, drain the value
			if _, err := m.NextValue(ignoreValue); err != nil {
				return nil, err
			}

			continue
		}

		seen[idx] = true
		fieldValue := v.target.FieldByIndex(v.fields[idx].Index)

		_, err = m.NextValue(func(de Deserializer) (any, error) {
			return nil, v.setters[idx](de, fieldValue)
		})
		if err != nil {
			return nil, err
		}
	}

	if v.requireValues {
		for idx, field := range v.fields {
			if !seen[idx] {
				return nil, fmt.Errorf("field %q: %w", field.Name, ErrNoValue)
			}
		}
	}

	return nil, nil
}

func (d *Decoder) makeSetMap(inConstruction typeSet, ty reflect.Type) (setter, error) {
	keySetter, err := d.setterOf(inConstruction, ty.Key())
	if err != nil {
		return nil, fmt.Errorf("setter for key type %q: %w", ty, err)
	}

	valueSetter, err := d.setterOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for value type %q: %w", ty, err)
	}

	set := func(de Deserializer, target reflect.Value) error {
		_, err := de.DeserializeMap(mapVisitor{
			UnexpectedVisitor: UnexpectedVisitor{Want: "map"},
			target:            target,
			mapType:           ty,
			keySetter:         keySetter,
			valueSetter:       valueSetter,
		})
		return err
	}

	return set, nil
}

type mapVisitor struct {
	UnexpectedVisitor
	target      reflect.Value
	mapType     reflect.Type
	keySetter   setter
	valueSetter setter
}

func (v mapVisitor) VisitMap(m MapAccess) (any, error) {
	keyType := v.mapType.Key()
	valueType := v.mapType.Elem()

	mapTarget := reflect.MakeMap(v.mapType)

	for {
		keyTarget := reflect.New(keyType).Elem()

		_, ok, err := m.NextKey(func(de Deserializer) (any, error) {
			return nil, v.keySetter(de, keyTarget)
		})
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}

		valueTarget := reflect.New(valueType).Elem()

		_, err = m.NextValue(func(de Deserializer) (any, error) {
			return nil, v.valueSetter(de, valueTarget)
		})
		if err != nil {
			return nil, err
		}

		mapTarget.SetMapIndex(keyTarget, valueTarget)
	}

	v.target.Set(mapTarget)

	return nil, nil
}

func (d *Decoder) makeSetSlice(inConstruction typeSet, ty reflect.Type) (setter, error) {
	elementSetter, err := d.setterOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for element type %q: %w", ty, err)
	}

	// an empty element
	placeholderValue := reflect.New(ty.Elem()).Elem()

	set := func(de Deserializer, target reflect.Value) error {
		_, err := de.DeserializeSeq(sliceVisitor{
			UnexpectedVisitor: UnexpectedVisitor{Want: "sequence"},
			target:            target,
			elementSetter:     elementSetter,
			placeholder:       placeholderValue,
		})
		return err
	}

	return set, nil
}

type sliceVisitor struct {
	UnexpectedVisitor
	target        reflect.Value
	elementSetter setter
	placeholder   reflect.Value
}

func (v sliceVisitor) VisitSeq(seq SeqAccess) (any, error) {
	target := v.target

	for {
		// grow the slice before we know whether there is another element.
		// the backend invokes the seed only if there is one.
		target.Set(reflect.Append(target, v.placeholder))
		idx := target.Len() - 1

		_, ok, err := seq.NextElement(func(de Deserializer) (any, error) {
			return nil, v.elementSetter(de, target.Index(idx))
		})
		if err != nil {
			return nil, err
		}

		if !ok {
			// drop the speculative element again
			target.Set(target.Slice(0, idx))
			break
		}
	}

	return nil, nil
}

func (d *Decoder) makeSetArray(inConstruction typeSet, ty reflect.Type) (setter, error) {
	elementSetter, err := d.setterOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for element type %q: %w", ty, err)
	}

	// number of elements in the array
	elementCount := ty.Len()

	set := func(de Deserializer, target reflect.Value) error {
		_, err := de.DeserializeTuple(elementCount, arrayVisitor{
			UnexpectedVisitor: UnexpectedVisitor{Want: "sequence"},
			target:            target,
			elementSetter:     elementSetter,
			elementCount:      elementCount,
		})
		return err
	}

	return set, nil
}

type arrayVisitor struct {
	UnexpectedVisitor
	target        reflect.Value
	elementSetter setter
	elementCount  int
}

func (v arrayVisitor) VisitSeq(seq SeqAccess) (any, error) {
	for idx := 0; idx < v.elementCount; idx++ {
		elementValue := v.target.Index(idx)

		_, ok, err := seq.NextElement(func(de Deserializer) (any, error) {
			return nil, v.elementSetter(de, elementValue)
		})
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}
	}

	return nil, nil
}

// EnumValue is the decoded form of an externally tagged enum value: the
// variant name next to its untyped payload. Use it as a target field type
// where the document may carry any variant.
type EnumValue struct {
	Name  string
	Value any
}

func setEnumValue(de Deserializer, target reflect.Value) error {
	_, err := de.DeserializeEnum("", nil, enumValueVisitor{UnexpectedVisitor{Want: "enum"}, target})
	return err
}

type enumValueVisitor struct {
	UnexpectedVisitor
	target reflect.Value
}

func (v enumValueVisitor) VisitEnum(e EnumAccess) (any, error) {
	name, err := e.Variant()
	if err != nil {
		return nil, err
	}

	payload, err := e.Payload(anyValue)
	if err != nil {
		return nil, err
	}

	v.target.Set(reflect.ValueOf(EnumValue{Name: name, Value: payload}))
	return nil, nil
}

func setAny(de Deserializer, target reflect.Value) error {
	value, err := anyValue(de)
	if err != nil {
		return err
	}

	if value == nil {
		target.SetZero()
		return nil
	}

	target.Set(reflect.ValueOf(value))
	return nil
}

// identifierValue is the [Seed] for map keys and variant identifiers.
func identifierValue(de Deserializer) (any, error) {
	return de.DeserializeIdentifier(identifierVisitor{UnexpectedVisitor{Want: "identifier"}})
}

type identifierVisitor struct {
	UnexpectedVisitor
}

func (v identifierVisitor) VisitString(value string) (any, error) {
	return value, nil
}

// anyValue is a [Seed] that decodes whatever comes next into untyped go
// values: scalars as themselves, sequences as []any, maps as map[string]any
// and enums as [EnumValue].
func anyValue(de Deserializer) (any, error) {
	return de.DeserializeAny(anyVisitor{})
}

type anyVisitor struct{}

func (anyVisitor) VisitBool(value bool) (any, error) {
	return value, nil
}

func (anyVisitor) VisitInt(value int64) (any, error) {
	return value, nil
}

func (anyVisitor) VisitUint(value uint64) (any, error) {
	return value, nil
}

func (anyVisitor) VisitFloat(value float64) (any, error) {
	return value, nil
}

func (anyVisitor) VisitString(value string) (any, error) {
	return value, nil
}

func (anyVisitor) VisitBytes(value []byte) (any, error) {
	return slices.Clone(value), nil
}

func (anyVisitor) VisitNil() (any, error) {
	return nil, nil
}

func (anyVisitor) VisitSome(de Deserializer) (any, error) {
	return anyValue(de)
}

func (anyVisitor) VisitSeq(seq SeqAccess) (any, error) {
	elements := []any{}

	for {
		value, ok, err := seq.NextElement(anyValue)
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}

		elements = append(elements, value)
	}

	return elements, nil
}

func (anyVisitor) VisitMap(m MapAccess) (any, error) {
	values := map[string]any{}

	for {
		key, ok, err := m.NextKey(identifierValue)
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}

		value, err := m.NextValue(anyValue)
		if err != nil {
			return nil, err
		}

		values[key.(string)] = value
	}

	return values, nil
}

func (anyVisitor) VisitEnum(e EnumAccess) (any, error) {
	name, err := e.Variant()
	if err != nil {
		return nil, err
	}

	value, err := e.Payload(anyValue)
	if err != nil {
		return nil, err
	}

	return EnumValue{Name: name, Value: value}, nil
}

// ignoreValue is a [Seed] that drains whatever comes next and throws it
// away, composite values included.
func ignoreValue(de Deserializer) (any, error) {
	return de.DeserializeAny(ignoreVisitor{})
}

type ignoreVisitor struct{}

func (ignoreVisitor) VisitBool(value bool) (any, error) {
	return nil, nil
}

func (ignoreVisitor) VisitInt(value int64) (any, error) {
	return nil, nil
}

func (ignoreVisitor) VisitUint(value uint64) (any, error) {
	return nil, nil
}

func (ignoreVisitor) VisitFloat(value float64) (any, error) {
	return nil, nil
}

func (ignoreVisitor) VisitString(value string) (any, error) {
	return nil, nil
}

func (ignoreVisitor) VisitBytes(value []byte) (any, error) {
	return nil, nil
}

func (ignoreVisitor) VisitNil() (any, error) {
	return nil, nil
}

func (ignoreVisitor) VisitSome(de Deserializer) (any, error) {
	return ignoreValue(de)
}

func (ignoreVisitor) VisitSeq(seq SeqAccess) (any, error) {
	for {
		_, ok, err := seq.NextElement(ignoreValue)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, nil
		}
	}
}

func (ignoreVisitor) VisitMap(m MapAccess) (any, error) {
	for {
		_, ok, err := m.NextKey(ignoreValue)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, nil
		}

		if _, err := m.NextValue(ignoreValue); err != nil {
			return nil, err
		}
	}
}

func (ignoreVisitor) VisitEnum(e EnumAccess) (any, error) {
	if _, err := e.Variant(); err != nil {
		return nil, err
	}

	return e.Payload(ignoreValue)
}
