package cbor

import (
	"math"
	"reflect"
	"time"
)

// ShapeKind classifies a shape for the shape-driven writer.
type ShapeKind uint8

const (
	ShapeInteger ShapeKind = iota
	ShapeLong
	ShapeFloat
	ShapeDouble
	ShapeBoolean
	ShapeString
	ShapeBlob
	ShapeTimestamp
	ShapeList
	ShapeMap
	ShapeStructure
)

var shapeKindNames = []string{
	"integer", "long", "float", "double", "boolean",
	"string", "blob", "timestamp", "list", "map", "structure",
}

// String implements fmt.Stringer
func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) {
		return shapeKindNames[k]
	}
	return "<invalid>"
}

// Shape describes how a value should be encoded. Concrete shapes come from
// generated shape tables or are built by hand from the Def types below.
type Shape interface {
	ShapeName() string
	ShapeKind() ShapeKind
}

// ListShape is implemented by shapes whose kind is ShapeList.
type ListShape interface {
	Shape
	Member() Shape
}

// MapShape is implemented by shapes whose kind is ShapeMap. A nil Key shape
// means keys are plain text strings.
type MapShape interface {
	Shape
	Key() Shape
	Value() Shape
}

// Member names one field of a structure shape. Wire optionally overrides the
// key the member is encoded under; empty means Name.
type Member struct {
	Name  string
	Wire  string
	Shape Shape
}

// StructureShape is implemented by shapes whose kind is ShapeStructure.
// Members returns fields in their declared order, which is the order they
// are encoded in. SerializationName maps a member lookup name to the key it
// is encoded under.
type StructureShape interface {
	Shape
	Members() []Member
	SerializationName(name string) string
}

// ScalarDef is a concrete scalar shape.
type ScalarDef struct {
	Name string
	Kind ShapeKind
}

func (s *ScalarDef) ShapeName() string    { return s.Name }
func (s *ScalarDef) ShapeKind() ShapeKind { return s.Kind }

// ListDef is a concrete list shape.
type ListDef struct {
	Name string
	Elem Shape
}

func (s *ListDef) ShapeName() string    { return s.Name }
func (s *ListDef) ShapeKind() ShapeKind { return ShapeList }
func (s *ListDef) Member() Shape        { return s.Elem }

// MapDef is a concrete map shape. A nil Keys shape means text-string keys.
type MapDef struct {
	Name string
	Keys Shape
	Elem Shape
}

func (s *MapDef) ShapeName() string    { return s.Name }
func (s *MapDef) ShapeKind() ShapeKind { return ShapeMap }
func (s *MapDef) Key() Shape           { return s.Keys }
func (s *MapDef) Value() Shape         { return s.Elem }

// StructDef is a concrete structure shape.
type StructDef struct {
	Name   string
	Fields []Member
}

func (s *StructDef) ShapeName() string    { return s.Name }
func (s *StructDef) ShapeKind() ShapeKind { return ShapeStructure }
func (s *StructDef) Members() []Member    { return s.Fields }

func (s *StructDef) SerializationName(name string) string {
	for _, m := range s.Fields {
		if m.Name == name && m.Wire != "" {
			return m.Wire
		}
	}
	return name
}

// ScalarConverter normalizes an application value to one the writer can
// encode under the given scalar shape. Returning the value unchanged is
// always acceptable when it is already encodable.
type ScalarConverter func(s Shape, v any) (any, error)

// ShapeWriterOption configures a ShapeWriter.
type ShapeWriterOption func(*ShapeWriter)

// WithScalarConverter installs a converter run on every scalar value before
// it is encoded.
func WithScalarConverter(fn ScalarConverter) ShapeWriterOption {
	return func(w *ShapeWriter) { w.conv = fn }
}

// ShapeWriter encodes values under the direction of a shape instead of the
// values' own Go types. It writes through an Encoder so shaped and unshaped
// writes can interleave in one encoding.
type ShapeWriter struct {
	enc  *Encoder
	conv ScalarConverter
}

// NewShapeWriter returns a ShapeWriter targeting e.
func NewShapeWriter(e *Encoder, opts ...ShapeWriterOption) *ShapeWriter {
	w := &ShapeWriter{enc: e}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteDataItemShaped encodes v into e as directed by s. It is shorthand for
// constructing a ShapeWriter for a single write.
func WriteDataItemShaped(e *Encoder, s Shape, v any, opts ...ShapeWriterOption) error {
	return NewShapeWriter(e, opts...).Write(s, v)
}

// Write encodes v as directed by s. On error, bytes for already-completed
// siblings remain in the encoder; the encoding must be considered spoiled.
func (w *ShapeWriter) Write(s Shape, v any) error {
	b, err := w.append(w.enc.buf, s, v)
	if err != nil {
		return err
	}
	w.enc.buf = b
	return nil
}

func (w *ShapeWriter) append(b []byte, s Shape, v any) ([]byte, error) {
	kind := s.ShapeKind()
	if kind <= ShapeTimestamp && w.conv != nil {
		var err error
		if v, err = w.conv(s, v); err != nil {
			return b, err
		}
	}

	switch kind {
	case ShapeInteger:
		i, ok := asInt64(v)
		if !ok {
			return b, ShapeError{TypeName: s.ShapeName(), Value: v}
		}
		if i > math.MaxInt32 || i < math.MinInt32 {
			return b, IntOverflow{Value: i, FailedBitsize: 32}
		}
		return AppendInt64(b, i), nil

	case ShapeLong:
		i, ok := asInt64(v)
		if !ok {
			return b, ShapeError{TypeName: s.ShapeName(), Value: v}
		}
		return AppendInt64(b, i), nil

	case ShapeFloat, ShapeDouble:
		f, ok := asFloat64(v)
		if !ok {
			return b, ShapeError{TypeName: s.ShapeName(), Value: v}
		}
		return AppendFloat64(b, f), nil

	case ShapeBoolean:
		t, ok := v.(bool)
		if !ok {
			return b, ShapeError{TypeName: s.ShapeName(), Value: v}
		}
		return AppendBool(b, t), nil

	case ShapeString:
		str, ok := v.(string)
		if !ok {
			return b, ShapeError{TypeName: s.ShapeName(), Value: v}
		}
		return AppendString(b, str), nil

	case ShapeBlob:
		raw, ok := v.([]byte)
		if !ok {
			return b, ShapeError{TypeName: s.ShapeName(), Value: v}
		}
		return AppendBytes(b, raw), nil

	case ShapeTimestamp:
		switch t := v.(type) {
		case time.Time:
			b = AppendTag(b, tagEpochDateTime)
			sec := float64(t.Unix()) + float64(t.Nanosecond())/1e9
			return AppendFloat64(b, sec), nil
		case float64:
			b = AppendTag(b, tagEpochDateTime)
			return AppendFloat64(b, t), nil
		default:
			return b, ShapeError{TypeName: s.ShapeName(), Value: v}
		}

	case ShapeList:
		ls, ok := s.(ListShape)
		if !ok {
			return b, UnknownShapeTypeError{TypeName: s.ShapeName()}
		}
		return w.appendList(b, ls, v)

	case ShapeMap:
		ms, ok := s.(MapShape)
		if !ok {
			return b, UnknownShapeTypeError{TypeName: s.ShapeName()}
		}
		return w.appendMap(b, ms, v)

	case ShapeStructure:
		ss, ok := s.(StructureShape)
		if !ok {
			return b, UnknownShapeTypeError{TypeName: s.ShapeName()}
		}
		return w.appendStruct(b, ss, v)

	default:
		return b, UnknownShapeTypeError{TypeName: s.ShapeName()}
	}
}

func (w *ShapeWriter) appendList(b []byte, s ListShape, v any) ([]byte, error) {
	elem := s.Member()
	var err error
	if vs, ok := v.([]any); ok {
		b = AppendArrayHeader(b, uint64(len(vs)))
		for _, el := range vs {
			if b, err = w.append(b, elem, el); err != nil {
				return b, err
			}
		}
		return b, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return b, ShapeError{TypeName: s.ShapeName(), Value: v}
	}
	n := rv.Len()
	b = AppendArrayHeader(b, uint64(n))
	for i := 0; i < n; i++ {
		if b, err = w.append(b, elem, rv.Index(i).Interface()); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (w *ShapeWriter) appendMap(b []byte, s MapShape, v any) ([]byte, error) {
	key, elem := s.Key(), s.Value()
	appendKey := func(b []byte, k any) ([]byte, error) {
		if key != nil {
			return w.append(b, key, k)
		}
		ks, ok := k.(string)
		if !ok {
			return b, ShapeError{TypeName: s.ShapeName(), Value: k}
		}
		return AppendString(b, ks), nil
	}
	var err error
	switch vs := v.(type) {
	case map[string]any:
		b = AppendMapHeader(b, uint64(len(vs)))
		for k, el := range vs {
			if b, err = appendKey(b, k); err != nil {
				return b, err
			}
			if b, err = w.append(b, elem, el); err != nil {
				return b, err
			}
		}
		return b, nil
	case Map:
		b = AppendMapHeader(b, uint64(len(vs)))
		for _, ent := range vs {
			if b, err = appendKey(b, ent.Key); err != nil {
				return b, err
			}
			if b, err = w.append(b, elem, ent.Value); err != nil {
				return b, err
			}
		}
		return b, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return b, ShapeError{TypeName: s.ShapeName(), Value: v}
	}
	b = AppendMapHeader(b, uint64(rv.Len()))
	iter := rv.MapRange()
	for iter.Next() {
		if b, err = appendKey(b, iter.Key().String()); err != nil {
			return b, err
		}
		if b, err = w.append(b, elem, iter.Value().Interface()); err != nil {
			return b, err
		}
	}
	return b, nil
}

// appendStruct writes a structure as a definite map of its present members.
// A member is absent when the source has no entry for it or holds a nil
// value; the count pass runs first so the header is exact.
func (w *ShapeWriter) appendStruct(b []byte, s StructureShape, v any) ([]byte, error) {
	get, ok := structAccessor(v)
	if !ok {
		return b, ShapeError{TypeName: s.ShapeName(), Value: v}
	}
	members := s.Members()
	n := uint64(0)
	for _, m := range members {
		if mv, present := get(m.Name); present && mv != nil {
			n++
		}
	}
	b = AppendMapHeader(b, n)
	var err error
	for _, m := range members {
		mv, present := get(m.Name)
		if !present || mv == nil {
			continue
		}
		b = AppendString(b, s.SerializationName(m.Name))
		if b, err = w.append(b, m.Shape, mv); err != nil {
			return b, err
		}
	}
	return b, nil
}

func structAccessor(v any) (func(name string) (any, bool), bool) {
	switch vs := v.(type) {
	case map[string]any:
		return func(name string) (any, bool) {
			mv, ok := vs[name]
			return mv, ok
		}, true
	case Map:
		return func(name string) (any, bool) {
			return vs.Get(name)
		}, true
	}
	return nil, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
