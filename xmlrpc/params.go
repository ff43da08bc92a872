package xmlrpc

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	valueIfaceType = reflect.TypeOf((*Value)(nil)).Elem()
	valueSliceType = reflect.TypeOf([]Value(nil))
)

// FromParams converts positional call parameters into the statically shaped
// target, which must be a non-nil pointer. A *[]Value target receives the
// raw parameter list; any other slice target converts every parameter
// elementwise; a struct target maps parameters onto its exported fields in
// declaration order with exact arity; every other target requires exactly
// one parameter. Mismatches wrap ErrDecode and describe the expected and
// actual shapes.
func FromParams(params []Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return decodeErrorf("target must be a non-nil pointer, got %T", target)
	}
	elem := rv.Elem()
	if elem.Type() == valueSliceType {
		elem.Set(reflect.ValueOf(append([]Value(nil), params...)))
		return nil
	}
	switch elem.Kind() {
	case reflect.Struct, reflect.Slice:
		return assign(Array(params), elem, "params")
	}
	if len(params) != 1 {
		return decodeErrorf("params: expected 1 parameter, got %d", len(params))
	}
	return assign(params[0], elem, "params[0]")
}

// IntoParams converts a handler result into positional response
// parameters. A []Value result passes through, any other slice or array
// converts elementwise, a struct other than the Value arms converts field
// by field in declaration order, and every other result becomes a single
// parameter. Unrepresentable values wrap ErrEncode.
func IntoParams(result any) ([]Value, error) {
	if result == nil {
		return []Value{}, nil
	}
	if raw, ok := result.([]Value); ok {
		return raw, nil
	}
	rv := reflect.ValueOf(result)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, encodeErrorf("cannot encode nil pointer")
		}
		rv = rv.Elem()
	}
	if _, isValue := rv.Interface().(Value); !isValue {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			params := make([]Value, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				v, err := toValue(rv.Index(i))
				if err != nil {
					return nil, err
				}
				params = append(params, v)
			}
			return params, nil
		case reflect.Struct:
			fields := structFields(rv.Type())
			params := make([]Value, 0, len(fields))
			for _, f := range fields {
				v, err := toValue(rv.FieldByIndex(f.index))
				if err != nil {
					return nil, err
				}
				params = append(params, v)
			}
			return params, nil
		}
	}
	v, err := toValue(rv)
	if err != nil {
		return nil, err
	}
	return []Value{v}, nil
}

func assign(src Value, dst reflect.Value, path string) error {
	if src == nil {
		return decodeErrorf("%s: missing value", path)
	}
	if reflect.TypeOf(src) == dst.Type() {
		dst.Set(reflect.ValueOf(src))
		return nil
	}
	if dst.Type() == valueIfaceType {
		dst.Set(reflect.ValueOf(src))
		return nil
	}

	switch dst.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assign(src, dst.Elem(), path)
	case reflect.String:
		s, ok := src.(String)
		if !ok {
			return decodeErrorf("%s: expected string, found %s", path, tagName(src))
		}
		dst.SetString(string(s))
		return nil
	case reflect.Bool:
		b, ok := src.(Bool)
		if !ok {
			return decodeErrorf("%s: expected boolean, found %s", path, tagName(src))
		}
		dst.SetBool(bool(b))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := src.(Int)
		if !ok {
			return decodeErrorf("%s: expected i4, found %s", path, tagName(src))
		}
		if dst.OverflowInt(int64(n)) {
			return decodeErrorf("%s: integer %d overflows %s", path, n, dst.Type())
		}
		dst.SetInt(int64(n))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := src.(Int)
		if !ok {
			return decodeErrorf("%s: expected i4, found %s", path, tagName(src))
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return decodeErrorf("%s: integer %d overflows %s", path, n, dst.Type())
		}
		dst.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		f, ok := src.(Double)
		if !ok {
			return decodeErrorf("%s: expected double, found %s", path, tagName(src))
		}
		dst.SetFloat(float64(f))
		return nil
	case reflect.Slice:
		arr, ok := src.(Array)
		if !ok {
			return decodeErrorf("%s: expected array, found %s", path, tagName(src))
		}
		out := reflect.MakeSlice(dst.Type(), len(arr), len(arr))
		for i, el := range arr {
			if err := assign(el, out.Index(i), elemPath(path, i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case reflect.Map:
		st, ok := src.(Struct)
		if !ok {
			return decodeErrorf("%s: expected struct, found %s", path, tagName(src))
		}
		if dst.Type().Key().Kind() != reflect.String {
			return decodeErrorf("%s: cannot decode struct into map keyed by %s", path, dst.Type().Key())
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(st))
		for name, member := range st {
			el := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(member, el, path+"."+name); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(name).Convert(dst.Type().Key()), el)
		}
		dst.Set(out)
		return nil
	case reflect.Struct:
		return assignStruct(src, dst, path)
	}
	return decodeErrorf("%s: cannot decode %s into %s", path, tagName(src), dst.Type())
}

// assignStruct fills a Go struct from either a wire struct (members
// matched by field name or xmlrpc tag) or a wire array (fields matched
// positionally with exact arity).
func assignStruct(src Value, dst reflect.Value, path string) error {
	fields := structFields(dst.Type())
	switch t := src.(type) {
	case Struct:
		for _, f := range fields {
			member, ok := memberLookup(t, f.name)
			if !ok {
				if dst.FieldByIndex(f.index).Kind() == reflect.Pointer {
					continue
				}
				return decodeErrorf("%s: missing member %q", path, f.name)
			}
			if err := assign(member, dst.FieldByIndex(f.index), path+"."+f.name); err != nil {
				return err
			}
		}
		return nil
	case Array:
		if len(t) != len(fields) {
			return decodeErrorf("%s: expected %d parameters, got %d", path, len(fields), len(t))
		}
		for i, f := range fields {
			if err := assign(t[i], dst.FieldByIndex(f.index), elemPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	return decodeErrorf("%s: expected struct, found %s", path, tagName(src))
}

func toValue(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return nil, encodeErrorf("cannot encode invalid value")
	}
	if rv.Type().Implements(valueIfaceType) {
		v := rv.Interface().(Value)
		if v == nil {
			return nil, encodeErrorf("cannot encode nil value")
		}
		return v, nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, encodeErrorf("cannot encode nil value")
		}
		return toValue(rv.Elem())
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, encodeErrorf("integer %d overflows the wire format", n)
		}
		return Int(int32(n)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt32 {
			return nil, encodeErrorf("integer %d overflows the wire format", u)
		}
		return Int(int32(u)), nil
	case reflect.Float32, reflect.Float64:
		return Double(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		arr := make(Array, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := toValue(rv.Index(i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, encodeErrorf("cannot encode map keyed by %s", rv.Type().Key())
		}
		st := Struct{}
		iter := rv.MapRange()
		for iter.Next() {
			v, err := toValue(iter.Value())
			if err != nil {
				return nil, err
			}
			st[iter.Key().String()] = v
		}
		return st, nil
	case reflect.Struct:
		st := Struct{}
		for _, f := range structFields(rv.Type()) {
			v, err := toValue(rv.FieldByIndex(f.index))
			if err != nil {
				return nil, err
			}
			st[f.name] = v
		}
		return st, nil
	}
	return nil, encodeErrorf("cannot encode %s", rv.Type())
}

type fieldInfo struct {
	name  string
	index []int
}

// structFields lists the exported fields the bridge maps, honoring the
// xmlrpc tag for renames and "-" for exclusion.
func structFields(t reflect.Type) []fieldInfo {
	fields := make([]fieldInfo, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("xmlrpc"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		fields = append(fields, fieldInfo{name: name, index: f.Index})
	}
	return fields
}

// memberLookup finds a struct member by exact name first, then by a
// case-insensitive scan.
func memberLookup(st Struct, name string) (Value, bool) {
	if v, ok := st[name]; ok {
		return v, true
	}
	for k, v := range st {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func elemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
