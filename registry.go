package codec

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

var (
	bytesType       = reflect.TypeFor[Bytes]()
	pairPkgPath     = reflect.TypeFor[Pair[int, int]]().PkgPath()
	marshalerType   = reflect.TypeFor[encoding.BinaryMarshaler]()
	unmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
)

// isPair reports whether t is an instantiation of Pair. Structs that
// merely embed a Pair are not pairs.
func isPair(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.PkgPath() == pairPkgPath && strings.HasPrefix(t.Name(), "Pair[")
}

// entry is the encode/decode routine pair for one concrete type.
// decode writes into v, which is always settable.
type entry struct {
	encode func(v reflect.Value) (Bytes, error)
	decode func(b Bytes, v reflect.Value) error
}

// registry is the type-indexed table a ZCodec dispatches through.
// Entries are built on first use and cached, like the size cache of
// Fixed. Composite entries resolve their element entries at
// call time, so recursive types build without looping.
type registry struct {
	codec   *ZCodec
	entries *xsync.Map[reflect.Type, *entry]
}

func newRegistry(c *ZCodec) *registry {
	return &registry{codec: c, entries: xsync.NewMap[reflect.Type, *entry]()}
}

func (r *registry) store(t reflect.Type, e *entry) {
	r.entries.Store(t, e)
}

// lookup returns the entry for t, building it if t is supported.
func (r *registry) lookup(t reflect.Type) (*entry, error) {
	if e, ok := r.entries.Load(t); ok {
		return e, nil
	}
	if err := r.check(t, map[reflect.Type]bool{}); err != nil {
		return nil, err
	}
	e, _ := r.entries.LoadOrStore(t, r.build(t))
	return e, nil
}

// check reports ErrUnsupportedType for t or any type reachable from it.
func (r *registry) check(t reflect.Type, seen map[reflect.Type]bool) error {
	if seen[t] {
		return nil
	}
	seen[t] = true
	if _, ok := r.entries.Load(t); ok {
		return nil
	}
	switch {
	case t == bytesType:
		return nil
	case isPair(t):
		if err := r.check(t.Field(0).Type, seen); err != nil {
			return err
		}
		return r.check(t.Field(1).Type, seen)
	case t.Implements(marshalerType) && reflect.PointerTo(t).Implements(unmarshalerType):
		return nil
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Slice, reflect.Array:
		return r.check(t.Elem(), seen)
	case reflect.Map:
		if err := r.check(t.Key(), seen); err != nil {
			return err
		}
		return r.check(t.Elem(), seen)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func (r *registry) build(t reflect.Type) *entry {
	switch {
	case t == bytesType:
		return &entry{
			encode: func(v reflect.Value) (Bytes, error) { return nonNull(v.Interface().(Bytes)), nil },
			decode: func(b Bytes, v reflect.Value) error { v.Set(reflect.ValueOf(b)); return nil },
		}
	case isPair(t):
		return r.buildPair(t)
	case t.Implements(marshalerType) && reflect.PointerTo(t).Implements(unmarshalerType):
		return buildMarshaler()
	}

	switch t.Kind() {
	case reflect.String:
		return &entry{
			encode: func(v reflect.Value) (Bytes, error) { return FromString(v.String()), nil },
			decode: func(b Bytes, v reflect.Value) error {
				s, err := decodeString(b, r.codec.strict)
				if err == nil {
					v.SetString(s)
				}
				return err
			},
		}
	case reflect.Bool:
		return &entry{
			encode: func(v reflect.Value) (Bytes, error) { return encodeBool(v.Bool()), nil },
			decode: func(b Bytes, v reflect.Value) error {
				x, err := decodeBool(b)
				if err == nil {
					v.SetBool(x)
				}
				return err
			},
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		size := int(t.Size())
		return &entry{
			encode: func(v reflect.Value) (Bytes, error) { return encodeUint(uint64(v.Int()), size), nil },
			decode: func(b Bytes, v reflect.Value) error {
				u, err := decodeUint(b, size)
				if err == nil {
					v.SetInt(signExtend(u, size))
				}
				return err
			},
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		size := int(t.Size())
		return &entry{
			encode: func(v reflect.Value) (Bytes, error) { return encodeUint(v.Uint(), size), nil },
			decode: func(b Bytes, v reflect.Value) error {
				u, err := decodeUint(b, size)
				if err == nil {
					v.SetUint(u)
				}
				return err
			},
		}
	case reflect.Float32:
		return &entry{
			encode: func(v reflect.Value) (Bytes, error) {
				return encodeUint(uint64(math.Float32bits(float32(v.Float()))), 4), nil
			},
			decode: func(b Bytes, v reflect.Value) error {
				u, err := decodeUint(b, 4)
				if err == nil {
					v.SetFloat(float64(math.Float32frombits(uint32(u))))
				}
				return err
			},
		}
	case reflect.Float64:
		return &entry{
			encode: func(v reflect.Value) (Bytes, error) { return encodeUint(math.Float64bits(v.Float()), 8), nil },
			decode: func(b Bytes, v reflect.Value) error {
				u, err := decodeUint(b, 8)
				if err == nil {
					v.SetFloat(math.Float64frombits(u))
				}
				return err
			},
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &entry{
				encode: func(v reflect.Value) (Bytes, error) { return FromSlice(v.Bytes()), nil },
				decode: func(b Bytes, v reflect.Value) error {
					v.SetBytes(decodeRaw(b))
					return nil
				},
			}
		}
		return r.buildSeq(t)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &entry{
				encode: func(v reflect.Value) (Bytes, error) {
					p := make([]byte, v.Len())
					for i := range p {
						p[i] = byte(v.Index(i).Uint())
					}
					return FromOwnedSlice(p), nil
				},
				decode: func(b Bytes, v reflect.Value) error {
					p := make([]byte, v.Len())
					if err := readExact(b, p); err != nil {
						return err
					}
					reflect.Copy(v, reflect.ValueOf(p))
					return nil
				},
			}
		}
		return r.buildSeq(t)
	case reflect.Map:
		return r.buildMap(t)
	}
	// check rejects every other kind before build is reached.
	panic(fmt.Sprintf("codec: no entry builder for %s", t))
}

func buildMarshaler() *entry {
	return &entry{
		encode: func(v reflect.Value) (Bytes, error) {
			p, err := v.Interface().(encoding.BinaryMarshaler).MarshalBinary()
			if err != nil {
				return Bytes{}, err
			}
			return FromOwnedSlice(p), nil
		},
		decode: func(b Bytes, v reflect.Value) error {
			if err := v.Addr().Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(decodeRaw(b)); err != nil {
				return fmt.Errorf("%w: %w", ErrDecode, err)
			}
			return nil
		},
	}
}

func (r *registry) buildPair(t reflect.Type) *entry {
	return &entry{
		encode: func(v reflect.Value) (Bytes, error) {
			first, err := r.encode(v.Field(0))
			if err != nil {
				return Bytes{}, err
			}
			second, err := r.encode(v.Field(1))
			if err != nil {
				return Bytes{}, err
			}
			return EncodePair(first, second), nil
		},
		decode: func(b Bytes, v reflect.Value) error {
			fb, sb, err := DecodePair(b)
			if err != nil {
				return err
			}
			out := reflect.New(t).Elem()
			if err := r.decode(fb, out.Field(0)); err != nil {
				return fmt.Errorf("pair first: %w", err)
			}
			if err := r.decode(sb, out.Field(1)); err != nil {
				return fmt.Errorf("pair second: %w", err)
			}
			v.Set(out)
			return nil
		},
	}
}

// buildSeq handles slices and arrays. Arrays must decode from exactly
// Len() frames.
func (r *registry) buildSeq(t reflect.Type) *entry {
	return &entry{
		encode: func(v reflect.Value) (Bytes, error) {
			elem, err := r.lookup(t.Elem())
			if err != nil {
				return Bytes{}, err
			}
			var failed error
			b := EncodeFromIter(func(yield func(Bytes) bool) {
				for i := 0; i < v.Len(); i++ {
					e, err := elem.encode(v.Index(i))
					if err != nil {
						failed = fmt.Errorf("element %d: %w", i, err)
						return
					}
					if !yield(e) {
						return
					}
				}
			})
			if failed != nil {
				return Bytes{}, failed
			}
			return b, nil
		},
		decode: func(b Bytes, v reflect.Value) error {
			elem, err := r.lookup(t.Elem())
			if err != nil {
				return err
			}
			out := reflect.Zero(t)
			if t.Kind() == reflect.Array {
				out = reflect.New(t).Elem()
			}
			it := b.Iter()
			i := 0
			for f := range it.All() {
				ev := reflect.New(t.Elem()).Elem()
				if err := elem.decode(f, ev); err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				if t.Kind() == reflect.Array {
					if i >= t.Len() {
						return fmt.Errorf("%w: %s holds %d elements, payload has more", ErrDecode, t, t.Len())
					}
					out.Index(i).Set(ev)
				} else {
					out = reflect.Append(out, ev)
				}
				i++
			}
			if err := it.Err(); err != nil {
				return err
			}
			if t.Kind() == reflect.Array && i != t.Len() {
				return fmt.Errorf("%w: %s holds %d elements, payload has %d", ErrDecode, t, t.Len(), i)
			}
			v.Set(out)
			return nil
		},
	}
}

// buildMap streams entries as pair frames. Later duplicates win.
func (r *registry) buildMap(t reflect.Type) *entry {
	return &entry{
		encode: func(v reflect.Value) (Bytes, error) {
			var failed error
			b := EncodeFromIter(func(yield func(Bytes) bool) {
				mi := v.MapRange()
				for mi.Next() {
					key, err := r.encode(mi.Key())
					if err != nil {
						failed = fmt.Errorf("map key: %w", err)
						return
					}
					val, err := r.encode(mi.Value())
					if err != nil {
						failed = fmt.Errorf("map value: %w", err)
						return
					}
					if !yield(EncodePair(key, val)) {
						return
					}
				}
			})
			if failed != nil {
				return Bytes{}, failed
			}
			return b, nil
		},
		decode: func(b Bytes, v reflect.Value) error {
			out := reflect.MakeMap(t)
			it := b.Iter()
			i := 0
			for f := range it.All() {
				kb, vb, err := DecodePair(f)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				key := reflect.New(t.Key()).Elem()
				if err := r.decode(kb, key); err != nil {
					return fmt.Errorf("entry %d key: %w", i, err)
				}
				val := reflect.New(t.Elem()).Elem()
				if err := r.decode(vb, val); err != nil {
					return fmt.Errorf("entry %d value: %w", i, err)
				}
				out.SetMapIndex(key, val)
				i++
			}
			if err := it.Err(); err != nil {
				return err
			}
			v.Set(out)
			return nil
		},
	}
}

func (r *registry) encode(v reflect.Value) (Bytes, error) {
	e, err := r.lookup(v.Type())
	if err != nil {
		return Bytes{}, err
	}
	return e.encode(v)
}

func (r *registry) decode(b Bytes, v reflect.Value) error {
	e, err := r.lookup(v.Type())
	if err != nil {
		return err
	}
	return e.decode(b, v)
}
