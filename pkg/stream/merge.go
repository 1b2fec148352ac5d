package stream

import "reflect"

// Record is an open-ended key/value state.
type Record map[string]any

// MergeRecord returns a new Record holding every key of current, with the
// keys of partial overwriting same-named ones. Values are not merged
// recursively. A new map is returned even when partial is empty.
func MergeRecord(current, partial Record) Record {
	out := make(Record, len(current)+len(partial))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// NewRecord creates a Record store using MergeRecord. A nil initial state
// is replaced by an empty Record.
func NewRecord(initial Record, opts ...Option) *Store[Record] {
	if initial == nil {
		initial = Record{}
	}
	return New(initial, MergeRecord, opts...)
}

// Clone returns a copy of r that can be modified without affecting r.
func (r Record) Clone() Record {
	return MergeRecord(r, nil)
}

// MergeStruct merges struct states one level deep: every non-zero
// exported field of partial replaces the same field of current as a whole.
// Maps, slices, pointers and nested structs are replaced, never merged
// into, and nothing reachable from current is written. Zero-valued fields
// of partial, including empty maps and slices, are treated as absent, so a
// field cannot be reset to its zero value through MergeStruct. When S is
// not a struct the current state is returned.
func MergeStruct[S any](current, partial S) S {
	out := current
	dst := reflect.ValueOf(&out).Elem()
	if dst.Kind() != reflect.Struct {
		return current
	}
	src := reflect.ValueOf(partial)
	fields := dst.Type()
	for i := 0; i < fields.NumField(); i++ {
		if !fields.Field(i).IsExported() {
			continue
		}
		if v := src.Field(i); !absent(v) {
			dst.Field(i).Set(v)
		}
	}
	return out
}

func absent(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		return v.Len() == 0
	}
	return v.IsZero()
}

// NewStruct creates a struct store using MergeStruct.
func NewStruct[S any](initial S, opts ...Option) *Store[S] {
	return New(initial, MergeStruct[S], opts...)
}
