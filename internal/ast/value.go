package ast

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind is the resolved kind of a prop value.
type ValueKind string

const (
	ValueString    ValueKind = "string"
	ValueNumber    ValueKind = "number"
	ValueBool      ValueKind = "boolean"
	ValueNull      ValueKind = "null"
	ValueUndefined ValueKind = "undefined"
	ValueArray     ValueKind = "array"
	ValueObject    ValueKind = "object"
	// ValueOpaque stands in for an expression too complex to resolve
	// statically. Source keeps the expression text.
	ValueOpaque ValueKind = "opaque"
)

// Value is a statically resolved literal, or an opaque marker.
type Value struct {
	Kind   ValueKind
	Str    string
	Num    float64
	Bool   bool
	Items  []Value
	Fields []Prop
	Source string
}

// Prop is a named value. Object fields and element props keep source order.
type Prop struct {
	Name  string
	Value Value
}

// Opaque builds an opaque marker for src.
func Opaque(src string) Value {
	return Value{Kind: ValueOpaque, Source: strings.TrimSpace(src)}
}

// IsOpaque reports whether v or anything nested in it is opaque.
func (v Value) IsOpaque() bool {
	switch v.Kind {
	case ValueOpaque:
		return true
	case ValueArray:
		for _, it := range v.Items {
			if it.IsOpaque() {
				return true
			}
		}
	case ValueObject:
		for _, f := range v.Fields {
			if f.Value.IsOpaque() {
				return true
			}
		}
	}
	return false
}

// Field looks up an object field.
func (v Value) Field(name string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Interface converts the value to plain Go data (map keys lose order).
func (v Value) Interface() any {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return v.Num
	case ValueBool:
		return v.Bool
	case ValueNull, ValueUndefined:
		return nil
	case ValueArray:
		out := make([]any, len(v.Items))
		for i, it := range v.Items {
			out[i] = it.Interface()
		}
		return out
	case ValueObject:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name] = f.Value.Interface()
		}
		return out
	default:
		return map[string]any{"$opaque": v.Source}
	}
}

// MarshalJSON writes objects with their fields in source order.
func (v Value) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	if err := v.writeJSON(&b); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (v Value) writeJSON(b *strings.Builder) error {
	switch v.Kind {
	case ValueObject:
		b.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(f.Name))
			b.WriteByte(':')
			if err := f.Value.writeJSON(b); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case ValueArray:
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := it.writeJSON(b); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	default:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return err
		}
		b.Write(data)
	}
	return nil
}

// AnimatedElement is one recognized use of the animation namespace or the
// reserved invocation.
type AnimatedElement struct {
	Tag   string `json:"tag"`
	Props []Prop `json:"-"`
	// Node is the tree node the element was extracted from.
	Node NodeID `json:"-"`
}

// Prop returns the named prop.
func (e AnimatedElement) Prop(name string) (Value, bool) {
	for _, p := range e.Props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// HasOpaque reports whether any prop could not be fully resolved.
func (e AnimatedElement) HasOpaque() bool {
	for _, p := range e.Props {
		if p.Value.IsOpaque() {
			return true
		}
	}
	return false
}

// MarshalJSON keeps props in source order.
func (e AnimatedElement) MarshalJSON() ([]byte, error) {
	obj := Value{Kind: ValueObject, Fields: e.Props}
	props, err := obj.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return []byte(`{"tag":` + strconv.Quote(e.Tag) + `,"props":` + string(props) + `}`), nil
}
