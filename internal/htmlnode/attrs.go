package htmlnode

import "strings"

// Attr is a single HTML attribute.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an ordered attribute list with unique keys. The zero value is an
// empty list ready to use.
type Attrs struct {
	list []Attr
}

// NewAttrs builds an attribute list from alternating key/value strings.
// A trailing key without a value is ignored.
func NewAttrs(kv ...string) Attrs {
	var a Attrs
	for i := 0; i+1 < len(kv); i += 2 {
		a = a.Set(kv[i], kv[i+1])
	}
	return a
}

// Set returns a copy of a with key set to value. An existing key keeps its
// position.
func (a Attrs) Set(key, value string) Attrs {
	out := a.Clone()
	for i := range out.list {
		if out.list[i].Key == key {
			out.list[i].Value = value
			return out
		}
	}
	out.list = append(out.list, Attr{Key: key, Value: value})
	return out
}

// Get returns the value for key.
func (a Attrs) Get(key string) (string, bool) {
	for _, at := range a.list {
		if at.Key == key {
			return at.Value, true
		}
	}
	return "", false
}

// Len returns the number of attributes.
func (a Attrs) Len() int { return len(a.list) }

// Each calls fn for every attribute in insertion order.
func (a Attrs) Each(fn func(key, value string)) {
	for _, at := range a.list {
		fn(at.Key, at.Value)
	}
}

// Clone returns an independent copy.
func (a Attrs) Clone() Attrs {
	if len(a.list) == 0 {
		return Attrs{}
	}
	return Attrs{list: append([]Attr(nil), a.list...)}
}

// HTML serializes the attributes as ` key="value"` pairs. Values are not
// escaped.
func (a Attrs) HTML() string {
	var sb strings.Builder
	for _, at := range a.list {
		sb.WriteByte(' ')
		sb.WriteString(at.Key)
		sb.WriteString(`="`)
		sb.WriteString(at.Value)
		sb.WriteByte('"')
	}
	return sb.String()
}

func (a Attrs) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, at := range a.list {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(at.Key)
		sb.WriteString(": ")
		sb.WriteString(at.Value)
	}
	sb.WriteByte('}')
	return sb.String()
}
