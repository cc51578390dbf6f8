package cqcode

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	codePrefix = "[CQ:"
	codeSuffix = "]"
)

type field struct {
	key   string
	value any
}

// Code is a single inline code: a type name plus an ordered set of fields.
// Keys are unique; setting an existing key overwrites its value in place.
type Code struct {
	Type string

	fields []field
	index  map[string]int
}

// New returns an empty code of the given type.
func New(typ string) *Code {
	return &Code{
		Type:  typ,
		index: map[string]int{},
	}
}

// NewWithFields returns a code of the given type with fields applied via SetMany.
func NewWithFields(typ string, fields map[string]any) *Code {
	return New(typ).SetMany(fields)
}

// Get returns the value stored under key.
func (c *Code) Get(key string) (any, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.fields[i].value, true
}

// GetString returns the textual form of the value stored under key, or an
// empty string when the key is absent or nil.
func (c *Code) GetString(key string) string {
	v, ok := c.Get(key)
	if !ok || v == nil {
		return ""
	}
	return formatValue(v)
}

// Set stores value under key and returns c for chaining. A nil value is kept
// but omitted from the serialized form.
func (c *Code) Set(key string, value any) *Code {
	if c.index == nil {
		c.index = map[string]int{}
	}
	if i, ok := c.index[key]; ok {
		c.fields[i].value = value
		return c
	}
	c.index[key] = len(c.fields)
	c.fields = append(c.fields, field{key: key, value: value})
	return c
}

// SetMany sets every entry of fields. Map iteration order is random, so keys
// are applied in sorted order to keep serialization stable.
func (c *Code) SetMany(fields map[string]any) *Code {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Set(k, fields[k])
	}
	return c
}

// Delete removes key. It is a no-op when key is absent.
func (c *Code) Delete(key string) {
	i, ok := c.index[key]
	if !ok {
		return
	}
	c.fields = append(c.fields[:i], c.fields[i+1:]...)
	delete(c.index, key)
	for j := i; j < len(c.fields); j++ {
		c.index[c.fields[j].key] = j
	}
}

// Keys returns the field keys in insertion order, including nil-valued ones.
func (c *Code) Keys() []string {
	keys := make([]string, 0, len(c.fields))
	for _, f := range c.fields {
		keys = append(keys, f.key)
	}
	return keys
}

// Len returns the number of stored fields.
func (c *Code) Len() int {
	return len(c.fields)
}

// Pick returns the non-nil fields named in keys. Missing keys are skipped.
func (c *Code) Pick(keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := c.Get(k); ok && v != nil {
			out[k] = v
		}
	}
	return out
}

// String serializes the code into its markup form.
func (c *Code) String() string {
	var b strings.Builder
	b.WriteString(codePrefix)
	b.WriteString(c.Type)
	for _, f := range c.fields {
		if f.value == nil {
			continue
		}
		b.WriteByte(',')
		b.WriteString(Escape(f.key, true))
		b.WriteByte('=')
		if s, ok := f.value.(string); ok {
			b.WriteString(Escape(s, true))
		} else {
			b.WriteString(formatValue(f.value))
		}
	}
	b.WriteString(codeSuffix)
	return b.String()
}

// Equal reports whether c and other serialize to the same markup.
func (c *Code) Equal(other *Code) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.String() == other.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
