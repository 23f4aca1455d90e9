package normalize

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Item is one numeric leaf found by Flatten.
type Item struct {
	Name  string
	Value float64
	Unit  *string
	Path  string
}

// Flatten walks an arbitrary JSON value depth first and returns its numeric
// leaves.
//
// Objects shaped like {"value": <number>, "unit": "..."} are leaves: they
// yield one item and their other members are ignored. Object members are
// visited in document order and array elements by index; paths are built as
// "a.b" and "a[0]". Strings, booleans and nulls yield nothing.
func Flatten(value gjson.Result, prefix string) []Item {
	var out []Item
	flatten(value, prefix, &out)
	return out
}

func flatten(v gjson.Result, prefix string, out *[]Item) {
	switch {
	case v.IsObject():
		if inner := Member(v, "value"); inner.Type == gjson.Number {
			var unit *string
			if u := Member(v, "unit"); u.Type == gjson.String {
				s := u.Str
				unit = &s
			}
			*out = append(*out, leaf(prefix, inner.Num, unit))
			return
		}
		for _, m := range members(v) {
			path := m.key
			if prefix != "" {
				path = prefix + "." + m.key
			}
			flatten(m.value, path, out)
		}
	case v.IsArray():
		for i, elem := range v.Array() {
			flatten(elem, prefix+"["+strconv.Itoa(i)+"]", out)
		}
	case v.Type == gjson.Number:
		*out = append(*out, leaf(prefix, v.Num, nil))
	}
}

func leaf(path string, value float64, unit *string) Item {
	if path == "" {
		path = "value"
	}
	return Item{Name: variableName(path), Value: value, Unit: unit, Path: path}
}

// variableName is the last dotted segment of path without index suffixes,
// so "soil.moisture[2]" is named "moisture".
func variableName(path string) string {
	name := path
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "value"
	}
	return name
}
