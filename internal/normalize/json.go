package normalize

import "github.com/tidwall/gjson"

type member struct {
	key   string
	value gjson.Result
}

// members returns the members of obj in document order. A key repeated in the
// same object keeps its first position and takes its last value.
func members(obj gjson.Result) []member {
	if !obj.IsObject() {
		return nil
	}
	var out []member
	index := make(map[string]int)
	obj.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if i, ok := index[key]; ok {
			out[i].value = v
			return true
		}
		index[key] = len(out)
		out = append(out, member{key: key, value: v})
		return true
	})
	return out
}

// Member returns the value stored under key when obj is an object. The result
// does not exist (Exists() == false) for any other input.
func Member(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	if !obj.IsObject() {
		return found
	}
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return found
}

func isNonEmptyObject(r gjson.Result) bool {
	if !r.IsObject() {
		return false
	}
	empty := true
	r.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return !empty
}

// isSet reports whether r holds a value that counts as given: not null, not
// false, not zero, not "" and not an empty object or array.
func isSet(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		set := false
		r.ForEach(func(_, _ gjson.Result) bool {
			set = true
			return false
		})
		return set
	default:
		return false
	}
}
