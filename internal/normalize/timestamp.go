package normalize

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var timestampFields = []string{"received_at", "time", "timestamp"}

// Layouts tried after RFC 3339. Fractional seconds of any precision are
// accepted by time.Parse when the layout has none. Values without an offset
// are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ExtractTimestamp returns the uplink time recorded by the network server.
//
// The first of received_at, time and timestamp holding a value decides. A
// string is parsed; a non-string or an unparseable string is absent, and
// later fields are not consulted.
func ExtractTimestamp(payload gjson.Result) (time.Time, bool) {
	for _, field := range timestampFields {
		v := Member(payload, field)
		if !isSet(v) {
			continue
		}
		if v.Type != gjson.String {
			return time.Time{}, false
		}
		return ParseTime(v.Str)
	}
	return time.Time{}, false
}

// ParseTime parses an ISO-8601 date or date-time. RFC 3339 with any
// fractional precision, a space instead of "T", minute precision and bare
// dates are accepted; values without an offset are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "Z"
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	// RFC 3339 with a space separator.
	if len(s) > 10 && s[10] == ' ' {
		if t, err := time.Parse(time.RFC3339Nano, s[:10]+"T"+s[11:]); err == nil {
			return t, true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
