package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
)

// identityPaths lists where a device EUI may appear, highest priority first.
var identityPaths = [][]string{
	{"end_device_ids", "dev_eui"},
	{"end_device_ids", "device_id"},
	{"devEUI"},
	{"dev_eui"},
	{"eui"},
}

// ExtractIdentity returns the device EUI carried by an uplink payload.
//
// Missing, null, false, zero and empty values fall through to the next
// location. The first location holding anything else decides: a string is
// returned trimmed, any other type or a blank string means no EUI.
func ExtractIdentity(payload gjson.Result) (string, bool) {
	for _, path := range identityPaths {
		v := payload
		for _, key := range path {
			v = Member(v, key)
		}
		if !isSet(v) {
			continue
		}
		if v.Type != gjson.String {
			return "", false
		}
		eui := strings.TrimSpace(v.Str)
		return eui, eui != ""
	}
	return "", false
}
