package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
)

var emptyObject = gjson.Parse("{}")

// SelectPayload picks the representation of an uplink_message to flatten.
//
// A normalized payload (its "data" member when that is an object) is preferred
// because it carries units; the decoded payload is the fallback. Uplinks with
// neither, such as join events, select OriginNone and an empty object.
func SelectPayload(uplink gjson.Result) (models.Origin, gjson.Result) {
	normalized := Member(uplink, "normalized_payload")
	if isNonEmptyObject(normalized) {
		data := normalized
		if inner := Member(normalized, "data"); inner.IsObject() {
			data = inner
		}
		if isNonEmptyObject(data) {
			return models.OriginNormalized, data
		}
	}

	if decoded := Member(uplink, "decoded_payload"); isNonEmptyObject(decoded) {
		return models.OriginDecoded, decoded
	}

	return models.OriginNone, emptyObject
}
