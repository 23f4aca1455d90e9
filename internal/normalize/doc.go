// Package normalize turns network-server uplink messages into flat numeric
// observations.
//
// Every function in this package is pure and total: malformed or unexpected
// input yields an absent or empty result, never an error or a panic. Deciding
// whether an empty result is a failure belongs to the caller.
//
// JSON is walked through gjson so that object members are visited in document
// order:
//
//	payload := gjson.ParseBytes(body)
//	eui, ok := normalize.ExtractIdentity(payload)
//	origin, data := normalize.SelectPayload(normalize.Member(payload, "uplink_message"))
//	items := normalize.Flatten(data, "")
package normalize
