package mqtt

import "errors"

var (
	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrSubscribeFailed is returned when the uplink subscription fails.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")
)
