// Package deviceid validates device IDs.
//
// A device ID ends up inside record store keys ("configs/<id>") and MQTT
// topics ("<prefix>/devices/<id>/log"), so anything that would change the
// shape of either is rejected.
package deviceid

import (
	"errors"
	"fmt"
	"strings"
)

// MaxLength is the longest device ID accepted, in bytes.
const MaxLength = 128

// ErrInvalid is returned when a device ID is empty, too long, or could
// address a path or topic outside its own.
var ErrInvalid = errors.New("device: invalid id")

// Validate checks that id can be used as a device ID.
func Validate(id string) error {
	if id == "" {
		return fmt.Errorf("%w: deviceId is required", ErrInvalid)
	}
	if len(id) > MaxLength {
		return fmt.Errorf("%w: deviceId exceeds %d characters", ErrInvalid, MaxLength)
	}
	if strings.ContainsAny(id, "/\\\x00+#") {
		return fmt.Errorf("%w: deviceId contains a forbidden character", ErrInvalid)
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("%w: deviceId must not contain \"..\"", ErrInvalid)
	}
	return nil
}
