package governance

import "errors"

// ErrAlreadyDecided is returned when a human decision targets a record
// that has already reached a terminal state, including when a
// concurrent decision won the transition race.
var ErrAlreadyDecided = errors.New("decision already finalized")

// ErrExpired is returned when a human decision arrives after the
// record's expiry time. The record is transitioned to expired as a
// side effect; no further mutation is permitted.
var ErrExpired = errors.New("decision expired before a human acted")

// ErrInvalidConfig is returned when a governance config update fails
// validation. The update is rejected outright and the previous config
// remains active.
var ErrInvalidConfig = errors.New("invalid governance config")
