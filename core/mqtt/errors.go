package mqtt

import "errors"

// ErrNotConnected is returned when an operation needs a live connection.
var ErrNotConnected = errors.New("mqtt client not connected")
