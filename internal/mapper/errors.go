package mapper

import "errors"

// Fatal payload defects. Mappers wrap these with provider context; callers
// match with errors.Is.
var (
	ErrMissingCoordinates = errors.New("missing coordinates")
	ErrMissingTimestamp   = errors.New("missing timestamp")
	ErrEmptyPayload       = errors.New("empty payload")
	ErrNoDevice           = errors.New("no matching device")
)
