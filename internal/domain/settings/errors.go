package settings

import "errors"

var (
	ErrHourOutOfRange          = errors.New("hours must be between 0 and 23")
	ErrOpeningNotBeforeClosing = errors.New("opening hour must be before closing hour")
)
