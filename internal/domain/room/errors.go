package room

import "errors"

var (
	ErrInvalidRoom = errors.New("room must have a name and a positive capacity")
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
)
