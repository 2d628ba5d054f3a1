package settingsservice

import "errors"

var (
	// ErrInvalidTimeZone indicates the input is neither a known abbreviation nor an IANA zone.
	ErrInvalidTimeZone = errors.New("invalid time zone")
	// ErrDecode indicates a stored value no longer matches the requested type.
	ErrDecode = errors.New("stored setting has unexpected shape")
)
