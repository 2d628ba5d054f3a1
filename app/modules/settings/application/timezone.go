package settingsservice

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const DefaultTimeZone = "America/New_York"

var timezoneAbbreviations = map[string]string{
	"PST": "America/Los_Angeles",
	"PDT": "America/Los_Angeles",
	"MST": "America/Denver",
	"MDT": "America/Denver",
	"CST": "America/Chicago",
	"CDT": "America/Chicago",
	"EST": "America/New_York",
	"EDT": "America/New_York",
	"UTC": "UTC",
}

// ResolveTimeZone maps user input to a loadable IANA zone name.
func ResolveTimeZone(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTimeZone)
	}
	if name, ok := timezoneAbbreviations[strings.ToUpper(input)]; ok {
		return name, nil
	}
	if _, err := time.LoadLocation(input); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeZone, input)
	}
	return input, nil
}

// SetTimeZone validates and stores the guild time zone.
func SetTimeZone(ctx context.Context, st Store, guildID, input string) (string, error) {
	name, err := ResolveTimeZone(input)
	if err != nil {
		return "", err
	}
	if err := Set(ctx, st, guildID, KeyTimeZone, name); err != nil {
		return "", err
	}
	return name, nil
}

// Location returns the guild's configured location.
func Location(ctx context.Context, st Store, guildID string) (*time.Location, error) {
	name, err := Get(ctx, st, guildID, KeyTimeZone, DefaultTimeZone)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, name)
	}
	return loc, nil
}
