package scheduledomain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FormatType is the series type of a match.
type FormatType string

const (
	// GameSeries plays exactly N games.
	GameSeries FormatType = "GS"
	// BestOf ends once one side reaches a majority of N.
	BestOf FormatType = "BO"
)

var ErrInvalidMatchFormat = errors.New("invalid match format")

// MatchFormat is a parsed "4-GS" / "BO-5" style format.
type MatchFormat struct {
	Type  FormatType
	Games int
}

var (
	formatCountFirst = regexp.MustCompile(`^(\d+)\s*-\s*(GS|BO)$`)
	formatTypeFirst  = regexp.MustCompile(`^(GS|BO)\s*-\s*(\d+)$`)
)

// ParseMatchFormat accepts "N-GS", "N-BO", "GS-N" and "BO-N" in any case.
// Best-of formats need an odd game count.
func ParseMatchFormat(s string) (MatchFormat, error) {
	in := strings.ToUpper(strings.TrimSpace(s))

	var typ, count string
	if m := formatCountFirst.FindStringSubmatch(in); m != nil {
		count, typ = m[1], m[2]
	} else if m := formatTypeFirst.FindStringSubmatch(in); m != nil {
		typ, count = m[1], m[2]
	} else {
		return MatchFormat{}, fmt.Errorf("%w: %q", ErrInvalidMatchFormat, s)
	}

	n, err := strconv.Atoi(count)
	if err != nil || n <= 0 {
		return MatchFormat{}, fmt.Errorf("%w: game count must be positive in %q", ErrInvalidMatchFormat, s)
	}
	f := MatchFormat{Type: FormatType(typ), Games: n}
	if f.Type == BestOf && n%2 == 0 {
		return MatchFormat{}, fmt.Errorf("%w: best-of needs an odd game count in %q", ErrInvalidMatchFormat, s)
	}
	return f, nil
}

// MustParseMatchFormat is ParseMatchFormat for constants and tests.
func MustParseMatchFormat(s string) MatchFormat {
	f, err := ParseMatchFormat(s)
	if err != nil {
		panic(err)
	}
	return f
}

// WinsNeeded is the win count that decides a best-of series.
// For a game series it is the full game count.
func (f MatchFormat) WinsNeeded() int {
	if f.Type == BestOf {
		return f.Games/2 + 1
	}
	return f.Games
}

// IsComplete reports whether the accumulated wins satisfy the format.
func (f MatchFormat) IsComplete(homeWins, awayWins int) bool {
	switch f.Type {
	case GameSeries:
		return homeWins+awayWins == f.Games
	case BestOf:
		return homeWins == f.WinsNeeded() || awayWins == f.WinsNeeded()
	default:
		return false
	}
}

// Code is the canonical "N-TYPE" form.
func (f MatchFormat) Code() string {
	return fmt.Sprintf("%d-%s", f.Games, f.Type)
}

func (f MatchFormat) String() string {
	if f.Type == BestOf {
		return fmt.Sprintf("best of %d", f.Games)
	}
	return fmt.Sprintf("%d game series", f.Games)
}

// MarshalText stores the canonical code.
func (f MatchFormat) MarshalText() ([]byte, error) {
	return []byte(f.Code()), nil
}

func (f *MatchFormat) UnmarshalText(b []byte) error {
	parsed, err := ParseMatchFormat(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
