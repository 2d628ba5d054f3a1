package parsers

import (
	"fmt"
	"strconv"
	"strings"
)

// column aliases accepted in the header row, after normalization.
var columnAliases = map[string][]string{
	"matchday":    {"matchday", "day", "md"},
	"matchdate":   {"matchdate", "date"},
	"home":        {"home", "hometeam"},
	"away":        {"away", "awayteam"},
	"matchtype":   {"matchtype", "type"},
	"matchformat": {"matchformat", "format"},
}

var requiredColumns = []string{"matchday", "matchdate", "home", "away"}

func normalizeHeader(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(col)
}

// rowsToSchedule maps a header row plus data rows onto ScheduleRow values.
func rowsToSchedule(rows [][]string, fileName string) ([]ScheduleRow, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s must contain a header and at least one match row", fileName)
	}

	idx := map[string]int{}
	for i, col := range rows[0] {
		n := normalizeHeader(col)
		for canonical, aliases := range columnAliases {
			for _, a := range aliases {
				if n == a {
					idx[canonical] = i
				}
			}
		}
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%s is missing the %q column", fileName, c)
		}
	}

	cell := func(row []string, canonical string) string {
		i, ok := idx[canonical]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []ScheduleRow
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		day, err := strconv.Atoi(cell(row, "matchday"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: match day %q is not a number", fileName, line, cell(row, "matchday"))
		}
		out = append(out, ScheduleRow{
			Line:        line,
			MatchDay:    day,
			MatchDate:   cell(row, "matchdate"),
			Home:        cell(row, "home"),
			Away:        cell(row, "away"),
			MatchType:   cell(row, "matchtype"),
			MatchFormat: cell(row, "matchformat"),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no matches found in %s", fileName)
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
