package parsers

// Parser reads a schedule spreadsheet.
type Parser interface {
	// Parse returns one row per scheduled match. fileName is used in errors.
	Parse(fileData []byte, fileName string) ([]ScheduleRow, error)
}

// ScheduleRow is one spreadsheet line describing a match.
type ScheduleRow struct {
	Line        int
	MatchDay    int
	MatchDate   string
	Home        string
	Away        string
	MatchType   string
	MatchFormat string
}
