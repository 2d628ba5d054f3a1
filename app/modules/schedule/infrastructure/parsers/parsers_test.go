package parsers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

var wantRows = []ScheduleRow{
	{Line: 2, MatchDay: 1, MatchDate: "March 4, 2024", Home: "Sharks", Away: "Owls", MatchType: "Regular Season", MatchFormat: "4-GS"},
	{Line: 4, MatchDay: 2, MatchDate: "March 6, 2024", Home: "Owls", Away: "Sharks", MatchType: "Regular Season", MatchFormat: "BO-5"},
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	if _, err := f.GetParser("Schedule.CSV"); err != nil {
		t.Errorf("csv: %v", err)
	}
	if _, err := f.GetParser("schedule.xlsx"); err != nil {
		t.Errorf("xlsx: %v", err)
	}
	if _, err := f.GetParser("schedule.pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestCSVParser(t *testing.T) {
	data := strings.Join([]string{
		"Match Day,Match Date,Home,Away,Match Type,Match Format",
		`1,"March 4, 2024",Sharks,Owls,Regular Season,4-GS`,
		",,,,,",
		`2,"March 6, 2024",Owls,Sharks,Regular Season,BO-5`,
	}, "\n")

	got, err := NewCSVParser().Parse([]byte(data), "schedule.csv")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantRows, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "header only", data: "day,date,home,away", want: "at least one match row"},
		{name: "missing column", data: "day,date,home\n1,x,y", want: `"away"`},
		{name: "bad day", data: "day,date,home,away\nfirst,x,y,z", want: "not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVParser().Parse([]byte(tt.data), "s.csv")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestXLSXParser(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"match_day", "date", "home_team", "away_team", "type", "format"},
		{1, "March 4, 2024", "Sharks", "Owls", "Regular Season", "4-GS"},
		{},
		{2, "March 6, 2024", "Owls", "Sharks", "Regular Season", "BO-5"},
	})

	got, err := NewXLSXParser().Parse(data, "schedule.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantRows, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
