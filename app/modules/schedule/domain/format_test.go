package scheduledomain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMatchFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    MatchFormat
		wantErr bool
	}{
		{in: "4-GS", want: MatchFormat{Type: GameSeries, Games: 4}},
		{in: "gs-4", want: MatchFormat{Type: GameSeries, Games: 4}},
		{in: "BO-5", want: MatchFormat{Type: BestOf, Games: 5}},
		{in: "7-bo", want: MatchFormat{Type: BestOf, Games: 7}},
		{in: " BO - 3 ", want: MatchFormat{Type: BestOf, Games: 3}},
		{in: "BO-4", wantErr: true},
		{in: "0-GS", wantErr: true},
		{in: "GS", wantErr: true},
		{in: "4-XX", wantErr: true},
		{in: "BO-5-GS", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMatchFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMatchFormat) {
					t.Fatalf("expected ErrInvalidMatchFormat, got %v (%+v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseMatchFormat(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchFormat_IsComplete(t *testing.T) {
	tests := []struct {
		format     string
		home, away int
		want       bool
	}{
		{"4-GS", 2, 1, false},
		{"4-GS", 2, 2, true},
		{"4-GS", 4, 0, true},
		{"4-GS", 3, 2, false},
		{"BO-5", 2, 2, false},
		{"BO-5", 3, 0, true},
		{"BO-5", 1, 3, true},
		{"BO-7", 3, 3, false},
		{"BO-7", 4, 3, true},
		{"BO-1", 0, 1, true},
	}
	for _, tt := range tests {
		f := MustParseMatchFormat(tt.format)
		if got := f.IsComplete(tt.home, tt.away); got != tt.want {
			t.Errorf("%s.IsComplete(%d, %d) = %v, want %v", tt.format, tt.home, tt.away, got, tt.want)
		}
	}
}

func TestMatchFormat_JSON(t *testing.T) {
	m := ScheduledMatch{ID: "m1", MatchFormat: MustParseMatchFormat("bo-5")}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var back ScheduledMatch
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.MatchFormat != (MatchFormat{Type: BestOf, Games: 5}) {
		t.Errorf("format after JSON = %+v", back.MatchFormat)
	}
}

func TestWinnerAndSummary(t *testing.T) {
	if got := Winner("A", 3, 1, "B"); got != "A" {
		t.Errorf("Winner = %q", got)
	}
	if got := Winner("A", 2, 2, "B"); got != "" {
		t.Errorf("drawn Winner = %q", got)
	}
	if got := Summary("Sharks", 3, 1, "Owls"); got != "**Sharks** 3 - 1 **Owls**" {
		t.Errorf("Summary = %q", got)
	}
}
