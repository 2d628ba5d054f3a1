package bot

import (
	"bytes"
	"fmt"
	"math"

	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorFromHex("2C2F33")
	chartText       = drawing.ColorFromHex("FFFFFF")
	chartBar        = drawing.ColorFromHex("3498DB")
	chartLeader     = drawing.ColorFromHex("F1C40F")
)

// renderStandingsChart draws match wins per team as a PNG bar chart. The
// standings must already be ranked.
func renderStandingsChart(tier string, standings []scheduledomain.Standing) ([]byte, error) {
	if len(standings) == 0 {
		return nil, fmt.Errorf("no standings for %s", tier)
	}

	top := 1.0
	bars := make([]chart.Value, 0, len(standings))
	for i, st := range standings {
		color := chartBar
		if i == 0 {
			color = chartLeader
		}
		bars = append(bars, chart.Value{
			Label: st.Team,
			Value: float64(st.MatchWins),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		top = math.Max(top, float64(st.MatchWins))
	}

	graph := chart.BarChart{
		Title:      tier + " Standings",
		TitleStyle: chart.Style{FontColor: chartText},
		Width:      max(480, 100*len(bars)+160),
		Height:     400,
		BarWidth:   50,
		BarSpacing: 40,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis:  chart.Style{FontColor: chartText, StrokeColor: chartText},
		YAxis: chart.YAxis{
			Name:           "Match Wins",
			Style:          chart.Style{FontColor: chartText, StrokeColor: chartText},
			Range:          &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v any) string { return fmt.Sprintf("%.0f", v) },
		},
		Bars: bars,
	}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
