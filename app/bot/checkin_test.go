package bot

import (
	"testing"

	checkinservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/checkin/application"
	ticketservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/tickets/application"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityReply(t *testing.T) {
	r := availabilityReply(checkinservice.Availability{
		Tier:     "Premier",
		MatchDay: 4,
		Players: []checkinservice.Player{
			{ID: "1", Name: "fabian"},
			{ID: "2", Name: "gus", Permanent: true},
		},
	})
	require.Equal(t, "Availability for Premier tier on match day 4:", r.Embed.Title)
	require.Equal(t, "fabian\ngus (Permanent FA)", r.Embed.Description)

	r = availabilityReply(checkinservice.Availability{Tier: "Master", MatchDay: 1})
	require.Equal(t, "No free agents have checked in.", r.Embed.Description)
}

func TestTitleKind(t *testing.T) {
	require.Equal(t, "Numbers", titleKind(ticketservice.KindNumbers))
	require.Equal(t, "", titleKind(""))
}
