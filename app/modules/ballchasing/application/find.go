package bcservice

import (
	"context"
	"fmt"
	"log/slog"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/elliotchance/pie/v2"
)

// DiscoverySummary is a read-only snapshot of a search.
type DiscoverySummary struct {
	IsValidSet       bool     `json:"is_valid_set"`
	GamesFound       int      `json:"games_found"`
	HomeWins         int      `json:"home_wins"`
	AwayWins         int      `json:"away_wins"`
	Winner           string   `json:"winner,omitempty"`
	Summary          string   `json:"summary"`
	ReplayIDs        []string `json:"replay_ids,omitempty"`
	AccountsSearched int      `json:"accounts_searched"`
	PlayersSearched  int      `json:"players_searched"`
}

// Summarize snapshots a discovery state.
func Summarize(st *bcdomain.DiscoveryState) *DiscoverySummary {
	return &DiscoverySummary{
		IsValidSet:       st.IsValidSet,
		GamesFound:       st.GamesFound(),
		HomeWins:         st.HomeWins,
		AwayWins:         st.AwayWins,
		Winner:           st.Winner,
		Summary:          st.Summary(),
		ReplayIDs:        append([]string(nil), st.MatchReplayIDs...),
		AccountsSearched: len(st.AccountsSearched),
		PlayersSearched:  len(st.PlayersSearched),
	}
}

// FindMatchReplays searches the rostered players' uploads for the match's
// games. It stops as soon as the match format is satisfied; otherwise it
// returns the partial state after every account has been searched. Finding
// nothing is not an error.
func (s *BallchasingService) FindMatchReplays(ctx context.Context, guildID string, match scheduledomain.ScheduledMatch, invokerID string) (*bcdomain.DiscoveryState, error) {
	api, err := s.registry.Client(ctx, guildID)
	if err != nil {
		return nil, err
	}
	loc, err := settingsservice.Location(ctx, s.store, guildID)
	if err != nil {
		return nil, err
	}
	date, err := match.Date(loc)
	if err != nil {
		return nil, fmt.Errorf("match %s has an invalid date %q: %w", match.ID, match.MatchDate, err)
	}
	after, before := bcdomain.SearchWindow(date, loc)

	members, err := s.MatchPlayers(ctx, guildID, match, invokerID)
	if err != nil {
		return nil, err
	}
	players := s.ResolveAccounts(ctx, guildID, members)

	state := bcdomain.NewDiscoveryState(match)
	for _, p := range players {
		for _, account := range p.Accounts {
			if pie.Contains(state.AccountsSearched, account.PlayerFilter()) {
				continue
			}
			params := bcclient.MatchSearch(after, before, s.searchCount)
			if id, ok := account.UploaderID(); ok {
				params.Uploader = id
			} else {
				params.PlayerID = account.PlayerFilter()
			}

			if err := s.scan(ctx, api, params, state); err != nil {
				return state, err
			}
			state.SearchedAccount(account.PlayerFilter())
			if state.IsValidSet {
				s.logger.InfoContext(ctx, "Match replays found",
					slog.String("guild_id", guildID),
					slog.String("match_id", match.ID),
					slog.String("summary", state.Summary()),
					slog.Int("accounts_searched", len(state.AccountsSearched)),
				)
				return state, nil
			}
		}
		state.SearchedPlayer(p.Member.ID)
	}

	s.logger.InfoContext(ctx, "Match replay search exhausted",
		slog.String("guild_id", guildID),
		slog.String("match_id", match.ID),
		slog.Int("games_found", state.GamesFound()),
		slog.Int("players_searched", len(state.PlayersSearched)),
	)
	return state, nil
}

func (s *BallchasingService) scan(ctx context.Context, api API, params bcclient.SearchParams, state *bcdomain.DiscoveryState) error {
	scanned := 0
	defer func() { s.metrics.RecordReplaysScanned(ctx, scanned) }()

	for replay, err := range api.SearchReplays(ctx, params) {
		if err != nil {
			return fmt.Errorf("replay search failed: %w", err)
		}
		scanned++
		outcome := state.Record(replay)
		s.metrics.RecordReconciliation(ctx, outcome.String())
		if outcome == bcdomain.SidesAmbiguous {
			s.logger.DebugContext(ctx, "Skipping replay with ambiguous sides",
				slog.String("replay_id", replay.ID),
				slog.String("blue", replay.Blue.Name),
				slog.String("orange", replay.Orange.Name),
			)
		}
		if state.IsValidSet {
			return nil
		}
	}
	return nil
}
