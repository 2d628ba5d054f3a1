package bcservice

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"sync"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/ThreeDotsLabs/watermill/message"
)

// FakeAPI serves canned search results keyed by uploader or player-id and
// records every call.
type FakeAPI struct {
	mu sync.Mutex

	Identity   bcclient.Identity
	PingErr    error
	Results    map[string][]bcdomain.Replay
	SearchErrs map[string]error
	Groups     map[string]bcclient.Group
	// Duplicates lists replay ids ballchasing already holds.
	Duplicates map[string]bool

	searched []string
	created  []string
	uploaded []string
	patched  []string
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		Identity:   bcclient.Identity{SteamID: "76561198000000001", Name: "league"},
		Results:    map[string][]bcdomain.Replay{},
		SearchErrs: map[string]error{},
		Groups:     map[string]bcclient.Group{},
		Duplicates: map[string]bool{},
	}
}

var _ API = (*FakeAPI)(nil)

func (f *FakeAPI) Ping(context.Context) (bcclient.Identity, error) {
	if f.PingErr != nil {
		return bcclient.Identity{}, f.PingErr
	}
	return f.Identity, nil
}

func searchKey(p bcclient.SearchParams) string {
	if p.Uploader != "" {
		return p.Uploader
	}
	return p.PlayerID
}

func (f *FakeAPI) SearchReplays(_ context.Context, p bcclient.SearchParams) iter.Seq2[bcdomain.Replay, error] {
	key := searchKey(p)
	f.mu.Lock()
	f.searched = append(f.searched, key)
	replays := f.Results[key]
	err := f.SearchErrs[key]
	f.mu.Unlock()

	return func(yield func(bcdomain.Replay, error) bool) {
		if err != nil {
			yield(bcdomain.Replay{}, err)
			return
		}
		for _, r := range replays {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (f *FakeAPI) Group(_ context.Context, groupID string) (bcclient.Group, error) {
	g, ok := f.Groups[groupID]
	if !ok {
		return bcclient.Group{}, &bcclient.APIError{StatusCode: http.StatusNotFound, Message: "not found"}
	}
	return g, nil
}

func (f *FakeAPI) EnsureChildGroup(_ context.Context, parentID, name string) (bcclient.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, name)
	id := parentID + "/" + strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return bcclient.Group{ID: id, Name: name, Link: bcclient.GroupLink(id)}, nil
}

func (f *FakeAPI) Upload(_ context.Context, fileName string, data []byte, _ string) (bcclient.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := string(data)
	f.uploaded = append(f.uploaded, fileName)
	if f.Duplicates[id] {
		return bcclient.UploadResult{ID: id, Duplicate: true}, nil
	}
	return bcclient.UploadResult{ID: "new-" + id}, nil
}

func (f *FakeAPI) PatchReplay(_ context.Context, replayID string, patch bcclient.ReplayPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	group := ""
	if patch.Group != nil {
		group = *patch.Group
	}
	f.patched = append(f.patched, replayID+"->"+group)
	return nil
}

func (f *FakeAPI) Download(_ context.Context, replayID string) ([]byte, error) {
	return []byte(replayID), nil
}

func (f *FakeAPI) Searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searched...)
}

func (f *FakeAPI) Created() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

func (f *FakeAPI) Uploaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploaded...)
}

func (f *FakeAPI) Patched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.patched...)
}

// FakeLeague is a fixed league: teams, rosters and captains.
type FakeLeague struct {
	Teams    []leagueservice.Team
	Rosters  map[string][]discord.Member
	Captains map[string]string
	Ranks    map[string]int
}

var _ LeagueDirectory = (*FakeLeague)(nil)

func (f *FakeLeague) TeamByName(_ context.Context, _ string, name string) (leagueservice.Team, error) {
	for _, t := range f.Teams {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return leagueservice.Team{}, fmt.Errorf("%w: %s", leagueservice.ErrTeamNotFound, name)
}

func (f *FakeLeague) TeamForUser(_ context.Context, _ string, userID string) (leagueservice.Team, discord.Member, error) {
	for _, t := range f.Teams {
		for _, m := range f.Rosters[t.Name] {
			if m.ID == userID {
				return t, m, nil
			}
		}
	}
	return leagueservice.Team{}, discord.Member{}, leagueservice.ErrNoTeamForMember
}

func (f *FakeLeague) Roster(_ context.Context, _ string, team leagueservice.Team) ([]discord.Member, error) {
	return f.Rosters[team.Name], nil
}

func (f *FakeLeague) Captain(_ context.Context, _ string, team leagueservice.Team) (discord.Member, bool, error) {
	id, ok := f.Captains[team.Name]
	if !ok {
		return discord.Member{}, false, nil
	}
	for _, m := range f.Rosters[team.Name] {
		if m.ID == id {
			return m, true, nil
		}
	}
	return discord.Member{}, false, nil
}

func (f *FakeLeague) TierRank(_ context.Context, _ string, tier string) (int, error) {
	rank, ok := f.Ranks[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %s", leagueservice.ErrTierNotFound, tier)
	}
	return rank, nil
}

// FakeMatches is an in-memory schedule.
type FakeMatches struct {
	mu      sync.Mutex
	Day     int
	Matches []scheduledomain.ScheduledMatch
}

var _ MatchDirectory = (*FakeMatches)(nil)

func (f *FakeMatches) MatchDay(context.Context, string) (int, error) { return f.Day, nil }

func (f *FakeMatches) TeamMatch(_ context.Context, _ string, team string, day int) (scheduledomain.ScheduledMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.Matches {
		if m.MatchDay == day && m.Involves(team) {
			return m, nil
		}
	}
	return scheduledomain.ScheduledMatch{}, scheduleservice.ErrMatchNotFound
}

func (f *FakeMatches) MatchByID(_ context.Context, _ string, matchID string) (scheduledomain.ScheduledMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.Matches {
		if m.ID == matchID {
			return m, nil
		}
	}
	return scheduledomain.ScheduledMatch{}, scheduleservice.ErrMatchNotFound
}

func (f *FakeMatches) UnreportedMatches(_ context.Context, _ string, day int) ([]scheduledomain.ScheduledMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []scheduledomain.ScheduledMatch
	for _, m := range f.Matches {
		if m.MatchDay == day && !m.Reported() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeMatches) AttachReport(_ context.Context, _ string, matchID string, report scheduledomain.MatchReport) (scheduledomain.ScheduledMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.Matches {
		if m.ID == matchID {
			f.Matches[i].Report = &report
			return f.Matches[i], nil
		}
	}
	return scheduledomain.ScheduledMatch{}, scheduleservice.ErrMatchNotFound
}

// FakeAccounts maps member ids to accounts. Errs are returned alongside any
// accounts for the member.
type FakeAccounts struct {
	ByMember map[string][]bcdomain.Account
	Errs     map[string]error
}

func (f *FakeAccounts) Accounts(_ context.Context, _ string, discordID string) ([]bcdomain.Account, error) {
	return f.ByMember[discordID], f.Errs[discordID]
}

// FakeBus records published topics.
type FakeBus struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
}

var _ eventbus.EventBus = (*FakeBus)(nil)

func NewFakeBus() *FakeBus {
	return &FakeBus{messages: map[string][]*message.Message{}}
}

func (b *FakeBus) Publish(topic string, messages ...*message.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[topic] = append(b.messages[topic], messages...)
	return nil
}

func (b *FakeBus) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return nil, fmt.Errorf("not supported")
}

func (b *FakeBus) Close() error { return nil }

func (b *FakeBus) Messages(topic string) []*message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*message.Message(nil), b.messages[topic]...)
}
