// Package discordtest provides an in-memory discord.Client for tests.
package discordtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
)

var ErrDMClosed = errors.New("cannot send messages to this user")

// SentMessage is a message recorded by the fake.
type SentMessage struct {
	ChannelID string
	MessageID string
	Message   discord.Message
	Deleted   bool
}

// FakeClient is a programmable in-memory guild.
type FakeClient struct {
	mu sync.Mutex

	trace   []string
	roles   map[string][]discord.Role
	members map[string][]discord.Member
	sent    []SentMessage
	dms     map[string][]discord.Message
	guilds  map[string]discord.Guild
	kicked  map[string][]string
	parents map[string]string
	nextID  int

	// ClosedDMs lists users whose DMs fail.
	ClosedDMs map[string]bool

	SendFunc       func(ctx context.Context, channelID string, msg discord.Message) (string, error)
	SendDirectFunc func(ctx context.Context, userID string, msg discord.Message) error
	KickFunc       func(ctx context.Context, guildID, userID, reason string) error
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		roles:     map[string][]discord.Role{},
		members:   map[string][]discord.Member{},
		dms:       map[string][]discord.Message{},
		guilds:    map[string]discord.Guild{},
		kicked:    map[string][]string{},
		parents:   map[string]string{},
		ClosedDMs: map[string]bool{},
	}
}

var _ discord.Client = (*FakeClient)(nil)

func (f *FakeClient) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeClient) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// AddRoleDef seeds a guild role.
func (f *FakeClient) AddRoleDef(guildID string, r discord.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[guildID] = append(f.roles[guildID], r)
}

// AddMember seeds a guild member.
func (f *FakeClient) AddMember(guildID string, m discord.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[guildID] = append(f.members[guildID], m)
}

// AddGuild seeds guild metadata.
func (f *FakeClient) AddGuild(g discord.Guild) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guilds[g.ID] = g
}

// Kicked returns the users kicked from a guild, in order.
func (f *FakeClient) Kicked(guildID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.kicked[guildID]...)
}

// ChannelParent returns the category a channel was last moved to.
func (f *FakeClient) ChannelParent(channelID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parents[channelID]
}

// Sent returns every channel message sent so far.
func (f *FakeClient) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

// DMs returns the direct messages delivered to a user.
func (f *FakeClient) DMs(userID string) []discord.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]discord.Message, len(f.dms[userID]))
	copy(out, f.dms[userID])
	return out
}

// MemberState returns the current state of a seeded member.
func (f *FakeClient) MemberState(guildID, userID string) (discord.Member, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members[guildID] {
		if m.ID == userID {
			return m, true
		}
	}
	return discord.Member{}, false
}

func (f *FakeClient) Roles(_ context.Context, guildID string) ([]discord.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Roles")
	return append([]discord.Role(nil), f.roles[guildID]...), nil
}

func (f *FakeClient) CreateRole(_ context.Context, guildID, name string) (discord.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateRole")
	f.nextID++
	r := discord.Role{ID: fmt.Sprintf("role-%d", f.nextID), Name: name}
	f.roles[guildID] = append(f.roles[guildID], r)
	return r, nil
}

func (f *FakeClient) Members(_ context.Context, guildID string) ([]discord.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Members")
	out := make([]discord.Member, 0, len(f.members[guildID]))
	for _, m := range f.members[guildID] {
		m.RoleIDs = append([]string(nil), m.RoleIDs...)
		out = append(out, m)
	}
	return out, nil
}

func (f *FakeClient) Member(_ context.Context, guildID, userID string) (discord.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Member")
	for _, m := range f.members[guildID] {
		if m.ID == userID {
			m.RoleIDs = append([]string(nil), m.RoleIDs...)
			return m, nil
		}
	}
	return discord.Member{}, fmt.Errorf("member %s not found", userID)
}

func (f *FakeClient) AddRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddRole")
	return f.updateMember(guildID, userID, func(m *discord.Member) {
		if !m.HasRole(roleID) {
			m.RoleIDs = append(m.RoleIDs, roleID)
		}
	})
}

func (f *FakeClient) RemoveRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RemoveRole")
	return f.updateMember(guildID, userID, func(m *discord.Member) {
		kept := m.RoleIDs[:0]
		for _, id := range m.RoleIDs {
			if id != roleID {
				kept = append(kept, id)
			}
		}
		m.RoleIDs = kept
	})
}

func (f *FakeClient) SetNickname(_ context.Context, guildID, userID, nickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetNickname")
	return f.updateMember(guildID, userID, func(m *discord.Member) { m.Nick = nickname })
}

func (f *FakeClient) updateMember(guildID, userID string, fn func(*discord.Member)) error {
	members := f.members[guildID]
	for i := range members {
		if members[i].ID == userID {
			fn(&members[i])
			return nil
		}
	}
	return fmt.Errorf("member %s not found", userID)
}

func (f *FakeClient) Send(ctx context.Context, channelID string, msg discord.Message) (string, error) {
	f.mu.Lock()
	f.record("Send")
	fn := f.SendFunc
	f.mu.Unlock()
	if fn != nil {
		if _, err := fn(ctx, channelID, msg); err != nil {
			return "", err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	f.sent = append(f.sent, SentMessage{ChannelID: channelID, MessageID: id, Message: msg})
	return id, nil
}

func (f *FakeClient) Edit(_ context.Context, channelID, messageID string, msg discord.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Edit")
	for i := range f.sent {
		if f.sent[i].MessageID == messageID && f.sent[i].ChannelID == channelID {
			f.sent[i].Message = msg
			return nil
		}
	}
	return fmt.Errorf("message %s not found", messageID)
}

func (f *FakeClient) Delete(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Delete")
	for i := range f.sent {
		if f.sent[i].MessageID == messageID && f.sent[i].ChannelID == channelID {
			f.sent[i].Deleted = true
			return nil
		}
	}
	return fmt.Errorf("message %s not found", messageID)
}

func (f *FakeClient) SendDirect(ctx context.Context, userID string, msg discord.Message) error {
	f.mu.Lock()
	f.record("SendDirect")
	fn := f.SendDirectFunc
	closed := f.ClosedDMs[userID]
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, userID, msg); err != nil {
			return err
		}
	}
	if closed {
		return ErrDMClosed
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.dms[userID] = append(f.dms[userID], msg)
	return nil
}

// SetDMClosed toggles whether DMs to the user fail.
func (f *FakeClient) SetDMClosed(userID string, closed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClosedDMs[userID] = closed
}

func (f *FakeClient) Guild(_ context.Context, guildID string) (discord.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Guild")
	g, ok := f.guilds[guildID]
	if !ok {
		return discord.Guild{}, fmt.Errorf("guild %s not found", guildID)
	}
	return g, nil
}

func (f *FakeClient) Kick(ctx context.Context, guildID, userID, reason string) error {
	f.mu.Lock()
	f.record("Kick")
	fn := f.KickFunc
	f.mu.Unlock()
	if fn != nil {
		if err := fn(ctx, guildID, userID, reason); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicked[guildID] = append(f.kicked[guildID], userID)
	kept := f.members[guildID][:0]
	for _, m := range f.members[guildID] {
		if m.ID != userID {
			kept = append(kept, m)
		}
	}
	f.members[guildID] = kept
	return nil
}

func (f *FakeClient) MoveChannel(_ context.Context, channelID, categoryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MoveChannel")
	f.parents[channelID] = categoryID
	return nil
}
