package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const membersPageSize = 1000

// Session adapts a discordgo session to Client.
type Session struct {
	s *discordgo.Session
}

func NewSession(s *discordgo.Session) *Session {
	return &Session{s: s}
}

var _ Client = (*Session)(nil)

func (d *Session) Roles(ctx context.Context, guildID string) ([]Role, error) {
	roles, err := d.s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild roles: %w", err)
	}
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRole(r))
	}
	return out, nil
}

func (d *Session) CreateRole(ctx context.Context, guildID, name string) (Role, error) {
	mentionable := true
	r, err := d.s.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        name,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return Role{}, fmt.Errorf("failed to create role %q: %w", name, err)
	}
	return toRole(r), nil
}

// Members pages through the full member list.
func (d *Session) Members(ctx context.Context, guildID string) ([]Member, error) {
	var (
		out   []Member
		after string
	)
	for {
		page, err := d.s.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list guild members: %w", err)
		}
		for _, m := range page {
			out = append(out, toMember(m))
		}
		if len(page) < membersPageSize {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (d *Session) Member(ctx context.Context, guildID, userID string) (Member, error) {
	m, err := d.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return Member{}, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}
	return toMember(m), nil
}

func (d *Session) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Session) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Session) SetNickname(ctx context.Context, guildID, userID, nickname string) error {
	return d.s.GuildMemberNickname(guildID, userID, nickname, discordgo.WithContext(ctx))
}

func (d *Session) Send(ctx context.Context, channelID string, msg Message) (string, error) {
	send := &discordgo.MessageSend{Content: msg.Content, Files: msg.Files}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{msg.Embed}
	}
	m, err := d.s.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (d *Session) Edit(ctx context.Context, channelID, messageID string, msg Message) error {
	edit := discordgo.NewMessageEdit(channelID, messageID).SetContent(msg.Content)
	if msg.Embed != nil {
		edit = edit.SetEmbed(msg.Embed)
	}
	_, err := d.s.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return err
}

func (d *Session) Delete(ctx context.Context, channelID, messageID string) error {
	return d.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (d *Session) SendDirect(ctx context.Context, userID string, msg Message) error {
	ch, err := d.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	_, err = d.Send(ctx, ch.ID, msg)
	return err
}

func (d *Session) Guild(ctx context.Context, guildID string) (Guild, error) {
	if d.s.State != nil {
		if g, err := d.s.State.Guild(guildID); err == nil {
			return toGuild(g), nil
		}
	}
	g, err := d.s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return Guild{}, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	return toGuild(g), nil
}

func (d *Session) Kick(ctx context.Context, guildID, userID, reason string) error {
	return d.s.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (d *Session) MoveChannel(ctx context.Context, channelID, categoryID string) error {
	category, err := d.s.Channel(categoryID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch category %s: %w", categoryID, err)
	}
	if category.Type != discordgo.ChannelTypeGuildCategory {
		return fmt.Errorf("channel %s is not a category", categoryID)
	}
	_, err = d.s.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
		ParentID:             category.ID,
		PermissionOverwrites: category.PermissionOverwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to move channel %s: %w", channelID, err)
	}
	return nil
}

func toGuild(g *discordgo.Guild) Guild {
	return Guild{ID: g.ID, Name: g.Name, OwnerID: g.OwnerID, SystemChannelID: g.SystemChannelID}
}

func toRole(r *discordgo.Role) Role {
	return Role{ID: r.ID, Name: r.Name, Position: r.Position}
}

func toMember(m *discordgo.Member) Member {
	out := Member{Nick: m.Nick, RoleIDs: m.Roles}
	if m.User != nil {
		out.ID = m.User.ID
		out.Username = m.User.Username
	}
	return out
}
