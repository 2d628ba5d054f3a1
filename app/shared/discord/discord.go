// Package discord is the narrow view of the Discord API the league modules
// depend on, with an adapter over a discordgo session.
package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Member is a guild member.
type Member struct {
	ID       string
	Username string
	Nick     string
	RoleIDs  []string
}

// DisplayName is the guild nickname, falling back to the username.
func (m Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.Username
}

// HasRole reports whether the member holds the role.
func (m Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

func (m Member) Mention() string { return UserMention(m.ID) }

// Role is a guild role. Higher Position sorts above lower.
type Role struct {
	ID       string
	Name     string
	Position int
}

func (r Role) Mention() string { return RoleMention(r.ID) }

// Guild is the guild metadata the bot reads.
type Guild struct {
	ID              string
	Name            string
	OwnerID         string
	SystemChannelID string
}

// Message is an outbound channel or direct message.
type Message struct {
	Content string
	Embed   *discordgo.MessageEmbed
	Files   []*discordgo.File
}

// Client is the subset of Discord operations used by the bot.
type Client interface {
	Roles(ctx context.Context, guildID string) ([]Role, error)
	CreateRole(ctx context.Context, guildID, name string) (Role, error)
	Members(ctx context.Context, guildID string) ([]Member, error)
	Member(ctx context.Context, guildID, userID string) (Member, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	SetNickname(ctx context.Context, guildID, userID, nickname string) error
	Send(ctx context.Context, channelID string, msg Message) (string, error)
	Edit(ctx context.Context, channelID, messageID string, msg Message) error
	Delete(ctx context.Context, channelID, messageID string) error
	SendDirect(ctx context.Context, userID string, msg Message) error
	Guild(ctx context.Context, guildID string) (Guild, error)
	Kick(ctx context.Context, guildID, userID, reason string) error
	// MoveChannel puts a channel under a category and syncs its permission
	// overwrites with the category's.
	MoveChannel(ctx context.Context, channelID, categoryID string) error
}

func UserMention(userID string) string { return "<@" + userID + ">" }

func ChannelMention(channelID string) string { return "<#" + channelID + ">" }

func RoleMention(roleID string) string { return "<@&" + roleID + ">" }

// MessageLink builds a jump link to a guild message.
func MessageLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// RoleByName finds a role by case-insensitive name.
func RoleByName(roles []Role, name string) (Role, bool) {
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Role{}, false
}

// MembersWithRoles returns members holding every listed role.
func MembersWithRoles(members []Member, roleIDs ...string) []Member {
	var out []Member
	for _, m := range members {
		ok := true
		for _, id := range roleIDs {
			if !m.HasRole(id) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, m)
		}
	}
	return out
}
