package bot

import (
	"context"
	"strconv"

	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/bwmarrin/discordgo"
)

// setOptionalID stores the id given in option opt under key, or clears the
// key when the option was omitted.
func (b *Bot) setOptionalID(ctx context.Context, in *invocation, key, opt, label string, mention func(string) string) (reply, error) {
	id := in.OptionalString(opt)
	if err := settingsservice.Set(ctx, b.svc.Settings, in.GuildID, key, id); err != nil {
		return reply{}, err
	}
	return optionalIDReply(label, id, mention), nil
}

func (b *Bot) handleSetTimeZone(ctx context.Context, in *invocation) (reply, error) {
	zone, err := settingsservice.SetTimeZone(ctx, b.svc.Settings, in.GuildID, in.String("zone"))
	if err != nil {
		return userError(err, settingsservice.ErrInvalidTimeZone)
	}
	return textReply("Time zone set to " + zone + "."), nil
}

func (b *Bot) handleSetLogChannel(ctx context.Context, in *invocation) (reply, error) {
	return b.setOptionalID(ctx, in, settingsservice.KeyLogChannel, "channel", "Log channel", discord.ChannelMention)
}

func (b *Bot) handleShowSettings(ctx context.Context, in *invocation) (reply, error) {
	st := b.svc.Settings
	embed := &discordgo.MessageEmbed{Title: "League Bot Settings", Color: colorInfo}
	field := func(name, value string) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true})
	}

	for _, s := range []struct {
		name    string
		key     string
		mention func(string) string
	}{
		{"Log Channel", settingsservice.KeyLogChannel, discord.ChannelMention},
		{"Replay Channel", settingsservice.KeyReplayDumpChannel, discord.ChannelMention},
		{"Stats Manager Role", settingsservice.KeyStatsManagerRole, discord.RoleMention},
		{"Transaction Channel", settingsservice.KeyTransChannel, discord.ChannelMention},
		{"DM Failed Role", settingsservice.KeyDMFailedRole, discord.RoleMention},
		{"DM Notice Channel", settingsservice.KeyDMNoticeChannel, discord.ChannelMention},
		{"Event Log Channel", settingsservice.KeyEventLogChannel, discord.ChannelMention},
	} {
		v, err := settingsservice.GetString(ctx, st, in.GuildID, s.key)
		if err != nil {
			return reply{}, err
		}
		if v == nil {
			field(s.name, "Not set")
		} else {
			field(s.name, s.mention(*v))
		}
	}

	loc, err := settingsservice.Location(ctx, st, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	field("Time Zone", loc.String())

	day, err := b.svc.Schedule.MatchDay(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	field("Match Day", strconv.Itoa(day))

	token, err := settingsservice.GetString(ctx, st, in.GuildID, settingsservice.KeyAuthToken)
	if err != nil {
		return reply{}, err
	}
	field("Ballchasing Token", setOrNot(token != nil))

	group, err := settingsservice.GetString(ctx, st, in.GuildID, settingsservice.KeyTopLevelGroup)
	if err != nil {
		return reply{}, err
	}
	if group == nil {
		field("Top Level Group", "Not set")
	} else {
		field("Top Level Group", bcclient.GroupLink(*group))
	}

	detection, err := b.svc.Moderation.BotDetection(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	field("Bot Detection", onOff(detection))

	cut, err := settingsservice.GetString(ctx, st, in.GuildID, settingsservice.KeyCutMessage)
	if err != nil {
		return reply{}, err
	}
	field("Cut Message", setOrNot(cut != nil))
	return reply{Embed: embed}, nil
}

func setOrNot(ok bool) string {
	if ok {
		return "Set"
	}
	return "Not set"
}

func onOff(ok bool) string {
	if ok {
		return "On"
	}
	return "Off"
}
