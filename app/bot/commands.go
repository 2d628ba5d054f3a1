package bot

import (
	"context"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/bwmarrin/discordgo"
)

type handlerFunc func(ctx context.Context, in *invocation) (reply, error)

type subcommand struct {
	option  *discordgo.ApplicationCommandOption
	handler handlerFunc
}

type command struct {
	name        string
	description string
	admin       bool
	subs        []subcommand
}

var adminPermission = int64(discordgo.PermissionManageServer)

func (c command) definition() *discordgo.ApplicationCommand {
	dm := false
	def := &discordgo.ApplicationCommand{
		Name:         c.name,
		Description:  c.description,
		DMPermission: &dm,
	}
	if c.admin {
		def.DefaultMemberPermissions = &adminPermission
	}
	for _, s := range c.subs {
		def.Options = append(def.Options, s.option)
	}
	return def
}

func sub(name, description string, h handlerFunc, opts ...*discordgo.ApplicationCommandOption) subcommand {
	return subcommand{
		option: &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: description,
			Options:     opts,
		},
		handler: h,
	}
}

func option(t discordgo.ApplicationCommandOptionType, name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: t, Name: name, Description: description, Required: required}
}

func stringOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return option(discordgo.ApplicationCommandOptionString, name, description, required)
}

func intOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	o := option(discordgo.ApplicationCommandOptionInteger, name, description, required)
	minValue := 1.0
	o.MinValue = &minValue
	return o
}

func boolOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return option(discordgo.ApplicationCommandOptionBoolean, name, description, required)
}

func categoryOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	o := option(discordgo.ApplicationCommandOptionChannel, name, description, required)
	o.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory}
	return o
}

func userOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return option(discordgo.ApplicationCommandOptionUser, name, description, required)
}

func roleOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return option(discordgo.ApplicationCommandOptionRole, name, description, required)
}

func channelOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	o := option(discordgo.ApplicationCommandOptionChannel, name, description, required)
	o.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	return o
}

func attachmentOpt(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return option(discordgo.ApplicationCommandOptionAttachment, name, description, required)
}

func choices(o *discordgo.ApplicationCommandOption, values ...string) *discordgo.ApplicationCommandOption {
	for _, v := range values {
		o.Choices = append(o.Choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return o
}

// commands is the full command tree.
func (b *Bot) commands() []command {
	return []command{
		{
			name:        "bc",
			description: "Ballchasing replay reporting",
			subs: []subcommand{
				sub("report", "Find and report your team's match for the current match day", b.handleReport,
					stringOpt("team", "Report this team's match instead of your own", false),
					intOpt("match_day", "Match day to report (defaults to the current one)", false),
				),
				sub("group", "Link to the league's ballchasing group", b.handleGroupLink),
				sub("accounts", "List the game accounts registered for a member", b.handleListAccounts,
					userOpt("member", "Member to look up (defaults to you)", false),
				),
				sub("register", "Register one of your game accounts for replay searches", b.handleRegisterAccount,
					choices(stringOpt("platform", "Account platform", true),
						bcdomain.PlatformSteam, bcdomain.PlatformEpic, bcdomain.PlatformXbox, bcdomain.PlatformPS4),
					stringOpt("id", "Account id (Steam id, Epic id, gamertag or PSN id)", true),
				),
				sub("unregister", "Remove one of your registered game accounts", b.handleUnregisterAccount,
					choices(stringOpt("platform", "Account platform", true),
						bcdomain.PlatformSteam, bcdomain.PlatformEpic, bcdomain.PlatformXbox, bcdomain.PlatformPS4),
					stringOpt("id", "Account id", true),
				),
			},
		},
		{
			name:        "bcadmin",
			description: "Ballchasing configuration",
			admin:       true,
			subs: []subcommand{
				sub("settoken", "Set the ballchasing upload token", b.handleSetAuthToken,
					stringOpt("token", "API token from ballchasing.com/upload", true),
				),
				sub("setgroup", "Set the top level ballchasing group", b.handleSetTopLevelGroup,
					stringOpt("group", "Group id or link", true),
				),
				sub("reportall", "Report every unreported match of a match day", b.handleReportAll,
					intOpt("match_day", "Match day to report (defaults to the current one)", false),
				),
				sub("replaychannel", "Set or clear the channel reported matches are posted to", b.handleSetReplayChannel,
					channelOpt("channel", "Channel (omit to clear)", false),
				),
				sub("statsrole", "Set or clear the stats manager role", b.handleSetStatsRole,
					roleOpt("role", "Role (omit to clear)", false),
				),
			},
		},
		{
			name:        "schedule",
			description: "League schedule",
			subs: []subcommand{
				sub("matchday", "Show the current match day", b.handleMatchDay),
				sub("matches", "List matches for a match day or a team", b.handleMatches,
					stringOpt("team", "Only this team's matches", false),
					intOpt("match_day", "Match day (defaults to the current one)", false),
				),
				sub("standings", "Show a tier's standings", b.handleStandings,
					stringOpt("tier", "Tier name", true),
				),
			},
		},
		{
			name:        "scheduleadmin",
			description: "Schedule management",
			admin:       true,
			subs: []subcommand{
				sub("add", "Schedule a match", b.handleAddMatch,
					intOpt("match_day", "Match day", true),
					stringOpt("date", "Match date, e.g. "+scheduledomain.DateLayout, true),
					stringOpt("home", "Home team", true),
					stringOpt("away", "Away team", true),
					choices(stringOpt("type", "Match type", false),
						scheduledomain.MatchTypeRegularSeason, scheduledomain.MatchTypePostseason, scheduledomain.MatchTypePreseason),
					stringOpt("format", "Match format, e.g. 4-GS or BO-5", false),
				),
				sub("import", "Import a CSV or XLSX schedule", b.handleImportSchedule,
					attachmentOpt("file", "Schedule file", true),
				),
				sub("setmatchday", "Set the current match day", b.handleSetMatchDay,
					intOpt("match_day", "Match day", true),
				),
				sub("remove", "Remove a scheduled match", b.handleRemoveMatch,
					stringOpt("match_id", "Match id", true),
				),
				sub("clear", "Remove every scheduled match", b.handleClearSchedule),
			},
		},
		{
			name:        "league",
			description: "League structure",
			subs: []subcommand{
				sub("tiers", "List tiers", b.handleTiers),
				sub("teams", "List teams", b.handleTeams,
					stringOpt("tier", "Only this tier", false),
				),
				sub("roster", "Show a team's roster", b.handleRoster,
					stringOpt("team", "Team name", true),
				),
			},
		},
		{
			name:        "leagueadmin",
			description: "League structure management",
			admin:       true,
			subs: []subcommand{
				sub("addtier", "Register a tier", b.handleAddTier, stringOpt("name", "Tier role name", true)),
				sub("removetier", "Remove a tier and its teams", b.handleRemoveTier, stringOpt("name", "Tier name", true)),
				sub("addteam", "Register a team", b.handleAddTeam,
					stringOpt("team", "Team name", true),
					stringOpt("gm", "General manager name from the franchise role", true),
					stringOpt("tier", "Tier", true),
				),
				sub("removeteam", "Remove a team", b.handleRemoveTeam, stringOpt("team", "Team name", true)),
				sub("setprefix", "Set a franchise nickname prefix", b.handleSetPrefix,
					stringOpt("gm", "General manager name", true),
					stringOpt("prefix", "Prefix", true),
				),
			},
		},
		{
			name:        "settings",
			description: "Guild settings",
			admin:       true,
			subs: []subcommand{
				sub("timezone", "Set the time zone match dates are read in", b.handleSetTimeZone,
					stringOpt("zone", "IANA name or abbreviation, e.g. America/Chicago or CST", true),
				),
				sub("logchannel", "Set or clear the bot log channel", b.handleSetLogChannel,
					channelOpt("channel", "Channel (omit to clear)", false),
				),
				sub("show", "Show the bot configuration for this guild", b.handleShowSettings),
			},
		},
		{
			name:        "dm",
			description: "Direct messages",
			admin:       true,
			subs: []subcommand{
				sub("member", "Send a member a direct message", b.handleDMMember,
					userOpt("member", "Recipient", true),
					stringOpt("message", "Message", true),
				),
				sub("role", "Send every member of a role a direct message", b.handleDMRole,
					roleOpt("role", "Recipients", true),
					stringOpt("message", "Message", true),
				),
				sub("failedrole", "Set or clear the role given to members who cannot be messaged", b.handleSetDMFailedRole,
					roleOpt("role", "Role (omit to clear)", false),
				),
				sub("noticechannel", "Set or clear where unreachable members are pinged", b.handleSetDMNoticeChannel,
					channelOpt("channel", "Channel (omit to clear)", false),
				),
			},
		},
		{
			name:        "trans",
			description: "Transactions",
			admin:       true,
			subs: []subcommand{
				sub("sign", "Sign a member to a team", b.handleSign,
					userOpt("member", "Player", true),
					stringOpt("team", "Team", true),
				),
				sub("cut", "Cut a member from a team", b.handleCut,
					userOpt("member", "Player", true),
					stringOpt("team", "Team", true),
					stringOpt("fa_tier", "Free agent tier (defaults to the team's tier)", false),
				),
				sub("trade", "Swap two players between their teams", b.handleTrade,
					userOpt("member", "First player", true),
					stringOpt("team", "Team the first player joins", true),
					userOpt("member2", "Second player", true),
					stringOpt("team2", "Team the second player joins", true),
				),
				sub("channel", "Set or clear the transaction channel", b.handleSetTransChannel,
					channelOpt("channel", "Channel (omit to clear)", false),
				),
				sub("cutmessage", "Set or clear the message sent to cut players", b.handleSetCutMessage,
					stringOpt("message", "Message; may use {player}, {franchise}, {gm}, {team} and {tier}", false),
				),
			},
		},
		{
			name:        "fa",
			description: "Free agent availability",
			subs: []subcommand{
				sub("checkin", "Let GMs know you can play on the current match day", b.handleCheckIn),
				sub("checkout", "Take yourself off the current match day's availability list", b.handleCheckOut),
				sub("availability", "List the free agents checked in for a tier", b.handleAvailability,
					stringOpt("tier", "Tier name", true),
					intOpt("match_day", "Match day (defaults to the current one)", false),
				),
			},
		},
		{
			name:        "faadmin",
			description: "Free agent availability management",
			admin:       true,
			subs: []subcommand{
				sub("clear", "Clear check-ins for a match day", b.handleClearAvailability,
					stringOpt("tier", "Only this tier", false),
					intOpt("match_day", "Match day (defaults to the current one)", false),
				),
				sub("clearall", "Clear every check-in of every match day", b.handleClearAllAvailability),
			},
		},
		{
			name:        "mod",
			description: "Join screening and welcome messages",
			admin:       true,
			subs: []subcommand{
				sub("botdetection", "Turn bot account screening of new members on or off", b.handleSetBotDetection,
					boolOpt("enabled", "Screen joining members", true),
				),
				sub("welcome", "Set or clear the message posted when a member joins", b.handleSetWelcomeMessage,
					stringOpt("message", "Message; may use {member} and {guild} (omit to clear)", false),
				),
				sub("eventlog", "Set or clear the channel kicks are logged in", b.handleSetEventLogChannel,
					channelOpt("channel", "Channel (omit to clear)", false),
				),
				sub("blacklist", "Flag new accounts whose name contains this text", b.handleBlacklistName,
					stringOpt("name", "Name fragment", true),
				),
				sub("unblacklist", "Stop flagging a name fragment", b.handleUnblacklistName,
					stringOpt("name", "Name fragment", true),
				),
				sub("blacklisted", "List the blacklisted name fragments", b.handleShowBlacklist),
				sub("whitelist", "Exempt a user from join screening", b.handleWhitelistUser,
					userOpt("member", "User", true),
				),
				sub("unwhitelist", "Screen a whitelisted user again", b.handleUnwhitelistUser,
					userOpt("member", "User", true),
				),
				sub("whitelisted", "List users exempt from join screening", b.handleShowWhitelist),
				sub("recentjoins", "List usernames that joined in the last few minutes", b.handleRecentJoins),
			},
		},
		{
			name:        "ticket",
			description: "Modmail tickets",
			admin:       true,
			subs: []subcommand{
				sub("assign", "Move this ticket to the staff group that handles it", b.handleAssignTicket,
					choices(stringOpt("kind", "Staff group", true), ticketKinds...),
				),
				sub("category", "Set or clear where tickets of a kind are moved", b.handleSetTicketCategory,
					choices(stringOpt("kind", "Staff group", true), ticketKinds...),
					categoryOpt("category", "Category (omit to clear)", false),
				),
				sub("role", "Set or clear the role pinged for tickets of a kind", b.handleSetTicketRole,
					choices(stringOpt("kind", "Staff group", true), ticketKinds...),
					roleOpt("role", "Role (omit to clear)", false),
				),
				sub("show", "Show ticket routing", b.handleShowTickets),
			},
		},
	}
}

// commandTable flattens the tree into definitions and a route table.
func commandTable(cmds []command) ([]*discordgo.ApplicationCommand, map[string]handlerFunc) {
	defs := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	routes := map[string]handlerFunc{}
	for _, c := range cmds {
		defs = append(defs, c.definition())
		for _, s := range c.subs {
			routes[routeKey(c.name, s.option.Name)] = s.handler
		}
	}
	return defs, routes
}
