package settingsservice

// Guild setting keys.
const (
	KeyAuthToken         = "AuthToken"
	KeyTopLevelGroup     = "TopLevelGroup"
	KeyReplayDumpChannel = "ReplayDumpChannel"
	KeyTimeZone          = "TimeZone"
	KeyLogChannel        = "LogChannel"
	KeyStatsManagerRole  = "StatsManagerRole"
	KeyPlayerAccounts    = "PlayerAccounts"

	KeySchedules   = "Schedules"
	KeyMatchDay    = "MatchDay"
	KeyLobbyHashes = "LobbyHashes"

	KeyTiers     = "Tiers"
	KeyTeams     = "Teams"
	KeyTeamRoles = "TeamRoles"
	KeyPrefixes  = "Prefixes"

	KeyTransChannel = "TransChannel"
	KeyCutMessage   = "CutMessage"

	KeyDMFailedRole    = "DMFailedRole"
	KeyDMNoticeChannel = "DMNoticeChannel"

	KeyCheckIns = "CheckIns"

	KeyEventLogChannel = "EventLogChannel"
	KeyWelcomeMessage  = "WelcomeMessage"
	KeyBotDetection    = "BotDetection"
	KeyBlacklistNames  = "BlacklistedNames"
	KeyWhitelistUsers  = "WhitelistedUsers"

	KeyTicketCategories = "TicketCategories"
	KeyTicketRoles      = "TicketRoles"
)
