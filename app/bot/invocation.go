package bot

import (
	"errors"
	"strings"

	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"github.com/bwmarrin/discordgo"
)

// invocation is a decoded slash command.
type invocation struct {
	GuildID    string
	ChannelID  string
	UserID     string
	Command    string
	Subcommand string

	options  map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved *discordgo.ApplicationCommandInteractionDataResolved
}

func newInvocation(i *discordgo.InteractionCreate) *invocation {
	data := i.ApplicationCommandData()
	in := &invocation{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Command:   data.Name,
		options:   map[string]*discordgo.ApplicationCommandInteractionDataOption{},
		resolved:  data.Resolved,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		in.UserID = i.Member.User.ID
	case i.User != nil:
		in.UserID = i.User.ID
	}

	opts := data.Options
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		in.Subcommand = opts[0].Name
		opts = opts[0].Options
	}
	for _, o := range opts {
		in.options[o.Name] = o
	}
	return in
}

// route is the handler key, "command" or "command subcommand".
func (in *invocation) route() string {
	return routeKey(in.Command, in.Subcommand)
}

func routeKey(command, sub string) string {
	if sub == "" {
		return command
	}
	return command + " " + sub
}

func (in *invocation) Has(name string) bool {
	_, ok := in.options[name]
	return ok
}

func (in *invocation) String(name string) string {
	o, ok := in.options[name]
	if !ok {
		return ""
	}
	s, _ := o.Value.(string)
	return strings.TrimSpace(s)
}

// OptionalString is nil when the option was not given.
func (in *invocation) OptionalString(name string) *string {
	if !in.Has(name) {
		return nil
	}
	s := in.String(name)
	return &s
}

func (in *invocation) Int(name string) int {
	o, ok := in.options[name]
	if !ok {
		return 0
	}
	switch v := o.Value.(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (in *invocation) Bool(name string) bool {
	o, ok := in.options[name]
	if !ok {
		return false
	}
	v, _ := o.Value.(bool)
	return v
}

// ID returns the snowflake of a user, role or channel option.
func (in *invocation) ID(name string) string {
	return in.String(name)
}

// Attachment resolves an attachment option.
func (in *invocation) Attachment(name string) (*discordgo.MessageAttachment, bool) {
	id := in.String(name)
	if id == "" || in.resolved == nil {
		return nil, false
	}
	a, ok := in.resolved.Attachments[id]
	return a, ok
}

// reply is what a handler sends back to the invoking user.
type reply struct {
	Content string
	Embed   *discordgo.MessageEmbed
	Files   []*discordgo.File
}

func textReply(content string) reply {
	return reply{Content: content}
}

func errorReply(err error) reply {
	return reply{Content: ":x: " + err.Error()}
}

// resultReply renders a failure as an error reply and a success with ok.
func resultReply[S any, F error](r results.OperationResult[S, F], ok func(S) reply) reply {
	if r.Failure != nil {
		return errorReply(*r.Failure)
	}
	if r.Success == nil {
		return textReply("Done")
	}
	return ok(*r.Success)
}

func (r reply) webhookEdit() *discordgo.WebhookEdit {
	edit := &discordgo.WebhookEdit{Content: &r.Content, Files: r.Files}
	if r.Embed != nil {
		edit.Embeds = &[]*discordgo.MessageEmbed{r.Embed}
	}
	return edit
}

const (
	colorInfo    = 0x3498DB
	colorSuccess = 0x2ECC71
)

// userError turns errors caused by the invoker's input into an error reply.
// Anything else is returned for the dispatcher to log.
func userError(err error, targets ...error) (reply, error) {
	for _, t := range targets {
		if errors.Is(err, t) {
			return errorReply(err), nil
		}
	}
	return reply{}, err
}

func listOrNone(lines []string) string {
	if len(lines) == 0 {
		return "None"
	}
	return truncate(strings.Join(lines, "\n"), embedFieldLimit)
}

// embedFieldLimit is Discord's cap on an embed field value.
const embedFieldLimit = 1024

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
