package dmservice

import (
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
)

// Origin is the command that asked for a direct message.
type Origin struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	RequesterID string
}

// Link points back at the requesting message, or at its channel when the
// message id is unknown (slash command interactions have none).
func (o Origin) Link() string {
	if o.MessageID == "" {
		return discord.ChannelMention(o.ChannelID)
	}
	return "[ctx link](" + discord.MessageLink(o.GuildID, o.ChannelID, o.MessageID) + ")"
}

// Request is one queued direct message.
type Request struct {
	GuildID     string
	RecipientID string
	Message     discord.Message
	Origin      *Origin
	Priority    bool
}

func (r Request) validate() error {
	if r.RecipientID == "" {
		return ErrNoRecipient
	}
	if r.Message.Content == "" && r.Message.Embed == nil && len(r.Message.Files) == 0 {
		return ErrEmptyMessage
	}
	return nil
}

type failedDelivery struct {
	Request
	Err error
	At  time.Time
}

// Failure is the business failure payload for dm operations.
type Failure struct {
	Err error
}

func (f Failure) Error() string { return f.Err.Error() }

// Depth is a snapshot of the two lanes.
type Depth struct {
	Priority int `json:"priority"`
	Normal   int `json:"normal"`
}
