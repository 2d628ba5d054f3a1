package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/valyala/fasthttp"
)

const (
	maxAttachmentSize = 4 << 20
	downloadTimeout   = 30 * time.Second
)

var errAttachmentTooLarge = errors.New("attachment is too large")

// download fetches an attachment from Discord's CDN.
func (b *Bot) download(ctx context.Context, a *discordgo.MessageAttachment) ([]byte, error) {
	if a.Size > maxAttachmentSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", errAttachmentTooLarge, a.Filename, a.Size)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(a.URL)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(downloadTimeout)
	}
	if err := b.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", a.Filename, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("failed to download %s: status %d", a.Filename, resp.StatusCode())
	}
	body := resp.Body()
	if len(body) > maxAttachmentSize {
		return nil, fmt.Errorf("%w: %s", errAttachmentTooLarge, a.Filename)
	}
	return append([]byte(nil), body...), nil
}
