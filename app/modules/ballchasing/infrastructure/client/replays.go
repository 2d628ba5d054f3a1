package bcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"mime/multipart"
	"strconv"
	"time"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	"github.com/valyala/fasthttp"
)

// Search defaults for league matches.
const (
	PlaylistPrivate = "private"
	SortByDate      = "replay-date"
	SortDesc        = "desc"

	// maxSearchPages bounds how far a single search follows pagination.
	maxSearchPages = 20
)

// SearchParams filters a replay search. Exactly one of Uploader or PlayerID
// is normally set.
type SearchParams struct {
	Playlist string
	SortBy   string
	SortDir  string
	After    time.Time
	Before   time.Time
	Uploader string
	PlayerID string
	Count    int
}

// MatchSearch is the league search: private lobbies in a window, newest first.
func MatchSearch(after, before time.Time, count int) SearchParams {
	return SearchParams{
		Playlist: PlaylistPrivate,
		SortBy:   SortByDate,
		SortDir:  SortDesc,
		After:    after,
		Before:   before,
		Count:    count,
	}
}

func (p SearchParams) args() *fasthttp.Args {
	args := fasthttp.AcquireArgs()
	if p.Playlist != "" {
		args.Add("playlist", p.Playlist)
	}
	if p.SortBy != "" {
		args.Add("sort-by", p.SortBy)
	}
	if p.SortDir != "" {
		args.Add("sort-dir", p.SortDir)
	}
	if !p.After.IsZero() {
		args.Add("replay-date-after", p.After.UTC().Format(time.RFC3339))
	}
	if !p.Before.IsZero() {
		args.Add("replay-date-before", p.Before.UTC().Format(time.RFC3339))
	}
	if p.Uploader != "" {
		args.Add("uploader", p.Uploader)
	}
	if p.PlayerID != "" {
		args.Add("player-id", p.PlayerID)
	}
	if p.Count > 0 {
		args.Add("count", strconv.Itoa(p.Count))
	}
	return args
}

type replayPage struct {
	Count int               `json:"count"`
	List  []bcdomain.Replay `json:"list"`
	Next  string            `json:"next"`
}

// SearchReplays streams matching replays, following pagination. Iteration
// stops at the first error, which is yielded with a zero Replay.
func (c *Client) SearchReplays(ctx context.Context, p SearchParams) iter.Seq2[bcdomain.Replay, error] {
	return func(yield func(bcdomain.Replay, error) bool) {
		args := p.args()
		defer fasthttp.ReleaseArgs(args)

		r := request{method: fasthttp.MethodGet, path: "/replays", query: args}
		for page := 0; page < maxSearchPages; page++ {
			result, err := doJSON[replayPage](ctx, c, r)
			if err != nil {
				yield(bcdomain.Replay{}, err)
				return
			}
			for _, replay := range result.List {
				if !yield(replay, nil) {
					return
				}
			}
			if result.Next == "" {
				return
			}
			r = request{method: fasthttp.MethodGet, path: result.Next}
		}
	}
}

// UploadResult identifies an uploaded replay. Duplicate is set when the file
// was already on ballchasing; the replay then keeps its previous group.
type UploadResult struct {
	ID        string `json:"id"`
	Location  string `json:"location"`
	Duplicate bool   `json:"-"`
}

// Upload sends a replay file into a group as a public replay.
func (c *Client) Upload(ctx context.Context, fileName string, data []byte, groupID string) (UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := part.Write(data); err != nil {
		return UploadResult{}, err
	}
	if err := w.Close(); err != nil {
		return UploadResult{}, err
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Add("visibility", "public")
	if groupID != "" {
		args.Add("group", groupID)
	}

	resp, err := c.do(ctx, request{
		method:      fasthttp.MethodPost,
		path:        "/v2/upload",
		query:       args,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	})
	if err != nil {
		return UploadResult{}, err
	}

	var result UploadResult
	switch {
	case success(resp.status):
	case resp.status == fasthttp.StatusConflict:
		result.Duplicate = true
	default:
		return UploadResult{}, apiError(resp)
	}
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return UploadResult{}, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return result, nil
}

// ReplayPatch updates replay fields. A nil Group leaves it unchanged and an
// empty one removes the replay from its group.
type ReplayPatch struct {
	Title      *string `json:"title,omitempty"`
	Visibility *string `json:"visibility,omitempty"`
	Group      *string `json:"group,omitempty"`
}

// PatchReplay updates a replay the token owns.
func (c *Client) PatchReplay(ctx context.Context, replayID string, patch ReplayPatch) error {
	body, err := jsonBody(patch)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, request{
		method:      fasthttp.MethodPatch,
		path:        "/replays/" + replayID,
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	if !success(resp.status) {
		return apiError(resp)
	}
	return nil
}

// Download fetches a replay's raw file.
func (c *Client) Download(ctx context.Context, replayID string) ([]byte, error) {
	resp, err := c.do(ctx, request{method: fasthttp.MethodGet, path: "/replays/" + replayID + "/file"})
	if err != nil {
		return nil, err
	}
	if !success(resp.status) {
		return nil, apiError(resp)
	}
	return resp.body, nil
}
