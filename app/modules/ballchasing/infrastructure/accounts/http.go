package bcaccounts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	"github.com/valyala/fasthttp"
)

// HTTPLookup queries the league's account service:
//
//	GET {base}/v1/players/{discord_id}/accounts
//	{"accounts": [{"platform": "steam", "id": "7656..."}]}
//
// An unknown player (404) has no accounts.
type HTTPLookup struct {
	baseURL string
	apiKey  string
	http    *fasthttp.Client
	timeout time.Duration
}

func NewHTTPLookup(baseURL, apiKey string, hc *fasthttp.Client, timeout time.Duration) *HTTPLookup {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLookup{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
		timeout: timeout,
	}
}

var _ Lookup = (*HTTPLookup)(nil)

type accountsResponse struct {
	Accounts []bcdomain.Account `json:"accounts"`
}

func (l *HTTPLookup) Accounts(ctx context.Context, _ string, discordID string) ([]bcdomain.Account, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(l.baseURL + "/v1/players/" + url.PathEscape(discordID) + "/accounts")
	req.Header.SetMethod(fasthttp.MethodGet)
	if l.apiKey != "" {
		req.Header.Set("X-API-Key", l.apiKey)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(l.timeout)
	}
	if err := l.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("account lookup for %s: %w", discordID, err)
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("account lookup for %s: status %d", discordID, resp.StatusCode())
	}

	var body accountsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode account lookup: %w", err)
	}
	return normalizeAll(body.Accounts), nil
}
