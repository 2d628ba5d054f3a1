package bcaccounts

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	"github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/settingstest"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const (
	steamA = "76561198000000001"
	steamB = "76561198000000002"
	guild  = "guild-1"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      bcdomain.Account
		want    bcdomain.Account
		wantErr error
	}{
		{name: "steam", in: bcdomain.Account{Platform: " Steam ", ID: steamA}, want: bcdomain.Account{Platform: "steam", ID: steamA}},
		{name: "epic", in: bcdomain.Account{Platform: "EPIC", ID: "abc123"}, want: bcdomain.Account{Platform: "epic", ID: "abc123"}},
		{name: "bad steam id", in: bcdomain.Account{Platform: "steam", ID: "not-a-number"}, wantErr: ErrInvalidAccount},
		{name: "empty id", in: bcdomain.Account{Platform: "xbox"}, wantErr: ErrInvalidAccount},
		{name: "unknown platform", in: bcdomain.Account{Platform: "switch", ID: "x"}, wantErr: ErrUnknownPlatform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRegistered(t *testing.T) {
	ctx := context.Background()
	r := NewRegistered(settingstest.NewStore())

	accounts, err := r.Accounts(ctx, guild, "100")
	require.NoError(t, err)
	require.Empty(t, accounts)

	_, err = r.Register(ctx, guild, "100", bcdomain.Account{Platform: "Steam", ID: steamA})
	require.NoError(t, err)
	_, err = r.Register(ctx, guild, "100", bcdomain.Account{Platform: "steam", ID: steamA})
	require.NoError(t, err)
	accounts, err = r.Register(ctx, guild, "100", bcdomain.Account{Platform: "epic", ID: "e1"})
	require.NoError(t, err)
	require.Equal(t, []bcdomain.Account{
		{Platform: "steam", ID: steamA},
		{Platform: "epic", ID: "e1"},
	}, accounts)

	_, err = r.Register(ctx, guild, "100", bcdomain.Account{Platform: "steam", ID: "bogus"})
	require.ErrorIs(t, err, ErrInvalidAccount)

	remaining, err := r.Unregister(ctx, guild, "100", bcdomain.Account{Platform: "STEAM", ID: steamA})
	require.NoError(t, err)
	require.Equal(t, []bcdomain.Account{{Platform: "epic", ID: "e1"}}, remaining)

	other, err := r.Accounts(ctx, "guild-2", "100")
	require.NoError(t, err)
	require.Empty(t, other)
}

func newLookup(t *testing.T, handler fasthttp.RequestHandler) *HTTPLookup {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { _ = ln.Close() })
	hc := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	return NewHTTPLookup("http://accounts.test/", "key-1", hc, time.Second)
}

func TestHTTPLookup(t *testing.T) {
	l := newLookup(t, func(ctx *fasthttp.RequestCtx) {
		require.Equal(t, "key-1", string(ctx.Request.Header.Peek("X-API-Key")))
		switch string(ctx.Path()) {
		case "/v1/players/100/accounts":
			ctx.SetContentType("application/json")
			ctx.SetBodyString(`{"accounts":[
				{"platform":"steam","id":"` + steamA + `"},
				{"platform":"steam","id":"garbage"},
				{"platform":"epic","id":"e1"},
				{"platform":"steam","id":"` + steamA + `"}
			]}`)
		case "/v1/players/500/accounts":
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})
	ctx := context.Background()

	accounts, err := l.Accounts(ctx, guild, "100")
	require.NoError(t, err)
	require.Equal(t, []bcdomain.Account{
		{Platform: "steam", ID: steamA},
		{Platform: "epic", ID: "e1"},
	}, accounts)

	accounts, err = l.Accounts(ctx, guild, "404")
	require.NoError(t, err)
	require.Empty(t, accounts)

	_, err = l.Accounts(ctx, guild, "500")
	require.Error(t, err)
}

type lookupFunc func(ctx context.Context, guildID, discordID string) ([]bcdomain.Account, error)

func (f lookupFunc) Accounts(ctx context.Context, guildID, discordID string) ([]bcdomain.Account, error) {
	return f(ctx, guildID, discordID)
}

func TestChain(t *testing.T) {
	down := errors.New("service down")
	chain := Chain{
		lookupFunc(func(context.Context, string, string) ([]bcdomain.Account, error) {
			return []bcdomain.Account{{Platform: "steam", ID: steamB}}, nil
		}),
		lookupFunc(func(context.Context, string, string) ([]bcdomain.Account, error) {
			return nil, down
		}),
		lookupFunc(func(context.Context, string, string) ([]bcdomain.Account, error) {
			return []bcdomain.Account{{Platform: "steam", ID: steamB}, {Platform: "steam", ID: steamA}}, nil
		}),
	}

	accounts, err := chain.Accounts(context.Background(), guild, "100")
	require.ErrorIs(t, err, down)
	require.Equal(t, []bcdomain.Account{
		{Platform: "steam", ID: steamB},
		{Platform: "steam", ID: steamA},
	}, accounts)
}
