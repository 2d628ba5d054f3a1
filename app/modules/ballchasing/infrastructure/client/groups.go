package bcclient

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Group identification modes used for league groups.
const (
	PlayerIdentificationByID       = "by-id"
	TeamIdentificationByClusters   = "by-player-clusters"
	TeamIdentificationByPlayers    = "by-distinct-players"

	groupLinkPrefix = "https://ballchasing.com/group/"
)

// Creator is the owner of a group.
type Creator struct {
	SteamID string `json:"steam_id"`
	Name    string `json:"name"`
}

// Group is a ballchasing replay group.
type Group struct {
	ID      string    `json:"id"`
	Link    string    `json:"link"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Creator Creator   `json:"creator"`
	Shared  bool      `json:"shared"`
}

// GroupLink is the public page for a group.
func GroupLink(groupID string) string {
	return groupLinkPrefix + groupID
}

// ParseGroupID accepts a group id or any URL containing "group/<id>".
func ParseGroupID(input string) string {
	input = strings.TrimSpace(input)
	if i := strings.LastIndex(input, "group/"); i >= 0 {
		input = input[i+len("group/"):]
	}
	if i := strings.IndexAny(input, "/?#"); i >= 0 {
		input = input[:i]
	}
	return input
}

// Group fetches a group by id.
func (c *Client) Group(ctx context.Context, groupID string) (Group, error) {
	g, err := doJSON[Group](ctx, c, request{method: fasthttp.MethodGet, path: "/groups/" + groupID})
	if err != nil {
		return Group{}, err
	}
	return *g, nil
}

type groupPage struct {
	List []Group `json:"list"`
	Next string  `json:"next"`
}

// ChildGroups lists the direct children of parent, optionally filtered by name.
func (c *Client) ChildGroups(ctx context.Context, parentID, name string) ([]Group, error) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Add("group", parentID)
	if name != "" {
		args.Add("name", name)
	}
	args.Add("count", "200")

	var groups []Group
	r := request{method: fasthttp.MethodGet, path: "/groups", query: args}
	for {
		page, err := doJSON[groupPage](ctx, c, r)
		if err != nil {
			return nil, err
		}
		groups = append(groups, page.List...)
		if page.Next == "" {
			return groups, nil
		}
		r = request{method: fasthttp.MethodGet, path: page.Next}
	}
}

type createGroupRequest struct {
	Name                 string `json:"name"`
	Parent               string `json:"parent,omitempty"`
	PlayerIdentification string `json:"player_identification"`
	TeamIdentification   string `json:"team_identification"`
}

// CreateGroup creates a group under parent.
func (c *Client) CreateGroup(ctx context.Context, name, parentID string) (Group, error) {
	body, err := jsonBody(createGroupRequest{
		Name:                 name,
		Parent:               parentID,
		PlayerIdentification: PlayerIdentificationByID,
		TeamIdentification:   TeamIdentificationByClusters,
	})
	if err != nil {
		return Group{}, err
	}
	g, err := doJSON[Group](ctx, c, request{
		method:      fasthttp.MethodPost,
		path:        "/groups",
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return Group{}, err
	}
	g.Name = name
	return *g, nil
}

// EnsureChildGroup returns the child of parent named name, creating it if
// needed. Name comparison is case-insensitive.
func (c *Client) EnsureChildGroup(ctx context.Context, parentID, name string) (Group, error) {
	children, err := c.ChildGroups(ctx, parentID, name)
	if err != nil {
		return Group{}, err
	}
	for _, g := range children {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return c.CreateGroup(ctx, name, parentID)
}
