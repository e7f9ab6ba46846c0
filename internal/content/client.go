// Package content looks up game content: map callout tables used by
// positioning classification, and display metadata (names, images) used to
// enrich aggregate stubs. Lookups go through a cache scoped to a single
// generation pass; nothing here is long-lived process state.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"valtrack/internal/model"
)

// baseURL is the root endpoint of the public game-content API.
const baseURL = "https://valorant-api.com/v1"

// Info is the display metadata for an agent, weapon or season.
type Info struct {
	Name     string
	ImageURL string
}

// MapInfo is display metadata plus the callout table for one map.
type MapInfo struct {
	Name     string
	ImageURL string
	Callouts []model.Callout
}

// Source is what the cache needs from a content backend.
type Source interface {
	MapInfo(ctx context.Context, mapID string) (*MapInfo, error)
	Agent(ctx context.Context, agentID string) (*Info, error)
	Weapon(ctx context.Context, weaponID string) (*Info, error)
	Season(ctx context.Context, seasonID string) (*Info, error)
}

// Client is a minimal client for the game-content API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a content API client. An empty base URL uses the public
// endpoint.
func NewClient(base string) *Client {
	if base == "" {
		base = baseURL
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type mapResponse struct {
	Data struct {
		DisplayName string `json:"displayName"`
		DisplayIcon string `json:"displayIcon"`
		Callouts    []struct {
			RegionName      string `json:"regionName"`
			SuperRegionName string `json:"superRegionName"`
			Location        struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"location"`
		} `json:"callouts"`
	} `json:"data"`
}

type infoResponse struct {
	Data struct {
		DisplayName string `json:"displayName"`
		DisplayIcon string `json:"displayIcon"`
	} `json:"data"`
}

// MapInfo fetches display metadata and the callout table for a map.
func (c *Client) MapInfo(ctx context.Context, mapID string) (*MapInfo, error) {
	var resp mapResponse
	if err := c.get(ctx, "/maps/"+mapID, &resp); err != nil {
		return nil, err
	}
	info := &MapInfo{
		Name:     resp.Data.DisplayName,
		ImageURL: resp.Data.DisplayIcon,
	}
	for _, co := range resp.Data.Callouts {
		info.Callouts = append(info.Callouts, model.Callout{
			Region:      co.RegionName,
			SuperRegion: co.SuperRegionName,
			Location:    model.Coordinate{X: co.Location.X, Y: co.Location.Y},
		})
	}
	return info, nil
}

// Agent fetches display metadata for an agent.
func (c *Client) Agent(ctx context.Context, agentID string) (*Info, error) {
	return c.info(ctx, "/agents/"+agentID)
}

// Weapon fetches display metadata for a weapon.
func (c *Client) Weapon(ctx context.Context, weaponID string) (*Info, error) {
	return c.info(ctx, "/weapons/"+weaponID)
}

// Season fetches display metadata for a competitive season.
func (c *Client) Season(ctx context.Context, seasonID string) (*Info, error) {
	return c.info(ctx, "/seasons/"+seasonID)
}

func (c *Client) info(ctx context.Context, path string) (*Info, error) {
	var resp infoResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &Info{Name: resp.Data.DisplayName, ImageURL: resp.Data.DisplayIcon}, nil
}

// get performs a GET request against the content API and JSON-decodes the
// response body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content api: %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
