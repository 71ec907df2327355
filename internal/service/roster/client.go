package roster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// defaultCallTimeout bounds a single scrape when the caller's context
	// carries no deadline of its own.
	defaultCallTimeout = 5 * time.Second

	// teamColumns is the cell count of a team list row.
	teamColumns = 4
	// skillsColumns is the cell count of a skills rankings row.
	skillsColumns = 8
)

// ErrEmptyAddress is returned when the client is built without a Tournament
// Manager web server address.
var ErrEmptyAddress = errors.New("tournament manager address is empty")

// Client scrapes the read-only division and skills tables served by the
// Tournament Manager web server. It holds no state between calls; every
// method fetches and parses one page.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	callTimeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a scraper for the web server at the given address. A bare
// host or host:port is assumed to speak plain HTTP, matching how Tournament
// Manager serves its pages.
func NewClient(address string, opts ...Option) (*Client, error) {
	address = strings.TrimRight(strings.TrimSpace(address), "/")
	if address == "" {
		return nil, ErrEmptyAddress
	}

	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	client := &Client{
		baseURL:     address,
		httpClient:  &http.Client{},
		callTimeout: defaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Teams returns the team list of the given division.
func (c *Client) Teams(ctx context.Context, division int) ([]Team, error) {
	rows, err := c.fetchTable(ctx, fmt.Sprintf("/division%d/teams", division), "table")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	var teams []Team

	for _, cells := range rows {
		if len(cells) != teamColumns {
			continue
		}

		teams = append(teams, Team{
			Number:   cells[0],
			Name:     cells[1],
			Location: cells[2],
			School:   cells[3],
		})
	}

	return teams, nil
}

// MatchesVIQRC returns the match list of the given VIQRC division. Unscored
// matches carry a nil score.
func (c *Client) MatchesVIQRC(ctx context.Context, division int) ([]MatchVIQRC, error) {
	rows, err := c.fetchTable(ctx, fmt.Sprintf("/division%d/matches", division), "table-centered")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}

	var matches []MatchVIQRC

	for _, cells := range rows {
		if len(cells) < 3 {
			continue
		}

		match := MatchVIQRC{
			ID:    cells[0],
			Team1: cells[1],
			Team2: cells[2],
		}

		if raw := cells[len(cells)-1]; raw != "" {
			score, err := parseFloat(raw, "match score")
			if err != nil {
				return nil, err
			}

			match.Score = &score
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// MatchesV5RC returns the match list of the given V5RC division.
//
// TODO: map the V5RC matches table columns (alliance team cells span
// multiple columns) and parse them here.
func (c *Client) MatchesV5RC(_ context.Context, _ int) ([]MatchV5RC, error) {
	return []MatchV5RC{}, nil
}

// RankingsVIQRC returns the rankings table of the given VIQRC division.
func (c *Client) RankingsVIQRC(ctx context.Context, division int) ([]RankingVIQRC, error) {
	rows, err := c.fetchTable(ctx, fmt.Sprintf("/division%d/rankings", division), "table")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rankings: %w", err)
	}

	var rankings []RankingVIQRC

	for _, cells := range rows {
		if len(cells) < 5 {
			continue
		}

		rank, err := parseInt(cells[0], "rank")
		if err != nil {
			return nil, err
		}

		played, err := parseInt(cells[3], "matches played")
		if err != nil {
			return nil, err
		}

		average, err := parseFloat(cells[4], "average score")
		if err != nil {
			return nil, err
		}

		rankings = append(rankings, RankingVIQRC{
			Rank:          rank,
			TeamNumber:    cells[1],
			MatchesPlayed: played,
			AverageScore:  average,
		})
	}

	return rankings, nil
}

// RankingsV5RC returns the rankings table of the given V5RC division.
//
// TODO: map the V5RC rankings table columns (WP/AP/SP averages and the
// W-L-T cell) and parse them here.
func (c *Client) RankingsV5RC(_ context.Context, _ int) ([]RankingV5RC, error) {
	return []RankingV5RC{}, nil
}

// SkillsRankings returns the event-wide skills rankings.
func (c *Client) SkillsRankings(ctx context.Context) ([]SkillsRanking, error) {
	rows, err := c.fetchTable(ctx, "/skills/rankings", "table-centered")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch skills rankings: %w", err)
	}

	var rankings []SkillsRanking

	for _, cells := range rows {
		if len(cells) != skillsColumns {
			continue
		}

		ranking := SkillsRanking{
			TeamNumber: cells[1],
			TeamName:   cells[2],
		}

		var err error

		if ranking.Rank, err = parseInt(cells[0], "rank"); err != nil {
			return nil, err
		}

		if ranking.TotalScore, err = parseFloat(cells[3], "total score"); err != nil {
			return nil, err
		}

		if ranking.ProgrammingHighScore, err = parseFloat(cells[4], "programming high score"); err != nil {
			return nil, err
		}

		if ranking.ProgrammingAttempts, err = parseInt(cells[5], "programming attempts"); err != nil {
			return nil, err
		}

		if ranking.DriverHighScore, err = parseFloat(cells[6], "driver high score"); err != nil {
			return nil, err
		}

		if ranking.DriverAttempts, err = parseInt(cells[7], "driver attempts"); err != nil {
			return nil, err
		}

		rankings = append(rankings, ranking)
	}

	return rankings, nil
}

// fetchTable retrieves one page and returns the data rows of its table.
func (c *Client) fetchTable(ctx context.Context, path, class string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, path)
	}

	return parseTable(resp.Body, class)
}
