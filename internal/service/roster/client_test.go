package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const teamsPage = `<html><body>
<table class="table">
<tr><th>Number</th><th>Name</th><th>Location</th><th>School</th></tr>
<tr><td>1234A</td><td>Gear Grinders</td><td>Springfield, IL</td><td>Springfield High</td></tr>
<tr><td>5678B</td><td> Widget  Works </td><td>Shelbyville, IL</td><td>Shelbyville STEM</td></tr>
<tr><td colspan="4">notice row</td></tr>
</table>
</body></html>`

const matchesPage = `<html><body>
<table class="table-centered">
<tr><th>Match</th><th>Team 1</th><th>Team 2</th><th>Score</th></tr>
<tr><td>Q1</td><td>1234A</td><td>5678B</td><td>57</td></tr>
<tr><td>Q2</td><td>5678B</td><td>9012C</td><td></td></tr>
</table>
</body></html>`

const rankingsPage = `<html><body>
<table class="table">
<tr><th>Rank</th><th>Team</th><th>Name</th><th>Played</th><th>Avg</th></tr>
<tr><td>1</td><td>1234A</td><td>Gear Grinders</td><td>6</td><td>61.5</td></tr>
<tr><td>2</td><td>5678B</td><td>Widget Works</td><td>6</td><td>48</td></tr>
</table>
</body></html>`

const skillsPage = `<html><body>
<table class="table-centered">
<tr><th>Rank</th><th>Team</th><th>Name</th><th>Total</th><th>Prog</th><th>Att</th><th>Driver</th><th>Att</th></tr>
<tr><td>1</td><td>1234A</td><td>Gear Grinders</td><td>112</td><td>55</td><td>2</td><td>57</td><td>3</td></tr>
</table>
</body></html>`

// newTestClient serves the given pages by path from an httptest server.
func newTestClient(t *testing.T, pages map[string]string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	return client
}

func TestClient_Teams(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]string{"/division1/teams": teamsPage})

	teams, err := client.Teams(context.Background(), 1)
	require.NoError(t, err)

	// The header row and the short notice row are skipped; cell text is
	// whitespace-normalized.
	require.Equal(t, []Team{
		{Number: "1234A", Name: "Gear Grinders", Location: "Springfield, IL", School: "Springfield High"},
		{Number: "5678B", Name: "Widget Works", Location: "Shelbyville, IL", School: "Shelbyville STEM"},
	}, teams)
}

func TestClient_MatchesVIQRC(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]string{"/division2/matches": matchesPage})

	matches, err := client.MatchesVIQRC(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	require.Equal(t, "Q1", matches[0].ID)
	require.NotNil(t, matches[0].Score)
	require.InDelta(t, 57.0, *matches[0].Score, 0.001)

	// An empty score cell means the match is unscored.
	require.Equal(t, "Q2", matches[1].ID)
	require.Nil(t, matches[1].Score)
}

func TestClient_RankingsVIQRC(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]string{"/division1/rankings": rankingsPage})

	rankings, err := client.RankingsVIQRC(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, []RankingVIQRC{
		{Rank: 1, TeamNumber: "1234A", MatchesPlayed: 6, AverageScore: 61.5},
		{Rank: 2, TeamNumber: "5678B", MatchesPlayed: 6, AverageScore: 48},
	}, rankings)
}

func TestClient_SkillsRankings(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]string{"/skills/rankings": skillsPage})

	rankings, err := client.SkillsRankings(context.Background())
	require.NoError(t, err)

	require.Equal(t, []SkillsRanking{
		{
			Rank:                 1,
			TeamNumber:           "1234A",
			TeamName:             "Gear Grinders",
			TotalScore:           112,
			ProgrammingHighScore: 55,
			ProgrammingAttempts:  2,
			DriverHighScore:      57,
			DriverAttempts:       3,
		},
	}, rankings)
}

func TestClient_ErrorPaths(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]string{
		"/division1/teams": `<html><body><p>no tables here</p></body></html>`,
	})

	_, err := client.Teams(context.Background(), 1)
	require.ErrorContains(t, err, "no table")

	// 404 from the web server surfaces as an error.
	_, err = client.SkillsRankings(context.Background())
	require.ErrorContains(t, err, "unexpected status")

	_, err = NewClient("   ")
	require.ErrorIs(t, err, ErrEmptyAddress)
}

func TestClient_AddressNormalization(t *testing.T) {
	t.Parallel()

	client, err := NewClient("10.0.0.5/")
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.5", client.baseURL)

	client, err = NewClient("https://tm.local:8080")
	require.NoError(t, err)
	require.Equal(t, "https://tm.local:8080", client.baseURL)
}
