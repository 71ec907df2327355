package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vextm/tm-bridge/internal/domain/field"
	"github.com/vextm/tm-bridge/internal/service/bridge"
	"github.com/vextm/tm-bridge/internal/service/roster"
)

// stubSurface is a scriptable in-memory control surface.
type stubSurface struct {
	mu        sync.Mutex
	snap      field.Snapshot
	invokeErr error
	onInvoke  func(kind field.CommandKind, params field.CommandParams)
}

func (s *stubSurface) Fetch(_ context.Context, _ string) (field.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snap, nil
}

func (s *stubSurface) Invoke(
	_ context.Context,
	_ string,
	kind field.CommandKind,
	params field.CommandParams,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.invokeErr != nil {
		return s.invokeErr
	}

	if s.onInvoke != nil {
		s.onInvoke(kind, params)
	}

	return nil
}

func (s *stubSurface) setSnapshot(snap field.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = snap
}

// pausedSnapshot is a field set with a paused match.
func pausedSnapshot() field.Snapshot {
	return field.Snapshot{
		AudienceDisplay: field.DisplayInMatch,
		TimerDisplay:    "0:42",
		MatchTime:       42,
		TimerPhase:      field.PhasePaused,
		FieldNumber:     1,
		MatchOnField:    "Q7",
		AutonomousBonus: field.BonusNone,
		ActiveMatch:     field.ActiveMatchMatch,
	}
}

// engineConfig scales the engine tunables down for fast tests.
func engineConfig(competition field.Competition) bridge.Config {
	return bridge.Config{
		Competition:      competition,
		PollInterval:     2 * time.Millisecond,
		IdlePollInterval: 5 * time.Millisecond,
		BackoffCeiling:   10 * time.Millisecond,
		FailureThreshold: 5,
		ConfirmInterval:  2 * time.Millisecond,
		ConfirmTimeout:   50 * time.Millisecond,
		SubscriberBuffer: 16,
	}
}

// newTestServer wires a stub surface into a real engine behind the handler.
func newTestServer(
	t *testing.T,
	srf *stubSurface,
	competition field.Competition,
	opts ...Option,
) *httptest.Server {
	t.Helper()

	engine := bridge.NewEngine(srf, engineConfig(competition))
	t.Cleanup(engine.Shutdown)

	srv := httptest.NewServer(NewServer(engine, nil, competition, opts...).Handler())
	t.Cleanup(srv.Close)

	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url) //nolint:gosec,noctx // Test URL.
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body)) //nolint:gosec,noctx // Test URL.
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestServer_HealthAndFieldsetList(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubSurface{snap: pausedSnapshot()}, field.CompetitionV5RC)

	var health map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &health))
	require.Equal(t, "ok", health["status"])

	// The first overview request registers the field set.
	var snap field.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/fieldsets/Match%20Field%20Set%20%231", &snap))

	var list map[string][]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/fieldsets", &list))
	require.Equal(t, []string{"Match Field Set #1"}, list["fieldsets"])
}

func TestServer_CommandConfirmed(t *testing.T) {
	t.Parallel()

	srf := &stubSurface{snap: pausedSnapshot()}
	srf.onInvoke = func(kind field.CommandKind, _ field.CommandParams) {
		if kind == field.CommandStart {
			srf.snap.TimerPhase = field.PhaseDriverControl
		}
	}

	srv := newTestServer(t, srf, field.CompetitionV5RC)

	var res commandResponse
	status := postJSON(t, srv.URL+"/api/fieldsets/F/commands/start", "", &res)
	require.Equal(t, http.StatusOK, status)
	require.True(t, res.Confirmed)
	require.Equal(t, field.PhaseDriverControl, res.Snapshot.TimerPhase)
}

func TestServer_CommandUnconfirmed(t *testing.T) {
	t.Parallel()

	// The surface accepts the command but the phase never changes.
	srv := newTestServer(t, &stubSurface{snap: pausedSnapshot()}, field.CompetitionV5RC)

	var res commandResponse
	status := postJSON(t, srv.URL+"/api/fieldsets/F/commands/start", "", &res)
	require.Equal(t, http.StatusAccepted, status)
	require.False(t, res.Confirmed)
}

func TestServer_CommandRejections(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubSurface{snap: pausedSnapshot()}, field.CompetitionVIQRC)

	// Unknown command kinds never reach the engine.
	var body errorResponse
	status := postJSON(t, srv.URL+"/api/fieldsets/F/commands/self-destruct", "", &body)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body.Error, "unknown command")

	// A V5RC-only command on a VIQRC bridge is rejected.
	status = postJSON(
		t,
		srv.URL+"/api/fieldsets/F/commands/set-autonomous-bonus",
		`{"bonus":"RED"}`,
		&body,
	)
	require.Equal(t, http.StatusUnprocessableEntity, status)

	// A malformed body is a client error.
	status = postJSON(t, srv.URL+"/api/fieldsets/F/commands/start", `{"enabled":`, &body)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestServer_RemoveFieldset(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubSurface{snap: pausedSnapshot()}, field.CompetitionV5RC)
	client := srv.Client()

	del := func(title string) int {
		req, err := http.NewRequestWithContext(
			context.Background(),
			http.MethodDelete,
			srv.URL+"/api/fieldsets/"+title,
			nil,
		)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		return resp.StatusCode
	}

	require.Equal(t, http.StatusNotFound, del("F"))

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/fieldsets/F", nil))
	require.Equal(t, http.StatusNoContent, del("F"))

	var list map[string][]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/fieldsets", &list))
	require.Empty(t, list["fieldsets"])
}

// readEvent scans SSE frames until the next data frame and decodes it.
func readEvent(t *testing.T, scanner *bufio.Scanner) field.ChangeEvent {
	t.Helper()

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev field.ChangeEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))

		return ev
	}

	t.Fatal("event stream ended early")

	return field.ChangeEvent{}
}

func TestServer_EventStream(t *testing.T) {
	t.Parallel()

	srf := &stubSurface{snap: pausedSnapshot()}
	srv := newTestServer(t, srf, field.CompetitionV5RC, WithKeepaliveInterval(5*time.Millisecond))

	resp, err := http.Get(srv.URL + "/api/fieldsets/F/events") //nolint:gosec,noctx // Test URL.
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)

	// The first frame is the baseline.
	baseline := readEvent(t, scanner)
	require.True(t, baseline.Baseline())
	require.Equal(t, "F", baseline.FieldID)

	// The poll loop binds the field.
	bound := readEvent(t, scanner)
	require.Equal(t, field.StatusUnbound, bound.Previous.Status)
	require.Equal(t, field.StatusPolling, bound.Current.Status)

	// A surface change arrives as a live frame.
	running := pausedSnapshot()
	running.TimerPhase = field.PhaseAutonomous
	srf.setSnapshot(running)

	change := readEvent(t, scanner)
	require.Equal(t, field.PhaseAutonomous, change.Current.TimerPhase)
	require.Greater(t, change.Sequence, bound.Sequence)
}

func TestServer_RosterProxy(t *testing.T) {
	t.Parallel()

	tm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/division3/teams" {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		_, _ = w.Write([]byte(`<table class="table">
<tr><th>h</th></tr>
<tr><td>1234A</td><td>Gear Grinders</td><td>Springfield, IL</td><td>Springfield High</td></tr>
</table>`))
	}))
	t.Cleanup(tm.Close)

	rosterClient, err := roster.NewClient(tm.URL)
	require.NoError(t, err)

	engine := bridge.NewEngine(&stubSurface{snap: pausedSnapshot()}, engineConfig(field.CompetitionVIQRC))
	t.Cleanup(engine.Shutdown)

	srv := httptest.NewServer(NewServer(engine, rosterClient, field.CompetitionVIQRC).Handler())
	t.Cleanup(srv.Close)

	var teams []roster.Team
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/teams/3", &teams))
	require.Len(t, teams, 1)
	require.Equal(t, "1234A", teams[0].Number)

	require.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/teams/zero", nil))
	require.Equal(t, http.StatusBadGateway, getJSON(t, srv.URL+"/api/rankings/9", nil))
}

func TestServer_RosterDisabled(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubSurface{snap: pausedSnapshot()}, field.CompetitionV5RC)

	require.Equal(t, http.StatusNotImplemented, getJSON(t, srv.URL+"/api/skills", nil))
	require.Equal(t, http.StatusNotImplemented, getJSON(t, srv.URL+"/api/teams/1", nil))
}
