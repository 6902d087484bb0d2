package client

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onestack/internal/catalog"
	"onestack/internal/jwttoken"
	"onestack/internal/platform/metrics"
	"onestack/internal/progress/handler"
	"onestack/internal/progress/service"
	"onestack/internal/progress/store"
	id "onestack/pkg/domain"
)

// newServer stands up the real handler stack so the client is exercised
// against actual API behavior, not a hand-written fake.
func newServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	st := store.NewMemory()
	userUUID := uuid.New()
	require.NoError(t, st.Create(t.Context(), id.UserID(userUUID)))

	jwtSvc := jwttoken.NewJWTService("client-test-key", "onestack-test", "onestack")
	token, err := jwtSvc.GenerateAccessToken(userUUID, time.Hour)
	require.NoError(t, err)

	svc := service.New(st, catalog.Default())
	h := handler.New(svc, slog.New(slog.DiscardHandler), metrics.NewForTesting(), jwtSvc)
	r := chi.NewRouter()
	h.Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, token
}

func TestLoadEmptyProfile(t *testing.T) {
	srv, token := newServer(t)
	c := New(srv.URL, token)

	require.NoError(t, c.Load(t.Context()))
	assert.Zero(t, c.TotalTopicsCompleted())

	// Untouched domains synthesize from the catalog.
	dp := c.Domain("dsa")
	require.NotNil(t, dp)
	assert.Equal(t, 12, dp.TotalTopics)
	assert.Zero(t, dp.CompletedTopics)
	assert.Equal(t, "Arrays and Strings", dp.Topics[0].Name)

	assert.Nil(t, c.Domain("no-such-domain"))
}

func TestToggleTopicRoundTrip(t *testing.T) {
	srv, token := newServer(t)
	c := New(srv.URL, token)
	require.NoError(t, c.Load(t.Context()))

	dp, err := c.ToggleTopic(t.Context(), "dsa", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, dp.CompletedTopics)
	assert.Equal(t, 1, c.TotalTopicsCompleted())
	assert.Equal(t, 8, c.Percentage("dsa"))

	// The server stamps completions; the adopted record carries it.
	for _, topic := range dp.Topics {
		if topic.ID == 3 {
			assert.True(t, topic.Completed)
			assert.NotNil(t, topic.CompletedAt)
		}
	}

	// Toggling back clears it.
	dp, err = c.ToggleTopic(t.Context(), "dsa", 3)
	require.NoError(t, err)
	assert.Zero(t, dp.CompletedTopics)
	assert.Zero(t, c.TotalTopicsCompleted())
}

func TestToggleSurvivesReload(t *testing.T) {
	srv, token := newServer(t)
	c := New(srv.URL, token)
	require.NoError(t, c.Load(t.Context()))

	_, err := c.ToggleTopic(t.Context(), "web-dev", 2)
	require.NoError(t, err)

	fresh := New(srv.URL, token)
	require.NoError(t, fresh.Load(t.Context()))
	assert.Equal(t, 1, fresh.TotalTopicsCompleted())
	dp := fresh.Domain("web-dev")
	require.NotNil(t, dp)
	assert.Equal(t, 1, dp.CompletedTopics)
}

func TestToggleRollsBackOnServerError(t *testing.T) {
	srv, token := newServer(t)

	var failing atomic.Bool
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() && r.Method == http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"success":false,"error":"unavailable"}`))
			return
		}
		r2, err := http.NewRequestWithContext(r.Context(), r.Method, srv.URL+r.URL.Path, r.Body)
		require.NoError(t, err)
		r2.Header = r.Header
		resp, err := srv.Client().Do(r2)
		require.NoError(t, err)
		defer resp.Body.Close()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		var payload json.RawMessage
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(proxy.Close)

	milestones := 0
	c := New(proxy.URL, token, WithMilestoneFunc(func(string, int) { milestones++ }))
	require.NoError(t, c.Load(t.Context()))

	_, err := c.ToggleTopic(t.Context(), "dsa", 1)
	require.NoError(t, err)

	failing.Store(true)
	_, err = c.ToggleTopic(t.Context(), "dsa", 2)
	require.Error(t, err)

	// Rolled back: topic 2 incomplete locally, totals unchanged.
	dp := c.Domain("dsa")
	assert.Equal(t, 1, dp.CompletedTopics)
	assert.Equal(t, 1, c.TotalTopicsCompleted())
	for _, topic := range dp.Topics {
		if topic.ID == 2 {
			assert.False(t, topic.Completed)
		}
	}
	// One milestone from the first toggle (0% to 8% crosses nothing; none
	// expected), and none from the rolled-back toggle.
	assert.Zero(t, milestones)
}

func TestMilestonesFireAtEachThreshold(t *testing.T) {
	srv, token := newServer(t)

	var fired []int
	c := New(srv.URL, token, WithMilestoneFunc(func(domainID string, m int) {
		assert.Equal(t, "dsa", domainID)
		fired = append(fired, m)
	}))
	require.NoError(t, c.Load(t.Context()))

	// 12 topics: completing the 3rd reaches 25%, the 6th reaches 50%,
	// the 12th reaches 100%.
	for i := 1; i <= 12; i++ {
		_, err := c.ToggleTopic(t.Context(), "dsa", i)
		require.NoError(t, err)
	}

	assert.Equal(t, []int{25, 50, 75, 100}, fired)
}

func TestMilestoneSkipsToFirstCrossed(t *testing.T) {
	srv, token := newServer(t)

	// Pre-load the server with 40% completion so the client starts there.
	seed := New(srv.URL, token)
	require.NoError(t, seed.Load(t.Context()))
	for _, topicID := range []int{1, 2, 3, 4, 5} {
		_, err := seed.ToggleTopic(t.Context(), "web-dev", topicID)
		require.NoError(t, err)
	}

	var fired []int
	c := New(srv.URL, token, WithMilestoneFunc(func(_ string, m int) { fired = append(fired, m) }))
	require.NoError(t, c.Load(t.Context()))

	// 5 of 12 is 42%. One more toggle lands on 50%: only 50 fires even
	// though 25 was never reported to this client instance.
	_, err := c.ToggleTopic(t.Context(), "web-dev", 6)
	require.NoError(t, err)
	assert.Equal(t, []int{50}, fired)
}

func TestLoadReconcilesStaleTopics(t *testing.T) {
	srv, token := newServer(t)

	// Store progress under a domain the catalog knows, then shrink the
	// catalog the client sees so reconciliation has work to do.
	seed := New(srv.URL, token)
	require.NoError(t, seed.Load(t.Context()))
	_, err := seed.ToggleTopic(t.Context(), "dsa", 2)
	require.NoError(t, err)

	trimmed := catalog.Default()
	c := New(srv.URL, token, WithCatalog(trimmed))
	require.NoError(t, c.Load(t.Context()))

	dp := c.Domain("dsa")
	require.NotNil(t, dp)
	assert.Equal(t, 12, dp.TotalTopics)
	assert.Equal(t, 1, dp.CompletedTopics)
	completed := 0
	for _, topic := range dp.Topics {
		if topic.Completed {
			completed++
			assert.Equal(t, 2, topic.ID)
		}
	}
	assert.Equal(t, 1, completed)
}

func TestToggleUnknownTopic(t *testing.T) {
	srv, token := newServer(t)
	c := New(srv.URL, token)
	require.NoError(t, c.Load(t.Context()))

	_, err := c.ToggleTopic(t.Context(), "dsa", 999)
	require.Error(t, err)

	_, err = c.ToggleTopic(t.Context(), "no-such-domain", 1)
	require.Error(t, err)
}

func TestSnapshotsAreIndependent(t *testing.T) {
	srv, token := newServer(t)
	c := New(srv.URL, token)
	require.NoError(t, c.Load(t.Context()))

	dp := c.Domain("dsa")
	dp.Topics[0].Completed = true
	dp.CompletedTopics = 99

	fresh := c.Domain("dsa")
	assert.False(t, fresh.Topics[0].Completed)
	assert.Zero(t, fresh.CompletedTopics)
}
