package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onestack/internal/catalog"
	"onestack/internal/jwttoken"
	"onestack/internal/platform/metrics"
	"onestack/internal/progress"
	"onestack/internal/progress/service"
	"onestack/internal/progress/store"
	id "onestack/pkg/domain"
)

type testEnv struct {
	server *httptest.Server
	token  string
	userID id.UserID
	store  *store.InMemoryProfileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemory()
	userUUID := uuid.New()
	userID := id.UserID(userUUID)
	require.NoError(t, st.Create(t.Context(), userID))

	jwtSvc := jwttoken.NewJWTService("test-signing-key", "onestack-test", "onestack")
	token, err := jwtSvc.GenerateAccessToken(userUUID, time.Hour)
	require.NoError(t, err)

	svc := service.New(st, catalog.Default())
	h := New(svc, slog.New(slog.DiscardHandler), metrics.NewForTesting(), jwtSvc)
	r := chi.NewRouter()
	h.Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, token: token, userID: userID, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func updateBody(domainID, domainName string, total int, completed ...int) map[string]any {
	done := make(map[int]bool, len(completed))
	for _, c := range completed {
		done[c] = true
	}
	topics := make([]map[string]any, 0, total)
	for i := 1; i <= total; i++ {
		topics = append(topics, map[string]any{
			"id":        i,
			"name":      fmt.Sprintf("Topic %d", i),
			"completed": done[i],
		})
	}
	return map[string]any{"domainId": domainID, "domainName": domainName, "topics": topics}
}

func TestUpdateAndFetchDomainProgress(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/domains/progress", updateBody("dsa", "DSA", 12, 1, 2, 3), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated struct {
		Success              bool                    `json:"success"`
		Message              string                  `json:"message"`
		DomainProgress       progress.DomainProgress `json:"domainProgress"`
		TotalTopicsCompleted int                     `json:"totalTopicsCompleted"`
	}
	decode(t, resp, &updated)
	assert.True(t, updated.Success)
	assert.Equal(t, "Progress updated successfully", updated.Message)
	assert.Equal(t, 12, updated.DomainProgress.TotalTopics)
	assert.Equal(t, 3, updated.DomainProgress.CompletedTopics)
	assert.Equal(t, 3, updated.TotalTopicsCompleted)

	resp = env.do(t, http.MethodGet, "/domains/progress/dsa", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched struct {
		Success        bool                     `json:"success"`
		DomainProgress *progress.DomainProgress `json:"domainProgress"`
	}
	decode(t, resp, &fetched)
	require.NotNil(t, fetched.DomainProgress)
	assert.Equal(t, "dsa", fetched.DomainProgress.DomainID)
	assert.Equal(t, 3, fetched.DomainProgress.CompletedTopics)
}

func TestDomainProgressNullWhenNeverUpdated(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/domains/progress/web-dev", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success        bool            `json:"success"`
		DomainProgress json.RawMessage `json:"domainProgress"`
	}
	decode(t, resp, &body)
	assert.True(t, body.Success)
	assert.Equal(t, "null", string(body.DomainProgress))
}

func TestAllDomainsProgressEmpty(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/domains/progress", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success              bool                      `json:"success"`
		DomainsProgress      []progress.DomainProgress `json:"domainsProgress"`
		TotalTopicsCompleted int                       `json:"totalTopicsCompleted"`
	}
	decode(t, resp, &body)
	assert.True(t, body.Success)
	assert.NotNil(t, body.DomainsProgress)
	assert.Empty(t, body.DomainsProgress)
	assert.Zero(t, body.TotalTopicsCompleted)
}

func TestAllDomainsProgressAggregatesTotals(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/domains/progress", updateBody("dsa", "DSA", 12, 1, 2), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/domains/progress", updateBody("web-dev", "Web Dev", 12, 5), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/domains/progress", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		DomainsProgress      []progress.DomainProgress `json:"domainsProgress"`
		TotalTopicsCompleted int                       `json:"totalTopicsCompleted"`
	}
	decode(t, resp, &body)
	assert.Len(t, body.DomainsProgress, 2)
	assert.Equal(t, 3, body.TotalTopicsCompleted)
}

func TestRecentActivityListsCompletions(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/domains/progress", updateBody("dsa", "DSA", 12, 4), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/domains/recent-activity", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success        bool                     `json:"success"`
		RecentActivity []progress.ActivityEntry `json:"recentActivity"`
	}
	decode(t, resp, &body)
	require.Len(t, body.RecentActivity, 1)
	entry := body.RecentActivity[0]
	assert.Equal(t, "completed", entry.Type)
	// Catalog reconciliation replaces client names, so the fourth topic
	// carries its canonical title.
	assert.Equal(t, "Completed Trees and Graphs", entry.Title)
	assert.Equal(t, "dsa", entry.DomainID)
	assert.Equal(t, 4, entry.TopicID)
}

func TestUpdateProgressValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing domainId", map[string]any{"domainName": "DSA", "topics": []map[string]any{}}},
		{"missing topics", map[string]any{"domainId": "dsa", "domainName": "DSA"}},
		{"malformed topic", map[string]any{
			"domainId": "dsa", "domainName": "DSA",
			"topics": []map[string]any{{"id": 1}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/domains/progress", tc.body, env.token)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			decode(t, resp, &body)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestUpdateProgressRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/domains/progress", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.token)
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/domains/progress"},
		{http.MethodGet, "/domains/progress"},
		{http.MethodGet, "/domains/progress/dsa"},
		{http.MethodGet, "/domains/recent-activity"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			resp := env.do(t, p.method, p.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			resp = env.do(t, p.method, p.path, nil, "not-a-token")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestUnknownUserGets404(t *testing.T) {
	env := newTestEnv(t)

	strangerUUID := uuid.New()
	jwtSvc := jwttoken.NewJWTService("test-signing-key", "onestack-test", "onestack")
	strangerToken, err := jwtSvc.GenerateAccessToken(strangerUUID, time.Hour)
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/domains/progress", nil, strangerToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/domains/progress", updateBody("dsa", "DSA", 12, 1), strangerToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContentTypeEnforced(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/domains/progress", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+env.token)
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
