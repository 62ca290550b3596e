package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"livesched-engine/internal/config"
	"livesched-engine/internal/domain"
	"livesched-engine/internal/events"
	"livesched-engine/internal/feed"
	"livesched-engine/internal/schedule"
	"livesched-engine/internal/snapshot"
	"livesched-engine/internal/store"
)

type fakeFeed struct {
	snap   *snapshot.Snapshot
	status feed.Status
	err    error
	calls  atomic.Int32
	done   chan string
}

func (f *fakeFeed) Snapshot() *snapshot.Snapshot { return f.snap }
func (f *fakeFeed) Status() feed.Status { return f.status }

func (f *fakeFeed) RefreshOnce(_ context.Context, reqID string) error {
	f.calls.Add(1)
	if f.done != nil {
		f.done <- reqID
	}
	return f.err
}

type fakeHistory struct {
	limit int
}

func (h *fakeHistory) RecentRefreshes(_ context.Context, limit int) ([]store.RefreshRecord, error) {
	h.limit = limit
	return []store.RefreshRecord{{ID: 7, OK: true, Jobs: 2}}, nil
}

func testSnapshot() *snapshot.Snapshot {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 12, 25, 14, 30, 0, 0, time.UTC))
	jobs := domain.JobFeed{Jobs: []domain.Job{
		{
			domain.FieldStore:    "Highland Coffee Team",
			domain.FieldTimeSlot: "14:00 - 15:00",
			domain.FieldDate:     "25/12/2024",
			domain.FieldSession:  "Livestream",
		},
		{
			domain.FieldStore:    "Yody",
			domain.FieldTimeSlot: "09:00 - 10:00",
			domain.FieldDate:     "26/12/2024",
			domain.FieldSession:  "Shooting",
		},
	}}
	groups := domain.GroupFeed{
		Hosts:  domain.Groups{"highland coffee": {OriginalName: "Highland Coffee", Link: "https://zalo.me/g/hc"}},
		Brands: domain.Groups{},
	}
	return snapshot.Build(jobs, groups, snapshot.Deps{
		Location:   time.UTC,
		Classifier: schedule.NewClassifier(clock, time.UTC, 0),
		Now:        clock.Now,
	})
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.App.Timezone = "UTC"
	cfg.Feeds.JobsURL = "https://sheets.example.com/jobs"
	cfg.Feeds.GroupsURL = "https://sheets.example.com/groups"
	config.ApplyDefaults(&cfg)
	return cfg
}

type testAPI struct {
	handler http.Handler
	feed    *fakeFeed
	hub     *events.Hub
	cfgVal  *atomic.Value
	cfgPath string
	saved   []config.Config
}

func newTestAPI(t *testing.T, mutate func(*Deps)) *testAPI {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, config.SaveAtomic(path, testConfig()))

	api := &testAPI{
		feed:    &fakeFeed{snap: testSnapshot()},
		hub:     events.NewHub(),
		cfgVal:  &atomic.Value{},
		cfgPath: path,
	}
	api.cfgVal.Store(testConfig())

	d := Deps{
		Feed:          api.feed,
		Hub:           api.hub,
		Log:           zaptest.NewLogger(t),
		CfgVal:        api.cfgVal,
		UserCfgPath:   path,
		LoadCfg:       func() (config.Config, error) { return config.Load(path) },
		OnConfigSaved: func(c config.Config) { api.saved = append(api.saved, c) },
	}
	if mutate != nil {
		mutate(&d)
	}
	api.handler = NewRouter(d)
	return api
}

func (a *testAPI) do(method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[map[string]any](t, rec)
	assert.Equal(t, true, out["ok"])
	assert.EqualValues(t, 2, out["jobs"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	api := newTestAPI(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/schedule/nope", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	api.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	e := decode[APIError](t, rec)
	assert.Equal(t, codeNotFound, e.Error.Code)
	assert.Equal(t, "abc-123", e.Error.RequestID)
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/schedule", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	api := newTestAPI(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "tauri://localhost")
	rec := httptest.NewRecorder()

	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, "tauri://localhost", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsOtherOrigins(t *testing.T) {
	api := newTestAPI(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()

	api.handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverWritesEnvelope(t *testing.T) {
	h := RequestID(Recover(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decode[APIError](t, rec)
	assert.Equal(t, codeInternal, e.Error.Code)
	assert.NotEmpty(t, e.Error.RequestID)
}

func TestScheduleList(t *testing.T) {
	api := newTestAPI(t, nil)

	testCases := []struct {
		name    string
		target  string
		matched int
		slots   []string
	}{
		{name: "everything", target: "/schedule", matched: 2, slots: []string{"09:00 - 10:00", "14:00 - 15:00"}},
		{name: "query", target: "/schedule?q=YODY", matched: 1, slots: []string{"09:00 - 10:00"}},
		{name: "query hits resolved group", target: "/schedule?q=zalo.me", matched: 1, slots: []string{"14:00 - 15:00"}},
		{name: "from day first", target: "/schedule?from=26/12/2024", matched: 1, slots: []string{"09:00 - 10:00"}},
		{name: "to iso", target: "/schedule?to=2024-12-25", matched: 1, slots: []string{"14:00 - 15:00"}},
		{name: "inverted range", target: "/schedule?from=2024-12-26&to=2024-12-25", matched: 0, slots: []string{}},
		{name: "session", target: "/schedule?session=livestream", matched: 1, slots: []string{"14:00 - 15:00"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(http.MethodGet, tc.target, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			v := decode[snapshot.View](t, rec)
			assert.Equal(t, 2, v.Total)
			assert.Equal(t, tc.matched, v.Matched)
			slots := []string{}
			for _, g := range v.Groups {
				slots = append(slots, g.TimeSlot)
			}
			assert.Equal(t, tc.slots, slots)
		})
	}
}

func TestScheduleListMarksActive(t *testing.T) {
	api := newTestAPI(t, nil)

	v := decode[snapshot.View](t, api.do(http.MethodGet, "/schedule", nil))

	require.Len(t, v.Groups, 2)
	assert.False(t, v.Groups[0].Items[0].Active)
	assert.True(t, v.Groups[1].Items[0].Active)
	require.NotNil(t, v.Groups[1].Items[0].Links.Host)
	assert.Equal(t, "https://zalo.me/g/hc", v.Groups[1].Items[0].Links.Host.Link)
}

func TestScheduleListBadDate(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/schedule?from=yesterday", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	e := decode[APIError](t, rec)
	assert.Equal(t, codeBadRequest, e.Error.Code)
	assert.Contains(t, e.Error.Message, "from")
}

func TestScheduleMeta(t *testing.T) {
	api := newTestAPI(t, nil)

	m := decode[snapshot.Meta](t, api.do(http.MethodGet, "/schedule/meta", nil))

	assert.Equal(t, 2, m.Jobs)
	assert.Equal(t, 1, m.HostGroups)
	assert.ElementsMatch(t, []string{"25/12/2024", "26/12/2024"}, m.Dates)
}

func TestJobLinks(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/jobs/0/links", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	links := decode[domain.JobLinks](t, rec)
	require.NotNil(t, links.Host)
	assert.Equal(t, "Highland Coffee", links.Host.OriginalName)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/jobs/9/links", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/jobs/x/links", nil).Code)
}

func TestResolveGroup(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/groups/resolve?store=Highland%20Coffee%20Team", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[resolveResponse](t, rec)
	assert.Equal(t, "host", string(out.Mode))
	require.NotNil(t, out.Group)
	assert.Equal(t, "https://zalo.me/g/hc", out.Group.Link)

	out = decode[resolveResponse](t, api.do(http.MethodGet, "/groups/resolve?store=Highland%20Coffee&mode=brand", nil))
	assert.Nil(t, out.Group)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/groups/resolve", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/groups/resolve?store=x&mode=staff", nil).Code)
}

func TestFeedStatus(t *testing.T) {
	hist := &fakeHistory{}
	api := newTestAPI(t, func(d *Deps) { d.History = hist })
	api.feed.status = feed.Status{Jobs: 2, LastOkAt: "2024-12-25T09:00:00Z"}

	out := decode[map[string]any](t, api.do(http.MethodGet, "/feed/status", nil))
	assert.EqualValues(t, 2, out["jobs"])
	assert.NotContains(t, out, "recent")

	out = decode[map[string]any](t, api.do(http.MethodGet, "/feed/status?recent=5", nil))
	assert.Equal(t, 5, hist.limit)
	assert.Len(t, out["recent"], 1)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/feed/status?recent=-1", nil).Code)
}

func TestFeedRefreshWait(t *testing.T) {
	api := newTestAPI(t, nil)
	api.feed.err = errors.New("jobs feed: boom")

	rec := api.do(http.MethodPost, "/feed/refresh?wait=1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[map[string]any](t, rec)
	assert.Equal(t, false, out["ok"])
	assert.Equal(t, "jobs feed: boom", out["error"])
	assert.EqualValues(t, 1, api.feed.calls.Load())
}

func TestFeedRefreshAsync(t *testing.T) {
	api := newTestAPI(t, nil)
	api.feed.done = make(chan string, 1)

	rec := api.do(http.MethodPost, "/feed/refresh", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case id := <-api.feed.done:
		assert.Equal(t, rec.Header().Get(requestIDHeader), id)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not run")
	}
}

func TestFeedRefreshAlreadyRunning(t *testing.T) {
	api := newTestAPI(t, nil)
	api.feed.status = feed.Status{Running: true}

	out := decode[map[string]any](t, api.do(http.MethodPost, "/feed/refresh", nil))

	assert.Equal(t, false, out["ok"])
	assert.EqualValues(t, 0, api.feed.calls.Load())
}
