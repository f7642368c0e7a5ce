package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/higapro-site/internal/config"
	"github.com/kapu/higapro-site/internal/contact"
	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/header"
	"github.com/kapu/higapro-site/internal/metrics"
	"github.com/kapu/higapro-site/internal/news"
	"github.com/kapu/higapro-site/internal/util"
	"github.com/kapu/higapro-site/internal/view"
	"github.com/kapu/higapro-site/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	g "maragu.dev/gomponents"
)

type fakeContent struct {
	news    []domain.News
	people  []domain.Person
	details map[string]*domain.Person
	err     error
}

func (f *fakeContent) LatestNews(ctx context.Context) ([]domain.News, error) {
	return f.news, f.err
}

func (f *fakeContent) Roster(ctx context.Context) ([]domain.Person, error) {
	return f.people, f.err
}

func (f *fakeContent) Marquee(ctx context.Context) ([]domain.Person, error) {
	var out []domain.Person
	for _, p := range f.people {
		if len(p.Images) > 0 {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeContent) Person(ctx context.Context, id string) (*domain.Person, error) {
	if p, ok := f.details[id]; ok {
		return p, nil
	}
	return nil, errors.NewAPIError("Client error: 404", http.StatusNotFound, nil)
}

type fakeRelay struct {
	calls []contact.Form
	err   error
}

func (f *fakeRelay) Relay(ctx context.Context, form contact.Form) error {
	f.calls = append(f.calls, form)
	return f.err
}

func jst(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, util.JST())
}

func testPeople() []domain.Person {
	img := func(name string) []domain.Image {
		return []domain.Image{{URL: "https://images.microcms-assets.io/" + name + ".png"}}
	}
	return []domain.Person{
		{ID: "ai", Name: "あい", Furigana: "あい", Debut: jst(2023, 4, 10), Images: img("ai"), Type: "タレント"},
		{ID: "iori", Name: "いおり", Furigana: "いおり", Debut: jst(2023, 4, 1), Type: "タレント"},
		{ID: "umi", Name: "うみ", Furigana: "うみ", Debut: jst(2023, 5, 1), Images: img("umi"), Type: "タレント"},
		{ID: "boss", Name: "ボス", Furigana: "ぼす", Debut: jst(2022, 12, 1), Images: img("boss"), Type: "マネージャー"},
	}
}

type fixture struct {
	server   *Server
	content  *fakeContent
	relay    *fakeRelay
	mail     *fakeRelay
	sessions *header.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

func newFixtureWith(t *testing.T, configure func(*Dependencies)) *fixture {
	t.Helper()
	logger := zap.NewNop()
	people := testPeople()
	details := map[string]*domain.Person{}
	for i := range people {
		details[people[i].ID] = &people[i]
	}

	f := &fixture{
		content: &fakeContent{
			news:    []domain.News{{ID: "n1", Title: "お知らせ", Content: "<p>本文</p>", CreatedAt: jst(2024, 4, 1)}},
			people:  people,
			details: details,
		},
		relay:    &fakeRelay{},
		mail:     &fakeRelay{},
		sessions: header.NewRegistry(time.Hour, logger),
	}

	reg := prometheus.NewRegistry()
	deps := Dependencies{
		Config:    config.ServerConfig{SiteURL: "https://www.higapro.jp", PublicDir: t.TempDir()},
		Content:   f.content,
		Sessions:  f.sessions,
		News:      news.NewPresenter("https://www.higapro.jp"),
		Submitter: contact.NewSubmitter(contact.NewValidator(), f.relay, logger),
		MailRelay: f.mail,
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Logger:    logger,
	}
	if configure != nil {
		configure(&deps)
	}
	f.server = New(deps)
	return f
}

func (f *fixture) do(method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHomeDefaultsToEarliestCohort(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/talents/ai#top"`)
	assert.Contains(t, body, `href="/talents/iori#top"`)
	assert.NotContains(t, body, `href="/talents/umi#top"`)
	assert.Contains(t, body, `href="/managers/boss#top"`)
	assert.Less(t, strings.Index(body, "/talents/ai#top"), strings.Index(body, "/talents/iori#top"))
	assert.Contains(t, body, "logo-image")
	assert.Equal(t, 1, f.sessions.Len())
}

func TestHomeSelectionAppliesToMatchingRosterOnly(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/?debut=2023-05&type=talent", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/talents/umi#top"`)
	assert.NotContains(t, body, `href="/talents/ai#top"`)
	assert.Contains(t, body, `href="/managers/boss#top"`)
}

func TestHomeUnmatchedSelectionIsEmpty(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/?debut=1999-01&type=talent", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `href="/talents/`)
}

func TestRepeatedParameterIsFatal(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/?debut=2023-04&debut=2023-05", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHomeExpandsNews(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/?newsId=n1", "", nil)
	assert.Contains(t, rec.Body.String(), "<p>本文</p>")
	assert.Contains(t, rec.Body.String(), "2024.04.01")
}

func TestHomeFailsWhenCMSFails(t *testing.T) {
	f := newFixture(t)
	f.content.err = fmt.Errorf("dial tcp: refused")
	rec := f.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDetailRailUsesOwnCohort(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/talents/umi", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>うみ - ")
	assert.Contains(t, body, `href="/talents/umi?debut=2023-04#talent"`)
	assert.Contains(t, body, `href="/talents/umi#top"`)
	assert.NotContains(t, body, `href="/talents/ai#top"`)
}

func TestDetailSelectedDebutWins(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/talents/umi?debut=2023-04", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/talents/ai#top"`)
}

func TestDetailWithoutImagesIsFatal(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/talents/iori", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDetailNotFound(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/talents/nobody", "", nil).Code)
	// a manager is not on the talent roster
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/talents/boss", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/managers/boss", "", nil).Code)
}

func contactBody(email string) string {
	return url.Values{
		"name":    {"山田"},
		"email":   {email},
		"subject": {"出演依頼"},
		"message": {"よろしくお願いします"},
	}.Encode()
}

func TestContactInvalidEmail(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/contact", contactBody("not-an-email"), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "application/json",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp submissionJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "idle", resp.Outcome)
	assert.Contains(t, resp.FieldErrors, "email")
	assert.Empty(t, resp.Notifications)
	assert.Empty(t, f.relay.calls)
}

func TestContactValidSubmission(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/contact", contactBody("yamada@example.com"), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "application/json",
	})

	var resp submissionJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "succeeded", resp.Outcome)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, "loading", resp.Notifications[0].Kind)
	assert.Equal(t, int64(5000), resp.Notifications[1].AutoClose)
	assert.Len(t, f.relay.calls, 1)
}

func TestContactFormPostRerendersHome(t *testing.T) {
	f := newFixture(t)
	f.relay.err = fmt.Errorf("smtp down")
	rec := f.do(http.MethodPost, "/contact", contactBody("yamada@example.com"), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "送信に失敗しました")
	assert.Contains(t, body, `value="yamada@example.com"`)
}

func TestEmailEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/email", `{"name":"a","email":"a@example.com","subject":"s","message":"m"}`, map[string]string{
		"Content-Type": "application/json",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	require.Len(t, f.mail.calls, 1)
	assert.Equal(t, "m", f.mail.calls[0].Message)

	f.mail.err = fmt.Errorf("Invalid login")
	rec = f.do(http.MethodPost, "/email", contactBody("a@example.com"), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid login"}`, rec.Body.String())
}

func TestSitemapAndRobots(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/sitemap.xml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://www.higapro.jp/</loc>")
	assert.Contains(t, rec.Body.String(), "<loc>https://www.higapro.jp/talents/umi</loc>")
	assert.Contains(t, rec.Body.String(), "<loc>https://www.higapro.jp/managers/boss</loc>")
	assert.Contains(t, rec.Body.String(), "<changefreq>daily</changefreq>")

	rec = f.do(http.MethodGet, "/robots.txt", "", nil)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://www.higapro.jp/sitemap.xml")
}

func TestHealthAndNotFound(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/nope", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/assets/site.js", "", nil).Code)
}

func TestParseNavigation(t *testing.T) {
	nav, err := parseNavigation(url.Values{"debut": {""}, "type": {"manager"}})
	require.NoError(t, err)
	assert.True(t, nav.Selection.HasDebut)
	assert.Equal(t, "", nav.Selection.Debut)
	assert.Equal(t, domain.KindManager, nav.Selection.Kind)

	nav, err = parseNavigation(url.Values{})
	require.NoError(t, err)
	assert.False(t, nav.Selection.HasDebut)

	_, err = parseNavigation(url.Values{"newsId": {"a", "b"}})
	assert.Equal(t, http.StatusBadRequest, errors.StatusOf(err))
}

func TestHeaderSocket(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	session := f.sessions.Open(2)
	session.Store.Mount("home").Follow(func(loaded bool) g.Node {
		return view.Logo(loaded)
	})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/header?session=" + session.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var frame headerFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.False(t, frame.Loaded)
	assert.NotContains(t, frame.Header, "is-visible")

	require.NoError(t, conn.WriteJSON(headerEvent{Event: "image_loaded", Index: 0}))
	require.NoError(t, conn.WriteJSON(headerEvent{Event: "image_loaded", Index: 0}))
	require.NoError(t, conn.WriteJSON(headerEvent{Event: "image_loaded", Index: 1}))

	for !frame.Loaded || !strings.Contains(frame.Header, "is-visible") {
		require.NoError(t, conn.ReadJSON(&frame))
	}
	assert.Equal(t, "100%", frame.Progress)
	assert.True(t, session.Tracker.Loaded())
}

func TestHeaderSocketUnknownSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/ws/header?session=missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthReportsFailingCheck(t *testing.T) {
	f := newFixture(t)
	f.server.checks = map[string]func(context.Context) bool{
		"redis": func(context.Context) bool { return false },
	}

	rec := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
	assert.Contains(t, rec.Body.String(), `"redis":false`)
}

func TestHomeRendersCSRFField(t *testing.T) {
	f := newFixtureWith(t, func(deps *Dependencies) {
		deps.Config.CSRFKey = "0123456789abcdef0123456789abcdef"
	})

	rec := f.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="csrf_token"`)
	assert.Contains(t, rec.Body.String(), `type="hidden"`)
}
