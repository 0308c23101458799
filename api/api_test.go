package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"article-paywall/config"
	"article-paywall/metrics"
	"article-paywall/models"
	"article-paywall/services"
	"article-paywall/sessions"
	"article-paywall/store"
)

type testEnv struct {
	router http.Handler
	db     *gorm.DB
}

func newTestEnv(t *testing.T, placeholderOnMiss bool) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, placeholderOnMiss, sessions.NewMemoryStore(time.Hour))
}

func newTestEnvWithStore(t *testing.T, placeholderOnMiss bool, sessionStore sessions.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(&config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	router := NewRouter(Deps{
		DB:       db,
		Articles: services.NewArticleService(store.NewArticleStore(db), 3, placeholderOnMiss, log),
		Auth:     services.NewAuthService(store.NewUserStore(db), log),
		Sessions: sessions.NewManager(sessionStore, "session", false, time.Hour, log),
		Logger:   log,
	})
	return &testEnv{router: router, db: db}
}

func (e *testEnv) addArticle(t *testing.T, title string) models.Article {
	t.Helper()
	a := models.Article{
		Author: "Ada", Title: title, Content: title + " content", Preview: title + " preview",
		MinutesToRead: 5, Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.db.Create(&a).Error)
	return a
}

func (e *testEnv) addUser(t *testing.T, username string) models.User {
	t.Helper()
	u := models.User{Username: username}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) countArticles(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Article{}).Count(&n).Error)
	return n
}

// client hält das Session-Cookie wie ein Browser.
type client struct {
	env    *testEnv
	cookie *http.Cookie
}

func (e *testEnv) newClient() *client {
	return &client{env: e}
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session" {
			c.cookie = ck
		}
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListArticles(t *testing.T) {
	env := newTestEnv(t, true)
	first := env.addArticle(t, "First")
	second := env.addArticle(t, "Second")
	c := env.newClient()

	w := c.do(http.MethodGet, "/articles", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[[]models.Article](t, w)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	again := c.do(http.MethodGet, "/articles", "")
	assert.Equal(t, w.Body.String(), again.Body.String())
}

func TestListArticlesEmpty(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.newClient().do(http.MethodGet, "/articles", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListArticlesDoesNotCountPageViews(t *testing.T) {
	env := newTestEnv(t, true)
	a := env.addArticle(t, "First")
	c := env.newClient()

	for i := 0; i < 5; i++ {
		c.do(http.MethodGet, "/articles", "")
	}
	w := c.do(http.MethodGet, "/articles/"+itoa(a.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShowArticleSerializedForm(t *testing.T) {
	env := newTestEnv(t, true)
	a := env.addArticle(t, "First")

	w := env.newClient().do(http.MethodGet, "/articles/"+itoa(a.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.ElementsMatch(t,
		[]string{"id", "author", "title", "content", "preview", "minutes_to_read", "date"},
		keys(raw))
	assert.Equal(t, "First", raw["title"])
	assert.EqualValues(t, 5, raw["minutes_to_read"])
}

func TestPaywallAfterThreeViews(t *testing.T) {
	env := newTestEnv(t, true)
	a := env.addArticle(t, "First")
	c := env.newClient()
	path := "/articles/" + itoa(a.ID)

	for i := 0; i < 3; i++ {
		w := c.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, "view %d", i+1)
	}
	for i := 0; i < 2; i++ {
		w := c.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Maximum pageview limit reached"}`, w.Body.String())
	}

	other := env.newClient().do(http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestClearResetsPaywall(t *testing.T) {
	env := newTestEnv(t, true)
	a := env.addArticle(t, "First")
	c := env.newClient()
	path := "/articles/" + itoa(a.ID)

	for i := 0; i < 4; i++ {
		c.do(http.MethodGet, path, "")
	}
	w := c.do(http.MethodDelete, "/clear", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, path, "").Code)
}

func TestShowMissingArticleCreatesPlaceholder(t *testing.T) {
	env := newTestEnv(t, true)
	c := env.newClient()

	w := c.do(http.MethodGet, "/articles/999", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Article](t, w)
	assert.Equal(t, "Test Author", got.Author)
	assert.Equal(t, "Test Title", got.Title)
	assert.Equal(t, "Test Content", got.Content)
	assert.Equal(t, "Test Content Preview", got.Preview)
	assert.Equal(t, 1, got.MinutesToRead)
	assert.NotZero(t, got.ID)
	assert.WithinDuration(t, time.Now(), got.Date, time.Minute)
	assert.EqualValues(t, 1, env.countArticles(t))
}

func TestShowMissingArticleBehindPaywallCreatesNothing(t *testing.T) {
	env := newTestEnv(t, true)
	a := env.addArticle(t, "First")
	c := env.newClient()

	for i := 0; i < 3; i++ {
		c.do(http.MethodGet, "/articles/"+itoa(a.ID), "")
	}
	w := c.do(http.MethodGet, "/articles/999", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 1, env.countArticles(t))
}

func TestShowMissingArticleNotFoundWhenPlaceholderDisabled(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.newClient().do(http.MethodGet, "/articles/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Article not found"}`, w.Body.String())
	assert.Zero(t, env.countArticles(t))
}

func TestShowArticleInvalidID(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.newClient().do(http.MethodGet, "/articles/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, true)
	ada := env.addUser(t, "ada")

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"empty username", `{"username":""}`, http.StatusBadRequest, `{"error":"Username is required"}`},
		{"missing username", `{}`, http.StatusBadRequest, `{"error":"Username is required"}`},
		{"malformed body", `{"username":`, http.StatusBadRequest, `{"error":"Username is required"}`},
		{"unknown username", `{"username":"nobody"}`, http.StatusNotFound, `{"error":"User not found"}`},
		{"known username", `{"username":"ada"}`, http.StatusOK, `{"id":` + itoa(ada.ID) + `,"username":"ada"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.newClient().do(http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestLoginThenCheckSession(t *testing.T) {
	env := newTestEnv(t, true)
	ada := env.addUser(t, "ada")
	c := env.newClient()

	login := c.do(http.MethodPost, "/login", `{"username":"ada"}`)
	require.Equal(t, http.StatusOK, login.Code)

	w := c.do(http.MethodGet, "/check_session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ada, decode[models.User](t, w))
	assert.JSONEq(t, login.Body.String(), w.Body.String())
}

func TestCheckSessionWithoutLogin(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.newClient().do(http.MethodGet, "/check_session", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestClearLogsOut(t *testing.T) {
	env := newTestEnv(t, true)
	env.addUser(t, "ada")
	c := env.newClient()

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/login", `{"username":"ada"}`).Code)
	require.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/clear", "").Code)

	w := c.do(http.MethodGet, "/check_session", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestClearAndLogoutOnFreshSession(t *testing.T) {
	env := newTestEnv(t, true)
	c := env.newClient()

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/clear", "").Code)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/logout", "").Code)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/logout", "").Code)
}

func TestLogoutKeepsPageViews(t *testing.T) {
	env := newTestEnv(t, true)
	a := env.addArticle(t, "First")
	env.addUser(t, "ada")
	c := env.newClient()
	path := "/articles/" + itoa(a.ID)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/login", `{"username":"ada"}`).Code)
	c.do(http.MethodGet, path, "")
	c.do(http.MethodGet, path, "")

	w := c.do(http.MethodDelete, "/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/check_session", "").Code)

	// Dritter Aufruf geht noch durch, der vierte nicht: der Zähler wurde nicht zurückgesetzt.
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, path, "").Code)
}

func TestCheckSessionDropsDeletedUser(t *testing.T) {
	env := newTestEnv(t, true)
	ada := env.addUser(t, "ada")
	c := env.newClient()

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/login", `{"username":"ada"}`).Code)
	require.NoError(t, env.db.Delete(&models.User{}, ada.ID).Error)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/check_session", "").Code)

	// Ein neu angelegter Benutzer mit derselben ID darf die alte Session nicht übernehmen.
	require.NoError(t, env.db.Create(&models.User{ID: ada.ID, Username: "ada2"}).Error)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/check_session", "").Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.newClient().do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)
	a := env.addArticle(t, "First")
	c := env.newClient()
	c.do(http.MethodGet, "/articles/"+itoa(a.ID), "")

	w := c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "article_views_total"))
}

// readOnlySessions lädt normal, aber jeder Schreibzugriff schlägt fehl.
type readOnlySessions struct {
	*sessions.MemoryStore
}

func (readOnlySessions) Save(context.Context, string, sessions.Data) error {
	return errors.New("READONLY You can't write against a read only replica")
}

func (readOnlySessions) Delete(context.Context, string) error {
	return errors.New("READONLY You can't write against a read only replica")
}

func TestShowArticleFailsWhenSessionCannotBeSaved(t *testing.T) {
	env := newTestEnvWithStore(t, true, readOnlySessions{sessions.NewMemoryStore(time.Hour)})
	a := env.addArticle(t, "First")
	c := env.newClient()

	for i := 0; i < 6; i++ {
		w := c.do(http.MethodGet, "/articles/"+itoa(a.ID), "")
		assert.Equal(t, http.StatusInternalServerError, w.Code, "call %d", i+1)
		assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
	}
}

func TestLoginFailsWhenSessionCannotBeSaved(t *testing.T) {
	env := newTestEnvWithStore(t, true, readOnlySessions{sessions.NewMemoryStore(time.Hour)})
	env.addUser(t, "ada")
	c := env.newClient()

	w := c.do(http.MethodPost, "/login", `{"username":"ada"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/check_session", "").Code)
}

func TestMalformedLoginCountsAsInvalid(t *testing.T) {
	env := newTestEnv(t, true)
	invalid := metrics.Logins.WithLabelValues("invalid")
	before := testutil.ToFloat64(invalid)

	w := env.newClient().do(http.MethodPost, "/login", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(invalid))
}
