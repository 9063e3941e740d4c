package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pearls-backend/internal/corpus"
	"github.com/yungbote/pearls-backend/internal/data/repos"
	"github.com/yungbote/pearls-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pearls-backend/internal/domain"
	"github.com/yungbote/pearls-backend/internal/domain/content"
	httpH "github.com/yungbote/pearls-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pearls-backend/internal/http/middleware"
	"github.com/yungbote/pearls-backend/internal/overlaystore"
	"github.com/yungbote/pearls-backend/internal/pipeline/ordering"
	"github.com/yungbote/pearls-backend/internal/services"
)

type testServer struct {
	engine      *gin.Engine
	adminToken  string
	memberToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)
	ctx := context.Background()

	userRepo := repos.NewUserRepo(db, log)
	deletedRepo := repos.NewDeletedItemRepo(db, log)
	editRepo := repos.NewTweetEditRepo(db, log)
	favRepo := repos.NewFavoriteRepo(db, log)

	c := corpus.New([]content.Thread{
		{ID: "T1", Year: 2023, IsPearl: true, Categories: []string{"Pearl"}, Tweets: []content.Tweet{
			{Text: "Old text", Media: []content.Media{{Type: content.MediaImage, Path: "a.jpg"}}},
			{Text: "two"},
			{Text: "three"},
		}},
		{ID: "T2", Year: 2022, Categories: []string{"General"}, Tweets: []content.Tweet{{Text: "other"}}},
	})
	store := overlaystore.New(repos.OverlaySnapshotSource{Deletions: deletedRepo, Edits: editRepo}, log, overlaystore.Options{})
	views := overlaystore.NewViews(c, store, log, nil)

	auth := services.NewAuthService(log, userRepo, "router-secret", 0, "")
	gateway := services.NewMutationGateway(log, deletedRepo, editRepo, favRepo, store, nil, nil)
	contentSvc := services.NewContentService(log, views, store, favRepo, ordering.NewShuffler(ordering.NewMemoryStore(), 0, log))

	am := httpMW.NewAuthMiddleware(log, auth, "")
	engine := NewRouter(RouterConfig{
		Log:              log,
		AuthMiddleware:   am,
		RateLimiter:      httpMW.NewRateLimiter(0, nil),
		HealthHandler:    httpH.NewHealthHandler(c, store),
		AuthHandler:      httpH.NewAuthHandler(auth, am.CookieName()),
		ContentHandler:   httpH.NewContentHandler(contentSvc),
		AdminHandler:     httpH.NewAdminHandler(gateway),
		FavoritesHandler: httpH.NewFavoritesHandler(gateway),
	})

	admin := testutil.SeedUser(t, ctx, db, "admin", types.RoleAdmin)
	member := testutil.SeedUser(t, ctx, db, "member", types.RoleUser)
	adminTok, err := auth.IssueToken(admin)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	memberTok, err := auth.IssueToken(member)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return &testServer{engine: engine, adminToken: adminTok, memberToken: memberTok}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *nethttp.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Session-Id", "router-test")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestAdminRoutesGate(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		token string
		want  int
		code  string
	}{
		{token: "", want: nethttp.StatusUnauthorized, code: "unauthorized"},
		{token: s.memberToken, want: nethttp.StatusForbidden, code: "forbidden"},
		{token: s.adminToken, want: nethttp.StatusOK},
	}
	for _, tc := range cases {
		rec := s.do(t, nethttp.MethodPost, "/api/admin/threads/T1/tweets/1/delete", tc.token, "")
		if rec.Code != tc.want {
			t.Fatalf("status=%d, want %d: %s", rec.Code, tc.want, rec.Body.String())
		}
		if tc.code != "" {
			env := decode[struct {
				Error struct {
					Code      string `json:"code"`
					Retryable bool   `json:"retryable"`
				} `json:"error"`
			}](t, rec)
			if env.Error.Code != tc.code || env.Error.Retryable {
				t.Fatalf("error envelope=%+v", env.Error)
			}
		}
	}

	thread := decode[types.ResolvedThread](t, s.do(t, nethttp.MethodGet, "/api/content/threads/T1", "", ""))
	if thread.TweetCount != 2 || thread.Tweets[1].Index != 2 {
		t.Fatalf("resolved thread=%+v", thread)
	}
	dels := decode[[]types.DeletedItem](t, s.do(t, nethttp.MethodGet, "/api/content/deleted-items", "", ""))
	if len(dels) != 1 || dels[0].ItemType != types.ItemTypeTweet {
		t.Fatalf("deleted items=%+v", dels)
	}
}

func TestEditRoundTrip(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, nethttp.MethodPut, "/api/admin/threads/T1/tweets/0/edit", s.adminToken, `{"editedText":"New text","hiddenMedia":null}`)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("save edit: %d %s", rec.Code, rec.Body.String())
	}
	thread := decode[types.ResolvedThread](t, s.do(t, nethttp.MethodGet, "/api/content/threads/T1", "", ""))
	if thread.Tweets[0].Text != "New text" || len(thread.Tweets[0].Media) != 1 {
		t.Fatalf("edited tweet=%+v", thread.Tweets[0])
	}
	if rec := s.do(t, nethttp.MethodPut, "/api/admin/threads/T1/tweets/x/edit", s.adminToken, `{}`); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("bad index: %d", rec.Code)
	}
	if rec := s.do(t, nethttp.MethodDelete, "/api/admin/threads/T1/tweets/0/edit", s.adminToken, ""); rec.Code != nethttp.StatusOK {
		t.Fatalf("delete edit: %d", rec.Code)
	}
	thread = decode[types.ResolvedThread](t, s.do(t, nethttp.MethodGet, "/api/content/threads/T1", "", ""))
	if thread.Tweets[0].Text != "Old text" {
		t.Fatalf("edit not removed: %+v", thread.Tweets[0])
	}
}

func TestFavoritesRoutes(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(t, nethttp.MethodGet, "/api/favorites", "", ""); rec.Code != nethttp.StatusUnauthorized {
		t.Fatalf("anonymous list: %d", rec.Code)
	}
	for i := 0; i < 2; i++ {
		if rec := s.do(t, nethttp.MethodPost, "/api/favorites", s.memberToken, `{"threadId":"T2"}`); rec.Code != nethttp.StatusOK {
			t.Fatalf("add: %d %s", rec.Code, rec.Body.String())
		}
	}
	ids := decode[[]string](t, s.do(t, nethttp.MethodGet, "/api/favorites", s.memberToken, ""))
	if len(ids) != 1 || ids[0] != "T2" {
		t.Fatalf("favorites=%v", ids)
	}

	res := decode[struct {
		Threads []types.ResolvedThread `json:"threads"`
	}](t, s.do(t, nethttp.MethodGet, "/api/content/threads?favorites=true", s.memberToken, ""))
	if len(res.Threads) != 1 || res.Threads[0].ID != "T2" {
		t.Fatalf("favorites-only threads=%+v", res.Threads)
	}
	res = decode[struct {
		Threads []types.ResolvedThread `json:"threads"`
	}](t, s.do(t, nethttp.MethodGet, "/api/content/threads?favorites=true", "", ""))
	if len(res.Threads) != 0 {
		t.Fatalf("anonymous favorites-only should be empty: %+v", res.Threads)
	}

	toggled := decode[struct {
		Favorite bool `json:"favorite"`
	}](t, s.do(t, nethttp.MethodPost, "/api/favorites/T2/toggle", s.memberToken, ""))
	if toggled.Favorite {
		t.Fatalf("toggle should remove")
	}
	if rec := s.do(t, nethttp.MethodPost, "/api/favorites", s.memberToken, `{}`); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("missing threadId: %d", rec.Code)
	}
}

func TestContentQueries(t *testing.T) {
	s := newTestServer(t)
	res := decode[struct {
		Threads []types.ResolvedThread `json:"threads"`
		Stats   struct {
			TotalThreads  int `json:"totalThreads"`
			FilteredCount int `json:"filteredCount"`
		} `json:"stats"`
	}](t, s.do(t, nethttp.MethodGet, "/api/content/threads?category=Pearl&year=All", "", ""))
	if len(res.Threads) != 1 || res.Threads[0].ID != "T1" || res.Stats.TotalThreads != 2 || res.Stats.FilteredCount != 1 {
		t.Fatalf("threads=%+v stats=%+v", res.Threads, res.Stats)
	}
	if rec := s.do(t, nethttp.MethodGet, "/api/content/threads?sort=sideways", "", ""); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("bad sort: %d", rec.Code)
	}
	if rec := s.do(t, nethttp.MethodGet, "/api/content/threads/missing", "", ""); rec.Code != nethttp.StatusNotFound {
		t.Fatalf("missing thread: %d", rec.Code)
	}
	items := decode[struct {
		Tweets []struct {
			ThreadID string `json:"threadId"`
		} `json:"tweets"`
	}](t, s.do(t, nethttp.MethodGet, "/api/content/tweets?q=other", "", ""))
	if len(items.Tweets) != 1 || items.Tweets[0].ThreadID != "T2" {
		t.Fatalf("tweets=%+v", items.Tweets)
	}
	if rec := s.do(t, nethttp.MethodPost, "/api/content/reshuffle", "", ""); rec.Code != nethttp.StatusOK {
		t.Fatalf("reshuffle: %d", rec.Code)
	}
}

func TestAuthAndHealthRoutes(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(t, nethttp.MethodGet, "/api/auth/me", "", ""); rec.Body.String() != "null" {
		t.Fatalf("anonymous me=%s", rec.Body.String())
	}
	me := decode[struct {
		Role string `json:"role"`
	}](t, s.do(t, nethttp.MethodGet, "/api/auth/me", s.adminToken, ""))
	if me.Role != types.RoleAdmin {
		t.Fatalf("me=%+v", me)
	}
	rec := s.do(t, nethttp.MethodPost, "/api/auth/logout", s.adminToken, "")
	if rec.Code != nethttp.StatusOK || len(rec.Result().Cookies()) == 0 {
		t.Fatalf("logout: %d cookies=%v", rec.Code, rec.Result().Cookies())
	}
	if rec := s.do(t, nethttp.MethodGet, "/healthcheck", "", ""); rec.Code != nethttp.StatusOK {
		t.Fatalf("healthcheck: %d", rec.Code)
	}
	if rec := s.do(t, nethttp.MethodGet, "/readyz", "", ""); rec.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("readyz before first snapshot: %d", rec.Code)
	}
	s.do(t, nethttp.MethodGet, "/api/content/threads", "", "")
	if rec := s.do(t, nethttp.MethodGet, "/readyz", "", ""); rec.Code != nethttp.StatusOK {
		t.Fatalf("readyz after snapshot: %d %s", rec.Code, rec.Body.String())
	}
}
