package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/sitesafe-learn/internal/config"
	"github.com/stemsi/sitesafe-learn/internal/content"
	"github.com/stemsi/sitesafe-learn/internal/database"
	"github.com/stemsi/sitesafe-learn/internal/handler"
	"github.com/stemsi/sitesafe-learn/internal/middleware"
	"github.com/stemsi/sitesafe-learn/internal/repository"
	"github.com/stemsi/sitesafe-learn/internal/service"
	"github.com/stemsi/sitesafe-learn/internal/validator"
)

type testEnv struct {
	router *gin.Engine
	store  *repository.MemoryMountStore
}

func newTestEnv(t *testing.T, rate int) *testEnv {
	t.Helper()

	cfg := &config.Config{
		GinMode:      gin.TestMode,
		MountSecret:  "router-test-secret",
		MountTTL:     time.Hour,
		StaticMaxAge: 60,
	}
	validator.Setup()

	catalog, err := content.Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	log := zerolog.Nop()
	store := repository.NewMemoryMountStore()
	mounts := service.NewMountService(cfg, catalog, store, log)
	pages := service.NewPageService(catalog)

	limiter := middleware.NewRateLimiter(rate, time.Minute)
	t.Cleanup(limiter.Close)

	handlers := &Handlers{
		Page:   handler.NewPageHandler(pages, mounts, log),
		Mount:  handler.NewMountHandler(pages, mounts, log),
		WS:     handler.NewWSHandler(mounts, log, nil),
		System: handler.NewSystemHandler(catalog.Len(), log, database.Probe{Name: "noop", Check: func(ctx context.Context) error { return nil }}),
	}

	r, err := SetupRouter(mounts, limiter, handlers, cfg)
	if err != nil {
		t.Fatalf("SetupRouter: %v", err)
	}
	return &testEnv{router: r, store: store}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return w, env
}

func (e *testEnv) mount(t *testing.T, slug string) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/v1/pages/"+slug+"/mounts", "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("mount %s: %d %s", slug, w.Code, w.Body.String())
	}
	var ticket struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(env.Data, &ticket)
	if ticket.Token == "" {
		t.Fatal("empty ticket")
	}
	return ticket.Token
}

func TestCatalogAPI(t *testing.T) {
	e := newTestEnv(t, 100)

	w, env := e.do(t, http.MethodGet, "/api/v1/pages", "", "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), "working-at-height") {
		t.Fatalf("list: %d %s", w.Code, env.Data)
	}

	w, env = e.do(t, http.MethodGet, "/api/v1/pages/working-at-height", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	if strings.Contains(string(env.Data), "correct_index") || strings.Contains(string(env.Data), "explanation") {
		t.Fatal("page API leaks answers")
	}

	w, env = e.do(t, http.MethodGet, "/api/v1/pages/unknown", "", "")
	if w.Code != http.StatusNotFound || env.Error.Code != "PAGE_NOT_FOUND" {
		t.Fatalf("missing page: %d %+v", w.Code, env.Error)
	}

	w, env = e.do(t, http.MethodPost, "/api/v1/pages/unknown/mounts", "", "")
	if w.Code != http.StatusNotFound || env.Error.Code != "PAGE_NOT_FOUND" {
		t.Fatalf("mount missing page: %d %+v", w.Code, env.Error)
	}
}

func TestMountAPIFlow(t *testing.T) {
	e := newTestEnv(t, 100)
	token := e.mount(t, "working-at-height")

	w, env := e.do(t, http.MethodPost, "/api/v1/mount/checks/ladders/select", token, `{"option":2}`)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"correct":true`) {
		t.Fatalf("select: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("mount responses must not be cached")
	}

	answers := []int{1, 1, 2, 1, 2, 1, 0, 0}
	for i, opt := range answers {
		body := fmt.Sprintf(`{"question_id":"wah-%d","option":%d}`, i+1, opt)
		if w, _ := e.do(t, http.MethodPost, "/api/v1/mount/quiz/answers", token, body); w.Code != http.StatusOK {
			t.Fatalf("answer %d: %d %s", i+1, w.Code, w.Body.String())
		}
	}

	w, env = e.do(t, http.MethodGet, "/api/v1/mount/quiz/score", token, "")
	var score struct {
		Correct  int    `json:"correct"`
		Answered int    `json:"answered"`
		Total    int    `json:"total"`
		Percent  int    `json:"percent"`
		Status   string `json:"status"`
	}
	_ = json.Unmarshal(env.Data, &score)
	if w.Code != http.StatusOK || score.Correct != 6 || score.Total != 8 || score.Percent != 75 || score.Status != "COMPLETE" {
		t.Fatalf("score: %d %+v", w.Code, score)
	}

	w, env = e.do(t, http.MethodGet, "/api/v1/mount", token, "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"section_id":"ladders"`) {
		t.Fatalf("state: %d %s", w.Code, env.Data)
	}

	w, env = e.do(t, http.MethodPost, "/api/v1/mount/quiz/reset", token, "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"answered":0`) {
		t.Fatalf("reset: %d %s", w.Code, env.Data)
	}

	if w, _ := e.do(t, http.MethodDelete, "/api/v1/mount", token, ""); w.Code != http.StatusOK {
		t.Fatalf("discard: %d", w.Code)
	}
	if e.store.Len() != 0 {
		t.Fatal("discard kept state")
	}
}

func TestMountAPIErrors(t *testing.T) {
	e := newTestEnv(t, 100)
	token := e.mount(t, "cscs-card-guide")

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     string
		wantCode int
		wantErr  string
	}{
		{"no ticket", http.MethodGet, "/api/v1/mount", "", "", http.StatusUnauthorized, "TICKET_REQUIRED"},
		{"bad ticket", http.MethodGet, "/api/v1/mount", "garbage", "", http.StatusUnauthorized, "TICKET_INVALID"},
		{"missing option", http.MethodPost, "/api/v1/mount/checks/hse-test/select", token, `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"option above max", http.MethodPost, "/api/v1/mount/checks/hse-test/select", token, `{"option":8}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"option beyond question", http.MethodPost, "/api/v1/mount/checks/hse-test/select", token, `{"option":5}`, http.StatusBadRequest, "OPTION_OUT_OF_RANGE"},
		{"section without check", http.MethodPost, "/api/v1/mount/checks/preparing/select", token, `{"option":0}`, http.StatusNotFound, "CHECK_NOT_FOUND"},
		{"guide has no quiz", http.MethodGet, "/api/v1/mount/quiz/score", token, "", http.StatusNotFound, "NO_QUIZ"},
		{"unknown route", http.MethodGet, "/api/v2/nothing", "", "", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := e.do(t, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if env.Error == nil || env.Error.Code != tt.wantErr {
				t.Fatalf("error = %+v, want %s", env.Error, tt.wantErr)
			}
		})
	}
}

func TestRateLimitedMounts(t *testing.T) {
	e := newTestEnv(t, 1)
	e.mount(t, "manual-handling")
	w, env := e.do(t, http.MethodPost, "/api/v1/pages/manual-handling/mounts", "", "")
	if w.Code != http.StatusTooManyRequests || env.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("second mount: %d %+v", w.Code, env.Error)
	}
}

var ticketInput = regexp.MustCompile(`name="m" value="([^"]+)"`)

// follow returns the request path of a redirect; the fragment stays in the
// browser.
func follow(loc string) string {
	path, _, _ := strings.Cut(loc, "#")
	return path
}

func TestHTMLPostRedirectGet(t *testing.T) {
	e := newTestEnv(t, 100)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/learn/working-at-height", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("show: %d", w.Code)
	}
	match := ticketInput.FindStringSubmatch(w.Body.String())
	if match == nil {
		t.Fatal("page has no ticket")
	}
	token := match[1]

	form := url.Values{"m": {token}, "option": {"0"}}
	req := httptest.NewRequest(http.MethodPost, "/learn/working-at-height/checks/ladders", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("post: %d %s", w.Code, w.Body.String())
	}
	loc := w.Header().Get("Location")
	if !strings.HasSuffix(loc, "#check-ladders") || !strings.Contains(loc, "m=") {
		t.Fatalf("Location = %q", loc)
	}

	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, follow(loc), nil))
	page := w.Body.String()
	if !strings.Contains(page, "opt-chosen_incorrect") || !strings.Contains(page, "Not quite.") {
		t.Fatal("selection not rendered after redirect")
	}

	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/learn/working-at-height", nil))
	if strings.Contains(w.Body.String(), "opt-chosen_incorrect") {
		t.Fatal("fresh visit inherited another mount's state")
	}
}

func TestHTMLQuizAndReset(t *testing.T) {
	e := newTestEnv(t, 100)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/learn/manual-handling", nil))
	token := ticketInput.FindStringSubmatch(w.Body.String())[1]

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		form.Set("m", token)
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	w = post("/learn/manual-handling/quiz/answers", url.Values{"question_id": {"mh-1"}, "option": {"1"}})
	if w.Code != http.StatusSeeOther || !strings.HasSuffix(w.Header().Get("Location"), "#q-mh-1") {
		t.Fatalf("answer: %d %q", w.Code, w.Header().Get("Location"))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, follow(w.Header().Get("Location")), nil))
	if !strings.Contains(rec.Body.String(), "1 of 5 correct (20%)") || !strings.Contains(rec.Body.String(), "Retake quiz") {
		t.Fatal("score not rendered")
	}

	w = post("/learn/manual-handling/quiz/reset", url.Values{})
	if w.Code != http.StatusSeeOther || !strings.HasSuffix(w.Header().Get("Location"), "#quiz") {
		t.Fatalf("reset: %d", w.Code)
	}
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, follow(w.Header().Get("Location")), nil))
	if !strings.Contains(rec.Body.String(), "0 of 5 correct (0%)") {
		t.Fatal("reset not rendered")
	}

	w = post("/learn/manual-handling/quiz/answers", url.Values{"question_id": {"mh-1"}, "option": {"x"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad option: %d", w.Code)
	}
}

func TestHTMLStaleTicketRemounts(t *testing.T) {
	e := newTestEnv(t, 100)

	form := url.Values{"m": {"expired-or-forged"}, "option": {"0"}}
	req := httptest.NewRequest(http.MethodPost, "/learn/manual-handling/checks/assess", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/learn/manual-handling" {
		t.Fatalf("stale ticket: %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/learn/no-such-page", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Page not found.") {
		t.Fatalf("missing page: %d", w.Code)
	}
}

func TestIndexStaticAndHealth(t *testing.T) {
	e := newTestEnv(t, 100)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `href="/learn/working-at-height"`) {
		t.Fatalf("index: %d", w.Code)
	}

	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))
	if w.Code != http.StatusOK || w.Header().Get("Cache-Control") != "public, max-age=60" {
		t.Fatalf("static: %d %q", w.Code, w.Header().Get("Cache-Control"))
	}

	w, env := e.do(t, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"status":"ok"`) {
		t.Fatalf("health: %d %s", w.Code, env.Data)
	}
}

func TestWebSocketMountStream(t *testing.T) {
	e := newTestEnv(t, 100)
	token := e.mount(t, "working-at-height")

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/mount?token=" + url.QueryEscape(token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	roundTrip := func(msg string) map[string]any {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
		var out map[string]any
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&out); err != nil {
			t.Fatalf("read: %v", err)
		}
		return out
	}

	if ev := roundTrip(`{"action":"ping"}`); ev["event"] != "pong" {
		t.Fatalf("ping -> %v", ev)
	}

	ev := roundTrip(`{"action":"select","section_id":"hierarchy","option":1}`)
	if ev["event"] != "revealed" || ev["widget"] != "check" {
		t.Fatalf("select -> %v", ev)
	}
	if outcome := ev["outcome"].(map[string]any); outcome["correct"] != true {
		t.Fatalf("outcome = %v", outcome)
	}

	ev = roundTrip(`{"action":"answer","question_id":"wah-1","option":0}`)
	if ev["event"] != "revealed" || ev["widget"] != "quiz" || ev["score"] == nil {
		t.Fatalf("answer -> %v", ev)
	}

	ev = roundTrip(`{"action":"score"}`)
	score := ev["score"].(map[string]any)
	if ev["event"] != "scored" || score["answered"] != float64(1) || score["correct"] != float64(0) {
		t.Fatalf("score -> %v", ev)
	}

	if ev := roundTrip(`{"action":"reset"}`); ev["event"] != "reset" {
		t.Fatalf("reset -> %v", ev)
	}

	if ev := roundTrip(`{"action":"state"}`); ev["event"] != "state" {
		t.Fatalf("state -> %v", ev)
	}

	ev = roundTrip(`{"action":"answer","question_id":"wah-1"}`)
	if ev["event"] != "error" || ev["code"] != "VALIDATION_ERROR" {
		t.Fatalf("invalid answer -> %v", ev)
	}

	ev = roundTrip(`{"action":"answer","question_id":"nope","option":0}`)
	if ev["event"] != "error" || ev["code"] != "UNKNOWN_QUESTION" {
		t.Fatalf("unknown question -> %v", ev)
	}

	if ev := roundTrip(`{"action":"dance"}`); ev["code"] != "UNKNOWN_ACTION" {
		t.Fatalf("unknown action -> %v", ev)
	}

	if ev := roundTrip(`not json`); ev["code"] != "INVALID_PAYLOAD" {
		t.Fatalf("bad frame -> %v", ev)
	}
}

func TestWebSocketRequiresTicket(t *testing.T) {
	e := newTestEnv(t, 100)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/mount"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without ticket succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("response = %v", resp)
	}
}
