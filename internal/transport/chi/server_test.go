package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/db/memory"
	"github.com/kailas-cloud/intentsearch/internal/domain"
	"github.com/kailas-cloud/intentsearch/internal/domain/catalog"
	domintent "github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/outcome"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
	"github.com/kailas-cloud/intentsearch/internal/domain/result"
	"github.com/kailas-cloud/intentsearch/internal/repository/recent"
	"github.com/kailas-cloud/intentsearch/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/intentsearch/internal/usecase/health"
	"github.com/kailas-cloud/intentsearch/internal/usecase/route"
	searchuc "github.com/kailas-cloud/intentsearch/internal/usecase/search"
	"github.com/kailas-cloud/intentsearch/internal/usecase/session"
	suggestuc "github.com/kailas-cloud/intentsearch/internal/usecase/suggest"
)

// --- Fakes ---

type stubClassifier struct {
	mu      sync.Mutex
	byQuery map[string]domintent.Classification
}

func (s *stubClassifier) Classify(_ context.Context, q query.Query) (domintent.Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byQuery[q.String()]; ok {
		return c, nil
	}
	return domintent.Classification{}, errors.New("classifier: no answer")
}

type stubProducts struct {
	items map[string][]result.Product
	err   error
}

func (s *stubProducts) SearchProducts(_ context.Context, keyword string) ([]result.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items[keyword], nil
}

type stubContent struct{}

func (stubContent) SearchPosts(context.Context, string) ([]result.Post, error) { return nil, nil }

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

type testAPI struct {
	server     *httptest.Server
	classifier *stubClassifier
	products   *stubProducts
	store      *memory.Store
	recent     *recent.Store
}

func newTestAPI(t *testing.T, upstream map[string]healthuc.Checker) *testAPI {
	t.Helper()
	cat := catalog.Default()
	api := &testAPI{
		classifier: &stubClassifier{byQuery: map[string]domintent.Classification{}},
		products:   &stubProducts{items: map[string][]result.Product{}},
		store:      memory.NewStore(),
	}
	api.recent = recent.New(api.store, "test:", 0, zap.NewNop())

	reg := session.NewRegistry(session.Config{}, session.Deps{
		Classifier: api.classifier,
		Sources:    aggregate.Sources{Products: api.products, Content: stubContent{}},
		Catalog:    cat,
		Logger:     zap.NewNop(),
	})
	srv := NewServer(
		suggestuc.New(api.recent, cat.Terms, suggestuc.Options{}, zap.NewNop()),
		searchuc.New(reg, api.recent, route.New(cat), cat, zap.NewNop()),
		api.recent,
		healthuc.New(api.store, upstream),
		Options{LiveDebounce: 50 * time.Millisecond},
		zap.NewNop(),
	)

	r := chi.NewRouter()
	srv.Routes(r)
	api.server = httptest.NewServer(r)
	t.Cleanup(api.server.Close)
	return api
}

func (a *testAPI) classify(raw string, tags []string, fixed string, pages []string, gibberish bool) {
	a.classifier.mu.Lock()
	defer a.classifier.mu.Unlock()
	a.classifier.byQuery[raw] = domintent.New(tags, fixed, pages, gibberish)
}

func (a *testAPI) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set(HeaderSessionID, "tab-1")
	req.Header.Set(HeaderDeviceID, "device-1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

// --- Tests ---

func TestSuggest(t *testing.T) {
	api := newTestAPI(t, nil)
	if err := api.recent.Add(context.Background(), "device-1", query.MustNew("yoga retreat")); err != nil {
		t.Fatalf("seed recent: %v", err)
	}

	resp := api.do(t, http.MethodGet, "/v1/suggest?q=yoga", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decodeBody[SuggestResponse](t, resp)
	want := []SuggestionItem{
		{Text: "yoga retreat", IsRecent: true},
		{Text: "yoga mat"},
		{Text: "yoga pants"},
		{Text: "yoga blocks"},
	}
	if diff := cmp.Diff(want, got.Suggestions); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggest_TooShortIsEmptyArray(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.do(t, http.MethodGet, "/v1/suggest?q=y", "")
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["suggestions"]) != "[]" {
		t.Errorf("suggestions = %s, want []", raw["suggestions"])
	}
}

func TestSearch_Outcomes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(a *testAPI)
		body  string
		want  OutcomeResponse
	}{
		{
			name: "static page navigates",
			setup: func(a *testAPI) {
				a.classify("about", []string{"staticPage"}, "about", []string{"About"}, false)
			},
			body: `{"query":"about"}`,
			want: OutcomeResponse{Kind: outcome.Navigate, Query: "about", Sequence: 1, Path: "/about"},
		},
		{
			name: "misspelling offers correction",
			setup: func(a *testAPI) {
				a.classify("runing shose", []string{"product"}, "running shoes", nil, false)
			},
			body: `{"query":"runing shose"}`,
			want: OutcomeResponse{Kind: outcome.Correction, Query: "runing shose", Sequence: 1, Suggested: "running shoes"},
		},
		{
			name: "brand navigates",
			setup: func(a *testAPI) {
				a.classify("black diamond", []string{"brand"}, "Black Diamond", nil, false)
			},
			body: `{"query":"black diamond","accept_correction":true}`,
			want: OutcomeResponse{Kind: outcome.Navigate, Query: "black diamond", Sequence: 1, Path: "/products?brand=Black+Diamond"},
		},
		{
			name: "gibberish shows trending",
			setup: func(a *testAPI) {
				a.classify("xqzvv", nil, "", nil, true)
			},
			body: `{"query":"xqzvv"}`,
			want: OutcomeResponse{
				Kind: outcome.Gibberish, Query: "xqzvv", Sequence: 1,
				Trending: catalog.Default().TrendingTerms(),
			},
		},
		{
			name: "products aggregate",
			setup: func(a *testAPI) {
				a.classify("tent", []string{"product"}, "tent", nil, false)
				a.products.items["tent"] = []result.Product{{ID: "p1", Name: "Trail Tent"}}
			},
			body: `{"query":"tent"}`,
			want: OutcomeResponse{
				Kind: outcome.Aggregate, Query: "tent", Sequence: 1, Path: "/search?query=tent",
				Results: &result.Set{
					Products:    []result.Product{{ID: "p1", Name: "Trail Tent"}},
					Content:     []result.Post{},
					Communities: []result.Community{},
					StaticPages: []result.StaticPage{},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, nil)
			tt.setup(api)

			resp := api.do(t, http.MethodPost, "/v1/search", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			got := decodeBody[OutcomeResponse](t, resp)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearch_RecordsRecentAndLatest(t *testing.T) {
	api := newTestAPI(t, nil)
	api.classify("about", []string{"staticPage"}, "about", []string{"About"}, false)

	if resp := api.do(t, http.MethodPost, "/v1/search", `{"query":"  about "}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d", resp.StatusCode)
	}

	latest := decodeBody[OutcomeResponse](t, api.do(t, http.MethodGet, "/v1/search/latest", ""))
	if latest.Kind != outcome.Navigate || latest.Path != "/about" {
		t.Errorf("latest = %+v", latest)
	}

	got := decodeBody[RecentResponse](t, api.do(t, http.MethodGet, "/v1/recent", ""))
	if diff := cmp.Diff([]string{"about"}, got.Queries); diff != "" {
		t.Errorf("recent mismatch (-want +got):\n%s", diff)
	}

	if resp := api.do(t, http.MethodDelete, "/v1/recent", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d", resp.StatusCode)
	}
	got = decodeBody[RecentResponse](t, api.do(t, http.MethodGet, "/v1/recent", ""))
	if len(got.Queries) != 0 {
		t.Errorf("recent after clear = %v", got.Queries)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setup     func(a *testAPI)
		status    int
		code      ErrorCode
		retryable bool
	}{
		{name: "malformed body", body: `{"query":`, status: http.StatusBadRequest, code: ErrorCodeBadRequest},
		{name: "blank query", body: `{"query":"   "}`, status: http.StatusBadRequest, code: ErrorCodeValidationFailed},
		{
			name: "source failure",
			body: `{"query":"tent"}`,
			setup: func(a *testAPI) {
				a.classify("tent", []string{"product"}, "tent", nil, false)
				a.products.err = errors.New("connection reset")
			},
			status:    http.StatusBadGateway,
			code:      ErrorCodeSourceUnavailable,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, nil)
			if tt.setup != nil {
				tt.setup(api)
			}
			resp := api.do(t, http.MethodPost, "/v1/search", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			got := decodeBody[ErrorResponse](t, resp)
			if got.Code != tt.code || got.Retryable != tt.retryable {
				t.Errorf("error = %+v", got)
			}
		})
	}
}

func TestLatestSearch_NotFound(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.do(t, http.MethodGet, "/v1/search/latest", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if got := decodeBody[ErrorResponse](t, resp); got.Code != ErrorCodeNotFound {
		t.Errorf("code = %s", got.Code)
	}
}

func TestHandleDomainError(t *testing.T) {
	srv := NewServer(nil, nil, nil, nil, Options{}, zap.NewNop())

	tests := []struct {
		name    string
		err     error
		status  int
		code    ErrorCode
		message string
	}{
		{"stale", domain.ErrStaleResponse, http.StatusConflict, ErrorCodeStaleResponse, domain.ErrStaleResponse.Error()},
		{"not found", domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound, domain.ErrNotFound.Error()},
		{"too long", domain.ErrQueryTooLong, http.StatusBadRequest, ErrorCodeValidationFailed, domain.ErrQueryTooLong.Error()},
		{
			"source names itself",
			domain.NewSourceError("content", errors.New("dial tcp 10.0.0.3:443: i/o timeout")),
			http.StatusBadGateway, ErrorCodeSourceUnavailable,
			domain.ErrSourceUnavailable.Error() + ": content",
		},
		{"unknown", errors.New("redis: pool exhausted"), http.StatusInternalServerError, ErrorCodeInternalError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.handleDomainError(context.Background(), rr, tt.err)

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			var got ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Code != tt.code || got.Message != tt.message {
				t.Errorf("error = %+v, want %s %q", got, tt.code, tt.message)
			}
		})
	}
}

func TestIdentity_GeneratedAndEchoed(t *testing.T) {
	api := newTestAPI(t, nil)

	resp, err := http.Get(api.server.URL + "/v1/suggest?q=yo")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Header.Get(HeaderSessionID) == "" || resp.Header.Get(HeaderDeviceID) == "" {
		t.Error("expected generated identity headers")
	}

	resp2 := api.do(t, http.MethodGet, "/v1/suggest?q=yo", "")
	if got := resp2.Header.Get(HeaderSessionID); got != "tab-1" {
		t.Errorf("session header = %q, want tab-1", got)
	}
}

func TestPickID_RejectsOversized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/suggest?session_id=from-query", http.NoBody)
	req.Header.Set(HeaderSessionID, strings.Repeat("x", maxIDLength+1))

	if got := pickID(req, HeaderSessionID, "session_id"); got != "from-query" {
		t.Errorf("pickID = %q, want from-query", got)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		upstream map[string]healthuc.Checker
		closeDB  bool
		status   int
		want     string
	}{
		{"all ok", map[string]healthuc.Checker{"classifier": stubChecker{}}, false, http.StatusOK, "ok"},
		{"upstream down", map[string]healthuc.Checker{"products": stubChecker{err: errors.New("503")}}, false, http.StatusOK, "degraded"},
		{"store down", nil, true, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, tt.upstream)
			if tt.closeDB {
				api.store.Close()
			}
			resp := api.do(t, http.MethodGet, "/health", "")
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeBody[HealthResponse](t, resp); got.Status != tt.want {
				t.Errorf("health = %+v, want %s", got, tt.want)
			}
		})
	}
}

func TestSuggestLive(t *testing.T) {
	api := newTestAPI(t, nil)

	url := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/v1/suggest/live?device_id=device-1"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	read := func() LiveMessage {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg LiveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	// Short input is answered immediately with an empty list.
	if err := conn.WriteJSON(LiveRequest{Q: "y"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := read()
	if msg.Type != liveMessageType || msg.Q != "y" || len(msg.Suggestions) != 0 {
		t.Errorf("short input message = %+v", msg)
	}

	for _, q := range []string{"yo", "yog", "yoga m"} {
		if err := conn.WriteJSON(LiveRequest{Q: q}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	msg = read()
	if msg.Q != "yoga m" {
		t.Fatalf("answered %q, want the last input of the burst", msg.Q)
	}
	if diff := cmp.Diff([]SuggestionItem{{Text: "yoga mat"}}, msg.Suggestions); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://shop.example.com"})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://shop.example.com", true},
		{"https://evil.example.com", false},
		{"http://shop.example.com", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/suggest/live", http.NoBody)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := check(req); got != tt.want {
			t.Errorf("origin %q: got %v, want %v", tt.origin, got, tt.want)
		}
	}

	if !originChecker([]string{"*"})(httptest.NewRequest(http.MethodGet, "/", http.NoBody)) {
		t.Error("wildcard should allow any origin")
	}
}
