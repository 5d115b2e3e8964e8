package intentsearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	domintent "github.com/kailas-cloud/intentsearch/internal/domain/intent"
	"github.com/kailas-cloud/intentsearch/internal/domain/query"
)

type fakeClassifier map[string]Classification

func (f fakeClassifier) Classify(_ context.Context, q string) (Classification, error) {
	c, ok := f[q]
	if !ok {
		return Classification{}, errors.New("model offline")
	}
	return c, nil
}

type fakeProducts map[string][]Product

func (f fakeProducts) SearchProducts(_ context.Context, keyword string) ([]Product, error) {
	return f[keyword], nil
}

type fakeContent struct{ err error }

func (f fakeContent) SearchPosts(context.Context, string) ([]Post, error) { return nil, f.err }

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithClassifier(fakeClassifier{
			"about":        {Intents: []string{"staticPage"}, FixedQuery: "about", SuggestedPages: []string{"About"}},
			"runing shose": {Intents: []string{"product"}, FixedQuery: "running shoes"},
			"running shoes": {
				Intents: []string{"product", "content"}, FixedQuery: "running shoes",
			},
			"padel": {Intents: []string{"community"}, FixedQuery: "padel"},
		}),
		WithProducts(fakeProducts{"running shoes": {{ID: "p1", Name: "Road Runner"}}}),
		WithContent(fakeContent{}),
	}
	c, err := New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_MissingDependencies(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"no classifier", nil, "classifier required"},
		{
			"no products",
			[]Option{WithClassifier(fakeClassifier{})},
			"product search required",
		},
		{
			"no content",
			[]Option{WithClassifierURL("http://classifier", ""), WithProductsURL("http://products", "")},
			"content search required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.opts...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSubmit_Flow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	out, err := c.Submit(ctx, "tab", "dev", "about", false)
	if err != nil {
		t.Fatalf("Submit(about): %v", err)
	}
	if out.Kind != KindNavigate || out.Path != "/about" {
		t.Errorf("about = %+v", out)
	}

	out, err = c.Submit(ctx, "tab", "dev", "runing shose", false)
	if err != nil {
		t.Fatalf("Submit(typo): %v", err)
	}
	if out.Kind != KindCorrection || out.Suggested != "running shoes" {
		t.Fatalf("typo = %+v", out)
	}

	out, err = c.Submit(ctx, "tab", "dev", out.Suggested, true)
	if err != nil {
		t.Fatalf("Submit(accepted): %v", err)
	}
	if out.Kind != KindAggregate {
		t.Fatalf("accepted kind = %q", out.Kind)
	}
	want := Results{
		Products: []Product{{ID: "p1", Name: "Road Runner"}},
		Content:  []Post{},
		Communities: []Community{
			{Title: "Running", Imagery: "/images/sports/running.jpg", Path: "/community/running"},
			{Title: "Trail Running", Imagery: "/images/sports/trail-running.jpg", Path: "/community/trail-running"},
		},
		StaticPages: []StaticPage{},
	}
	if diff := cmp.Diff(want, out.Results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	latest, err := c.Latest("tab")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Sequence != out.Sequence || latest.Query != "running shoes" {
		t.Errorf("latest = %+v", latest)
	}

	recent, err := c.Recent(ctx, "dev")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if diff := cmp.Diff([]string{"running shoes", "runing shose", "about"}, recent); diff != "" {
		t.Errorf("recent mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_Errors(t *testing.T) {
	c := newTestClient(t, WithContent(fakeContent{err: errors.New("cms down")}))
	ctx := context.Background()

	if _, err := c.Submit(ctx, "tab", "dev", "  ", false); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("blank: got %v, want ErrEmptyQuery", err)
	}
	if _, err := c.Submit(ctx, "tab", "dev", "running shoes", false); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("source down: got %v, want ErrSourceUnavailable", err)
	}
	if _, err := c.Latest("tab"); !errors.Is(err, ErrNotFound) {
		t.Errorf("latest: got %v, want ErrNotFound", err)
	}
}

func TestSubmit_CatalogOverride(t *testing.T) {
	c := newTestClient(t, WithCatalog(Catalog{Sports: []Sport{{Title: "Padel"}}}))

	out, err := c.Submit(context.Background(), "tab", "dev", "padel", false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Kind != KindNavigate || out.Path != "/community/padel" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestSuggestAndClearRecent(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Submit(ctx, "tab", "dev", "about", false); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got := c.Suggest(ctx, "dev", "ab")
	if diff := cmp.Diff([]Suggestion{{Text: "about", IsRecent: true}}, got); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
	if got := c.Suggest(ctx, "dev", "a"); len(got) != 0 {
		t.Errorf("short input suggestions = %v", got)
	}

	if err := c.ClearRecent(ctx, "dev"); err != nil {
		t.Fatalf("ClearRecent: %v", err)
	}
	if got := c.Suggest(ctx, "dev", "ab"); len(got) != 0 {
		t.Errorf("suggestions after clear = %v", got)
	}
}

func TestLive(t *testing.T) {
	c := newTestClient(t)
	got := make(chan string, 4)

	live := c.Live(context.Background(), "dev", 20*time.Millisecond, func(partial string, s []Suggestion) {
		texts := make([]string, len(s))
		for i := range s {
			texts[i] = s[i].Text
		}
		got <- fmt.Sprintf("%s=%v", partial, texts)
	})
	defer live.Close()

	live.Input("yo")
	live.Input("yoga m")

	select {
	case msg := <-got:
		if msg != "yoga m=[yoga mat]" {
			t.Errorf("emitted %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no suggestions emitted")
	}
}

func TestHealth(t *testing.T) {
	c := newTestClient(t)

	h := c.Health(context.Background())
	if h.Status != "ok" || h.Checks["database"] != "ok" {
		t.Errorf("health = %+v", h)
	}

	c.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail after Close")
	}
	if h := c.Health(context.Background()); h.Status != "error" {
		t.Errorf("health after close = %+v", h)
	}
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, WithPrometheus(reg))
	ctx := context.Background()

	_, _ = c.Submit(ctx, "tab", "dev", "about", false)
	_, _ = c.Submit(ctx, "tab", "dev", "", false)

	if v := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("submit", "ok")); v != 1 {
		t.Errorf("submit ok = %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("submit", "error")); v != 1 {
		t.Errorf("submit error = %v, want 1", v)
	}

	// A second client on the same registry reuses the collectors.
	other := newTestClient(t, WithPrometheus(reg))
	if other.obs.metrics.operations != c.obs.metrics.operations {
		t.Error("expected shared collectors")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("submit: %w", ErrStaleResponse), "stale"},
		{ErrSourceUnavailable, "error"},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestClassifierAdapter(t *testing.T) {
	a := &classifierAdapter{inner: fakeClassifier{
		"tent": {Intents: []string{"product", "weather"}, FixedQuery: "tent"},
	}}

	c, err := a.Classify(context.Background(), query.MustNew("tent"))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if diff := cmp.Diff([]domintent.Tag{domintent.Product}, c.Tags()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	_, err = a.Classify(context.Background(), query.MustNew("unknown"))
	if err == nil || !strings.HasPrefix(err.Error(), "classify: ") {
		t.Errorf("err = %v, want wrapped classify error", err)
	}
}
