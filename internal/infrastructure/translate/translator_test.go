package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hospital-scheduler/config"

	"github.com/sirupsen/logrus"
)

func TestNormalizeLang(t *testing.T) {
	tests := map[string]string{
		"":      "en",
		"en":    "en",
		"en-us": "en",
		"en_IN": "en",
		"hi-IN": "hi",
		"te-in": "te",
		"TE":    "te",
		"fr-CA": "fr",
	}
	for in, want := range tests {
		if got := NormalizeLang(in); got != want {
			t.Errorf("NormalizeLang(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHTTPTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req translateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Source != "en" || req.Target != "hi" || req.APIKey != "k" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(translateResponse{TranslatedText: "[hi] " + req.Q})
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(config.TranslateConfig{Endpoint: srv.URL + "/", APIKey: "k", Timeout: time.Second})
	got, err := tr.Translate(context.Background(), "Cardiology", "hi-IN")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "[hi] Cardiology" {
		t.Fatalf("got %q", got)
	}

	// English never leaves the process
	if got, _ := tr.Translate(context.Background(), "Cardiology", "en_US"); got != "Cardiology" {
		t.Fatalf("english should be identity, got %q", got)
	}
}

func TestHTTPTranslator_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unsupported language"}`)
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(config.TranslateConfig{Endpoint: srv.URL, Timeout: time.Second})
	if _, err := tr.Translate(context.Background(), "x", "zz"); !errors.Is(err, ErrTranslate) {
		t.Fatalf("expected ErrTranslate, got %v", err)
	}

	if got := Passthrough(context.Background(), tr, "Cardiology", "zz"); got != "Cardiology" {
		t.Fatalf("Passthrough should fall back to input, got %q", got)
	}
}

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type countingTranslator struct {
	calls int
}

func (c *countingTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	c.calls++
	return lang + ":" + text, nil
}

func TestCachedTranslator(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	next := &countingTranslator{}
	store := &memStore{data: map[string]string{}}
	c := NewCachedTranslator(next, store, time.Hour, log)

	for i := 0; i < 3; i++ {
		got, err := c.Translate(context.Background(), "Hyderabad", "te-IN")
		if err != nil || got != "te:Hyderabad" {
			t.Fatalf("Translate = %q, %v", got, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", next.calls)
	}
	if _, ok := store.data[CacheKey("Hyderabad", "te")]; !ok {
		t.Fatal("expected cache entry under normalized language")
	}
}
