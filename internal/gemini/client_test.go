package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func okBody(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestGenerateContentSuccess(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		_ = json.NewEncoder(w).Encode(okBody("analysis text"))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", "", 2*time.Second, srv.URL)
	text, err := c.GenerateContent(context.Background(), "prompt", "data")
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if text != "analysis text" {
		t.Fatalf("text = %q", text)
	}
}

func TestGenerateContentPayload(t *testing.T) {
	var captured generateRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(okBody("ok"))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", "", 2*time.Second, srv.URL)
	if _, err := c.GenerateContent(context.Background(), "prompt", "data"); err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}

	gc := captured.GenerationConfig
	if gc.Temperature != 1.0 || gc.TopP != 0.95 || gc.TopK != 0 || gc.MaxOutputTokens != 8192 {
		t.Fatalf("unexpected generation config: %+v", gc)
	}
	if len(captured.SafetySettings) != 4 {
		t.Fatalf("safety settings = %d, want 4", len(captured.SafetySettings))
	}
	for _, s := range captured.SafetySettings {
		if s.Threshold != "BLOCK_ONLY_HIGH" {
			t.Fatalf("threshold = %q for %s", s.Threshold, s.Category)
		}
	}
	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected contents: %+v", captured.Contents)
	}
}

func TestGenerateContentTypedErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"auth", http.StatusUnauthorized, func(err error) bool {
			var e *AuthError
			return errors.As(err, &e)
		}},
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var e *RateLimitError
			return errors.As(err, &e)
		}},
		{"bad request", http.StatusBadRequest, func(err error) bool {
			var e *BadRequestError
			return errors.As(err, &e)
		}},
		{"server", http.StatusServiceUnavailable, func(err error) bool {
			var e *ServerError
			return errors.As(err, &e)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "nope", "status": "TEST"},
				})
			}))
			defer srv.Close()

			c := NewClientWithBaseURL("test-key", "", 2*time.Second, srv.URL)
			_, err := c.GenerateContent(context.Background(), "prompt")
			if err == nil || !tc.check(err) {
				t.Fatalf("err = %v, wrong type for %s", err, tc.name)
			}
		})
	}
}

func TestGenerateContentBlocked(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", "", 2*time.Second, srv.URL)
	_, err := c.GenerateContent(context.Background(), "prompt")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("err = %v, want *BlockedError", err)
	}
	if blocked.Reason != "SAFETY" {
		t.Fatalf("reason = %q", blocked.Reason)
	}
}

func TestGenerateContentMissingAPIKey(t *testing.T) {
	c := NewClient("", "", time.Second)
	if _, err := c.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}
