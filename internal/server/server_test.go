package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/charmbracelet/log"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Handle Registers Method Route", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("LogRequests", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		shared.SetLogLevel(logger, log.DebugLevel)

		router := NewBasicRouter()
		router.Use(LogRequests(logger))
		router.Handle(http.MethodGet, "/teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

		if !strings.Contains(buf.String(), "/teapot") || !strings.Contains(buf.String(), "418") {
			t.Errorf("expected request log line, got %q", buf.String())
		}
	})
}

func TestCallbackHandler(t *testing.T) {
	serve := func(h *CallbackHandler, query string) *httptest.ResponseRecorder {
		router := NewBasicRouter()
		router.Handler(h)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+query, nil))
		return rec
	}

	t.Run("Delivers Token", func(t *testing.T) {
		h := NewCallbackHandler("s1")
		rec := serve(h, "state=s1&token=jwt")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Signed in") {
			t.Error("expected success page")
		}

		res := <-h.Result()
		if res.Error() != nil || res.Token != "jwt" {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("Invalid State Keeps Waiting", func(t *testing.T) {
		h := NewCallbackHandler("s1")
		rec := serve(h, "state=other&token=forged")

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		select {
		case res := <-h.Result():
			t.Fatalf("expected no result for a mismatched state, got %+v", res)
		default:
		}

		if rec := serve(h, "state=s1&token=jwt"); rec.Code != http.StatusOK {
			t.Fatalf("expected the real callback to succeed, got %d", rec.Code)
		}
		res := <-h.Result()
		if res.Error() != nil || res.Token != "jwt" {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("Error Without Token", func(t *testing.T) {
		h := NewCallbackHandler("s1")
		serve(h, "state=s1&error=access_denied")

		res := <-h.Result()
		if !errors.Is(res.Error(), shared.ErrAuthFailed) || !strings.Contains(res.Error().Error(), "access_denied") {
			t.Errorf("expected ErrAuthFailed, got %v", res.Error())
		}
	})

	t.Run("Only One Callback", func(t *testing.T) {
		h := NewCallbackHandler("s1")
		serve(h, "state=s1&token=jwt")
		rec := serve(h, "state=s1&token=again")

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for second callback, got %d", rec.Code)
		}

		var results []CallbackResult
		for r := range h.Result() {
			results = append(results, r)
		}
		if len(results) != 1 || results[0].Token != "jwt" {
			t.Errorf("expected a single result, got %+v", results)
		}
	})
}

func TestLoopbackLogin(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("ReturnTo And Wait", func(t *testing.T) {
		l, err := StartLoopback("127.0.0.1:0", logger)
		if err != nil {
			t.Fatalf("failed to start loopback: %v", err)
		}
		defer l.Close()

		returnTo, err := url.Parse(l.ReturnTo())
		if err != nil {
			t.Fatalf("invalid return url: %v", err)
		}
		if returnTo.Hostname() != "127.0.0.1" || returnTo.Path != "/callback" || returnTo.Query().Get("state") == "" {
			t.Fatalf("unexpected return url %s", returnTo)
		}

		q := returnTo.Query()
		q.Set("token", "jwt")
		returnTo.RawQuery = q.Encode()

		resp, err := http.Get(returnTo.String())
		if err != nil {
			t.Fatalf("callback request failed: %v", err)
		}
		resp.Body.Close()

		token, err := l.Wait(context.Background(), time.Second)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "jwt" {
			t.Errorf("expected jwt, got %s", token)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		l, err := StartLoopback("127.0.0.1:0", logger)
		if err != nil {
			t.Fatalf("failed to start loopback: %v", err)
		}
		defer l.Close()

		if _, err := l.Wait(context.Background(), 20*time.Millisecond); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		l, err := StartLoopback("127.0.0.1:0", logger)
		if err != nil {
			t.Fatalf("failed to start loopback: %v", err)
		}
		defer l.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := l.Wait(ctx, time.Second); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("SignIn", func(t *testing.T) {
		token, err := SignIn(context.Background(), "127.0.0.1:0", time.Second, logger, func(ctx context.Context, returnTo string) error {
			go func() {
				resp, err := http.Get(returnTo + "&token=from-browser")
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "from-browser" {
			t.Errorf("expected from-browser, got %s", token)
		}
	})

	t.Run("SignIn Begin Fails", func(t *testing.T) {
		boom := errors.New("no auth url")
		_, err := SignIn(context.Background(), "127.0.0.1:0", time.Second, logger, func(context.Context, string) error {
			return boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected begin error, got %v", err)
		}
	})
}
