package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/charmbracelet/log"
)

// DefaultLoginTimeout bounds how long a terminal sign-in waits for the browser.
const DefaultLoginTimeout = 5 * time.Minute

// LoopbackLogin is a short-lived HTTP listener on 127.0.0.1 that receives the session token
// at the end of a browser sign-in.
type LoopbackLogin struct {
	state    string
	handler  *CallbackHandler
	listener net.Listener
	srv      *http.Server
	logger   *log.Logger
}

// StartLoopback listens on addr (e.g. "127.0.0.1:53682") and serves /callback until [LoopbackLogin.Close].
func StartLoopback(addr string, logger *log.Logger) (*LoopbackLogin, error) {
	if logger == nil {
		logger = log.Default()
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	handler := NewCallbackHandler(state)
	router := NewBasicRouter()
	router.Use(LogRequests(logger))
	router.Handler(handler)

	l := &LoopbackLogin{
		state:    state,
		handler:  handler,
		listener: ln,
		srv:      &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		logger:   logger,
	}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("loopback server stopped", "error", err)
		}
	}()

	logger.Debug("loopback listening", "addr", ln.Addr().String())
	return l, nil
}

// ReturnTo is the URL the dashboard API should redirect to with the session token.
func (l *LoopbackLogin) ReturnTo() string {
	u := url.URL{
		Scheme:   "http",
		Host:     l.listener.Addr().String(),
		Path:     "/callback",
		RawQuery: url.Values{"state": {l.state}}.Encode(),
	}
	return u.String()
}

// Wait blocks until the callback arrives, ctx is done, or timeout elapses.
func (l *LoopbackLogin) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-l.handler.Result():
		if err := res.Error(); err != nil {
			return "", err
		}
		return res.Token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", fmt.Errorf("%w: no sign-in callback after %s", shared.ErrTimeout, timeout)
	}
}

// Close stops the listener.
func (l *LoopbackLogin) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return l.srv.Shutdown(ctx)
}

// SignIn runs a terminal sign-in end to end: it starts a loopback listener on addr, calls begin with
// the URL the dashboard API should return to, and waits for the session token.
func SignIn(ctx context.Context, addr string, timeout time.Duration, logger *log.Logger, begin func(ctx context.Context, returnTo string) error) (string, error) {
	l, err := StartLoopback(addr, logger)
	if err != nil {
		return "", err
	}
	defer l.Close()

	if err := begin(ctx, l.ReturnTo()); err != nil {
		return "", err
	}
	return l.Wait(ctx, timeout)
}
