package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/SwopeYT/espybot-dashboard/internal/shared"
)

// CallbackResult is what the dashboard API handed back to the loopback receiver.
type CallbackResult struct {
	Token string
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler receives the session token the dashboard API redirects to after sign-in.
//
// It accepts a single callback carrying the state this handler was created with. Requests with any
// other state are rejected and leave the handler waiting.
type CallbackHandler struct {
	state      string
	resultChan chan CallbackResult
	once       sync.Once

	mu          sync.Mutex
	callbackHit bool
}

// NewCallbackHandler creates a handler expecting state on its callback.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP handles GET /callback?state=...&token=... (or &error=...).
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != h.state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	token := q.Get("token")
	if token == "" {
		h.Send(CallbackResult{err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, q.Get("error"))})
		http.Error(w, "Sign-in failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send delivers the result (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns a channel that receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Signed in to ESPY</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #2b2d31; }
        .container { text-align: center; background: #313338; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.3); }
        h1 { color: #5865F2; margin: 0 0 1rem 0; }
        p { color: #b5bac1; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Signed in with Discord</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
