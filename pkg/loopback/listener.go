package loopback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

const (
	authPath     = "/auth"
	exchangePath = "/exchange"

	// maxPayloadBytes bounds the exchange body; fragments are tiny.
	maxPayloadBytes = 64 << 10
)

// Config holds the listener settings for one provider. The address is
// fixed per provider because it must match the redirect URI registered
// with that provider.
type Config struct {
	Addr            string        `env:"LOOPBACK_ADDR" envDefault:"127.0.0.1:53682"`
	ReadTimeout     time.Duration `env:"LOOPBACK_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"LOOPBACK_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"LOOPBACK_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Listener receives provider redirect callbacks for a single provider.
// It is long-lived and shared across login attempts.
type Listener struct {
	provider string
	cfg      Config
	logger   *slog.Logger

	mu      sync.Mutex
	srv     *http.Server
	ln      net.Listener
	pending *Attempt
}

// Option configures a Listener during construction.
type Option func(*Listener)

// WithListenerLogger sets a custom logger for the listener.
func WithListenerLogger(l *slog.Logger) Option {
	return func(lst *Listener) {
		lst.logger = l
	}
}

// NewListener creates a listener for the named provider.
func NewListener(provider string, cfg Config, opts ...Option) *Listener {
	l := &Listener{
		provider: provider,
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start binds the address and launches the accept loop in its own
// goroutine. Bind errors are reported synchronously; errors on
// individual requests never stop the loop.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.srv != nil {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", l.cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      l.routes(),
		ReadTimeout:  l.cfg.ReadTimeout,
		WriteTimeout: l.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	l.ln = ln
	l.srv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("loopback listener stopped",
				logger.Provider(l.provider),
				logger.Error(err),
				logger.Component("loopback"),
			)
		}
	}()

	l.logger.Info("loopback listener started",
		logger.Provider(l.provider),
		slog.String("addr", ln.Addr().String()),
		logger.Component("loopback"),
	)
	return nil
}

// Stop halts the accept loop gracefully.
func (l *Listener) Stop(ctx context.Context) error {
	l.mu.Lock()
	srv := l.srv
	l.srv = nil
	l.ln = nil
	l.mu.Unlock()

	if srv == nil {
		return ErrNotStarted
	}

	ctx, cancel := context.WithTimeout(ctx, l.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Addr returns the bound address, useful when the configured port is 0.
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return l.cfg.Addr
	}
	return l.ln.Addr().String()
}

// Begin registers a new pending attempt. Only one attempt may be
// outstanding per listener; a second Begin before the first resolves is
// rejected so concurrent logins cannot steal each other's callback.
func (l *Listener) Begin() (*Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending != nil {
		return nil, ErrAttemptPending
	}
	a := newAttempt(l)
	l.pending = a
	return a, nil
}

func (l *Listener) routes() http.Handler {
	r := chi.NewRouter()
	r.Get(authPath, l.handleAuth)
	r.Post(exchangePath, l.handleExchange)
	return r
}

// handleAuth serves the provider redirect target. Code-flow providers
// put the code in the query string; implicit-flow providers put the
// token in the fragment, which only the forwarding page can read.
func (l *Listener) handleAuth(w http.ResponseWriter, r *http.Request) {
	if code := r.URL.Query().Get("code"); code != "" {
		l.deliver(Callback{Code: code})
		writeHTML(w, completePage)
		return
	}
	writeHTML(w, fragmentForwardPage)
}

// handleExchange receives the forwarded fragment or code as a raw body.
// Bad payloads answer 400 and leave the pending attempt untouched.
func (l *Listener) handleExchange(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		l.logger.Warn("failed to read exchange body",
			logger.Provider(l.provider),
			logger.Error(err),
			logger.Component("loopback"),
		)
		http.Error(w, "unreadable payload", http.StatusBadRequest)
		return
	}

	cb, err := parseCallbackPayload(string(body))
	if err != nil {
		l.logger.Warn("rejected callback payload",
			logger.Provider(l.provider),
			logger.Error(err),
			logger.Component("loopback"),
		)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	l.deliver(cb)
	w.WriteHeader(http.StatusOK)
}

// deliver resolves the pending attempt, if any. Callbacks with no
// waiting attempt are dropped; the browser side still gets a 2xx so a
// late redirect after cancellation does not show an error page.
func (l *Listener) deliver(cb Callback) {
	l.mu.Lock()
	a := l.pending
	l.pending = nil
	l.mu.Unlock()

	if a == nil {
		l.logger.Info("dropped callback with no pending attempt",
			logger.Provider(l.provider),
			logger.Component("loopback"),
		)
		return
	}
	a.resolve(cb)
}

// clearPending frees the slot if it still belongs to the given attempt.
func (l *Listener) clearPending(a *Attempt) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == a {
		l.pending = nil
	}
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}
