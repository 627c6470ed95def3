// Package hostlink relays a document session over socket.io so a hosting
// page can drive it remotely. Incoming "action" events are dispatched to the
// session; after each one the relay emits the new "state" and the current
// "diagnostics". Failed actions are answered with "action_error".
package hostlink

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/session"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names used on the wire.
const (
	EventAction      = "action"
	EventRefresh     = "refresh"
	EventState       = "state"
	EventDiagnostics = "diagnostics"
	EventActionError = "action_error"
)

// DefaultConnectTimeout bounds how long Dial waits for the server.
const DefaultConnectTimeout = 15 * time.Second

// Config describes the host to connect to.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Conn is the part of a socket.io client the relay uses.
type Conn interface {
	On(types.EventName, ...types.Listener) error
	Emit(string, ...any) error
}

var _ Conn = (*socket.Socket)(nil)

// Dial connects to the host and waits for the namespace to be joined.
func Dial(ctx context.Context, cfg Config) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to host.", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})

	logger.Debug("Connecting to host...")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

// Relay forwards host events to one session.
type Relay struct {
	conn    Conn
	session session.Session

	// mu keeps each action and the replies it triggers together.
	mu sync.Mutex
}

// New creates a relay between conn and s.
func New(conn Conn, s session.Session) *Relay {
	return &Relay{conn: conn, session: s}
}

// Start subscribes to host events and publishes the initial state.
func (r *Relay) Start(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("session", r.session.ID())
	ctx = ctxlog.WithLogger(ctx, logger)

	if err := r.conn.On(types.EventName(EventAction), func(data ...any) {
		r.handleAction(ctx, data)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to '%s': %w", EventAction, err)
	}
	if err := r.conn.On(types.EventName(EventRefresh), func(...any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if err := r.publish(ctx); err != nil {
			logger.Error("Failed to publish state.", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to subscribe to '%s': %w", EventRefresh, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.publish(ctx)
}

func (r *Relay) handleAction(ctx context.Context, data []any) {
	logger := ctxlog.FromContext(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := decodeAction(data)
	if err == nil {
		logger.Debug("Received action.", "component", a.Component, "action", a.Name)
		err = r.session.Dispatch(ctx, a)
	}
	if err != nil {
		logger.Warn("Action rejected.", "error", err)
		_ = r.conn.Emit(EventActionError, map[string]any{
			"component": a.Component,
			"action":    a.Name,
			"error":     err.Error(),
		})
	}
	if err := r.publish(ctx); err != nil {
		logger.Error("Failed to publish state.", "error", err)
	}
}

// publish emits the display snapshot and the diagnostics.
func (r *Relay) publish(ctx context.Context) error {
	snap, err := r.session.ReadAllStateVariables(ctx, false, true)
	if err != nil {
		return err
	}
	state := make(map[string]any, len(snap))
	for addr, vars := range snap {
		out := make(map[string]any, len(vars))
		for name, v := range vars {
			out[name] = value.ToGo(v)
		}
		state[addr] = out
	}
	if err := r.conn.Emit(EventState, state); err != nil {
		return fmt.Errorf("emitting state: %w", err)
	}
	if err := r.conn.Emit(EventDiagnostics, EncodeDiagnostics(r.session.Diagnostics())); err != nil {
		return fmt.Errorf("emitting diagnostics: %w", err)
	}
	return nil
}

// decodeAction reads {component, action, args} from an event payload.
func decodeAction(data []any) (session.Action, error) {
	if len(data) == 0 {
		return session.Action{}, errors.New("action event without payload")
	}
	m, ok := data[0].(map[string]any)
	if !ok {
		return session.Action{}, fmt.Errorf("action payload must be an object, got %T", data[0])
	}
	component, _ := m["component"].(string)
	name, _ := m["action"].(string)
	a := session.Action{Component: component, Name: name}
	if component == "" || name == "" {
		return a, errors.New("action payload needs 'component' and 'action'")
	}
	args, err := value.FromGo(m["args"])
	if err != nil {
		return a, fmt.Errorf("action args: %w", err)
	}
	a.Args = args
	return a, nil
}

// EncodeDiagnostics flattens diagnostics for the wire.
func EncodeDiagnostics(diags hcl.Diagnostics) []map[string]any {
	out := make([]map[string]any, 0, len(diags))
	for _, d := range diags {
		severity := "warning"
		if d.Severity == hcl.DiagError {
			severity = "error"
		}
		entry := map[string]any{
			"severity": severity,
			"summary":  d.Summary,
			"detail":   d.Detail,
		}
		if d.Subject != nil {
			entry["range"] = map[string]any{
				"filename": d.Subject.Filename,
				"start":    map[string]any{"line": d.Subject.Start.Line, "column": d.Subject.Start.Column},
				"end":      map[string]any{"line": d.Subject.End.Line, "column": d.Subject.End.Column},
			}
		}
		out = append(out, entry)
	}
	return out
}
