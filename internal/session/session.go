// Package session defines the core interfaces for running a document: the
// Action API, the Query API and the diagnostics channel. It abstracts away
// where the document is resolved.
package session

import (
	"context"
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// DefaultDisplayDigits is the number of significant digits used for
// display snapshots.
const DefaultDisplayDigits = 10

var (
	// ErrUnknownComponent is returned for an action on an address that names
	// no live component.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrUnknownAction is returned for an action the component's type does
	// not define.
	ErrUnknownAction = errors.New("unknown action")
	// ErrClosed is returned by every call on a closed session.
	ErrClosed = errors.New("session closed")
)

// Action is a named external operation on one component.
type Action struct {
	Component string
	Name      string
	Args      cty.Value
}

// Snapshot maps component addresses to their variables.
type Snapshot map[string]map[string]cty.Value

// Options configure a new session.
type Options struct {
	// Variant, when set, replaces the document's own variant settings.
	Variant *config.Variant

	// DisplayDigits is the precision of display snapshots.
	DisplayDigits int

	// Registerer receives the session's metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// SessionFactory creates a Session for a loaded document.
type SessionFactory interface {
	NewSession(
		ctx context.Context,
		doc *config.Document,
		reg *registry.Registry,
		opts Options,
	) (Session, error)
}

// Session is one live document. Calls are serialized: an action is fully
// resolved before the next call starts.
type Session interface {
	// ID identifies the session in logs and host messages.
	ID() string

	// Dispatch runs an action and resolves the document afterwards. Problems
	// inside the document are reported as diagnostics, not errors.
	Dispatch(ctx context.Context, a Action) error

	// ReadAllStateVariables returns every variable of the document. With
	// includeStale, memoized values are returned as they are without
	// recomputing anything; otherwise every active component is resolved
	// first. forDisplay formats values for a reader.
	ReadAllStateVariables(ctx context.Context, includeStale, forDisplay bool) (Snapshot, error)

	// Read resolves one variable.
	Read(ctx context.Context, component, name string) (cty.Value, error)

	// Diagnostics returns the load and resolution diagnostics so far.
	Diagnostics() hcl.Diagnostics

	// Commitments returns the committed random draws by construct address.
	Commitments() map[string]cty.Value

	// Close releases any resources held by the session. It accepts a context
	// to allow for graceful cleanup operations.
	Close(ctx context.Context) error
}
