package testutil

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/require"
)

// AssertDiagnostic checks that the session reported a diagnostic with the
// given severity and summary, and returns it.
func AssertDiagnostic(t *testing.T, h *Harness, severity hcl.DiagnosticSeverity, summary string) *hcl.Diagnostic {
	t.Helper()
	for _, d := range h.Session.Diagnostics() {
		if d.Severity == severity && d.Summary == summary {
			return d
		}
	}
	require.Failf(t, "diagnostic not reported", "expected %q among %v", summary, h.Session.Diagnostics())
	return nil
}

// AssertNoErrors checks that the session reported no error diagnostics.
func AssertNoErrors(t *testing.T, h *Harness) {
	t.Helper()
	diags := h.Session.Diagnostics()
	require.False(t, diags.HasErrors(), "unexpected errors: %s", diags.Error())
}
