package mcpserver

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oracle-mcp/oracle-mcp-server/internal/config"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/exec"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
)

// Deps are the fully-wired collaborators every catalog handler composes.
// Built once in the composition root and shared read-only across calls.
type Deps struct {
	Pool     *pool.Pool
	Engine   *exec.Engine
	Detector *dialect.Detector
	Config   *config.Config
	Logger   zerolog.Logger
}

// ApplyQueryDefaults fills FetchSize and Timeout on plan from the
// configured query defaults, leaving MaxRows untouched — callers that
// cap rows (query_records, vector search top_k) set it themselves. A nil
// Config leaves plan unchanged, so handlers exercised by tests that build
// a bare Deps{} still behave exactly as before this wiring existed.
func (d *Deps) ApplyQueryDefaults(plan exec.Plan) exec.Plan {
	if d.Config == nil {
		return plan
	}
	if plan.FetchSize <= 0 {
		plan.FetchSize = d.Config.Query.DefaultFetchSize
	}
	if plan.Timeout <= 0 {
		plan.Timeout = d.Config.Query.Timeout()
	}
	return plan
}

// Capabilities borrows a pooled connection to obtain (or reuse a cached)
// capability snapshot, per spec.md §4.2's protocol of probing over a
// borrowed connection rather than a side channel.
func (d *Deps) Capabilities(ctx context.Context) *dialect.Set {
	var snap *dialect.Set
	_ = d.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		snap = d.Detector.Snapshot(ctx, c.Conn)
		return nil
	})
	if snap == nil {
		return &dialect.Set{Degraded: true}
	}
	return snap
}

// RequireCapabilities checks that caps supports every tag in required,
// returning E_UNSUPPORTED_FEATURE on the first missing one. Handlers call
// this before any Oracle round-trip beyond the cached capability snapshot
// (Testable Property 6).
func RequireCapabilities(caps *dialect.Set, required []dialect.Tag) error {
	for _, tag := range required {
		if !caps.Supports(tag) {
			return unsupportedFeature(tag)
		}
	}
	return nil
}
