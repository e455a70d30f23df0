// Package mcpserver wires the Oracle-facing tool catalog to the Model
// Context Protocol: a Registry of immutable tool descriptors, an argument
// validator, a response formatter, and a Dispatcher that speaks MCP over
// stdio.
package mcpserver

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
)

var nameRegexp = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Exposure gates whether a tool surfaces under a given server exposure
// policy.
type Exposure string

const (
	ExposurePublic     Exposure = "public"
	ExposureRestricted Exposure = "restricted"
)

// ExposureFilter selects which descriptors list(filter) returns.
type ExposureFilter string

const (
	FilterPublic ExposureFilter = "public"
	FilterAll    ExposureFilter = "all"
)

// Category groups catalog handlers for documentation and edition gating.
type Category string

const (
	CategoryCore       Category = "core"
	CategoryAnalytics  Category = "analytics"
	CategoryAI         Category = "ai"
	CategorySecurity   Category = "security"
	CategoryPerformance Category = "performance"
	CategoryPrivilege  Category = "privilege"
	CategoryDiagnostic Category = "diagnostic"
)

// HandlerFunc composes the SQL Builder and Execution Engine for one tool
// call. args is the already-validated, type-coerced argument map. data is
// the handler-specific result shape that the Response Formatter wraps in
// the envelope; capsUsed lists the capability tags the handler consulted
// or relied on, for the envelope's metadata.capabilities_used field.
type HandlerFunc func(ctx context.Context, deps *Deps, args map[string]any) (data any, capsUsed []dialect.Tag, err error)

// ToolDescriptor is the immutable, registration-time metadata for one
// catalog tool. InputType is a zero-value instance of the tool's argument
// struct, used both for JSON-schema reflection (schema.go) and for
// argument coercion (validator.go).
type ToolDescriptor struct {
	Name                 string
	Description          string
	InputType            any
	Exposure             Exposure
	Category             Category
	RequiredCapabilities []dialect.Tag
	Strict               bool // unknown-field policy; default true (spec.md §4.6)
	Handler              HandlerFunc
}

// Registry holds tool descriptors in registration order and resolves them
// by name. It is mutable only until Freeze is called, after which every
// mutation method fails with E_REGISTRY_FROZEN.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]*ToolDescriptor
	frozen atomic.Bool
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*ToolDescriptor),
	}
}

// Register adds descriptor to the catalog. It is only valid before Freeze.
func (r *Registry) Register(d ToolDescriptor) error {
	if r.frozen.Load() {
		return errtax.New(errtax.KindInternal, "E_REGISTRY_FROZEN", "registry is frozen; cannot register "+d.Name)
	}
	if !nameRegexp.MatchString(d.Name) {
		return errtax.New(errtax.KindValidation, "E_INVALID_SCHEMA", fmt.Sprintf("tool name %q does not match ^[a-z][a-z0-9_]{0,63}$", d.Name))
	}
	if d.Handler == nil {
		return errtax.New(errtax.KindValidation, "E_INVALID_SCHEMA", fmt.Sprintf("tool %q has no handler", d.Name))
	}
	for _, tag := range d.RequiredCapabilities {
		if !dialect.IsKnownTag(tag) {
			return errtax.New(errtax.KindValidation, "E_INVALID_SCHEMA", fmt.Sprintf("tool %q references unknown capability tag %q", d.Name, tag))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Name]; exists {
		return errtax.New(errtax.KindValidation, "E_DUPLICATE_TOOL", "tool already registered: "+d.Name)
	}

	copied := d
	r.byName[d.Name] = &copied
	r.order = append(r.order, d.Name)
	return nil
}

// Freeze prevents any further Register calls. Idempotent.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Lookup resolves name to its descriptor, or E_UNKNOWN_TOOL.
func (r *Registry) Lookup(name string) (*ToolDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	if !ok {
		return nil, errtax.New(errtax.KindValidation, "E_UNKNOWN_TOOL", "unknown tool: "+name)
	}
	return d, nil
}

// List returns descriptors whose Exposure is allowed by filter, in stable
// registration order.
func (r *Registry) List(filter ExposureFilter) []*ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		d := r.byName[name]
		if d.Exposure == ExposureRestricted && filter != FilterAll {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Count returns the number of registered tools, irrespective of exposure.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
