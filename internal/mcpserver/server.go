package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// defaultCallDeadline bounds a single tool call when deps.Config carries
// no dispatch.call_deadline_ms override.
const defaultCallDeadline = 300 * time.Second

// Server wraps the Model Context Protocol server and dispatches every
// registered catalog tool through the Argument Validator, the Deps
// collaborators, and the Response Formatter.
type Server struct {
	mcpServer *server.MCPServer
	registry  *Registry
	deps      *Deps
	config    ServerConfig
	logger    zerolog.Logger
	startedAt time.Time

	// cancelMu guards both maps. callIDs carries each in-flight call's
	// client-supplied JSON-RPC id from the before-call hook (the only
	// place mcp-go exposes it) to the tool handler, keyed by the request
	// context both run with; cancelFuncs maps that client id to the
	// call's cancel function so a cancel notification can interrupt it.
	cancelMu    sync.Mutex
	callIDs     map[context.Context]string
	cancelFuncs map[string]context.CancelFunc
}

// ServerConfig is the dispatcher-level configuration: which tools are
// exposed and whether tool calls are audit-logged.
type ServerConfig struct {
	// Name and Version identify this server to the MCP client during
	// initialize.
	Name    string
	Version string

	// Exposure selects which descriptors List returns: public-only by
	// default, or every registered tool including restricted ones.
	Exposure ExposureFilter

	// AuditEnabled logs every tool invocation (name and arguments,
	// secrets-free) at info level.
	AuditEnabled bool
}

// New builds a Server over a frozen registry. The registry must be frozen
// before New is called; registering tools after dispatch has started would
// race with concurrent tools/list requests.
func New(registry *Registry, deps *Deps, config ServerConfig, logger zerolog.Logger) (*Server, error) {
	if !registry.Frozen() {
		return nil, errtax.New(errtax.KindInternal, "E_REGISTRY_NOT_FROZEN", "tool registry must be frozen before the dispatcher starts")
	}

	name := config.Name
	if name == "" {
		name = "oracle-mcp-server"
	}
	version := config.Version
	if version == "" {
		version = "0.1.0"
	}

	s := &Server{
		registry:    registry,
		deps:        deps,
		config:      config,
		logger:      logger.With().Str("component", "mcpserver").Logger(),
		startedAt:   time.Now(),
		callIDs:     make(map[context.Context]string),
		cancelFuncs: make(map[string]context.CancelFunc),
	}

	// The tool-handler signature mcp-go exposes carries no JSON-RPC id, so
	// the before-call hook — which runs with the same context immediately
	// ahead of the handler — records the client's id for the handler to
	// claim. The after/error hooks scrub any entry a failed dispatch left
	// behind (unknown tool, malformed params).
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(func(ctx context.Context, id any, _ *mcp.CallToolRequest) {
		s.noteRequestID(ctx, id)
	})
	hooks.AddAfterCallTool(func(ctx context.Context, _ any, _ *mcp.CallToolRequest, _ *mcp.CallToolResult) {
		s.dropRequestID(ctx)
	})
	hooks.AddOnError(func(ctx context.Context, _ any, _ mcp.MCPMethod, _ any, _ error) {
		s.dropRequestID(ctx)
	})

	s.mcpServer = server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithHooks(hooks),
	)

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerCancelHandler()

	s.logger.Info().
		Int("tool_count", registry.Count()).
		Msg("MCP dispatcher initialized")

	return s, nil
}

// registerTools walks every descriptor the registry exposes and wires it
// into the underlying MCP server, generalizing one handler shape across
// the whole catalog instead of one hand-written pair per tool.
func (s *Server) registerTools() error {
	filter := s.config.Exposure
	if filter == "" {
		filter = FilterPublic
	}

	for _, d := range s.registry.List(filter) {
		schema, err := generateInputSchema(d.InputType)
		if err != nil {
			return fmt.Errorf("generating schema for %s: %w", d.Name, err)
		}
		schemaBytes, err := json.Marshal(schema)
		if err != nil {
			return fmt.Errorf("marshaling schema for %s: %w", d.Name, err)
		}

		tool := mcp.NewToolWithRawSchema(d.Name, d.Description, schemaBytes)
		descriptor := d
		s.mcpServer.AddTool(tool, s.callHandler(descriptor, schema))
	}
	return nil
}

// callHandler closes over one descriptor and adapts mcp-go's transport
// shape to dispatch, which carries the actual validate/invoke/format
// logic independent of the mcp-go request/result types. Every call is
// bounded by a per-call deadline and registered in s.cancelFuncs under
// its client-supplied JSON-RPC id (claimed from the before-call hook via
// takeRequestID) so a cancel notification naming that id can interrupt
// it before the deadline elapses.
func (s *Server) callHandler(d *ToolDescriptor, schema map[string]any) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, _ := request.Params.Arguments.(map[string]any)

		deadline := defaultCallDeadline
		if s.deps.Config != nil && s.deps.Config.Dispatch.CallDeadlineMS > 0 {
			deadline = s.deps.Config.Dispatch.CallDeadline()
		}
		callCtx, cancel := context.WithTimeout(ctx, deadline)
		defer cancel()

		if callID := s.takeRequestID(ctx); callID != "" {
			s.registerCall(callID, cancel)
			defer s.unregisterCall(callID)
		}

		env := s.dispatch(callCtx, d, schema, raw)
		body, err := json.Marshal(env)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshaling response envelope: %v", err)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

// normalizeCallID renders a JSON-RPC id (string or number per the spec)
// to a stable map key. The hook's id and the cancel notification's id
// both come out of encoding/json, so identical wire ids render
// identically here.
func normalizeCallID(id any) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

// noteRequestID records an in-flight call's client id under its request
// context; the tool handler, which mcp-go invokes with that same context
// immediately after the hook, claims it with takeRequestID.
func (s *Server) noteRequestID(ctx context.Context, id any) {
	key := normalizeCallID(id)
	if key == "" {
		return
	}
	s.cancelMu.Lock()
	s.callIDs[ctx] = key
	s.cancelMu.Unlock()
}

// takeRequestID claims (and removes) the client id recorded for ctx.
func (s *Server) takeRequestID(ctx context.Context) string {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	id, ok := s.callIDs[ctx]
	if ok {
		delete(s.callIDs, ctx)
	}
	return id
}

// dropRequestID discards any id still recorded for ctx, covering calls
// that error out inside mcp-go before a tool handler ever claims it.
func (s *Server) dropRequestID(ctx context.Context) {
	s.cancelMu.Lock()
	delete(s.callIDs, ctx)
	s.cancelMu.Unlock()
}

// registerCall stores cancel under the call's client-supplied id,
// mirroring the teacher's single-mutex-guarded-map discipline used
// elsewhere for shared mutable state.
func (s *Server) registerCall(id string, cancel context.CancelFunc) {
	s.cancelMu.Lock()
	s.cancelFuncs[id] = cancel
	s.cancelMu.Unlock()
}

func (s *Server) unregisterCall(id string) {
	s.cancelMu.Lock()
	delete(s.cancelFuncs, id)
	s.cancelMu.Unlock()
}

// cancelCall flips the cancellation token for the in-flight call with
// the given client id, reporting whether such a call was registered.
func (s *Server) cancelCall(id string) bool {
	s.cancelMu.Lock()
	cancel, ok := s.cancelFuncs[id]
	s.cancelMu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// registerCancelHandler wires the cancel notification to cancelCall. The
// Execution Engine observes the resulting context cancellation at the
// next fetch boundary and the dispatcher maps it to kind=cancelled.
// Both wire names are accepted: "$/cancelNotification" is the documented
// method, "$/cancel" the short form some clients send.
func (s *Server) registerCancelHandler() {
	handler := func(ctx context.Context, notification mcp.JSONRPCNotification) {
		id := normalizeCallID(notification.Params.AdditionalFields["id"])
		if id == "" {
			return
		}
		if s.cancelCall(id) {
			s.logger.Debug().Str("call_id", id).Msg("cancelled in-flight call")
		}
	}
	s.mcpServer.AddNotificationHandler("$/cancelNotification", handler)
	s.mcpServer.AddNotificationHandler("$/cancel", handler)
}

// dispatch validates raw arguments against schema, enforces required
// capabilities, runs the descriptor's handler, and returns a response
// Envelope for either outcome. It never returns a bare Go error: every
// failure is folded into an error Envelope so a caller always gets a
// uniformly shaped response (spec.md §3's Response Envelope).
func (s *Server) dispatch(ctx context.Context, d *ToolDescriptor, schema map[string]any, raw map[string]any) Envelope {
	start := time.Now()
	oracleVersion := ""

	vr, err := Validate(schema, d.Strict, raw)
	if err != nil {
		return FormatError(d.Name, time.Since(start), oracleVersion, err)
	}

	if len(d.RequiredCapabilities) > 0 {
		caps := s.deps.Capabilities(ctx)
		oracleVersion = caps.Version
		if err := RequireCapabilities(caps, d.RequiredCapabilities); err != nil {
			return FormatError(d.Name, time.Since(start), oracleVersion, err)
		}
	}

	if s.config.AuditEnabled {
		s.auditToolCall(d.Name, vr.Args)
	}

	data, usedTags, err := d.Handler(ctx, s.deps, vr.Args)
	if err != nil {
		return FormatError(d.Name, time.Since(start), oracleVersion, classifyContextErr(ctx, err))
	}

	return FormatSuccess(d.Name, data, time.Since(start), oracleVersion, usedTags, vr.Warnings)
}

// classifyContextErr reclassifies a handler error as cancelled or timed
// out when the call's own context explains the failure, so a $/cancel
// notification or an elapsed per-call deadline surfaces as kind=cancelled
// / kind=timeout instead of whatever taxonomy (or lack of one) the
// Execution Engine attached deep inside the call chain.
func classifyContextErr(ctx context.Context, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		return errtax.Wrap(errtax.KindCancelled, "E_CANCELLED", "the call was cancelled", err)
	case context.DeadlineExceeded:
		return errtax.Wrap(errtax.KindTimeout, "E_TIMEOUT", "the call exceeded its per-call deadline", err)
	default:
		return err
	}
}

func (s *Server) auditToolCall(tool string, args map[string]any) {
	argsJSON, _ := json.Marshal(redactSecrets(args))
	s.logger.Info().
		Str("tool", tool).
		RawJSON("args", argsJSON).
		Msg("tool call")
}

// redactSecrets copies args with password-typed values replaced, so the
// audit log never carries a credential (spec.md §4.6).
func redactSecrets(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if strings.Contains(strings.ToLower(k), "password") {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

// ServeStdio starts the MCP server and serves over stdio. This blocks
// until the underlying transport returns (client disconnect, or the
// process receives a shutdown signal that mcp-go's stdio transport
// handles internally).
func (s *Server) ServeStdio() error {
	s.logger.Info().Msg("starting MCP dispatcher on stdio")
	return server.ServeStdio(s.mcpServer)
}
