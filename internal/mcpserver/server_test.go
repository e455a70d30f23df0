package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracle-mcp/oracle-mcp-server/internal/config"
	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
)

type pingInput struct {
	Name string `json:"name" jsonschema:"description=Name to echo back"`
}

func newTestRegistry(t *testing.T, handler HandlerFunc) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(ToolDescriptor{
		Name:        "ping_echo",
		Description: "Echoes the given name back.",
		InputType:   pingInput{},
		Exposure:    ExposurePublic,
		Category:    CategoryCore,
		Strict:      true,
		Handler:     handler,
	}))
	r.Freeze()
	return r
}

func TestNewRejectsUnfrozenRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_REGISTRY_NOT_FROZEN", et.Code)
}

func TestNewRegistersEveryPublicDescriptor(t *testing.T) {
	called := false
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		called = true
		return map[string]any{"echo": args["name"]}, nil, nil
	})

	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{Name: "test-server"}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, s.mcpServer)
	assert.False(t, called, "registering tools must not invoke any handler")
}

func TestDispatchFormatsSuccessEnvelope(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		return map[string]any{"echo": args["name"]}, nil, nil
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Lookup("ping_echo")
	require.NoError(t, err)
	schema, err := generateInputSchema(d.InputType)
	require.NoError(t, err)

	env := s.dispatch(context.Background(), d, schema, map[string]any{"name": "coral"})
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Nil(t, env.Error)
	assert.Equal(t, "ping_echo", env.Metadata.Tool)
}

func TestDispatchFormatsValidationErrorEnvelope(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		t.Fatal("handler must not run when argument validation fails")
		return nil, nil, nil
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Lookup("ping_echo")
	require.NoError(t, err)
	schema, err := generateInputSchema(d.InputType)
	require.NoError(t, err)

	env := s.dispatch(context.Background(), d, schema, map[string]any{"unexpected": true})
	assert.Equal(t, StatusError, env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errtax.KindValidation, env.Error.Kind)
}

func TestDispatchFormatsHandlerErrorEnvelope(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		return nil, nil, errtax.New(errtax.KindDriver, "E_DRIVER_FAILURE", "simulated driver failure")
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Lookup("ping_echo")
	require.NoError(t, err)
	schema, err := generateInputSchema(d.InputType)
	require.NoError(t, err)

	env := s.dispatch(context.Background(), d, schema, map[string]any{"name": "x"})
	assert.Equal(t, StatusError, env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "E_DRIVER_FAILURE", env.Error.Code)
}

func TestDispatchRequiresCapabilities(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`SELECT BANNER FROM V\$VERSION`).WillReturnError(context.DeadlineExceeded)

	p := pool.New(db, config.PoolConfig{MaxSize: 1, AcquireTimeoutMS: 50, LeakThresholdMS: 1000}, zerolog.Nop())
	defer p.Close()

	r := NewRegistry()
	require.NoError(t, r.Register(ToolDescriptor{
		Name:                 "vector_only_tool",
		Description:          "Needs a capability this degraded snapshot does not report.",
		InputType:            pingInput{},
		Exposure:             ExposurePublic,
		Category:             CategoryAI,
		Strict:               true,
		RequiredCapabilities: []dialect.Tag{dialect.TagVector},
		Handler: func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
			t.Fatal("handler must not run when a required capability is unsupported")
			return nil, nil, nil
		},
	}))
	r.Freeze()

	deps := &Deps{Pool: p, Detector: dialect.New(time.Minute, zerolog.Nop()), Logger: zerolog.Nop()}
	s, err := New(r, deps, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Lookup("vector_only_tool")
	require.NoError(t, err)
	schema, err := generateInputSchema(d.InputType)
	require.NoError(t, err)

	env := s.dispatch(context.Background(), d, schema, map[string]any{"name": "x"})
	assert.Equal(t, StatusError, env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errtax.KindCapability, env.Error.Kind)
}

func TestDispatchClassifiesCancelledContext(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		<-ctx.Done()
		return nil, nil, errtax.New(errtax.KindDriver, "E_DRIVER_FAILURE", "query interrupted")
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Lookup("ping_echo")
	require.NoError(t, err)
	schema, err := generateInputSchema(d.InputType)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env := s.dispatch(ctx, d, schema, map[string]any{"name": "x"})
	assert.Equal(t, StatusError, env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errtax.KindCancelled, env.Error.Kind)
}

func TestDispatchClassifiesDeadlineExceeded(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		<-ctx.Done()
		return nil, nil, errtax.New(errtax.KindDriver, "E_DRIVER_FAILURE", "query interrupted")
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Lookup("ping_echo")
	require.NoError(t, err)
	schema, err := generateInputSchema(d.InputType)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	env := s.dispatch(ctx, d, schema, map[string]any{"name": "x"})
	assert.Equal(t, StatusError, env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, errtax.KindTimeout, env.Error.Kind)
}

func TestCancelCallCancelsRegisteredCall(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		return nil, nil, nil
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	var cancelled bool
	s.registerCall("42", func() { cancelled = true })
	defer s.unregisterCall("42")

	assert.True(t, s.cancelCall("42"))
	assert.True(t, cancelled)
	assert.False(t, s.cancelCall("no-such-call"))
}

func TestUnregisterCallRemovesEntry(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		return nil, nil, nil
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	s.registerCall("7", func() {})
	s.unregisterCall("7")

	assert.False(t, s.cancelCall("7"), "unregisterCall must remove the entry so the map does not grow unbounded")
}

func TestRequestIDHandoffKeyedByContext(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		return nil, nil, nil
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	s.noteRequestID(ctx, float64(7)) // JSON-RPC numeric ids decode as float64
	assert.Equal(t, "7", s.takeRequestID(ctx))
	assert.Equal(t, "", s.takeRequestID(ctx), "a claimed id must not be claimable twice")

	s.noteRequestID(ctx, "abc")
	s.dropRequestID(ctx)
	assert.Equal(t, "", s.takeRequestID(ctx), "dropRequestID must scrub entries for failed dispatches")
}

func TestCancelNotificationInterruptsInFlightCall(t *testing.T) {
	started := make(chan struct{})
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		close(started)
		<-ctx.Done()
		return nil, nil, errtax.New(errtax.KindDriver, "E_DRIVER_FAILURE", "query interrupted")
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{}, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Lookup("ping_echo")
	require.NoError(t, err)
	schema, err := generateInputSchema(d.InputType)
	require.NoError(t, err)

	// Simulate the before-call hook recording the client's request id,
	// then invoke the handler exactly as mcp-go would: same context.
	ctx := context.Background()
	s.noteRequestID(ctx, float64(3))

	handler := s.callHandler(d, schema)
	var req mcp.CallToolRequest
	req.Params.Name = d.Name
	req.Params.Arguments = map[string]any{"name": "x"}

	type callResult struct {
		result *mcp.CallToolResult
		err    error
	}
	done := make(chan callResult, 1)
	go func() {
		res, err := handler(ctx, req)
		done <- callResult{res, err}
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never started")
	}
	require.True(t, s.cancelCall("3"), "the in-flight call must be registered under its client id")

	select {
	case cr := <-done:
		require.NoError(t, cr.err)
		require.NotEmpty(t, cr.result.Content)
		tc, ok := cr.result.Content[0].(mcp.TextContent)
		require.True(t, ok)
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(tc.Text), &env))
		assert.Equal(t, StatusError, env.Status)
		require.NotNil(t, env.Error)
		assert.Equal(t, errtax.KindCancelled, env.Error.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled call never returned a terminal response")
	}
}

func TestDispatchAuditsWhenEnabled(t *testing.T) {
	r := newTestRegistry(t, func(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
		return map[string]any{"echo": args["name"]}, nil, nil
	})
	s, err := New(r, &Deps{Logger: zerolog.Nop()}, ServerConfig{AuditEnabled: true}, zerolog.Nop())
	require.NoError(t, err)

	d, err := r.Lookup("ping_echo")
	require.NoError(t, err)
	schema, err := generateInputSchema(d.InputType)
	require.NoError(t, err)

	env := s.dispatch(context.Background(), d, schema, map[string]any{"name": "coral"})
	assert.Equal(t, StatusSuccess, env.Status)
}
