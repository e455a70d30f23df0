package mcpserver

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
)

func TestFormatSuccessEnvelopeShape(t *testing.T) {
	env := FormatSuccess("list_tables", map[string]any{"count": 3}, 42*time.Millisecond, "19.3", []dialect.Tag{dialect.TagPDB}, nil)

	assert.Equal(t, StatusSuccess, env.Status)
	assert.NotNil(t, env.Data)
	assert.Nil(t, env.Error)
	assert.Equal(t, "list_tables", env.Metadata.Tool)
	assert.Equal(t, int64(42), env.Metadata.ExecutionMS)
	assert.Equal(t, "19.3", env.Metadata.OracleVersion)
	assert.Equal(t, []dialect.Tag{dialect.TagPDB}, env.Metadata.CapabilitiesUsed)
}

func TestFormatErrorCarriesTaxonomyFields(t *testing.T) {
	err := errtax.New(errtax.KindPrivilege, "ORA-01031", "insufficient privileges")
	env := FormatError("drop_user", time.Millisecond, "19.3", err)

	assert.Equal(t, StatusError, env.Status)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, errtax.KindPrivilege, env.Error.Kind)
	assert.Equal(t, "ORA-01031", env.Error.Code)
	assert.NotEmpty(t, env.Error.Hint, "well-known Oracle codes carry a hint")
}

func TestFormatErrorClassifiesBareErrorsAsInternal(t *testing.T) {
	env := FormatError("list_tables", time.Millisecond, "", errors.New("nil pointer somewhere"))

	require.NotNil(t, env.Error)
	assert.Equal(t, errtax.KindInternal, env.Error.Kind)
	assert.Equal(t, "E_INTERNAL", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "nil pointer", "internal details must not leak to the client")
}

func TestEnvelopeHasExactlyOneOfDataOrError(t *testing.T) {
	success := FormatSuccess("t", map[string]any{}, 0, "", nil, nil)
	assert.NotNil(t, success.Data)
	assert.Nil(t, success.Error)

	failure := FormatError("t", 0, "", errtax.New(errtax.KindValidation, "E_X", "x"))
	assert.Nil(t, failure.Data)
	assert.NotNil(t, failure.Error)
}

func TestTruncatePreview(t *testing.T) {
	s, truncated := TruncatePreview("hello", 10)
	assert.Equal(t, "hello", s)
	assert.False(t, truncated)

	s, truncated = TruncatePreview("hello world", 5)
	assert.Equal(t, "hello", s)
	assert.True(t, truncated)
}
