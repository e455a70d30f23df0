package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

func TestBuildDropUserCascade(t *testing.T) {
	plan, err := BuildDropUser("mcp_test", true)
	require.NoError(t, err)
	assert.Equal(t, "DROP USER MCP_TEST CASCADE", plan.SQLText)

	plan, err = BuildDropUser("mcp_test", false)
	require.NoError(t, err)
	assert.Equal(t, "DROP USER MCP_TEST", plan.SQLText)
}

func TestBuildDropUserRejectsSystemUser(t *testing.T) {
	_, err := BuildDropUser("SYSTEM", true)
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_SECURITY_SYSTEM_USER", et.Code)
}

func TestBuildAlterUserPasswordBindsNewPassword(t *testing.T) {
	plan, err := BuildAlterUserPassword("mcp_test", "n3w!")
	require.NoError(t, err)
	assert.Equal(t, "ALTER USER MCP_TEST IDENTIFIED BY :1", plan.SQLText)
	assert.Equal(t, []any{"n3w!"}, plan.Binds)
}

func TestBuildGrantPrivilegesSystem(t *testing.T) {
	plan, err := BuildGrantPrivileges("mcp_test", "system", []string{"CONNECT", "RESOURCE"}, "")
	require.NoError(t, err)
	assert.Equal(t, "GRANT CONNECT, RESOURCE TO MCP_TEST", plan.SQLText)
}

func TestBuildGrantPrivilegesObjectRequiresObject(t *testing.T) {
	_, err := BuildGrantPrivileges("mcp_test", "object", []string{"SELECT"}, "")
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_MISSING_OBJECT", et.Code)
}

func TestBuildGrantPrivilegesObject(t *testing.T) {
	plan, err := BuildGrantPrivileges("mcp_test", "object", []string{"SELECT", "INSERT"}, "employees")
	require.NoError(t, err)
	assert.Equal(t, "GRANT SELECT, INSERT ON EMPLOYEES TO MCP_TEST", plan.SQLText)
}

func TestBuildGrantPrivilegesRejectsSystemObjectTarget(t *testing.T) {
	_, err := BuildGrantPrivileges("mcp_test", "object", []string{"SELECT"}, "DBA_USERS")
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_SECURITY_SYSTEM_OBJECT", et.Code)
}

func TestBuildGrantPrivilegesRejectsUnknownType(t *testing.T) {
	_, err := BuildGrantPrivileges("mcp_test", "cosmic", []string{"SELECT"}, "")
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_INVALID_PARAM", et.Code)
}

func TestBuildRevokePrivileges(t *testing.T) {
	plan, err := BuildRevokePrivileges("mcp_test", []string{"CONNECT"}, "")
	require.NoError(t, err)
	assert.Equal(t, "REVOKE CONNECT FROM MCP_TEST", plan.SQLText)

	plan, err = BuildRevokePrivileges("mcp_test", []string{"SELECT"}, "employees")
	require.NoError(t, err)
	assert.Equal(t, "REVOKE SELECT ON EMPLOYEES FROM MCP_TEST", plan.SQLText)
}

func TestBuildGrantRole(t *testing.T) {
	plan, err := BuildGrantRole("app_reader", "mcp_test")
	require.NoError(t, err)
	assert.Equal(t, "GRANT APP_READER TO MCP_TEST", plan.SQLText)
}
