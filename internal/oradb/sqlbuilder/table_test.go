package sqlbuilder

import (
	"testing"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCreateTable(t *testing.T) {
	plan, err := BuildCreateTable("employees", []Column{
		{Name: "id", Type: "NUMBER", Nullable: false},
		{Name: "name", Type: "VARCHAR2(100)", Nullable: true},
	}, []string{"id"}, "users_ts")

	require.NoError(t, err)
	assert.Contains(t, plan.SQLText, "CREATE TABLE EMPLOYEES")
	assert.Contains(t, plan.SQLText, "ID NUMBER NOT NULL")
	assert.Contains(t, plan.SQLText, "NAME VARCHAR2(100)")
	assert.Contains(t, plan.SQLText, "PRIMARY KEY (ID)")
	assert.Contains(t, plan.SQLText, "TABLESPACE USERS_TS")
}

func TestBuildCreateTableRejectsBadColumnType(t *testing.T) {
	_, err := BuildCreateTable("t", []Column{{Name: "c", Type: "XMLTYPE"}}, nil, "")
	require.Error(t, err)
	e, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_INVALID_COLUMN_TYPE", e.Code)
}

func TestBuildCreateTableRejectsSystemObject(t *testing.T) {
	_, err := BuildCreateTable("dba_users", []Column{{Name: "c", Type: "NUMBER"}}, nil, "")
	require.Error(t, err)
	e, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, errtax.KindSecurity, e.Kind)
}

func TestBuildCreateTableRequiresColumns(t *testing.T) {
	_, err := BuildCreateTable("t", nil, nil, "")
	require.Error(t, err)
}
