package sqlbuilder

import (
	"testing"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple lowercase", "employees", "EMPLOYEES", false},
		{"already uppercase", "EMPLOYEES", "EMPLOYEES", false},
		{"strips sql injection chars", "emp'; DROP TABLE x; --", "EMPDROPTABLEX", false},
		{"strips whitespace and punctuation", "my table", "MYTABLE", false},
		{"starts with digit needs quoting", "1table", `"1TABLE"`, false},
		{"empty after stripping", "';--", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EscapeIdentifier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				e, ok := errtax.As(err)
				require.True(t, ok)
				assert.Equal(t, "E_INVALID_IDENT", e.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsSystemUser(t *testing.T) {
	assert.True(t, IsSystemUser("sys"))
	assert.True(t, IsSystemUser("SYSTEM"))
	assert.True(t, IsSystemUser("  DbSnmp  "))
	assert.False(t, IsSystemUser("app_user"))
}

func TestIsSystemObject(t *testing.T) {
	assert.True(t, IsSystemObject("v$session"))
	assert.True(t, IsSystemObject("DBA_USERS"))
	assert.True(t, IsSystemObject("gv$instance"))
	assert.False(t, IsSystemObject("employees"))
}

func TestValidateSingleStatement(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single statement no semicolon", "SELECT 1 FROM DUAL", false},
		{"single trailing semicolon tolerated", "SELECT 1 FROM DUAL;", false},
		{"multiple statements rejected", "SELECT 1 FROM DUAL; DROP TABLE x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSingleStatement(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				e, ok := errtax.As(err)
				require.True(t, ok)
				assert.Equal(t, errtax.KindSecurity, e.Kind)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
