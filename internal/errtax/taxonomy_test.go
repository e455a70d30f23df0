package errtax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndWrap(t *testing.T) {
	cause := errors.New("boom")

	e := New(KindValidation, "E_BAD_ARG", "field foo is required")
	assert.Equal(t, KindValidation, e.Kind)
	assert.Nil(t, e.Cause)

	w := Wrap(KindDriver, "ORA-12541", "connect failed", cause)
	assert.Equal(t, KindDriver, w.Kind)
	assert.Equal(t, cause, w.Cause)
	assert.Contains(t, w.Error(), "boom")
	assert.ErrorIs(t, w, cause)
}

func TestAs(t *testing.T) {
	err := New(KindSecurity, "E_SYSTEM_OBJECT", "refused")
	var wrapped error = err

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindSecurity, got.Kind)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestFromOracleCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantKind Kind
		wantHint bool
	}{
		{"table not found", "ORA-00942", KindDriver, true},
		{"bad login", "ORA-01017", KindPrivilege, true},
		{"insufficient privilege", "ORA-01031", KindPrivilege, true},
		{"no listener", "ORA-12541", KindDriver, true},
		{"account locked", "ORA-28000", KindPrivilege, true},
		{"unique violation", "ORA-00001", KindValidation, true},
		{"unknown code", "ORA-99999", KindDriver, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromOracleCode(tt.code, "driver message", nil)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.code, e.Code)
			if tt.wantHint {
				assert.NotEmpty(t, e.Hint)
			} else {
				assert.Empty(t, e.Hint)
			}
		})
	}
}
