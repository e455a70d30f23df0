package exec

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// oraCodePattern extracts a leading "ORA-NNNNN" code from a go-ora driver
// error's message. go-ora's OracleError formats its Error() string with
// the code as a prefix; matching on the rendered string (rather than
// reaching into the driver's internal struct) keeps this translation
// layer stable across go-ora point releases.
var oraCodePattern = regexp.MustCompile(`ORA-(\d{5})`)

// translateDriverError classifies a raw database/sql/go-ora error into
// the closed taxonomy, per spec.md §4.5's error-translation contract.
func translateDriverError(err error) *errtax.Error {
	if err == nil {
		return nil
	}
	if existing, ok := errtax.As(err); ok {
		return existing
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errtax.Wrap(errtax.KindTimeout, "E_TIMEOUT", "statement exceeded its configured timeout", err)
	case errors.Is(err, context.Canceled):
		return errtax.Wrap(errtax.KindCancelled, "E_CANCELLED", "request was cancelled", err)
	case errors.Is(err, sql.ErrNoRows):
		return errtax.Wrap(errtax.KindValidation, "E_NO_ROWS", "query returned no rows", err)
	}

	if m := oraCodePattern.FindStringSubmatch(err.Error()); m != nil {
		return errtax.FromOracleCode("ORA-"+m[1], err.Error(), err)
	}

	return errtax.Wrap(errtax.KindDriver, "E_DRIVER_ERROR", "driver returned an unclassified error", err)
}
