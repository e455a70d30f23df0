package errtax

import (
	"errors"
	"fmt"
)

// Kind is the closed vocabulary of error categories a tool call can fail
// with. Every error surfaced in a response envelope's "error" field carries
// exactly one Kind.
type Kind string

const (
	// KindValidation means the tool arguments failed schema or semantic
	// validation before any Oracle round-trip was attempted.
	KindValidation Kind = "validation"
	// KindCapability means the tool requires a dialect feature the
	// connected Oracle instance does not expose (E_UNSUPPORTED_FEATURE).
	KindCapability Kind = "capability"
	// KindPrivilege means Oracle rejected the call for lack of privilege
	// (e.g. ORA-01031).
	KindPrivilege Kind = "privilege"
	// KindDialect means the SQL Builder refused to emit SQL for the
	// requested shape (e.g. disallowed identifier, unrecognized function or
	// privilege, unsupported column type).
	KindDialect Kind = "dialect"
	// KindDriver means the Oracle driver or network layer returned an
	// error not otherwise classified (go-ora transport failures, etc).
	KindDriver Kind = "driver"
	// KindTimeout means the operation exceeded its configured deadline.
	KindTimeout Kind = "timeout"
	// KindCancelled means the caller cancelled the request via
	// $/cancelNotification before it completed.
	KindCancelled Kind = "cancelled"
	// KindSecurity means a safety rule rejected the request (system
	// object denylist, multi-statement body, blocked system user).
	KindSecurity Kind = "security"
	// KindInternal means an invariant inside this server was violated;
	// it is never the caller's fault.
	KindInternal Kind = "internal"
)

// Error is the taxonomy-conformant error type every layer boundary wraps
// failures into before they reach the Response Formatter.
type Error struct {
	Kind    Kind
	Code    string // e.g. "ORA-01031", or a local code like "E_REGISTRY_FROZEN"
	Message string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no underlying cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Hint: hintFor(code)}
}

// Wrap builds an Error around an underlying cause, attaching a Kind, a
// code, and a message describing the context in which cause occurred.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Hint: hintFor(code), Cause: cause}
}

// As reports whether err is, or wraps, an *Error, returning it if so.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// oracleHints maps well-known Oracle error codes to actionable hints,
// surfaced in the response envelope alongside the raw driver message.
var oracleHints = map[string]string{
	"ORA-00942": "table or view does not exist; check the schema-qualified name and that the caller has SELECT privilege on it",
	"ORA-01017": "invalid username/password; verify oracle.user and oracle.password",
	"ORA-01031": "insufficient privileges; the connected user lacks a required system or object privilege for this operation",
	"ORA-12541": "no listener; verify the host and port in oracle.url and that the Oracle listener is reachable",
	"ORA-28000": "the account is locked; unlock it with ALTER USER ... ACCOUNT UNLOCK or contact the DBA",
	"ORA-00001": "unique constraint violated; the row already exists for this key",
}

func hintFor(code string) string {
	return oracleHints[code]
}

// FromOracleCode builds a KindDriver (or, for known privilege and
// constraint codes, a more specific Kind) Error from a raw "ORA-NNNNN"
// code and the driver's message.
func FromOracleCode(code, message string, cause error) *Error {
	kind := KindDriver
	switch code {
	case "ORA-01017", "ORA-01031", "ORA-28000":
		kind = KindPrivilege
	case "ORA-00001":
		kind = KindValidation
	}
	return &Error{Kind: kind, Code: code, Message: message, Hint: hintFor(code), Cause: cause}
}
