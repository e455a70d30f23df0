package mcpserver

import (
	"time"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
)

// Status is the top-level outcome discriminator of an Envelope.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Metadata is the always-present descriptive half of a response Envelope.
type Metadata struct {
	Tool              string       `json:"tool"`
	ExecutionMS       int64        `json:"execution_ms"`
	OracleVersion     string       `json:"oracle_version,omitempty"`
	CapabilitiesUsed  []dialect.Tag `json:"capabilities_used,omitempty"`
	Warnings          []string     `json:"warnings,omitempty"`
}

// ErrorObject is the wire shape of a taxonomy Error inside an Envelope.
type ErrorObject struct {
	Kind    errtax.Kind `json:"kind"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Hint    string       `json:"hint,omitempty"`
}

// Envelope is the uniform response shape every tool call produces,
// success or failure (spec.md §3).
type Envelope struct {
	Status   Status       `json:"status"`
	Data     any          `json:"data"`
	Metadata Metadata     `json:"metadata"`
	Error    *ErrorObject `json:"error"`
}

// FormatSuccess wraps handler output in a success Envelope.
func FormatSuccess(tool string, data any, elapsed time.Duration, oracleVersion string, capsUsed []dialect.Tag, warnings []string) Envelope {
	return Envelope{
		Status: StatusSuccess,
		Data:   data,
		Metadata: Metadata{
			Tool:             tool,
			ExecutionMS:      elapsed.Milliseconds(),
			OracleVersion:    oracleVersion,
			CapabilitiesUsed: capsUsed,
			Warnings:         warnings,
		},
		Error: nil,
	}
}

// FormatError wraps a failure in an error Envelope. Any error is accepted;
// non-taxonomy errors are classified KindInternal so a bug never leaks an
// unclassified shape to the client.
func FormatError(tool string, elapsed time.Duration, oracleVersion string, err error) Envelope {
	et, ok := errtax.As(err)
	if !ok {
		et = errtax.New(errtax.KindInternal, "E_INTERNAL", "an internal error occurred")
	}
	return Envelope{
		Status: StatusError,
		Data:   nil,
		Metadata: Metadata{
			Tool:          tool,
			ExecutionMS:   elapsed.Milliseconds(),
			OracleVersion: oracleVersion,
		},
		Error: &ErrorObject{
			Kind:    et.Kind,
			Code:    et.Code,
			Message: et.Message,
			Hint:    et.Hint,
		},
	}
}

// TruncatePreview trims s to max bytes for LOB/text previews, reporting
// whether truncation occurred so callers can set an explicit truncated
// marker instead of silently dropping data (spec.md §4.8).
func TruncatePreview(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}
	return s[:max], true
}
