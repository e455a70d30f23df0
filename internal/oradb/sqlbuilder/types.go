package sqlbuilder

// Plan is what every builder function returns: SQL text and its
// positional binds (Oracle style, ":1, :2, ..."). Some builders write
// caller values into the text instead of binding them: vector and number
// literals, single-quote-escaped strings (pivot values, full-text and
// tuning-advisor SQL text), and where clauses checked by
// ValidateSingleStatement.
type Plan struct {
	SQLText string
	Binds   []any
}

// Column describes one column in a build_create_table call.
type Column struct {
	Name     string
	Type     string // must appear in columnTypeWhitelist
	Nullable bool
}

// columnTypeWhitelist restricts build_create_table to Oracle types the
// catalog explicitly supports, per spec.md §4.3.
var columnTypeWhitelist = map[string]struct{}{
	"NUMBER": {}, "VARCHAR2": {}, "CHAR": {}, "DATE": {}, "TIMESTAMP": {},
	"CLOB": {}, "BLOB": {}, "RAW": {}, "NCHAR": {}, "NVARCHAR2": {},
	"FLOAT": {}, "BINARY_DOUBLE": {}, "VECTOR": {},
}

// IsWhitelistedColumnType reports whether typ (or its base name before an
// opening paren, e.g. "VARCHAR2(200)") is in the column type whitelist.
func IsWhitelistedColumnType(typ string) bool {
	base := typ
	for i, r := range typ {
		if r == '(' {
			base = typ[:i]
			break
		}
	}
	_, ok := columnTypeWhitelist[base]
	return ok
}
