package sqlbuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

var vectorDistanceFunctions = map[string]string{
	"cosine":    "COSINE",
	"euclidean": "EUCLIDEAN",
	"manhattan": "MANHATTAN",
}

func vectorDistanceFunction(metric string) (string, error) {
	fn, ok := vectorDistanceFunctions[strings.ToLower(metric)]
	if !ok {
		return "", errtax.New(errtax.KindValidation, "E_INVALID_PARAM", fmt.Sprintf("%q is not a recognized distance metric", metric))
	}
	return fn, nil
}

func formatVectorLiteral(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "'[" + strings.Join(parts, ",") + "]'"
}

// BuildVectorSearch builds a VECTOR_DISTANCE top-K nearest-neighbor query:
// `SELECT t.*, VECTOR_DISTANCE(col, '[...]', <metric>) AS DISTANCE FROM
// table t ORDER BY DISTANCE FETCH FIRST <topK> ROWS ONLY`, with the query
// vector and topK written into the text as literals.
func BuildVectorSearch(table, vectorColumn string, queryVector []float64, metric string, topK int64) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	fn, err := vectorDistanceFunction(metric)
	if err != nil {
		return Plan{}, err
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	col, err := EscapeIdentifier(vectorColumn)
	if err != nil {
		return Plan{}, err
	}
	if topK <= 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", "top_k must be positive")
	}

	distExpr := fmt.Sprintf("VECTOR_DISTANCE(%s, %s, %s)", col, formatVectorLiteral(queryVector), fn)
	sqlText := fmt.Sprintf(
		"SELECT t.*, %s AS DISTANCE FROM %s t ORDER BY DISTANCE FETCH FIRST %d ROWS ONLY",
		distExpr, tbl, topK,
	)
	return Plan{SQLText: sqlText}, nil
}

// BuildVectorSimilarity builds a single-row comparison between two
// literal vectors: `SELECT VECTOR_DISTANCE('[...]', '[...]', <metric>) AS
// DISTANCE FROM table FETCH FIRST 1 ROWS ONLY`. table only supplies the
// FROM clause; vectorColumn does not appear in the statement.
func BuildVectorSimilarity(table, vectorColumn string, vectorA, vectorB []float64, metric string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	fn, err := vectorDistanceFunction(metric)
	if err != nil {
		return Plan{}, err
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}

	distExpr := fmt.Sprintf("VECTOR_DISTANCE(%s, %s, %s)", formatVectorLiteral(vectorA), formatVectorLiteral(vectorB), fn)
	sqlText := fmt.Sprintf("SELECT %s AS DISTANCE FROM %s FETCH FIRST 1 ROWS ONLY", distExpr, tbl)
	return Plan{SQLText: sqlText}, nil
}

var vectorIndexOrganizations = map[string]struct{}{
	"INMEMORY_NEIGHBOR_GRAPH": {}, "NEIGHBOR_PARTITIONS": {},
}

// BuildCreateVectorIndex builds a CREATE VECTOR INDEX statement.
func BuildCreateVectorIndex(table, vectorColumn, indexName, organization, metric string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	if _, ok := vectorIndexOrganizations[strings.ToUpper(organization)]; !ok {
		return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", fmt.Sprintf("%q is not a recognized vector index organization", organization))
	}
	fn, err := vectorDistanceFunction(metric)
	if err != nil {
		return Plan{}, err
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	col, err := EscapeIdentifier(vectorColumn)
	if err != nil {
		return Plan{}, err
	}
	idx, err := EscapeIdentifier(indexName)
	if err != nil {
		return Plan{}, err
	}

	sqlText := fmt.Sprintf(
		"CREATE VECTOR INDEX %s ON %s (%s) ORGANIZATION %s DISTANCE %s",
		idx, tbl, col, strings.ToUpper(organization), fn,
	)
	return Plan{SQLText: sqlText}, nil
}

// BuildHybridSearch builds a query over the rows matching a CONTAINS
// full-text query, returning the text score as TEXT_SCORE and the cosine
// vector distance as DISTANCE. Rows are ordered by DISTANCE alone;
// TEXT_SCORE does not affect the order.
func BuildHybridSearch(table, textColumn, vectorColumn, queryText string, queryVector []float64, topK int64) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	textCol, err := EscapeIdentifier(textColumn)
	if err != nil {
		return Plan{}, err
	}
	vecCol, err := EscapeIdentifier(vectorColumn)
	if err != nil {
		return Plan{}, err
	}
	if topK <= 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", "top_k must be positive")
	}

	escapedQuery := strings.ReplaceAll(queryText, "'", "''")
	distExpr := fmt.Sprintf("VECTOR_DISTANCE(%s, %s, COSINE)", vecCol, formatVectorLiteral(queryVector))
	sqlText := fmt.Sprintf(
		"SELECT t.*, SCORE(1) AS TEXT_SCORE, %s AS DISTANCE FROM %s t WHERE CONTAINS(%s, '%s', 1) > 0 ORDER BY DISTANCE FETCH FIRST %d ROWS ONLY",
		distExpr, tbl, textCol, escapedQuery, topK,
	)
	return Plan{SQLText: sqlText}, nil
}
