package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

func TestBuildVectorSearch(t *testing.T) {
	plan, err := BuildVectorSearch("documents", "embedding", []float64{0.1, 0.2}, "cosine", 10)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t.*, VECTOR_DISTANCE(EMBEDDING, '[0.1,0.2]', COSINE) AS DISTANCE FROM DOCUMENTS t ORDER BY DISTANCE FETCH FIRST 10 ROWS ONLY",
		plan.SQLText)
}

func TestBuildVectorSearchMetricMapping(t *testing.T) {
	for metric, fn := range map[string]string{"cosine": "COSINE", "euclidean": "EUCLIDEAN", "manhattan": "MANHATTAN"} {
		plan, err := BuildVectorSearch("documents", "embedding", []float64{1}, metric, 1)
		require.NoError(t, err, metric)
		assert.Contains(t, plan.SQLText, ", "+fn+")")
	}
}

func TestBuildVectorSearchRejectsUnknownMetric(t *testing.T) {
	_, err := BuildVectorSearch("documents", "embedding", []float64{1}, "hamming", 1)
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_INVALID_PARAM", et.Code)
}

func TestBuildVectorSearchRejectsNonPositiveTopK(t *testing.T) {
	_, err := BuildVectorSearch("documents", "embedding", []float64{1}, "cosine", 0)
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, errtax.KindValidation, et.Kind)
}

func TestBuildCreateVectorIndexValidatesOrganization(t *testing.T) {
	plan, err := BuildCreateVectorIndex("documents", "embedding", "doc_vec_idx", "neighbor_partitions", "cosine")
	require.NoError(t, err)
	assert.Equal(t, "CREATE VECTOR INDEX DOC_VEC_IDX ON DOCUMENTS (EMBEDDING) ORGANIZATION NEIGHBOR_PARTITIONS DISTANCE COSINE", plan.SQLText)

	_, err = BuildCreateVectorIndex("documents", "embedding", "doc_vec_idx", "btree", "cosine")
	require.Error(t, err)
}

func TestBuildHybridSearchEscapesQueryText(t *testing.T) {
	plan, err := BuildHybridSearch("documents", "body", "embedding", "o'reilly", []float64{1}, 5)
	require.NoError(t, err)
	assert.Contains(t, plan.SQLText, "CONTAINS(BODY, 'o''reilly', 1) > 0")
	assert.Contains(t, plan.SQLText, "FETCH FIRST 5 ROWS ONLY")
}

func TestVectorBuildersRejectSystemObjects(t *testing.T) {
	_, err := BuildVectorSearch("V$SESSION", "embedding", []float64{1}, "cosine", 1)
	require.Error(t, err)
	_, err = BuildHybridSearch("DBA_USERS", "body", "embedding", "x", []float64{1}, 1)
	require.Error(t, err)
}
