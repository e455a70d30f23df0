package mcpserver

import (
	"context"

	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/exec"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/sqlbuilder"
)

// aiCapabilities gates every tool in this catalog: VECTOR_DISTANCE and
// CREATE VECTOR INDEX are 23c+ features.
var aiCapabilities = []dialect.Tag{dialect.TagVector}

// RegisterAITools adds every ai-category tool descriptor to r.
func RegisterAITools(r *Registry) error {
	tools := []ToolDescriptor{
		{
			Name:                 "vector_search",
			Description:          "Finds the top-K nearest rows to a query embedding by vector distance.",
			InputType:            VectorSearchInput{},
			Exposure:             ExposurePublic,
			Category:             CategoryAI,
			Strict:               true,
			RequiredCapabilities: aiCapabilities,
			Handler:              vectorSearch,
		},
		{
			Name:                 "vector_similarity",
			Description:          "Computes the distance between two literal vectors.",
			InputType:            VectorSimilarityInput{},
			Exposure:             ExposurePublic,
			Category:             CategoryAI,
			Strict:               true,
			RequiredCapabilities: aiCapabilities,
			Handler:              vectorSimilarity,
		},
		{
			Name:                 "create_vector_index",
			Description:          "Creates a vector index over a VECTOR-typed column.",
			InputType:            CreateVectorIndexInput{},
			Exposure:             ExposurePublic,
			Category:             CategoryAI,
			Strict:               true,
			RequiredCapabilities: aiCapabilities,
			Handler:              createVectorIndex,
		},
		{
			Name:                 "hybrid_search",
			Description:          "Combines full-text matching and vector distance ranking over one table.",
			InputType:            HybridSearchInput{},
			Exposure:             ExposurePublic,
			Category:             CategoryAI,
			Strict:               true,
			RequiredCapabilities: aiCapabilities,
			Handler:              hybridSearch,
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func vectorSearch(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	if err := RequireCapabilities(caps, aiCapabilities); err != nil {
		return nil, nil, err
	}

	table := argString(args, "table")
	vectorColumn := argString(args, "vector_column")
	queryVector := argFloat64Slice(args, "query_vector")
	metric := argStringOr(args, "metric", "cosine")
	topK := argInt64Or(args, "top_k", 10)

	plan, err := sqlbuilder.BuildVectorSearch(table, vectorColumn, queryVector, metric, topK)
	if err != nil {
		return nil, nil, err
	}

	var result exec.Result
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeQuery, MaxRows: int(topK)}))
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, aiCapabilities, nil
}

func vectorSimilarity(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	if err := RequireCapabilities(caps, aiCapabilities); err != nil {
		return nil, nil, err
	}

	table := argString(args, "table")
	vectorColumn := argString(args, "vector_column")
	vectorA := argFloat64Slice(args, "vector_a")
	vectorB := argFloat64Slice(args, "vector_b")
	metric := argStringOr(args, "metric", "cosine")

	plan, err := sqlbuilder.BuildVectorSimilarity(table, vectorColumn, vectorA, vectorB, metric)
	if err != nil {
		return nil, nil, err
	}

	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, aiCapabilities, nil
}

func createVectorIndex(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	if err := RequireCapabilities(caps, aiCapabilities); err != nil {
		return nil, nil, err
	}

	table := argString(args, "table")
	vectorColumn := argString(args, "vector_column")
	indexName := argString(args, "index_name")
	organization := argString(args, "organization")
	metric := argStringOr(args, "metric", "cosine")

	plan, err := sqlbuilder.BuildCreateVectorIndex(table, vectorColumn, indexName, organization, metric)
	if err != nil {
		return nil, nil, err
	}

	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeExecute})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"index_name": indexName, "created": true}, aiCapabilities, nil
}

func hybridSearch(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	if err := RequireCapabilities(caps, aiCapabilities); err != nil {
		return nil, nil, err
	}

	table := argString(args, "table")
	textColumn := argString(args, "text_column")
	vectorColumn := argString(args, "vector_column")
	queryText := argString(args, "query_text")
	queryVector := argFloat64Slice(args, "query_vector")
	topK := argInt64Or(args, "top_k", 10)

	plan, err := sqlbuilder.BuildHybridSearch(table, textColumn, vectorColumn, queryText, queryVector, topK)
	if err != nil {
		return nil, nil, err
	}

	var result exec.Result
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeQuery, MaxRows: int(topK)}))
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, aiCapabilities, nil
}
