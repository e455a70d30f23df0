package mcpserver

// Input types for MCP tools. Required fields are plain values (reflected
// as JSON-schema "required"); optional fields use pointers so a caller
// that omits them is distinguishable from one that passed a zero value.

// --- core -------------------------------------------------------------

type ListDatabasesInput struct {
	IncludePDBs   *bool `json:"include_pdbs,omitempty" jsonschema:"description=Include pluggable databases in the result,default=true"`
	IncludeStatus *bool `json:"include_status,omitempty" jsonschema:"description=Include OPEN_MODE status for each database,default=true"`
}

type CreateDatabaseInput struct {
	Name            string `json:"name" jsonschema:"description=Database (or pluggable database) name"`
	Type            string `json:"type" jsonschema:"description=Database kind,enum=traditional,enum=pdb"`
	DatafileSizeMB  *int64 `json:"datafile_size_mb,omitempty" jsonschema:"description=Initial datafile size in megabytes,default=100"`
}

type DropDatabaseInput struct {
	Name string `json:"name" jsonschema:"description=Database (or pluggable database) name"`
	Type string `json:"type" jsonschema:"description=Database kind,enum=traditional,enum=pdb"`
}

type ListSchemasInput struct {
	IncludeSystem *bool `json:"include_system,omitempty" jsonschema:"description=Include Oracle-owned system schemas,default=false"`
}

type CreateSchemaInput struct {
	Username   string  `json:"username" jsonschema:"description=Schema (user) name"`
	Password   string  `json:"password" jsonschema:"description=Initial password"`
	Tablespace *string `json:"tablespace,omitempty" jsonschema:"description=Default tablespace"`
}

type DescribeSchemaInput struct {
	Username string `json:"username" jsonschema:"description=Schema (user) name"`
}

type CreateUserInput struct {
	Username   string   `json:"username" jsonschema:"description=New user name"`
	Password   string   `json:"password" jsonschema:"description=Initial password"`
	Tablespace *string  `json:"tablespace,omitempty" jsonschema:"description=Default tablespace"`
	Profile    *string  `json:"profile,omitempty" jsonschema:"description=Resource/security profile"`
	Privileges []string `json:"privileges,omitempty" jsonschema:"description=System privileges to grant on creation (e.g. CONNECT RESOURCE)"`
}

type DropUserInput struct {
	Username string `json:"username" jsonschema:"description=User name to drop"`
	Cascade  *bool  `json:"cascade,omitempty" jsonschema:"description=Drop owned objects too,default=false"`
}

type AlterUserPasswordInput struct {
	Username    string `json:"username" jsonschema:"description=User whose password is changing"`
	NewPassword string `json:"new_password" jsonschema:"description=New password"`
}

type GrantPrivilegesInput struct {
	Username      string   `json:"username" jsonschema:"description=Grantee user name"`
	PrivilegeType string   `json:"privilege_type" jsonschema:"description=Privilege kind,enum=system,enum=object"`
	Privileges    []string `json:"privileges" jsonschema:"description=Privilege names to grant"`
	Object        *string  `json:"object,omitempty" jsonschema:"description=Target object for object-level privileges"`
}

type RevokePrivilegesInput struct {
	Username   string   `json:"username" jsonschema:"description=User to revoke from"`
	Privileges []string `json:"privileges" jsonschema:"description=Privilege names to revoke"`
	Object     *string  `json:"object,omitempty" jsonschema:"description=Target object for object-level privileges"`
}

type ListTablesInput struct {
	Schema        *string `json:"schema,omitempty" jsonschema:"description=Schema to list tables from; defaults to the connected user"`
	IncludeSystem *bool   `json:"include_system,omitempty" jsonschema:"description=Include Oracle-maintained system tables,default=false"`
}

type DescribeTableInput struct {
	Table string `json:"table" jsonschema:"description=Table name"`
}

type ColumnInput struct {
	Name     string `json:"name" jsonschema:"description=Column name"`
	Type     string `json:"type" jsonschema:"description=Oracle column type, e.g. VARCHAR2(200), NUMBER(10,2)"`
	Nullable *bool  `json:"nullable,omitempty" jsonschema:"description=Whether the column allows NULL,default=true"`
}

type CreateTableInput struct {
	Table      string        `json:"table" jsonschema:"description=Table name"`
	Columns    []ColumnInput `json:"columns" jsonschema:"description=Column definitions"`
	PrimaryKey []string      `json:"primary_key,omitempty" jsonschema:"description=Column names forming the primary key"`
	Tablespace *string       `json:"tablespace,omitempty" jsonschema:"description=Tablespace to create the table in"`
}

type DropTableInput struct {
	Table   string `json:"table" jsonschema:"description=Table name"`
	Cascade *bool  `json:"cascade,omitempty" jsonschema:"description=Add CASCADE CONSTRAINTS,default=false"`
}

type TruncateTableInput struct {
	Table string `json:"table" jsonschema:"description=Table name"`
}

type AddColumnInput struct {
	Table  string      `json:"table" jsonschema:"description=Table name"`
	Column ColumnInput `json:"column" jsonschema:"description=Column to add"`
}

type DropColumnInput struct {
	Table  string `json:"table" jsonschema:"description=Table name"`
	Column string `json:"column" jsonschema:"description=Column name to drop"`
}

type CreateIndexInput struct {
	Table     string   `json:"table" jsonschema:"description=Table name"`
	IndexName string   `json:"index_name" jsonschema:"description=Index name"`
	Columns   []string `json:"columns" jsonschema:"description=Columns to index, in order"`
	Unique    *bool    `json:"unique,omitempty" jsonschema:"description=Create a UNIQUE index,default=false"`
}

type DropIndexInput struct {
	IndexName string `json:"index_name" jsonschema:"description=Index name to drop"`
}

type QueryRecordsInput struct {
	Table   string   `json:"table" jsonschema:"description=Table name"`
	Columns []string `json:"columns,omitempty" jsonschema:"description=Columns to select; defaults to all columns"`
	Where   *string  `json:"where,omitempty" jsonschema:"description=WHERE clause body, without the WHERE keyword"`
	OrderBy []string `json:"order_by,omitempty" jsonschema:"description=Columns to order by, in order"`
	Limit   *int64   `json:"limit,omitempty" jsonschema:"description=Maximum rows to return,default=100"`
}

type InsertRecordInput struct {
	Table  string         `json:"table" jsonschema:"description=Table name"`
	Values map[string]any `json:"values" jsonschema:"description=Column name to value map for the new row"`
}

type UpdateRecordsInput struct {
	Table string         `json:"table" jsonschema:"description=Table name"`
	Set   map[string]any `json:"set" jsonschema:"description=Column name to new-value map"`
	Where string         `json:"where" jsonschema:"description=WHERE clause body, without the WHERE keyword; required to avoid an unbounded update"`
}

type DeleteRecordsInput struct {
	Table string `json:"table" jsonschema:"description=Table name"`
	Where string `json:"where" jsonschema:"description=WHERE clause body, without the WHERE keyword; required to avoid an unbounded delete"`
}

// --- analytics ----------------------------------------------------------

type WindowFunctionsInput struct {
	Table       string   `json:"table" jsonschema:"description=Table name"`
	Function    string   `json:"function" jsonschema:"description=Analytic function,enum=ROW_NUMBER,enum=RANK,enum=DENSE_RANK,enum=NTILE,enum=LAG,enum=LEAD"`
	PartitionBy []string `json:"partition_by,omitempty" jsonschema:"description=Columns to partition by"`
	OrderBy     []string `json:"order_by,omitempty" jsonschema:"description=Columns to order by"`
	Parameters  []string `json:"parameters,omitempty" jsonschema:"description=Function arguments, e.g. NTILE's bucket count or LAG's offset column"`
}

type PivotOperationsInput struct {
	SourceQuery string   `json:"source_query" jsonschema:"description=Single-statement SELECT to pivot over"`
	PivotColumn string   `json:"pivot_column" jsonschema:"description=Column whose values become new columns"`
	Values      []string `json:"values" jsonschema:"description=Values of pivot_column to project as columns"`
}

type AggregateFunctionsInput struct {
	Table    string   `json:"table" jsonschema:"description=Table name"`
	Function string   `json:"function" jsonschema:"description=Aggregate function,enum=SUM,enum=AVG,enum=COUNT,enum=MIN,enum=MAX"`
	Column   string   `json:"column" jsonschema:"description=Column to aggregate"`
	GroupBy  []string `json:"group_by,omitempty" jsonschema:"description=Columns to group by"`
}

type RankFunctionsInput struct {
	Table       string   `json:"table" jsonschema:"description=Table name"`
	Function    string   `json:"function" jsonschema:"description=Ranking function,enum=RANK,enum=DENSE_RANK,enum=ROW_NUMBER,enum=NTILE"`
	PartitionBy []string `json:"partition_by,omitempty" jsonschema:"description=Columns to partition by"`
	OrderBy     []string `json:"order_by,omitempty" jsonschema:"description=Columns to order by"`
	Parameters  []string `json:"parameters,omitempty" jsonschema:"description=Function arguments, e.g. NTILE's bucket count"`
}

type UnpivotOperationsInput struct {
	SourceQuery string   `json:"source_query" jsonschema:"description=Single-statement SELECT to unpivot over"`
	ValueColumn string   `json:"value_column" jsonschema:"description=Name for the generated value column"`
	NameColumn  string   `json:"name_column" jsonschema:"description=Name for the generated column-name column"`
	Columns     []string `json:"columns" jsonschema:"description=Columns to unpivot into rows"`
}

type StatisticalFunctionsInput struct {
	Table    string `json:"table" jsonschema:"description=Table name"`
	Function string `json:"function" jsonschema:"description=Statistical function,enum=STDDEV,enum=VARIANCE,enum=CORR,enum=REGR_SLOPE,enum=MEDIAN"`
	Column   string `json:"column" jsonschema:"description=Column to compute the statistic over"`
	Column2  *string `json:"column2,omitempty" jsonschema:"description=Second column, for two-argument functions such as CORR/REGR_SLOPE"`
	GroupBy  []string `json:"group_by,omitempty" jsonschema:"description=Columns to group by"`
}

type TimeSeriesAnalysisInput struct {
	Table      string `json:"table" jsonschema:"description=Table name"`
	DateColumn string `json:"date_column" jsonschema:"description=Column holding the time series timestamp"`
	ValueColumn string `json:"value_column" jsonschema:"description=Column holding the measured value"`
	Interval   string `json:"interval" jsonschema:"description=Bucketing interval,enum=day,enum=week,enum=month,enum=quarter,enum=year"`
}

type CorrelationAnalysisInput struct {
	Table   string `json:"table" jsonschema:"description=Table name"`
	ColumnA string `json:"column_a" jsonschema:"description=First numeric column"`
	ColumnB string `json:"column_b" jsonschema:"description=Second numeric column"`
}

// --- ai (vector, 23c+) --------------------------------------------------

type VectorSearchInput struct {
	Table        string    `json:"table" jsonschema:"description=Table holding the vector column"`
	VectorColumn string    `json:"vector_column" jsonschema:"description=VECTOR-typed column"`
	QueryVector  []float64 `json:"query_vector" jsonschema:"description=Query embedding"`
	Metric       string    `json:"metric" jsonschema:"description=Distance metric,enum=cosine,enum=euclidean,enum=manhattan,default=cosine"`
	TopK         int64     `json:"top_k" jsonschema:"description=Number of nearest neighbors to return,minimum=1,maximum=1000"`
}

type VectorSimilarityInput struct {
	Table        string    `json:"table" jsonschema:"description=Table holding the vector column"`
	VectorColumn string    `json:"vector_column" jsonschema:"description=VECTOR-typed column"`
	VectorA      []float64 `json:"vector_a" jsonschema:"description=First comparison vector"`
	VectorB      []float64 `json:"vector_b" jsonschema:"description=Second comparison vector"`
	Metric       string    `json:"metric" jsonschema:"description=Distance metric,enum=cosine,enum=euclidean,enum=manhattan,default=cosine"`
}

type CreateVectorIndexInput struct {
	Table        string `json:"table" jsonschema:"description=Table holding the vector column"`
	VectorColumn string `json:"vector_column" jsonschema:"description=VECTOR-typed column to index"`
	IndexName    string `json:"index_name" jsonschema:"description=Index name"`
	Organization string `json:"organization" jsonschema:"description=Vector index organization,enum=INMEMORY_NEIGHBOR_GRAPH,enum=NEIGHBOR_PARTITIONS"`
	Metric       string `json:"metric" jsonschema:"description=Distance metric,enum=cosine,enum=euclidean,enum=manhattan,default=cosine"`
}

type HybridSearchInput struct {
	Table        string    `json:"table" jsonschema:"description=Table holding both the text and vector columns"`
	TextColumn   string    `json:"text_column" jsonschema:"description=Column to full-text match against"`
	VectorColumn string    `json:"vector_column" jsonschema:"description=VECTOR-typed column"`
	QueryText    string    `json:"query_text" jsonschema:"description=Free-text query"`
	QueryVector  []float64 `json:"query_vector" jsonschema:"description=Query embedding"`
	TopK         int64     `json:"top_k" jsonschema:"description=Number of results to return,minimum=1,maximum=1000"`
}

// --- security -----------------------------------------------------------

type ListRolesInput struct{}

type CreateRoleInput struct {
	RoleName string `json:"role_name" jsonschema:"description=Role name to create"`
}

type GrantRoleInput struct {
	RoleName string `json:"role_name" jsonschema:"description=Role to grant"`
	Grantee  string `json:"grantee" jsonschema:"description=User or role receiving the grant"`
}

type CreateVpdPolicyInput struct {
	Table          string `json:"table" jsonschema:"description=Table the policy protects"`
	PolicyName     string `json:"policy_name" jsonschema:"description=Policy name"`
	FunctionSchema string `json:"function_schema" jsonschema:"description=Schema owning the policy predicate function"`
	FunctionName   string `json:"function_name" jsonschema:"description=Function returning the row-level predicate"`
	StatementTypes []string `json:"statement_types,omitempty" jsonschema:"description=Statement types the policy applies to,default=SELECT"`
}

type EnableTdeTablespaceInput struct {
	TablespaceName string `json:"tablespace_name" jsonschema:"description=Tablespace to encrypt"`
	Algorithm      string `json:"algorithm,omitempty" jsonschema:"description=Encryption algorithm,enum=AES128,enum=AES192,enum=AES256,default=AES256"`
}

type AuditPolicyStatusInput struct {
	PolicyName *string `json:"policy_name,omitempty" jsonschema:"description=Restrict to a single unified audit policy; omit for all"`
}

type ListVaultPoliciesInput struct{}

// --- performance ----------------------------------------------------------

type AwrSnapshotInput struct {
	Operation  string `json:"operation" jsonschema:"description=AWR action,enum=take,enum=report"`
	BeginSnapID *int64 `json:"begin_snap_id,omitempty" jsonschema:"description=Starting snapshot id for a report"`
	EndSnapID   *int64 `json:"end_snap_id,omitempty" jsonschema:"description=Ending snapshot id for a report"`
}

type ExplainPlanInput struct {
	SQLText string `json:"sql_text" jsonschema:"description=Single SELECT statement to explain"`
}

type GatherTableStatsInput struct {
	Table           string   `json:"table" jsonschema:"description=Table name"`
	EstimatePercent *float64 `json:"estimate_percent,omitempty" jsonschema:"description=Sample percentage for stats estimation,default=10"`
}

type AwrReportInput struct {
	BeginSnapID int64  `json:"begin_snap_id" jsonschema:"description=Starting snapshot id"`
	EndSnapID   int64  `json:"end_snap_id" jsonschema:"description=Ending snapshot id"`
	ReportType  string `json:"report_type,omitempty" jsonschema:"description=Report format,enum=text,enum=html,default=text"`
}

type SqlTuningAdvisorInput struct {
	SQLText string  `json:"sql_text" jsonschema:"description=SQL statement to analyze"`
	TimeLimitSeconds *int64 `json:"time_limit_seconds,omitempty" jsonschema:"description=Advisor task time budget,default=60"`
}

type SessionWaitEventsInput struct {
	Sid *int64 `json:"sid,omitempty" jsonschema:"description=Restrict to a single session id; omit for all active sessions"`
}

type TopSqlByElapsedInput struct {
	TopN *int64 `json:"top_n,omitempty" jsonschema:"description=Number of statements to return,default=10,minimum=1,maximum=100"`
}

// --- privilege ------------------------------------------------------------

type ListSystemPrivilegesInput struct {
	Username string `json:"username" jsonschema:"description=User to inspect"`
}

type CheckUserPrivilegesInput struct {
	Username  string `json:"username" jsonschema:"description=User to inspect"`
	Privilege string `json:"privilege" jsonschema:"description=Privilege name to check for"`
}

type ListObjectPrivilegesInput struct {
	Grantee *string `json:"grantee,omitempty" jsonschema:"description=Restrict to a single grantee; omit for all"`
	Object  *string `json:"object,omitempty" jsonschema:"description=Restrict to a single object; omit for all"`
}

// --- diagnostic -------------------------------------------------------------

type ListPDBsInput struct{}

type OpenPDBInput struct {
	PDBName string `json:"pdb_name" jsonschema:"description=Pluggable database name"`
}

type ClosePDBInput struct {
	PDBName string `json:"pdb_name" jsonschema:"description=Pluggable database name"`
}

type CreatePDBInput struct {
	PDBName       string `json:"pdb_name" jsonschema:"description=New pluggable database name"`
	AdminUser     string `json:"admin_user" jsonschema:"description=PDB local admin user name"`
	AdminPassword string `json:"admin_password" jsonschema:"description=PDB local admin password"`
}

type TablespaceUsageInput struct {
	TablespaceName *string `json:"tablespace_name,omitempty" jsonschema:"description=Restrict to a single tablespace; omit for all"`
}

type AlertLogTailInput struct {
	Lines *int64 `json:"lines,omitempty" jsonschema:"description=Number of trailing lines to return,default=100,minimum=1,maximum=5000"`
}

type BlockingSessionsInput struct{}

type LongRunningQueriesInput struct {
	ThresholdSeconds *int64 `json:"threshold_seconds,omitempty" jsonschema:"description=Minimum elapsed seconds to be considered long-running,default=60"`
}

type DatafileStatusInput struct {
	TablespaceName *string `json:"tablespace_name,omitempty" jsonschema:"description=Restrict to a single tablespace; omit for all"`
}
