package sources

import (
	"fmt"
	"os"

	"plumage/retrieval"
)

// TypeNamePostgreSQL is the source-kind discriminator for PostgreSQL
// tables.
const TypeNamePostgreSQL = "psql"

// PostgreSQLConfig names the environment variable carrying the connection
// URL. The core never connects; the reference is handed to the external
// executor together with the generated query.
type PostgreSQLConfig struct {
	EnvVar string
}

// URL reads the connection URL from the environment.
func (c PostgreSQLConfig) URL() (string, error) {
	url := os.Getenv(c.EnvVar)
	if url == "" {
		return "", fmt.Errorf("sources: environment variable %s is not set", c.EnvVar)
	}
	return url, nil
}

// PostgreSQLSource is one table inside a PostgreSQL database. All sources
// sharing a config point at the same instance and group into one query.
type PostgreSQLSource struct {
	Config      PostgreSQLConfig
	TableName   string
	SchemaName  string
	MappingKeys map[string]string
	// Columns, when set, is the allow-list of physical columns; resolving
	// a name outside it fails with ErrUnknownColumn.
	Columns map[string]bool
}

// NewPostgreSQLSource returns a source for a table reachable through the
// config.
func NewPostgreSQLSource(config PostgreSQLConfig, table string) *PostgreSQLSource {
	return &PostgreSQLSource{Config: config, TableName: table}
}

// TypeName implements retrieval.BatchSource.
func (s *PostgreSQLSource) TypeName() string { return TypeNamePostgreSQL }

// JobGroupKey implements retrieval.BatchSource. The key is the database,
// not the table: requests against different tables of one instance can be
// answered by a single statement with one CTE per table.
func (s *PostgreSQLSource) JobGroupKey() string {
	return TypeNamePostgreSQL + "/" + s.Config.EnvVar
}

// Table implements retrieval.RelationalSource.
func (s *PostgreSQLSource) Table() string { return s.TableName }

// Schema implements retrieval.RelationalSource.
func (s *PostgreSQLSource) Schema() string { return s.SchemaName }

// FeatureIdentifiersFor implements retrieval.ColumnMappable.
func (s *PostgreSQLSource) FeatureIdentifiersFor(names []string) ([]string, error) {
	resolve := mappingResolver(s.MappingKeys)
	out := make([]string, len(names))
	for i, name := range names {
		physical := resolve(name)
		if s.Columns != nil && !s.Columns[physical] {
			return nil, fmt.Errorf("%w: %q", retrieval.ErrUnknownColumn, name)
		}
		out[i] = physical
	}
	return out, nil
}
