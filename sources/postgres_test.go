package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plumage/retrieval"
)

func TestPostgreSQLGroupKeyIsDatabaseLevel(t *testing.T) {
	config := PostgreSQLConfig{EnvVar: "PSQL_URL"}
	orders := NewPostgreSQLSource(config, "orders")
	users := NewPostgreSQLSource(config, "users")
	elsewhere := NewPostgreSQLSource(PostgreSQLConfig{EnvVar: "OTHER_URL"}, "orders")

	// Two tables in one database share a group: one statement can serve
	// both with separate CTEs.
	assert.Equal(t, orders.JobGroupKey(), users.JobGroupKey())
	assert.Equal(t, "psql/PSQL_URL", orders.JobGroupKey())
	assert.NotEqual(t, orders.JobGroupKey(), elsewhere.JobGroupKey())
	assert.Equal(t, TypeNamePostgreSQL, orders.TypeName())
}

func TestPostgreSQLFeatureIdentifiers(t *testing.T) {
	source := NewPostgreSQLSource(PostgreSQLConfig{EnvVar: "PSQL_URL"}, "orders")
	source.MappingKeys = map[string]string{"total": "order_total"}

	physical, err := source.FeatureIdentifiersFor([]string{"total", "user_id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"order_total", "user_id"}, physical)
}

func TestPostgreSQLColumnAllowList(t *testing.T) {
	source := NewPostgreSQLSource(PostgreSQLConfig{EnvVar: "PSQL_URL"}, "orders")
	source.Columns = map[string]bool{"user_id": true, "total": true}

	_, err := source.FeatureIdentifiersFor([]string{"user_id", "total"})
	require.NoError(t, err)

	_, err = source.FeatureIdentifiersFor([]string{"secret"})
	assert.ErrorIs(t, err, retrieval.ErrUnknownColumn)
}

func TestPostgreSQLConfigURL(t *testing.T) {
	config := PostgreSQLConfig{EnvVar: "PLUMAGE_TEST_PSQL_URL"}

	_, err := config.URL()
	require.Error(t, err)

	t.Setenv("PLUMAGE_TEST_PSQL_URL", "postgresql://localhost:5432/app")
	url, err := config.URL()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://localhost:5432/app", url)
}
