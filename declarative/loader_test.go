package declarative

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plumage/domain"
	"plumage/retrieval"
)

const ordersYAML = `apiVersion: plumage/v1
kind: FeatureView
metadata:
  name: orders
source:
  kind: psql
  envVar: PSQL_URL
  table: orders
  schema: shop
  mapping:
    total: order_total
entities:
  - name: user_id
    type: int64
features:
  - name: total
    type: float
    required: true
    lowerBound: 0
  - name: status
    type: string
    acceptedValues: [open, closed]
eventTimestamp:
  name: created_at
  ttlSeconds: 86400
`

func writeDefinition(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeDefinition(t, t.TempDir(), "orders.yaml", ordersYAML)

	view, err := LoadFile(path)
	require.NoError(t, err)

	compiled := view.Compiled
	assert.Equal(t, domain.FeatureViewLocation("orders"), compiled.Location)

	require.Len(t, compiled.Entities, 1)
	assert.Equal(t, "user_id", compiled.Entities[0].Name)
	assert.Equal(t, domain.TypeInt64, compiled.Entities[0].DType)

	require.Len(t, compiled.Features, 2)
	byName := map[string]domain.Feature{}
	for _, f := range compiled.Features {
		byName[f.Name] = f
	}
	assert.True(t, byName["total"].Constraints.Contains(domain.Required{}))
	assert.True(t, byName["total"].Constraints.Contains(domain.LowerBoundInclusive{Value: 0}))
	assert.True(t, byName["status"].Constraints.Contains(domain.InDomain{Values: []string{"open", "closed"}}))

	require.NotNil(t, compiled.EventTimestamp)
	assert.Equal(t, "created_at", compiled.EventTimestamp.Name)
	assert.Equal(t, float64(86400), compiled.EventTimestamp.TTLSeconds)

	source, ok := view.Source.(retrieval.RelationalSource)
	require.True(t, ok)
	assert.Equal(t, "orders", source.Table())
	assert.Equal(t, "shop", source.Schema())
	physical, err := source.FeatureIdentifiersFor([]string{"total"})
	require.NoError(t, err)
	assert.Equal(t, []string{"order_total"}, physical)

	request := view.Request()
	assert.Equal(t, []string{"user_id"}, request.EntityNames())
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	path := writeDefinition(t, t.TempDir(), "bad.yaml", `apiVersion: plumage/v1
kind: FeatureView
metadata:
  name: bad
  owner: someone
entities:
  - name: id
    type: int64
`)
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner")

	// Lax mode accepts the same document.
	view, err := LoadFileWithOptions(path, LoadOptions{AllowUnknownFields: true})
	require.NoError(t, err)
	assert.Equal(t, "bad", view.Document.Metadata.Name)
}

func TestLoadFileValidation(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"wrong api version", "apiVersion: plumage/v2\nkind: FeatureView\nmetadata:\n  name: x\nentities:\n  - name: id\n    type: int64\n", "apiVersion"},
		{"wrong kind", "apiVersion: plumage/v1\nkind: Model\nmetadata:\n  name: x\nentities:\n  - name: id\n    type: int64\n", "kind"},
		{"missing name", "apiVersion: plumage/v1\nkind: FeatureView\nmetadata: {}\nentities:\n  - name: id\n    type: int64\n", "metadata.name"},
		{"no entities", "apiVersion: plumage/v1\nkind: FeatureView\nmetadata:\n  name: x\n", "entity"},
		{"bad type", "apiVersion: plumage/v1\nkind: FeatureView\nmetadata:\n  name: x\nentities:\n  - name: id\n    type: decimal\n", "unsupported type"},
		{"bounds on string", "apiVersion: plumage/v1\nkind: FeatureView\nmetadata:\n  name: x\nentities:\n  - name: id\n    type: int64\nfeatures:\n  - name: s\n    type: string\n    lowerBound: 1\n", "bounds"},
		{"length on float", "apiVersion: plumage/v1\nkind: FeatureView\nmetadata:\n  name: x\nentities:\n  - name: id\n    type: int64\nfeatures:\n  - name: f\n    type: float\n    minLength: 1\n", "length"},
		{"bad source kind", "apiVersion: plumage/v1\nkind: FeatureView\nmetadata:\n  name: x\nsource:\n  kind: kafka\nentities:\n  - name: id\n    type: int64\n", "kind"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeDefinition(t, dir, tc.name+".yaml", tc.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "b_orders.yaml", ordersYAML)
	writeDefinition(t, dir, "a_users.yml", `apiVersion: plumage/v1
kind: FeatureView
metadata:
  name: users
source:
  kind: csv
  path: data/users.csv
entities:
  - name: user_id
    type: int64
features:
  - name: age
    type: int32
`)
	writeDefinition(t, dir, "notes.txt", "not yaml")

	views, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, views, 2)
	// Sorted by file name, not definition name.
	assert.Equal(t, "users", views[0].Document.Metadata.Name)
	assert.Equal(t, "orders", views[1].Document.Metadata.Name)
}

func TestLoadDirectoryRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "one.yaml", ordersYAML)
	writeDefinition(t, dir, "two.yaml", ordersYAML)

	_, err := LoadDirectory(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}
