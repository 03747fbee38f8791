package pint

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjschwei/public-cloud-info-service/internal/models"
	"github.com/rjschwei/public-cloud-info-service/internal/render"
)

// fakeBackend serves canned rows and applies the dispatcher's where
// clauses in memory.
type fakeBackend struct {
	tablenames []string
	versions   []string
	regionMap  []models.MicrosoftRegionMap
	tables     map[string][]map[string]any
}

var _ backend = (*fakeBackend)(nil)

func (f *fakeBackend) selectStrings(_ context.Context, query string, _ ...any) ([]string, error) {
	if strings.HasPrefix(query, "SELECT version::text") {
		return f.versions, nil
	}
	return f.tablenames, nil
}

func (f *fakeBackend) regionMapRows(context.Context) ([]models.MicrosoftRegionMap, error) {
	return f.regionMap, nil
}

func (f *fakeBackend) tableRows(_ context.Context, table, where string, args []any) ([]map[string]any, error) {
	out := []map[string]any{}
	for _, row := range f.tables[table] {
		switch where {
		case "":
			out = append(out, row)
		case "region = ?":
			if row["region"] == args[0] {
				out = append(out, row)
			}
		case "state = ?":
			if row["state"] == args[0] {
				out = append(out, row)
			}
		case "region = ? AND state = ?":
			if row["region"] == args[0] && row["state"] == args[1] {
				out = append(out, row)
			}
		case "region IN ?":
			for _, region := range args[0].([]string) {
				if row["region"] == region {
					out = append(out, row)
					break
				}
			}
		case "environment = ?":
			if row["environment"] == args[0] {
				out = append(out, row)
			}
		case "environment = ? AND state = ?":
			if row["environment"] == args[0] && row["state"] == args[1] {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func azureBackend() *fakeBackend {
	return &fakeBackend{
		regionMap: regionMapFixture(),
		tables: map[string][]map[string]any{
			"microsoftregionservers": {
				{"id": 1, "name": "", "shape": "", "ip": "10.0.0.1", "region": "eastus"},
				{"id": 2, "name": "", "shape": "", "ip": "10.0.0.2", "region": "westeurope"},
			},
			"microsoftupdateservers": {
				{"id": 3, "name": "smt-azure.susecloud.net", "shape": "", "ip": "10.0.1.1", "region": "useast"},
			},
			"microsoftimages": {
				{"name": "sles-15-sp6", "environment": "PublicAzure", "state": "active", "urn": ""},
				{"name": "sles-12-sp5", "environment": "PublicAzure", "state": "deprecated", "urn": ""},
				{"name": "sles-15-sp6", "environment": "MicrosoftAzureGermany", "state": "active", "urn": ""},
			},
		},
	}
}

// The checks below exercise the dispatcher paths that resolve before any
// storage access, so a zero-value Store suffices.

func TestServerTypesListing(t *testing.T) {
	s := &Store{}

	docs, err := s.ServerTypes(context.Background(), "amazon")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "region", docs[0]["name"])
	assert.Equal(t, "update", docs[1]["name"])
}

func TestServerTypesLegacyDefault(t *testing.T) {
	s := &Store{}

	for _, provider := range []string{"alibaba", "oracle"} {
		docs, err := s.ServerTypes(context.Background(), provider)
		require.NoError(t, err, provider)
		require.Len(t, docs, 2, provider)
		assert.Equal(t, "smt", docs[0]["name"])
		assert.Equal(t, "regionserver", docs[1]["name"])
	}
}

func TestServersForTypeWithoutServerTables(t *testing.T) {
	s := &Store{}

	docs, err := s.ServersForType(context.Background(), "alibaba", "smt")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestServersForTypeUnknownKind(t *testing.T) {
	s := &Store{}

	_, err := s.ServersForType(context.Background(), "amazon", "smtserver")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServersForRegionAndTypeUnknownKind(t *testing.T) {
	s := &Store{}

	_, err := s.ServersForRegionAndType(context.Background(), "amazon", "us-east-1", "bogus")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestImagesForStateRejectsUnknownState(t *testing.T) {
	s := &Store{}

	_, err := s.ImagesForState(context.Background(), "amazon", "retired")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDataVersionRejectsUnknownCategory(t *testing.T) {
	s := &Store{}

	_, err := s.DataVersion(context.Background(), "amazon", "regions")
	require.ErrorIs(t, err, ErrBadRequest)

	_, err = s.DataVersion(context.Background(), "amazon", "")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestProvidersDerivedFromVersionRows(t *testing.T) {
	s := &Store{db: &fakeBackend{tablenames: []string{
		"amazonimages",
		"amazonregionservers",
		"amazonupdateservers",
		"googleimages",
		"oracleimages",
	}}}

	docs, err := s.Providers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []render.Doc{
		{"name": "amazon"},
		{"name": "google"},
		{"name": "oracle"},
	}, docs)

	require.NoError(t, s.AssertProvider(context.Background(), "google"))
	require.ErrorIs(t, s.AssertProvider(context.Background(), "microsoft"), ErrNotFound)
}

func TestAzureServersSameForEveryClassToken(t *testing.T) {
	s := &Store{db: azureBackend()}

	var want []render.Doc
	for _, token := range []string{"useast", "eastus", "East US"} {
		docs, err := s.ServersForRegion(context.Background(), "microsoft", token)
		require.NoError(t, err, token)
		require.Len(t, docs, 2, token)

		if want == nil {
			want = docs
			assert.Equal(t, "region", docs[0]["type"])
			assert.Equal(t, "", docs[0]["name"])
			assert.Equal(t, "update", docs[1]["type"])
			assert.Equal(t, "smt-azure.susecloud.net", docs[1]["name"])
			continue
		}
		assert.Equal(t, want, docs, token)
	}
}

func TestAzureServersUnknownRegion(t *testing.T) {
	s := &Store{db: azureBackend()}

	_, err := s.ServersForRegion(context.Background(), "microsoft", "moonbase")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAzureServerStorageErrorIsNotFound(t *testing.T) {
	s := &Store{db: &erroringTables{fakeBackend: &fakeBackend{regionMap: regionMapFixture()}}}

	_, err := s.ServersForRegionAndType(context.Background(), "microsoft", "useast", "smt")
	require.ErrorIs(t, err, ErrNotFound)
}

// erroringTables fails every table read while leaving the region map
// reachable, mimicking a broken server table.
type erroringTables struct {
	*fakeBackend
}

func (e *erroringTables) tableRows(context.Context, string, string, []any) ([]map[string]any, error) {
	return nil, assert.AnError
}

func TestAzureImagesFilterByEnvironmentAndEchoRegion(t *testing.T) {
	s := &Store{db: azureBackend()}

	docs, err := s.ImagesForRegion(context.Background(), "microsoft", "East US")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, "East US", doc["region"])
		assert.Equal(t, "PublicAzure", doc["environment"])
	}

	docs, err = s.ImagesForRegionAndState(context.Background(), "microsoft", "germanycentral", "active")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "germanycentral", docs[0]["region"])
	assert.Equal(t, "MicrosoftAzureGermany", docs[0]["environment"])
}

func TestDataVersionPicksMaxAcrossTables(t *testing.T) {
	s := &Store{db: &fakeBackend{versions: []string{"2.9", "10.1", "9.9"}}}

	doc, err := s.DataVersion(context.Background(), "amazon", "servers")
	require.NoError(t, err)
	assert.Equal(t, render.Doc{"version": "10.1"}, doc)
}

func TestDataVersionMissingRowIsNotFound(t *testing.T) {
	s := &Store{db: &fakeBackend{}}

	_, err := s.DataVersion(context.Background(), "oracle", "images")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMaxVersion(t *testing.T) {
	version, ok := maxVersion([]string{"1.5", "1.10"})
	require.True(t, ok)
	assert.Equal(t, "1.10", version)

	_, ok = maxVersion(nil)
	assert.False(t, ok)
}

func TestVersionTablePattern(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{table: "amazonimages", want: "amazon"},
		{table: "googleregionservers", want: "google"},
		{table: "microsoftupdateservers", want: "microsoft"},
		{table: "oracleimages", want: "oracle"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, versionTablePattern.ReplaceAllString(tt.table, ""))
	}
}
