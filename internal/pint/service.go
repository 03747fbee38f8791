package pint

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rjschwei/public-cloud-info-service/internal/db"
	"github.com/rjschwei/public-cloud-info-service/internal/models"
	"github.com/rjschwei/public-cloud-info-service/internal/render"
)

// Service answers the lookup queries exposed over HTTP. Results are
// already normalized into their external document shape.
type Service interface {
	Providers(ctx context.Context) ([]render.Doc, error)
	AssertProvider(ctx context.Context, provider string) error
	ServerTypes(ctx context.Context, provider string) ([]render.Doc, error)
	Regions(ctx context.Context, provider string) ([]render.Doc, error)
	Servers(ctx context.Context, provider string) ([]render.Doc, error)
	ServersForType(ctx context.Context, provider, serverType string) ([]render.Doc, error)
	ServersForRegion(ctx context.Context, provider, region string) ([]render.Doc, error)
	ServersForRegionAndType(ctx context.Context, provider, region, serverType string) ([]render.Doc, error)
	Images(ctx context.Context, provider string) ([]render.Doc, error)
	ImagesForState(ctx context.Context, provider, state string) ([]render.Doc, error)
	ImagesForRegion(ctx context.Context, provider, region string) ([]render.Doc, error)
	ImagesForRegionAndState(ctx context.Context, provider, region, state string) ([]render.Doc, error)
	DataVersion(ctx context.Context, provider, category string) (render.Doc, error)
}

// backend is the storage access the dispatcher needs, kept narrow so the
// query paths can be exercised against canned rows.
type backend interface {
	selectStrings(ctx context.Context, query string, args ...any) ([]string, error)
	tableRows(ctx context.Context, table, where string, args []any) ([]map[string]any, error)
	regionMapRows(ctx context.Context) ([]models.MicrosoftRegionMap, error)
}

// Store implements Service over a backend.
type Store struct {
	db  backend
	log zerolog.Logger
}

// NewStore wires a Store over the provided connections.
func NewStore(orm *gorm.DB, pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{db: &sqlBackend{orm: orm, pool: pool}, log: log}
}

var _ Service = (*Store)(nil)

// versionTablePattern strips the category suffix from a versions row to
// recover the provider name.
var versionTablePattern = regexp.MustCompile(`((region|update)servers|images)`)

func (s *Store) supportedProviders(ctx context.Context) ([]string, error) {
	tables, err := s.db.selectStrings(ctx, `SELECT tablename FROM versions`)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(tables))
	providers := make([]string, 0, len(tables))
	for _, table := range tables {
		provider := versionTablePattern.ReplaceAllString(table, "")
		if _, ok := seen[provider]; ok {
			continue
		}
		seen[provider] = struct{}{}
		providers = append(providers, provider)
	}
	return providers, nil
}

// Providers lists every provider with at least one version row.
func (s *Store) Providers(ctx context.Context) ([]render.Doc, error) {
	providers, err := s.supportedProviders(ctx)
	if err != nil {
		return nil, err
	}
	return nameDocs(providers), nil
}

// AssertProvider fails with ErrNotFound unless the provider is known to
// the versions table.
func (s *Store) AssertProvider(ctx context.Context, provider string) error {
	providers, err := s.supportedProviders(ctx)
	if err != nil {
		return err
	}
	for _, p := range providers {
		if p == provider {
			return nil
		}
	}
	return ErrNotFound
}

// ServerTypes lists the server kinds a provider supports. Providers with
// no server tables report the legacy two-kind default.
func (s *Store) ServerTypes(_ context.Context, provider string) ([]render.Doc, error) {
	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}

	if len(schema.serverTables) == 0 {
		return nameDocs(legacyKindTokens), nil
	}

	docs := make([]render.Doc, 0, len(serverKindOrder))
	for _, kind := range serverKindOrder {
		docs = append(docs, render.Doc{"name": string(kind)})
	}
	return docs, nil
}

// Regions lists the valid region tokens for a provider. Only the
// alias-based provider's listing is sorted.
func (s *Store) Regions(ctx context.Context, provider string) ([]render.Doc, error) {
	regions, err := s.regionsFor(ctx, provider)
	if err != nil {
		return nil, err
	}
	return nameDocs(regions), nil
}

func (s *Store) regionsFor(ctx context.Context, provider string) ([]string, error) {
	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}

	if schema.aliasedRegions {
		rows, err := s.db.regionMapRows(ctx)
		if err != nil {
			return nil, err
		}
		return azureRegionTokens(rows), nil
	}

	seen := make(map[string]struct{})
	var regions []string
	collect := func(table string) error {
		found, err := s.db.selectStrings(ctx, fmt.Sprintf(`SELECT DISTINCT region FROM %s`, table))
		if err != nil {
			return err
		}
		for _, region := range found {
			if _, ok := seen[region]; ok {
				continue
			}
			seen[region] = struct{}{}
			regions = append(regions, region)
		}
		return nil
	}

	if table, ok := schema.serverTables[ServerKindRegion]; ok {
		if err := collect(table); err != nil {
			return nil, err
		}
	}
	if schema.imagesHaveRegion {
		if err := collect(schema.imagesTable); err != nil {
			return nil, err
		}
	}
	return regions, nil
}

// Servers lists every server row for the provider across both kinds.
func (s *Store) Servers(ctx context.Context, provider string) ([]render.Doc, error) {
	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}

	docs := []render.Doc{}
	for _, kind := range serverKindOrder {
		table, ok := schema.serverTables[kind]
		if !ok {
			continue
		}
		rows, err := s.db.tableRows(ctx, table, "", nil)
		if err != nil {
			return nil, err
		}
		docs = append(docs, normalizeDocs(rows, nil)...)
	}
	return docs, nil
}

// ServersForType lists servers of one kind. The kind token is validated
// before the provider's table support, so an unknown token is NotFound
// even for providers that serve the silent-empty fallback.
func (s *Store) ServersForType(ctx context.Context, provider, serverType string) ([]render.Doc, error) {
	kind, err := MapServerKind(serverType)
	if err != nil {
		return nil, err
	}

	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}
	if len(schema.serverTables) == 0 {
		return []render.Doc{}, nil
	}

	rows, err := s.db.tableRows(ctx, schema.serverTables[kind], "", nil)
	if err != nil {
		return nil, err
	}
	return normalizeDocs(rows, nil), nil
}

// ServersForRegion lists servers of both kinds within one region.
func (s *Store) ServersForRegion(ctx context.Context, provider, region string) ([]render.Doc, error) {
	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}
	if schema.aliasedRegions {
		return s.azureServers(ctx, region, "")
	}

	if err := s.assertRegion(ctx, provider, region); err != nil {
		return nil, err
	}

	docs := []render.Doc{}
	for _, kind := range serverKindOrder {
		table, ok := schema.serverTables[kind]
		if !ok {
			continue
		}
		rows, err := s.db.tableRows(ctx, table, "region = ?", []any{region})
		if err != nil {
			return nil, err
		}
		docs = append(docs, normalizeDocs(rows, nil)...)
	}
	return docs, nil
}

// ServersForRegionAndType lists servers of one kind within one region.
// Providers without server tables yield an empty list before the region
// is validated, matching the legacy check order.
func (s *Store) ServersForRegionAndType(ctx context.Context, provider, region, serverType string) ([]render.Doc, error) {
	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}
	if schema.aliasedRegions {
		return s.azureServers(ctx, region, serverType)
	}

	kind, err := MapServerKind(serverType)
	if err != nil {
		return nil, err
	}
	if len(schema.serverTables) == 0 {
		return []render.Doc{}, nil
	}

	if err := s.assertRegion(ctx, provider, region); err != nil {
		return nil, err
	}

	rows, err := s.db.tableRows(ctx, schema.serverTables[kind], "region = ?", []any{region})
	if err != nil {
		return nil, err
	}
	return normalizeDocs(rows, nil), nil
}

// Images lists every image row for the provider.
func (s *Store) Images(ctx context.Context, provider string) ([]render.Doc, error) {
	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.tableRows(ctx, schema.imagesTable, "", nil)
	if err != nil {
		return nil, err
	}
	return normalizeDocs(rows, nil), nil
}

// ImagesForState lists images in one lifecycle state. Unlike server
// queries there is no silent-empty fallback: a bogus state is NotFound.
func (s *Store) ImagesForState(ctx context.Context, provider, state string) ([]render.Doc, error) {
	if !models.ValidState(state) {
		return nil, ErrNotFound
	}

	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.tableRows(ctx, schema.imagesTable, "state = ?", []any{state})
	if err != nil {
		return nil, err
	}
	return normalizeDocs(rows, nil), nil
}

// ImagesForRegion lists images within one region. A provider whose images
// table lacks a region column yields an empty list once the region is
// validated.
func (s *Store) ImagesForRegion(ctx context.Context, provider, region string) ([]render.Doc, error) {
	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}
	if schema.aliasedRegions {
		return s.azureImages(ctx, region, "")
	}

	if err := s.assertRegion(ctx, provider, region); err != nil {
		return nil, err
	}
	if !schema.imagesHaveRegion {
		return []render.Doc{}, nil
	}

	rows, err := s.db.tableRows(ctx, schema.imagesTable, "region = ?", []any{region})
	if err != nil {
		return nil, err
	}
	return normalizeDocs(rows, nil), nil
}

// ImagesForRegionAndState lists images filtered by region and state. When
// the images table has no region column the region filter is ignored and
// only the state applies; this mirrors the legacy service.
func (s *Store) ImagesForRegionAndState(ctx context.Context, provider, region, state string) ([]render.Doc, error) {
	schema, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}
	if schema.aliasedRegions {
		return s.azureImages(ctx, region, state)
	}

	if !models.ValidState(state) {
		return nil, ErrNotFound
	}
	if err := s.assertRegion(ctx, provider, region); err != nil {
		return nil, err
	}

	if schema.imagesHaveRegion {
		rows, err := s.db.tableRows(ctx, schema.imagesTable, "region = ? AND state = ?", []any{region, state})
		if err != nil {
			return nil, err
		}
		return normalizeDocs(rows, nil), nil
	}

	rows, err := s.db.tableRows(ctx, schema.imagesTable, "state = ?", []any{state})
	if err != nil {
		return nil, err
	}
	return normalizeDocs(rows, nil), nil
}

// DataVersion reports the highest loader version across the tables
// backing a provider/category pair. Missing version rows are NotFound.
func (s *Store) DataVersion(ctx context.Context, provider, category string) (render.Doc, error) {
	if !ValidCategory(category) {
		return nil, ErrBadRequest
	}

	versions, err := s.db.selectStrings(ctx,
		`SELECT version::text FROM versions WHERE tablename = ANY($1)`,
		versionTablesFor(provider, category))
	if err != nil {
		return nil, err
	}

	version, ok := maxVersion(versions)
	if !ok {
		return nil, ErrNotFound
	}
	return render.Doc{"version": version}, nil
}

// maxVersion picks the numerically largest version while preserving its
// exact stored text.
func maxVersion(versions []string) (string, bool) {
	var (
		best    string
		bestVal float64
		found   bool
	)
	for _, v := range versions {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		if !found || val > bestVal {
			best, bestVal, found = v, val, true
		}
	}
	return best, found
}

// azureServers resolves the requested region token through the alias map
// and lists matching servers. Storage errors on the server lookup are
// reported as NotFound; the legacy service behaves the same way and
// monitoring depends on it.
func (s *Store) azureServers(ctx context.Context, region, serverType string) ([]render.Doc, error) {
	mapRows, err := s.db.regionMapRows(ctx)
	if err != nil {
		return nil, err
	}

	regions, _, ok := resolveAzureRegion(mapRows, region)
	if !ok {
		return nil, ErrNotFound
	}

	schema := providerSchemas["microsoft"]
	tables := make([]string, 0, len(serverKindOrder))
	if serverType != "" {
		kind, err := MapServerKind(serverType)
		if err != nil {
			return nil, err
		}
		tables = append(tables, schema.serverTables[kind])
	} else {
		for _, kind := range serverKindOrder {
			tables = append(tables, schema.serverTables[kind])
		}
	}

	docs := []render.Doc{}
	for _, table := range tables {
		rows, err := s.db.tableRows(ctx, table, "region IN ?", []any{regions})
		if err != nil {
			s.log.Debug().Err(err).Str("table", table).Msg("azure server lookup failed, reporting not found")
			return nil, ErrNotFound
		}
		docs = append(docs, normalizeDocs(rows, nil)...)
	}
	return docs, nil
}

// azureImages resolves the region token to its environment and lists
// matching images, echoing the requested region into each document. The
// state filter is applied unvalidated; an invalid state fails at the enum
// column and is reported as NotFound like every other storage error here.
func (s *Store) azureImages(ctx context.Context, region, state string) ([]render.Doc, error) {
	mapRows, err := s.db.regionMapRows(ctx)
	if err != nil {
		return nil, err
	}

	_, environment, ok := resolveAzureRegion(mapRows, region)
	if !ok {
		return nil, ErrNotFound
	}

	schema := providerSchemas["microsoft"]
	where := "environment = ?"
	args := []any{environment}
	if state != "" {
		where += " AND state = ?"
		args = append(args, state)
	}

	rows, err := s.db.tableRows(ctx, schema.imagesTable, where, args)
	if err != nil {
		s.log.Debug().Err(err).Msg("azure image lookup failed, reporting not found")
		return nil, ErrNotFound
	}
	return normalizeDocs(rows, map[string]any{"region": region}), nil
}

func (s *Store) assertRegion(ctx context.Context, provider, region string) error {
	regions, err := s.regionsFor(ctx, provider)
	if err != nil {
		return err
	}
	for _, r := range regions {
		if r == region {
			return nil
		}
	}
	return ErrNotFound
}

// sqlBackend is the production backend: GORM for table and region-map
// lookups, the pgx pool for single-column queries.
type sqlBackend struct {
	orm  *gorm.DB
	pool *pgxpool.Pool
}

var _ backend = (*sqlBackend)(nil)

func (b *sqlBackend) selectStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	var values []string
	if err := db.Select(ctx, b.pool, &values, query, args...); err != nil {
		return nil, err
	}
	return values, nil
}

func (b *sqlBackend) regionMapRows(ctx context.Context) ([]models.MicrosoftRegionMap, error) {
	var rows []models.MicrosoftRegionMap
	ctx, cancel := context.WithTimeout(ctx, db.DefaultTimeout)
	defer cancel()

	if err := b.orm.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// tableRows fetches raw column maps so each provider's documents carry
// exactly its table's columns.
func (b *sqlBackend) tableRows(ctx context.Context, table, where string, args []any) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, db.DefaultTimeout)
	defer cancel()

	rows := []map[string]any{}
	tx := b.orm.WithContext(ctx).Table(table)
	if where != "" {
		tx = tx.Where(where, args...)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func nameDocs(names []string) []render.Doc {
	docs := make([]render.Doc, 0, len(names))
	for _, name := range names {
		docs = append(docs, render.Doc{"name": name})
	}
	return docs
}
