// Package pint implements the query core: the schema registry describing
// each provider's tables, the region resolver, the query dispatcher, and
// the response normalizer.
package pint

import "fmt"

// ServerKind distinguishes region-detection servers from update servers.
type ServerKind string

const (
	ServerKindRegion ServerKind = "region"
	ServerKindUpdate ServerKind = "update"
)

// Categories accepted by the category routes and the dataversion query.
const (
	CategoryImages  = "images"
	CategoryServers = "servers"
)

// ValidCategory reports whether category names a supported collection.
func ValidCategory(category string) bool {
	return category == CategoryImages || category == CategoryServers
}

// serverKindAliases maps every accepted request token, including the
// legacy smt/regionserver spellings, onto a server kind.
var serverKindAliases = map[string]ServerKind{
	"smt":               ServerKindUpdate,
	"update":            ServerKindUpdate,
	"regionserver":      ServerKindRegion,
	"regionserver-sap":  ServerKindRegion,
	"regionserver-sles": ServerKindRegion,
	"region":            ServerKindRegion,
}

// MapServerKind normalizes a requested server-kind token. Unknown tokens
// yield ErrNotFound.
func MapServerKind(token string) (ServerKind, error) {
	kind, ok := serverKindAliases[token]
	if !ok {
		return "", ErrNotFound
	}
	return kind, nil
}

// serverKindOrder fixes the iteration order when a query spans both
// server tables.
var serverKindOrder = []ServerKind{ServerKindRegion, ServerKindUpdate}

// legacyKindTokens is the kind listing served for providers without
// server tables, kept for compatibility with pre-split clients.
var legacyKindTokens = []string{"smt", "regionserver"}

// providerSchema describes one provider's table layout.
type providerSchema struct {
	imagesTable      string
	imagesHaveRegion bool
	aliasedRegions   bool
	serverTables     map[ServerKind]string
}

var providerSchemas = map[string]providerSchema{
	"amazon": {
		imagesTable:      "amazonimages",
		imagesHaveRegion: true,
		serverTables: map[ServerKind]string{
			ServerKindRegion: "amazonregionservers",
			ServerKindUpdate: "amazonupdateservers",
		},
	},
	"google": {
		imagesTable: "googleimages",
		serverTables: map[ServerKind]string{
			ServerKindRegion: "googleregionservers",
			ServerKindUpdate: "googleupdateservers",
		},
	},
	"microsoft": {
		imagesTable:    "microsoftimages",
		aliasedRegions: true,
		serverTables: map[ServerKind]string{
			ServerKindRegion: "microsoftregionservers",
			ServerKindUpdate: "microsoftupdateservers",
		},
	},
	"alibaba": {
		imagesTable:      "alibabaimages",
		imagesHaveRegion: true,
	},
	"oracle": {
		imagesTable: "oracleimages",
	},
}

func schemaFor(provider string) (providerSchema, error) {
	schema, ok := providerSchemas[provider]
	if !ok {
		return providerSchema{}, fmt.Errorf("no schema registered for provider %q", provider)
	}
	return schema, nil
}

// versionTablesFor returns the logical table names whose version rows
// cover the given provider/category pair.
func versionTablesFor(provider, category string) []string {
	if category == CategoryImages {
		return []string{provider + "images"}
	}
	return []string{provider + "updateservers", provider + "regionservers"}
}
