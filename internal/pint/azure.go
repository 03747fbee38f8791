package pint

import (
	"sort"

	"github.com/rjschwei/public-cloud-info-service/internal/models"
)

// azureRegionTokens returns the full region listing for the alias-based
// provider: the sorted, deduplicated union of every primary region token
// and every canonical name. Listing canonical names alongside primaries
// is a legacy behavior clients depend on.
func azureRegionTokens(rows []models.MicrosoftRegionMap) []string {
	seen := make(map[string]struct{}, len(rows)*2)
	tokens := make([]string, 0, len(rows)*2)

	add := func(token string) {
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	for _, row := range rows {
		add(row.Region)
		add(row.CanonicalName)
	}

	sort.Strings(tokens)
	return tokens
}

// resolveAzureRegion matches a requested token against both the primary
// region and canonical name columns, then expands the match into its
// full equivalence class. It returns every member region token and the
// matched row's environment (the key Azure images are stored under).
func resolveAzureRegion(rows []models.MicrosoftRegionMap, token string) (regions []string, environment string, ok bool) {
	var match *models.MicrosoftRegionMap
	for i := range rows {
		if rows[i].Region == token || rows[i].CanonicalName == token {
			match = &rows[i]
			break
		}
	}
	if match == nil {
		return nil, "", false
	}

	seen := make(map[string]struct{})
	for _, row := range rows {
		if row.CanonicalName != match.CanonicalName {
			continue
		}
		if _, dup := seen[row.Region]; dup {
			continue
		}
		seen[row.Region] = struct{}{}
		regions = append(regions, row.Region)
	}

	return regions, match.Environment, true
}
