package pint

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/rjschwei/public-cloud-info-service/internal/render"
)

// normalizeRow converts a raw table row into its external document shape.
//
// Two quirks are load-bearing for client compatibility: urn and changeinfo
// are omitted entirely when empty, while every other empty value is
// emitted as ""; and the stored shape flag is never exposed directly but
// folded into a synthesized type field.
func normalizeRow(row map[string]any, extra map[string]any) render.Doc {
	doc := render.Doc{}

	for key, value := range row {
		k := strings.ToLower(key)
		switch k {
		case "urn", "changeinfo":
			if s := scalarString(value); s != "" {
				doc[k] = s
			}
		case "shape":
			// folded into type below
		default:
			doc[k] = normalizeValue(value)
		}
	}

	if _, ok := row["shape"]; ok {
		kind, typ, name := SynthesizeServerType(scalarString(row["name"]), scalarString(row["shape"]))
		doc["type"] = typ
		if kind == ServerKindRegion {
			doc["name"] = name
		}
	}

	for k, v := range extra {
		doc[k] = v
	}

	return doc
}

// SynthesizeServerType derives the external type token and output name
// from a server row's stored name and shape. A populated name marks an
// update server; region servers always report an empty name.
func SynthesizeServerType(name, shape string) (ServerKind, string, string) {
	kind := ServerKindRegion
	if name != "" {
		kind = ServerKindUpdate
	}

	typ := string(kind)
	if shape != "" {
		typ += "-" + shape
	}

	if kind == ServerKindRegion {
		name = ""
	}
	return kind, typ, name
}

func normalizeDocs(rows []map[string]any, extra map[string]any) []render.Doc {
	docs := make([]render.Doc, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, normalizeRow(row, extra))
	}
	return docs
}

// normalizeValue renders a scanned column value for the wire: dates as
// YYYYMMDD, nulls as empty strings, inet values as bare addresses,
// numbers unchanged.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("20060102")
	case int, int32, int64, float32, float64:
		return val
	case netip.Addr:
		return val.String()
	case netip.Prefix:
		// inet host values must not carry a /32 or /128 mask
		if val.Bits() == val.Addr().BitLen() {
			return val.Addr().String()
		}
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
