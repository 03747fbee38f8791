// Package render emits query results in the wire representations clients
// expect: a JSON envelope keyed by collection name, or a pretty-printed
// XML document with one attribute-bearing element per result.
package render

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Doc is one normalized result: a flat mapping of field name to value.
type Doc map[string]any

// Format selects the response representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

const (
	xmlHeader       = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"
	contentTypeXML  = "application/xml;charset=utf-8"
	contentTypeJSON = "application/json"
)

type formatKey struct{}

// WithFormat records the negotiated representation on the context.
func WithFormat(ctx context.Context, f Format) context.Context {
	return context.WithValue(ctx, formatKey{}, f)
}

// FormatFrom returns the representation negotiated for the request,
// defaulting to JSON.
func FormatFrom(ctx context.Context) Format {
	if f, ok := ctx.Value(formatKey{}).(Format); ok {
		return f
	}
	return FormatJSON
}

// List writes a collection response. The collection name keys the JSON
// envelope and names the XML root; element names each XML child.
func List(w http.ResponseWriter, r *http.Request, docs []Doc, collection, element string) {
	if docs == nil {
		docs = []Doc{}
	}

	if FormatFrom(r.Context()) == FormatXML {
		writeBody(w, contentTypeXML, listXML(docs, collection, element))
		return
	}

	writeJSON(w, map[string]any{collection: docs})
}

// Object writes a single-document response. With an element name the XML
// form is one attribute-bearing element; without one the document must
// hold a single pair, rendered as a text element named after its key.
func Object(w http.ResponseWriter, r *http.Request, doc Doc, element string) {
	if FormatFrom(r.Context()) == FormatXML {
		writeBody(w, contentTypeXML, objectXML(doc, element))
		return
	}

	writeJSON(w, doc)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBody(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(body))
}

func listXML(docs []Doc, collection, element string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)

	if len(docs) == 0 {
		b.WriteString("<" + collection + "/>\n")
		return b.String()
	}

	b.WriteString("<" + collection + ">\n")
	for _, doc := range docs {
		b.WriteString("  <" + element)
		writeAttrs(&b, doc)
		b.WriteString("/>\n")
	}
	b.WriteString("</" + collection + ">\n")
	return b.String()
}

func objectXML(doc Doc, element string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)

	if element != "" {
		b.WriteString("<" + element)
		writeAttrs(&b, doc)
		b.WriteString("/>\n")
		return b.String()
	}

	// No element name: the document holds a single key/value pair with
	// the key as the tag and the value as text content.
	for key, value := range doc {
		b.WriteString("<" + key + ">")
		b.WriteString(escapeXML(stringify(value)))
		b.WriteString("</" + key + ">\n")
		break
	}
	return b.String()
}

func writeAttrs(b *strings.Builder, doc Doc) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(" " + k + "=\"" + escapeXML(stringify(doc[k])) + "\"")
	}
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
