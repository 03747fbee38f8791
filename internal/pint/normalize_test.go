package pint

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjschwei/public-cloud-info-service/internal/render"
)

func TestSynthesizeServerType(t *testing.T) {
	tests := []struct {
		name     string
		srvName  string
		shape    string
		wantKind ServerKind
		wantType string
		wantName string
	}{
		{
			name:     "update server with shape",
			srvName:  "smt-ec2.susecloud.net",
			shape:    "sles",
			wantKind: ServerKindUpdate,
			wantType: "update-sles",
			wantName: "smt-ec2.susecloud.net",
		},
		{
			name:     "update server without shape",
			srvName:  "smt-gce.susecloud.net",
			wantKind: ServerKindUpdate,
			wantType: "update",
			wantName: "smt-gce.susecloud.net",
		},
		{
			name:     "region server clears name",
			shape:    "sap",
			wantKind: ServerKindRegion,
			wantType: "region-sap",
			wantName: "",
		},
		{
			name:     "bare region server",
			wantKind: ServerKindRegion,
			wantType: "region",
			wantName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, typ, name := SynthesizeServerType(tt.srvName, tt.shape)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestNormalizeRowDropsEmptyURNAndChangeinfo(t *testing.T) {
	doc := normalizeRow(map[string]any{
		"name":       "sles-15-sp6-v20240808",
		"urn":        "",
		"changeinfo": nil,
		"state":      "active",
	}, nil)

	assert.NotContains(t, doc, "urn")
	assert.NotContains(t, doc, "changeinfo")
	assert.Equal(t, "active", doc["state"])
}

func TestNormalizeRowKeepsPopulatedURN(t *testing.T) {
	doc := normalizeRow(map[string]any{
		"urn": "suse:sles-15-sp6:gen2:2024.08.08",
	}, nil)

	assert.Equal(t, "suse:sles-15-sp6:gen2:2024.08.08", doc["urn"])
}

func TestNormalizeRowSynthesizesType(t *testing.T) {
	doc := normalizeRow(map[string]any{
		"name":  "smt-ec2.susecloud.net",
		"shape": "sles",
		"ip":    "1.2.3.4",
	}, nil)

	require.NotContains(t, doc, "shape")
	assert.Equal(t, "update-sles", doc["type"])
	assert.Equal(t, "smt-ec2.susecloud.net", doc["name"])

	doc = normalizeRow(map[string]any{
		"name":  "",
		"shape": "",
		"ip":    "5.6.7.8",
	}, nil)

	assert.Equal(t, "region", doc["type"])
	assert.Equal(t, "", doc["name"])
}

func TestNormalizeRowMergesExtrasLast(t *testing.T) {
	doc := normalizeRow(map[string]any{
		"name":   "img",
		"region": "westeurope",
	}, map[string]any{"region": "euwest"})

	assert.Equal(t, "euwest", doc["region"])
}

func TestNormalizeRowLowercasesKeys(t *testing.T) {
	doc := normalizeRow(map[string]any{"Name": "img"}, nil)
	assert.Equal(t, render.Doc{"name": "img"}, doc)
}

func TestNormalizeValue(t *testing.T) {
	published := time.Date(2024, 8, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil becomes empty string", in: nil, want: ""},
		{name: "string passes through", in: "abc", want: "abc"},
		{name: "bytes become string", in: []byte("xyz"), want: "xyz"},
		{name: "date formats compact", in: published, want: "20240808"},
		{name: "int passes through", in: 42, want: 42},
		{name: "float passes through", in: 2.2, want: 2.2},
		{name: "addr renders plain", in: netip.MustParseAddr("54.1.2.3"), want: "54.1.2.3"},
		{name: "host prefix strips mask", in: netip.MustParsePrefix("54.1.2.3/32"), want: "54.1.2.3"},
		{name: "v6 host prefix strips mask", in: netip.MustParsePrefix("fc00::1/128"), want: "fc00::1"},
		{name: "subnet keeps mask", in: netip.MustParsePrefix("10.0.0.0/24"), want: "10.0.0.0/24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}

func TestNormalizeDocs(t *testing.T) {
	docs := normalizeDocs([]map[string]any{
		{"name": "a"},
		{"name": "b"},
	}, nil)

	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0]["name"])
	assert.Equal(t, "b", docs[1]["name"])
}
