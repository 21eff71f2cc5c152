package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
)

func TestParseRanges(t *testing.T) {
	tests := []struct {
		spec    string
		want    []batch.PageRange
		wantErr bool
	}{
		{"", nil, false},
		{"3", []batch.PageRange{{From: 3, To: 3}}, false},
		{"1-3", []batch.PageRange{{From: 1, To: 3}}, false},
		{"1-3, 7, 9-12", []batch.PageRange{{From: 1, To: 3}, {From: 7, To: 7}, {From: 9, To: 12}}, false},
		{"abc", nil, true},
		{"1-x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseRanges(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildParams(t *testing.T) {
	p, err := buildParams("convert", &opFlags{format: "png", dpi: 150})
	require.NoError(t, err)
	assert.Equal(t, batch.ConvertParams{Format: "png", DPI: 150}, p)

	p, err = buildParams("split", &opFlags{ranges: "1-2"})
	require.NoError(t, err)
	assert.Equal(t, batch.SplitParams{Mode: batch.SplitSingle, Ranges: []batch.PageRange{{From: 1, To: 2}}}, p)

	p, err = buildParams("ocr", &opFlags{language: "eng"})
	require.NoError(t, err)
	assert.Equal(t, batch.OCRParams{Format: "pdf", Language: "eng"}, p)

	p, err = buildParams("encrypt", &opFlags{userPassword: "pw", allowPrint: true})
	require.NoError(t, err)
	ep, ok := p.(batch.EncryptParams)
	require.True(t, ok)
	assert.True(t, ep.Permissions.AllowPrint)

	_, err = buildParams("shred", &opFlags{})
	assert.Error(t, err)
}
