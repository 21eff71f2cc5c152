package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []string
		outDir  string
		params  Params
		wantErr string
	}{
		{
			name:   "valid convert",
			inputs: []string{"a.pdf"},
			outDir: "out",
			params: ConvertParams{Format: "txt"},
		},
		{
			name:    "nil params",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  nil,
			wantErr: "parameters are required",
		},
		{
			name:    "blank output dir",
			inputs:  []string{"a.pdf"},
			outDir:  "  ",
			params:  ConvertParams{Format: "txt"},
			wantErr: "output directory",
		},
		{
			name:    "bad convert format",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  ConvertParams{Format: "docx"},
			wantErr: "unsupported convert format",
		},
		{
			name:    "convert quality out of range",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  ConvertParams{Format: "jpeg", Quality: 150},
			wantErr: "quality",
		},
		{
			name:    "split by size unsupported",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  SplitParams{Mode: SplitSize},
			wantErr: "not supported",
		},
		{
			name:    "split range without ranges",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  SplitParams{Mode: SplitRange},
			wantErr: "at least one page range",
		},
		{
			name:    "split range inverted",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  SplitParams{Mode: SplitRange, Ranges: []PageRange{{From: 5, To: 2}}},
			wantErr: "invalid page range",
		},
		{
			name:    "watermark needs text or image",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  WatermarkParams{},
			wantErr: "exactly one",
		},
		{
			name:    "watermark not both",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  WatermarkParams{Text: "X", ImagePath: "logo.png"},
			wantErr: "exactly one",
		},
		{
			name:    "watermark opacity bounds",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  WatermarkParams{Text: "X", Opacity: 1.5},
			wantErr: "opacity",
		},
		{
			name:    "ocr bad format",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  OCRParams{Format: "docx"},
			wantErr: "unsupported ocr output format",
		},
		{
			name:    "encrypt needs password",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  EncryptParams{},
			wantErr: "user password",
		},
		{
			name:    "decrypt needs password",
			inputs:  []string{"a.pdf"},
			outDir:  "out",
			params:  DecryptParams{},
			wantErr: "password",
		},
		{
			name:    "merge needs output name",
			inputs:  []string{"a.pdf", "b.pdf"},
			outDir:  "out",
			params:  MergeParams{},
			wantErr: "output file name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.inputs, tt.outDir, tt.params)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.params.Kind(), req.Operation())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequestInputsAreCopied(t *testing.T) {
	inputs := []string{"a.pdf", "b.pdf"}
	req, err := NewRequest(inputs, "out", ConvertParams{Format: "txt"})
	require.NoError(t, err)

	// Mutating the caller's slice must not affect the request.
	inputs[0] = "mutated.pdf"
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, req.Inputs())

	// Mutating the returned slice must not either.
	got := req.Inputs()
	got[1] = "also-mutated.pdf"
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, req.Inputs())
}
