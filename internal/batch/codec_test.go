package batch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParamsRoundTrip(t *testing.T) {
	originals := []Params{
		ConvertParams{Format: "png", DPI: 150, Quality: 80},
		MergeParams{OutputFile: "combined.pdf"},
		SplitParams{Mode: SplitRange, Ranges: []PageRange{{From: 1, To: 3}}},
		WatermarkParams{Text: "DRAFT", Opacity: 0.3, Position: PosTopRight},
		OCRParams{Format: "txt", Language: "eng+deu", Preprocess: true},
		PageNumberParams{Position: NumBottomRight, Format: "%p", FontSize: 10},
		CompressParams{Quality: 70},
		EncryptParams{UserPassword: "secret", Permissions: Permissions{AllowPrint: true}},
		DecryptParams{Password: "secret"},
	}

	for _, original := range originals {
		t.Run(string(original.Kind()), func(t *testing.T) {
			raw, err := json.Marshal(original)
			require.NoError(t, err)

			decoded, err := DecodeParams(original.Kind(), raw)
			require.NoError(t, err)
			assert.Equal(t, original, decoded)
		})
	}
}

func TestDecodeParamsRejectsInvalid(t *testing.T) {
	_, err := DecodeParams(OpConvert, []byte(`{"format":"docx"}`))
	assert.Error(t, err)

	_, err = DecodeParams(OpEncrypt, []byte(`{}`))
	assert.Error(t, err)

	_, err = DecodeParams("shred", []byte(`{}`))
	assert.Error(t, err)
}
