package batch

import (
	"encoding/json"
	"fmt"
)

// DecodeParams unmarshals a raw parameter payload into the typed bag for
// the given operation kind. It is the inverse of json.Marshal on a Params
// value and is used wherever requests cross a process boundary.
func DecodeParams(op OperationKind, raw []byte) (Params, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var params Params
	switch op {
	case OpConvert:
		var p ConvertParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	case OpMerge:
		var p MergeParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	case OpSplit:
		var p SplitParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	case OpWatermark:
		var p WatermarkParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	case OpOCR:
		var p OCRParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	case OpPageNumbers:
		var p PageNumberParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	case OpCompress:
		var p CompressParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	case OpEncrypt:
		var p EncryptParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	case OpDecrypt:
		var p DecryptParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		params = p
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", op, err)
	}
	return params, nil
}
