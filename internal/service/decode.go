package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nao1215/filingctl/internal/model"
)

var errUnexpectedShape = errors.New("unexpected response shape")

// decodeSingle decodes a /classify/ response. The service returns either the
// result itself or an object keyed by the new result's identifier.
func decodeSingle(body []byte) (model.Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return model.Result{}, err
	}
	if fields == nil {
		return model.Result{}, fmt.Errorf("%w: null result", errUnexpectedShape)
	}

	if _, ok := fields["id"]; ok {
		var r model.Result
		if err := json.Unmarshal(body, &r); err != nil {
			return model.Result{}, err
		}
		return r, nil
	}

	if len(fields) == 1 {
		for key, raw := range fields {
			var r model.Result
			if err := json.Unmarshal(raw, &r); err != nil {
				return model.Result{}, err
			}
			if r.ID == "" {
				r.ID = model.ResultID(key)
			}
			return r, nil
		}
	}
	return model.Result{}, fmt.Errorf("%w: object without id", errUnexpectedShape)
}

// decodeBatch decodes a /batch/ response: {"results": [...]} or a bare array.
func decodeBatch(body []byte) ([]model.Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeList(trimmed)
	}

	var envelope struct {
		Results []model.Result `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if envelope.Results == nil {
		return []model.Result{}, nil
	}
	return envelope.Results, nil
}

// decodeList decodes a JSON array of results. null decodes to an empty slice.
func decodeList(body []byte) ([]model.Result, error) {
	var results []model.Result
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, err
	}
	if results == nil {
		return []model.Result{}, nil
	}
	return results, nil
}
