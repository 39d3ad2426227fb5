package api

import "encoding/json"

// The backend is inconsistent about list shapes: some endpoints return a raw
// JSON array, others a paginated {"results": [...]} wrapper. decodeList maps
// both onto one slice so nothing downstream sees the difference.
func decodeList[T any](data []byte) ([]T, error) {
	var plain []T
	if err := json.Unmarshal(data, &plain); err == nil {
		return plain, nil
	}
	var wrapped struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Results, nil
}

// decodeOne unmarshals a single-object response.
func decodeOne[T any](data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
