package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/ideadensity/internal/ir"
)

// marshalRules converts rule codes to canonical JSON TEXT for storage.
func marshalRules(codes []ir.Code) (string, error) {
	arr := make(ir.Array, len(codes))
	for i, c := range codes {
		arr[i] = ir.Int(c)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal rules: %w", err)
	}
	return string(data), nil
}

// unmarshalRules parses the rules column.
func unmarshalRules(data string) ([]ir.Code, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var ns []int
	if err := json.Unmarshal([]byte(data), &ns); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}
	codes := make([]ir.Code, len(ns))
	for i, n := range ns {
		codes[i] = ir.Code(n)
	}
	return codes, nil
}
