// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
)

// applyQuery runs a jq expression over the JSON report and returns the query
// results, one JSON document per line.
func applyQuery(jsonContent []byte, jqQuery string) ([]byte, error) {
	query, err := gojq.Parse(jqQuery)
	if err != nil {
		return nil, fmt.Errorf("applyQuery: parsing query: %w", err)
	}
	var jsonData any
	if err := json.Unmarshal(jsonContent, &jsonData); err != nil {
		return nil, fmt.Errorf("applyQuery: %w", err)
	}
	var out bytes.Buffer
	iter := query.Run(jsonData)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("applyQuery: %w", err)
		}
		result, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("applyQuery: %w", err)
		}
		out.Write(result)
		out.WriteByte('\n')
	}
	return out.Bytes(), nil
}
