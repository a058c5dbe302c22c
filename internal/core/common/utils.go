package common

import (
	"encoding/json"
	"fmt"
)

// ParseJSON extracts and unmarshals the JSON object embedded in a model
// response. Reasoning models wrap their answers in markdown fences or
// prose more often than not, so everything outside the outermost braces is
// discarded before unmarshalling.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := -1
	end := -1

	for i, c := range response {
		if c == '{' {
			start = i
			break
		}
	}
	for i := len(response) - 1; i >= 0; i-- {
		if response[i] == '}' {
			end = i + 1
			break
		}
	}

	if start == -1 || end <= start {
		return zero, fmt.Errorf("no JSON object found in response")
	}

	jsonStr := response[start:end]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}
