package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type verdict struct {
	Winner     string  `json:"winner"`
	Confidence float64 `json:"confidence"`
}

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON[verdict](`{"winner": "A", "confidence": 0.9}`)
	assert.NoError(t, err)
	assert.Equal(t, "A", v.Winner)
	assert.Equal(t, 0.9, v.Confidence)
}

func TestParseJSON_StripsSurroundingProse(t *testing.T) {
	response := "Sure, here is my decision:\n```json\n{\"winner\": \"B\", \"confidence\": 0.75}\n```\nLet me know if you need more."
	v, err := ParseJSON[verdict](response)
	assert.NoError(t, err)
	assert.Equal(t, "B", v.Winner)
	assert.Equal(t, 0.75, v.Confidence)
}

func TestParseJSON_NoObject(t *testing.T) {
	_, err := ParseJSON[verdict]("I cannot decide between these facts.")
	assert.Error(t, err)
}

func TestParseJSON_MalformedObject(t *testing.T) {
	_, err := ParseJSON[verdict](`{"winner": }`)
	assert.Error(t, err)
}
