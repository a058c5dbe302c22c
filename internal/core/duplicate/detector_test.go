package duplicate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/core/textsim"
	"github.com/Zynapses/radiant-graph/internal/driver"
)

func TestDetectDuplicates_NearIdenticalLabels(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.SameTypeNodesQuery,
		driver.MockRecord("uuid", "n1", "name", "Acme Corp", "node_type", "organization"),
		driver.MockRecord("uuid", "n2", "name", "Acme Corporation", "node_type", "organization"),
		driver.MockRecord("uuid", "n3", "name", "Globex", "node_type", "organization"),
	)

	d := NewDetector(mock, config.DefaultHeuristics(), zap.NewNop())
	links, err := d.DetectDuplicates(context.Background(), "group-1")

	assert.NoError(t, err)
	assert.Len(t, links, 1)
	assert.Equal(t, model.EdgeDuplicateOf, links[0].Type)
	assert.Equal(t, "n1", links[0].SourceUUID)
	assert.Equal(t, "n2", links[0].TargetUUID)
	assert.Equal(t, textsim.TrigramSimilarity("Acme Corp", "Acme Corporation"), links[0].Confidence)
	assert.Contains(t, links[0].Evidence[0], `"Acme Corp"`)
	assert.Contains(t, links[0].Evidence[0], `"Acme Corporation"`)
	assert.Equal(t, "consider merging these nodes", links[0].Evidence[1])
}

func TestDetectDuplicates_DifferentTypesNeverCompared(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.SameTypeNodesQuery,
		driver.MockRecord("uuid", "n1", "name", "Acme Corp", "node_type", "organization"),
		driver.MockRecord("uuid", "n2", "name", "Acme Corp", "node_type", "project"),
	)

	d := NewDetector(mock, config.DefaultHeuristics(), zap.NewNop())
	links, err := d.DetectDuplicates(context.Background(), "group-1")

	assert.NoError(t, err)
	assert.Empty(t, links)
}

func TestDetectDuplicates_DissimilarLabels(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.SameTypeNodesQuery,
		driver.MockRecord("uuid", "n1", "name", "Acme Corp", "node_type", "organization"),
		driver.MockRecord("uuid", "n2", "name", "Globex Industries", "node_type", "organization"),
	)

	d := NewDetector(mock, config.DefaultHeuristics(), zap.NewNop())
	links, err := d.DetectDuplicates(context.Background(), "group-1")

	assert.NoError(t, err)
	assert.Empty(t, links)
}
