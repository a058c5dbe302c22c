package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
)

func TestDetectClusters(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.SharedNeighborCandidatesQuery, driver.MockRecord(
		"source_uuid", "n1",
		"target_uuid", "n2",
		"source_name", "Checkout",
		"target_name", "Payments",
		"shared_count", int64(2),
	))

	d := NewDetector(mock, config.DefaultHeuristics(), zap.NewNop())
	links, err := d.DetectClusters(context.Background(), "group-1")

	assert.NoError(t, err)
	assert.Len(t, links, 1)
	assert.Equal(t, model.EdgeClusteredWith, links[0].Type)
	assert.InDelta(t, 0.6, links[0].Confidence, 1e-9)
	assert.Contains(t, links[0].Evidence[0], "share 2 common neighbors")

	calls := mock.CallsTo(driver.SharedNeighborCandidatesQuery)
	assert.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Params["min_shared"])
}

func TestDetectClusters_ConfidenceCap(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.SharedNeighborCandidatesQuery, driver.MockRecord(
		"source_uuid", "n1", "target_uuid", "n2",
		"source_name", "a", "target_name", "b",
		"shared_count", int64(10),
	))

	d := NewDetector(mock, config.DefaultHeuristics(), zap.NewNop())
	links, err := d.DetectClusters(context.Background(), "group-1")

	assert.NoError(t, err)
	assert.Len(t, links, 1)
	assert.InDelta(t, 0.85, links[0].Confidence, 1e-9)
}

func TestDetectClusters_QueryError(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.Errs[driver.SharedNeighborCandidatesQuery] = errors.New("store down")

	d := NewDetector(mock, config.DefaultHeuristics(), zap.NewNop())
	_, err := d.DetectClusters(context.Background(), "group-1")

	assert.Error(t, err)
}
