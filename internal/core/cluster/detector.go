// Package cluster proposes clustered_with edges between unconnected node
// pairs that share outgoing neighbours. The pairwise intersection is O(n²)
// over nodes with at least one outgoing edge, so the set arithmetic is
// pushed into the store rather than materializing neighbour sets here.
package cluster

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
)

type Detector struct {
	Driver     driver.GraphDriver
	Heuristics config.Heuristics
	Logger     *zap.Logger
}

func NewDetector(d driver.GraphDriver, h config.Heuristics, logger *zap.Logger) *Detector {
	return &Detector{
		Driver:     d,
		Heuristics: h,
		Logger:     logger,
	}
}

// DetectClusters emits a clustered_with candidate for every unconnected
// pair sharing at least SharedNeighborMinCount outgoing neighbours.
func (d *Detector) DetectClusters(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	result, err := d.Driver.ExecuteQuery(ctx, driver.SharedNeighborCandidatesQuery, map[string]interface{}{
		"group_id":   groupID,
		"min_shared": d.Heuristics.SharedNeighborMinCount,
	})
	if err != nil {
		return nil, fmt.Errorf("shared neighbor query failed: %w", err)
	}

	var links []model.InferredLink
	for _, rec := range result.Records {
		shared := driver.RecordInt(rec, "shared_count")
		sourceName := driver.RecordString(rec, "source_name")
		targetName := driver.RecordString(rec, "target_name")

		confidence := d.Heuristics.ClusterBaseConfidence + float64(shared)*d.Heuristics.ClusterConfidenceStep
		if confidence > d.Heuristics.ClusterMaxConfidence {
			confidence = d.Heuristics.ClusterMaxConfidence
		}

		links = append(links, model.InferredLink{
			GroupID:    groupID,
			SourceUUID: driver.RecordString(rec, "source_uuid"),
			TargetUUID: driver.RecordString(rec, "target_uuid"),
			Type:       model.EdgeClusteredWith,
			Confidence: confidence,
			Evidence: []string{
				fmt.Sprintf("share %d common neighbors", shared),
				fmt.Sprintf("connects %q and %q", sourceName, targetName),
			},
		})
	}

	d.Logger.Info("cluster detection finished",
		zap.String("group_id", groupID),
		zap.Int("candidates", len(links)))

	return links, nil
}
