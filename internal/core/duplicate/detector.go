// Package duplicate proposes duplicate_of edges between same-type nodes
// whose labels are near-identical under trigram similarity.
//
// The pairwise comparison runs in application memory and is O(n²) per node
// type, which does not scale past small graphs; a store with a native
// fuzzy-text operator should take over the scoring once available.
package duplicate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/core/textsim"
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

// DetectDuplicates emits a duplicate_of candidate for every same-type pair
// whose label similarity clears the threshold. Confidence is the raw
// similarity score.
func (d *Detector) DetectDuplicates(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	result, err := d.Driver.ExecuteQuery(ctx, driver.SameTypeNodesQuery, map[string]interface{}{
		"group_id": groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("node fetch failed: %w", err)
	}

	byType := make(map[string][]model.EntityNode)
	var typeOrder []string
	for _, rec := range result.Records {
		node := model.EntityNode{
			UUID:     driver.RecordString(rec, "uuid"),
			Name:     driver.RecordString(rec, "name"),
			NodeType: driver.RecordString(rec, "node_type"),
		}
		if _, seen := byType[node.NodeType]; !seen {
			typeOrder = append(typeOrder, node.NodeType)
		}
		byType[node.NodeType] = append(byType[node.NodeType], node)
	}

	var links []model.InferredLink
	for _, nodeType := range typeOrder {
		nodes := byType[nodeType]
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				sim := textsim.TrigramSimilarity(nodes[i].Name, nodes[j].Name)
				if sim <= d.Heuristics.DuplicateSimilarityThreshold {
					continue
				}

				links = append(links, model.InferredLink{
					GroupID:    groupID,
					SourceUUID: nodes[i].UUID,
					TargetUUID: nodes[j].UUID,
					Type:       model.EdgeDuplicateOf,
					Confidence: sim,
					Evidence: []string{
						fmt.Sprintf("labels %q and %q are %.0f%% similar", nodes[i].Name, nodes[j].Name, sim*100),
						"consider merging these nodes",
					},
				})
			}
		}
	}

	d.Logger.Info("duplicate detection finished",
		zap.String("group_id", groupID),
		zap.Int("candidates", len(links)))

	return links, nil
}
