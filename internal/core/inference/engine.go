// Package inference proposes candidate edges between graph nodes from two
// behavioral/semantic signals: session co-access frequency and embedding
// cosine similarity. Candidates are buffered in memory and returned; the
// task manager owns persistence.
package inference

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
)

type Engine struct {
	Driver     driver.GraphDriver
	Heuristics config.Heuristics
	Logger     *zap.Logger
}

func NewEngine(d driver.GraphDriver, h config.Heuristics, logger *zap.Logger) *Engine {
	return &Engine{
		Driver:     d,
		Heuristics: h,
		Logger:     logger,
	}
}

// InferLinks runs the co-occurrence pass followed by the embedding
// similarity pass and concatenates the candidates. Both passes are
// read-only. Ordering follows the store's native ordering; callers must
// not assume determinism across runs on a changing graph.
func (e *Engine) InferLinks(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	links, err := e.coOccurrenceLinks(ctx, groupID)
	if err != nil {
		return nil, err
	}

	simLinks, err := e.similarityLinks(ctx, groupID)
	if err != nil {
		return nil, err
	}

	links = append(links, simLinks...)

	e.Logger.Info("link inference finished",
		zap.String("group_id", groupID),
		zap.Int("candidates", len(links)))

	return links, nil
}

// coOccurrenceLinks proposes relates_to edges between unconnected node
// pairs accessed in the same session at least CoAccessMinCount times.
func (e *Engine) coOccurrenceLinks(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	result, err := e.Driver.ExecuteQuery(ctx, driver.CoAccessCandidatesQuery, map[string]interface{}{
		"group_id":  groupID,
		"min_count": e.Heuristics.CoAccessMinCount,
	})
	if err != nil {
		return nil, fmt.Errorf("co-occurrence query failed: %w", err)
	}

	var links []model.InferredLink
	for _, rec := range result.Records {
		count := driver.RecordInt(rec, "co_count")
		sourceName := driver.RecordString(rec, "source_name")
		targetName := driver.RecordString(rec, "target_name")

		confidence := e.Heuristics.CoAccessBaseConfidence + float64(count)*e.Heuristics.CoAccessConfidenceStep
		if confidence > e.Heuristics.CoAccessMaxConfidence {
			confidence = e.Heuristics.CoAccessMaxConfidence
		}

		links = append(links, model.InferredLink{
			GroupID:    groupID,
			SourceUUID: driver.RecordString(rec, "source_uuid"),
			TargetUUID: driver.RecordString(rec, "target_uuid"),
			Type:       model.EdgeRelatesTo,
			Confidence: confidence,
			Evidence: []string{
				fmt.Sprintf("accessed together in %d sessions", count),
				fmt.Sprintf("connects %q and %q", sourceName, targetName),
			},
		})
	}

	return links, nil
}

// similarityLinks proposes similar_to edges between unconnected same-type
// node pairs whose embedding cosine similarity clears the threshold.
// Confidence is the raw similarity value.
func (e *Engine) similarityLinks(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	result, err := e.Driver.ExecuteQuery(ctx, driver.EmbeddingSimilarityCandidatesQuery, map[string]interface{}{
		"group_id":  groupID,
		"threshold": e.Heuristics.EmbeddingSimilarityThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding similarity query failed: %w", err)
	}

	var links []model.InferredLink
	for _, rec := range result.Records {
		sim := driver.RecordFloat(rec, "sim")
		sourceName := driver.RecordString(rec, "source_name")
		targetName := driver.RecordString(rec, "target_name")

		links = append(links, model.InferredLink{
			GroupID:    groupID,
			SourceUUID: driver.RecordString(rec, "source_uuid"),
			TargetUUID: driver.RecordString(rec, "target_uuid"),
			Type:       model.EdgeSimilarTo,
			Confidence: sim,
			Evidence: []string{
				fmt.Sprintf("embeddings are %.0f%% similar", sim*100),
				fmt.Sprintf("connects %q and %q", sourceName, targetName),
			},
		})
	}

	return links, nil
}
