// Package pattern finds structural findings in the graph topology: frequent
// two-hop edge-type sequences and nodes whose degree is a statistical
// outlier. Findings are informational only; nothing approves or acts on
// them automatically.
package pattern

import (
	"context"
	"fmt"
	"math"

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

// DetectPatterns runs both analyses and returns their findings. On an
// unchanged graph the findings are identical across runs apart from
// detection timestamps, which the caller stamps at persistence time.
func (d *Detector) DetectPatterns(ctx context.Context, groupID string) ([]model.PatternDetection, error) {
	sequences, err := d.sequencePatterns(ctx, groupID)
	if err != nil {
		return nil, err
	}

	anomalies, err := d.anomalyPatterns(ctx, groupID)
	if err != nil {
		return nil, err
	}

	patterns := append(sequences, anomalies...)

	d.Logger.Info("pattern detection finished",
		zap.String("group_id", groupID),
		zap.Int("sequences", len(sequences)),
		zap.Int("anomalies", len(anomalies)))

	return patterns, nil
}

// sequencePatterns groups two-hop paths by their (first, second) edge-type
// pair and reports pairs occurring at least SequenceMinCount times.
func (d *Detector) sequencePatterns(ctx context.Context, groupID string) ([]model.PatternDetection, error) {
	result, err := d.Driver.ExecuteQuery(ctx, driver.TwoHopSequenceQuery, map[string]interface{}{
		"group_id":  groupID,
		"min_count": d.Heuristics.SequenceMinCount,
	})
	if err != nil {
		return nil, fmt.Errorf("sequence query failed: %w", err)
	}

	var patterns []model.PatternDetection
	for _, rec := range result.Records {
		first := driver.RecordString(rec, "first_type")
		second := driver.RecordString(rec, "second_type")
		count := driver.RecordInt(rec, "occurrences")

		confidence := d.Heuristics.SequenceBaseConfidence + float64(count)*d.Heuristics.SequenceConfidenceStep
		if confidence > d.Heuristics.SequenceMaxConfidence {
			confidence = d.Heuristics.SequenceMaxConfidence
		}

		patterns = append(patterns, model.PatternDetection{
			GroupID: groupID,
			Type:    model.PatternSequence,
			Description: fmt.Sprintf("edges of type %q are followed by %q in %d two-hop paths",
				first, second, count),
			Confidence:      confidence,
			SuggestedAction: "consider a shortcut edge across this path",
		})
	}

	return patterns, nil
}

// anomalyPatterns flags nodes whose degree deviates from the tenant mean by
// more than AnomalyStdDevs standard deviations. Mean and variance come from
// one Welford pass over the degree rows, not a windowed aggregate per row.
func (d *Detector) anomalyPatterns(ctx context.Context, groupID string) ([]model.PatternDetection, error) {
	result, err := d.Driver.ExecuteQuery(ctx, driver.NodeDegreesQuery, map[string]interface{}{
		"group_id": groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("degree query failed: %w", err)
	}

	type nodeDegree struct {
		uuid   string
		name   string
		degree float64
	}

	var (
		nodes []nodeDegree
		count int
		mean  float64
		m2    float64
	)

	for _, rec := range result.Records {
		degree := float64(driver.RecordInt(rec, "degree"))
		nodes = append(nodes, nodeDegree{
			uuid:   driver.RecordString(rec, "uuid"),
			name:   driver.RecordString(rec, "name"),
			degree: degree,
		})

		count++
		delta := degree - mean
		mean += delta / float64(count)
		m2 += delta * (degree - mean)
	}

	if count < 2 {
		return nil, nil
	}

	stddev := math.Sqrt(m2 / float64(count))
	if stddev == 0 {
		return nil, nil
	}

	var patterns []model.PatternDetection
	for _, n := range nodes {
		if math.Abs(n.degree-mean) <= d.Heuristics.AnomalyStdDevs*stddev {
			continue
		}

		var description, action string
		if n.degree > mean {
			description = fmt.Sprintf("node %q is a hub with degree %.0f (tenant mean %.1f)", n.name, n.degree, mean)
			action = "review this hub for decomposition"
		} else {
			description = fmt.Sprintf("node %q is isolated with degree %.0f (tenant mean %.1f)", n.name, n.degree, mean)
			action = "connect or prune this node"
		}

		patterns = append(patterns, model.PatternDetection{
			GroupID:           groupID,
			Type:              model.PatternAnomaly,
			Description:       description,
			AffectedNodeUUIDs: []string{n.uuid},
			Confidence:        d.Heuristics.AnomalyConfidence,
			SuggestedAction:   action,
		})
	}

	return patterns, nil
}
