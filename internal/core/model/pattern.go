package model

import "time"

type PatternType string

const (
	PatternSequence PatternType = "sequence"
	PatternAnomaly  PatternType = "anomaly"
)

// PatternDetection is an informational, write-once finding about graph
// structure. There is no approval workflow; detections never gate anything.
// AffectedNodeUUIDs is empty for graph-wide findings such as sequences.
type PatternDetection struct {
	UUID              string      `json:"uuid"`
	GroupID           string      `json:"group_id"`
	Type              PatternType `json:"pattern_type"`
	Description       string      `json:"description"`
	AffectedNodeUUIDs []string    `json:"affected_node_uuids,omitempty"`
	Confidence        float64     `json:"confidence"`
	SuggestedAction   string      `json:"suggested_action"`
	DetectedAt        time.Time   `json:"detected_at"`
}
