package model

import "time"

type EdgeType string

const (
	EdgeRelatesTo     EdgeType = "relates_to"
	EdgeSimilarTo     EdgeType = "similar_to"
	EdgeClusteredWith EdgeType = "clustered_with"
	EdgeDuplicateOf   EdgeType = "duplicate_of"
)

// InferredLink is a proposed graph edge awaiting human review. Approved is
// nil while the link is pending; a link is mutated exactly once, by the
// review workflow, and is immutable afterwards.
type InferredLink struct {
	UUID       string     `json:"uuid"`
	GroupID    string     `json:"group_id"`
	SourceUUID string     `json:"source_node_uuid"`
	TargetUUID string     `json:"target_node_uuid"`
	Type       EdgeType   `json:"edge_type"`
	Confidence float64    `json:"confidence"`
	Evidence   []string   `json:"evidence"`
	Approved   *bool      `json:"approved,omitempty"`
	ApprovedBy string     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
