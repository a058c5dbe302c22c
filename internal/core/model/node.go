package model

import "time"

// EntityNode is the engine's read view of a graph node. Nodes are owned by
// the external store; the engine never creates or deletes them.
type EntityNode struct {
	UUID      string    `json:"uuid"`
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	NodeType  string    `json:"node_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EntityEdge is the engine's view of a materialized RELATES_TO edge. The
// engine only creates these when an inferred link is approved.
type EntityEdge struct {
	UUID       string    `json:"uuid"`
	SourceUUID string    `json:"source_node_uuid"`
	TargetUUID string    `json:"target_node_uuid"`
	GroupID    string    `json:"group_id"`
	Type       EdgeType  `json:"edge_type"`
	Weight     float64   `json:"weight"`
	Metadata   string    `json:"metadata,omitempty"` // serialized provenance
	CreatedAt  time.Time `json:"created_at"`
}
