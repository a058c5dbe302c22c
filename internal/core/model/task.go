package model

import "time"

type TaskType string

const (
	TaskInferLinks      TaskType = "infer_links"
	TaskClusterEntities TaskType = "cluster_entities"
	TaskDetectPatterns  TaskType = "detect_patterns"
	TaskMergeDuplicates TaskType = "merge_duplicates"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskInferLinks, TaskClusterEntities, TaskDetectPatterns, TaskMergeDuplicates:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

type TaskScope string

const (
	ScopeLocal  TaskScope = "local"
	ScopeGlobal TaskScope = "global"
)

// ExpansionTask is the audit record for one expansion run. Status moves
// pending -> running -> completed|failed and never back; progress is
// non-decreasing within a run. Tasks are never deleted.
type ExpansionTask struct {
	UUID                string     `json:"uuid"`
	GroupID             string     `json:"group_id"`
	Type                TaskType   `json:"task_type"`
	SourceNodeUUIDs     []string   `json:"source_node_uuids,omitempty"`
	Scope               TaskScope  `json:"scope"`
	Status              TaskStatus `json:"status"`
	Progress            int        `json:"progress"`
	DiscoveredLinkUUIDs []string   `json:"discovered_link_uuids,omitempty"`
	Error               string     `json:"error,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}
