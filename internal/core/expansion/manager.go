// Package expansion owns the task state machine. A task is created pending,
// moved to running by RunTask, and ends completed or failed; failed tasks
// are terminal and never retried. The manager dispatches to the engine
// matching the task type and is the only component that persists
// InferredLink and PatternDetection rows.
package expansion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
)

var (
	ErrTaskNotFound    = errors.New("expansion task not found")
	ErrTaskNotRunnable = errors.New("expansion task is not pending")
)

// The engines the manager dispatches to, one small port each so every
// algorithm stays independently testable.

type LinkInferrer interface {
	InferLinks(ctx context.Context, groupID string) ([]model.InferredLink, error)
}

type ClusterDetector interface {
	DetectClusters(ctx context.Context, groupID string) ([]model.InferredLink, error)
}

type PatternDetector interface {
	DetectPatterns(ctx context.Context, groupID string) ([]model.PatternDetection, error)
}

type DuplicateDetector interface {
	DetectDuplicates(ctx context.Context, groupID string) ([]model.InferredLink, error)
}

type Manager struct {
	Driver    driver.GraphDriver
	Inference LinkInferrer
	Cluster   ClusterDetector
	Pattern   PatternDetector
	Duplicate DuplicateDetector

	Logger        *zap.Logger
	UUIDGenerator func() string
	Now           func() time.Time
}

func NewManager(
	d driver.GraphDriver,
	inference LinkInferrer,
	cluster ClusterDetector,
	pattern PatternDetector,
	duplicate DuplicateDetector,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		Driver:        d,
		Inference:     inference,
		Cluster:       cluster,
		Pattern:       pattern,
		Duplicate:     duplicate,
		Logger:        logger,
		UUIDGenerator: func() string { return uuid.New().String() },
		Now:           time.Now,
	}
}

// CreateTask inserts a pending task row and nothing else.
func (m *Manager) CreateTask(ctx context.Context, groupID string, taskType model.TaskType, sourceNodeUUIDs []string, scope model.TaskScope) (*model.ExpansionTask, error) {
	if !taskType.Valid() {
		return nil, fmt.Errorf("unknown task type: %s", taskType)
	}
	if scope == "" {
		scope = model.ScopeLocal
	}

	task := &model.ExpansionTask{
		UUID:            m.UUIDGenerator(),
		GroupID:         groupID,
		Type:            taskType,
		SourceNodeUUIDs: sourceNodeUUIDs,
		Scope:           scope,
		Status:          model.TaskPending,
		CreatedAt:       m.Now().UTC(),
	}

	sourceUUIDs := task.SourceNodeUUIDs
	if sourceUUIDs == nil {
		sourceUUIDs = []string{}
	}

	_, err := m.Driver.ExecuteQuery(ctx, driver.SaveExpansionTaskQuery, map[string]interface{}{
		"uuid":              task.UUID,
		"group_id":          task.GroupID,
		"task_type":         string(task.Type),
		"source_node_uuids": sourceUUIDs,
		"scope":             string(task.Scope),
		"status":            string(task.Status),
		"progress":          0,
		"created_at":        task.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	return task, nil
}

// GetTask loads a task for polling.
func (m *Manager) GetTask(ctx context.Context, taskID, groupID string) (*model.ExpansionTask, error) {
	result, err := m.Driver.ExecuteQuery(ctx, driver.GetExpansionTaskQuery, map[string]interface{}{
		"uuid":     taskID,
		"group_id": groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, ErrTaskNotFound
	}

	rec := result.Records[0]
	task := &model.ExpansionTask{
		UUID:                driver.RecordString(rec, "uuid"),
		GroupID:             driver.RecordString(rec, "group_id"),
		Type:                model.TaskType(driver.RecordString(rec, "task_type")),
		SourceNodeUUIDs:     driver.RecordStringSlice(rec, "source_node_uuids"),
		Scope:               model.TaskScope(driver.RecordString(rec, "scope")),
		Status:              model.TaskStatus(driver.RecordString(rec, "status")),
		Progress:            int(driver.RecordInt(rec, "progress")),
		DiscoveredLinkUUIDs: driver.RecordStringSlice(rec, "discovered_link_uuids"),
		Error:               driver.RecordString(rec, "error"),
		CreatedAt:           driver.RecordTime(rec, "created_at"),
		StartedAt:           driver.RecordTimePtr(rec, "started_at"),
		CompletedAt:         driver.RecordTimePtr(rec, "completed_at"),
	}
	return task, nil
}

// RunTask executes a pending task to a terminal state. Any engine or store
// error marks the task failed with the error message recorded; the task is
// never retried automatically.
func (m *Manager) RunTask(ctx context.Context, taskID, groupID string) error {
	task, err := m.GetTask(ctx, taskID, groupID)
	if err != nil {
		return err
	}
	if task.Status != model.TaskPending {
		return fmt.Errorf("%w: task %s is %s", ErrTaskNotRunnable, task.UUID, task.Status)
	}

	if _, err := m.Driver.ExecuteQuery(ctx, driver.MarkTaskRunningQuery, map[string]interface{}{
		"uuid":       task.UUID,
		"group_id":   groupID,
		"started_at": m.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to mark task running: %w", err)
	}

	m.Logger.Info("expansion task started",
		zap.String("task_uuid", task.UUID),
		zap.String("group_id", groupID),
		zap.String("task_type", string(task.Type)))

	linkUUIDs, err := m.dispatch(ctx, task)
	if err != nil {
		m.failTask(ctx, task, err)
		return err
	}

	if _, err := m.Driver.ExecuteQuery(ctx, driver.MarkTaskCompletedQuery, map[string]interface{}{
		"uuid":                  task.UUID,
		"group_id":              groupID,
		"discovered_link_uuids": linkUUIDs,
		"completed_at":          m.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		// The task must still reach a terminal state; running is not one.
		err = fmt.Errorf("failed to mark task completed: %w", err)
		m.failTask(ctx, task, err)
		return err
	}

	m.Logger.Info("expansion task completed",
		zap.String("task_uuid", task.UUID),
		zap.Int("discovered_links", len(linkUUIDs)))

	return nil
}

// dispatch routes the task to its engine. detect_patterns persists its
// findings directly; the link-producing types return candidates that are
// persisted here, with a progress checkpoint between the two phases.
func (m *Manager) dispatch(ctx context.Context, task *model.ExpansionTask) ([]string, error) {
	if task.Type == model.TaskDetectPatterns {
		patterns, err := m.Pattern.DetectPatterns(ctx, task.GroupID)
		if err != nil {
			return nil, err
		}
		if err := m.savePatterns(ctx, patterns); err != nil {
			return nil, err
		}
		return []string{}, nil
	}

	var (
		links []model.InferredLink
		err   error
	)
	switch task.Type {
	case model.TaskInferLinks:
		links, err = m.Inference.InferLinks(ctx, task.GroupID)
	case model.TaskClusterEntities:
		links, err = m.Cluster.DetectClusters(ctx, task.GroupID)
	case model.TaskMergeDuplicates:
		links, err = m.Duplicate.DetectDuplicates(ctx, task.GroupID)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}
	if err != nil {
		return nil, err
	}

	// Coarse checkpoint for polling UIs: discovery done, persistence ahead.
	if _, err := m.Driver.ExecuteQuery(ctx, driver.UpdateTaskProgressQuery, map[string]interface{}{
		"uuid":     task.UUID,
		"group_id": task.GroupID,
		"progress": 50,
	}); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	return m.saveLinks(ctx, links)
}

func (m *Manager) saveLinks(ctx context.Context, links []model.InferredLink) ([]string, error) {
	linkUUIDs := make([]string, 0, len(links))
	for i := range links {
		link := &links[i]
		link.UUID = m.UUIDGenerator()
		link.CreatedAt = m.Now().UTC()

		_, err := m.Driver.ExecuteQuery(ctx, driver.SaveInferredLinkQuery, map[string]interface{}{
			"uuid":             link.UUID,
			"group_id":         link.GroupID,
			"source_node_uuid": link.SourceUUID,
			"target_node_uuid": link.TargetUUID,
			"edge_type":        string(link.Type),
			"confidence":       link.Confidence,
			"evidence":         link.Evidence,
			"created_at":       link.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save inferred link: %w", err)
		}
		linkUUIDs = append(linkUUIDs, link.UUID)
	}
	return linkUUIDs, nil
}

func (m *Manager) savePatterns(ctx context.Context, patterns []model.PatternDetection) error {
	for i := range patterns {
		p := &patterns[i]
		p.UUID = m.UUIDGenerator()
		p.DetectedAt = m.Now().UTC()

		affected := p.AffectedNodeUUIDs
		if affected == nil {
			affected = []string{}
		}

		_, err := m.Driver.ExecuteQuery(ctx, driver.SavePatternDetectionQuery, map[string]interface{}{
			"uuid":                p.UUID,
			"group_id":            p.GroupID,
			"pattern_type":        string(p.Type),
			"description":         p.Description,
			"affected_node_uuids": affected,
			"confidence":          p.Confidence,
			"suggested_action":    p.SuggestedAction,
			"detected_at":         p.DetectedAt.Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("failed to save pattern detection: %w", err)
		}
	}
	return nil
}

// failTask moves the task to its terminal failed state. A failure to record
// the failure is logged and swallowed; the original error is what matters.
func (m *Manager) failTask(ctx context.Context, task *model.ExpansionTask, cause error) {
	if _, err := m.Driver.ExecuteQuery(ctx, driver.MarkTaskFailedQuery, map[string]interface{}{
		"uuid":         task.UUID,
		"group_id":     task.GroupID,
		"error":        cause.Error(),
		"completed_at": m.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		m.Logger.Error("failed to record task failure",
			zap.String("task_uuid", task.UUID),
			zap.Error(err))
	}

	m.Logger.Warn("expansion task failed",
		zap.String("task_uuid", task.UUID),
		zap.String("group_id", task.GroupID),
		zap.Error(cause))
}
