package expansion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/duplicate"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/core/textsim"
	"github.com/Zynapses/radiant-graph/internal/driver"
)

type stubEngines struct {
	links    []model.InferredLink
	patterns []model.PatternDetection
	err      error
}

func (s *stubEngines) InferLinks(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	return s.links, s.err
}

func (s *stubEngines) DetectClusters(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	return s.links, s.err
}

func (s *stubEngines) DetectDuplicates(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	return s.links, s.err
}

func (s *stubEngines) DetectPatterns(ctx context.Context, groupID string) ([]model.PatternDetection, error) {
	return s.patterns, s.err
}

func newTestManager(mock *driver.MockDriver, engines *stubEngines) *Manager {
	m := NewManager(mock, engines, engines, engines, engines, zap.NewNop())
	counter := 0
	m.UUIDGenerator = func() string {
		counter++
		return fmt.Sprintf("uuid-%d", counter)
	}
	m.Now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	return m
}

func taskRecord(uuid, taskType, status string) *neo4j.Record {
	return driver.MockRecord(
		"uuid", uuid,
		"group_id", "group-1",
		"task_type", taskType,
		"source_node_uuids", []interface{}{},
		"scope", "local",
		"status", status,
		"progress", int64(0),
		"discovered_link_uuids", nil,
		"error", nil,
		"created_at", "2024-01-15T11:00:00Z",
		"started_at", nil,
		"completed_at", nil,
	)
}

func TestCreateTask(t *testing.T) {
	mock := driver.NewMockDriver()
	m := newTestManager(mock, &stubEngines{})

	task, err := m.CreateTask(context.Background(), "group-1", model.TaskInferLinks, nil, "")

	assert.NoError(t, err)
	assert.Equal(t, "uuid-1", task.UUID)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.Equal(t, model.ScopeLocal, task.Scope)

	calls := mock.CallsTo(driver.SaveExpansionTaskQuery)
	assert.Len(t, calls, 1)
	assert.Equal(t, "infer_links", calls[0].Params["task_type"])
	assert.Equal(t, "pending", calls[0].Params["status"])
	assert.Equal(t, 0, calls[0].Params["progress"])
}

func TestCreateTask_UnknownType(t *testing.T) {
	mock := driver.NewMockDriver()
	m := newTestManager(mock, &stubEngines{})

	_, err := m.CreateTask(context.Background(), "group-1", model.TaskType("reticulate_splines"), nil, "")

	assert.Error(t, err)
	assert.Empty(t, mock.Calls)
}

func TestRunTask_InferLinks(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetExpansionTaskQuery, taskRecord("task-1", "infer_links", "pending"))

	engines := &stubEngines{links: []model.InferredLink{
		{GroupID: "group-1", SourceUUID: "n1", TargetUUID: "n2", Type: model.EdgeRelatesTo, Confidence: 0.65},
		{GroupID: "group-1", SourceUUID: "n3", TargetUUID: "n4", Type: model.EdgeSimilarTo, Confidence: 0.9},
	}}
	m := newTestManager(mock, engines)

	err := m.RunTask(context.Background(), "task-1", "group-1")
	assert.NoError(t, err)

	assert.Len(t, mock.CallsTo(driver.MarkTaskRunningQuery), 1)

	progress := mock.CallsTo(driver.UpdateTaskProgressQuery)
	assert.Len(t, progress, 1)
	assert.Equal(t, 50, progress[0].Params["progress"])

	saves := mock.CallsTo(driver.SaveInferredLinkQuery)
	assert.Len(t, saves, 2)
	assert.Equal(t, "uuid-1", saves[0].Params["uuid"])
	assert.Equal(t, 0.65, saves[0].Params["confidence"])

	completed := mock.CallsTo(driver.MarkTaskCompletedQuery)
	assert.Len(t, completed, 1)
	assert.Equal(t, []string{"uuid-1", "uuid-2"}, completed[0].Params["discovered_link_uuids"])
	assert.Empty(t, mock.CallsTo(driver.MarkTaskFailedQuery))
}

func TestRunTask_DetectPatternsPersistsDirectly(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetExpansionTaskQuery, taskRecord("task-1", "detect_patterns", "pending"))

	engines := &stubEngines{patterns: []model.PatternDetection{
		{GroupID: "group-1", Type: model.PatternSequence, Description: "calls then reads", Confidence: 0.62},
	}}
	m := newTestManager(mock, engines)

	err := m.RunTask(context.Background(), "task-1", "group-1")
	assert.NoError(t, err)

	saves := mock.CallsTo(driver.SavePatternDetectionQuery)
	assert.Len(t, saves, 1)
	assert.Equal(t, "sequence", saves[0].Params["pattern_type"])

	// No inferred links for pattern runs, and the snapshot is empty.
	assert.Empty(t, mock.CallsTo(driver.SaveInferredLinkQuery))
	completed := mock.CallsTo(driver.MarkTaskCompletedQuery)
	assert.Len(t, completed, 1)
	assert.Equal(t, []string{}, completed[0].Params["discovered_link_uuids"])
}

func TestRunTask_NotFound(t *testing.T) {
	mock := driver.NewMockDriver()
	m := newTestManager(mock, &stubEngines{})

	err := m.RunTask(context.Background(), "absent", "group-1")

	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRunTask_NotPending(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetExpansionTaskQuery, taskRecord("task-1", "infer_links", "completed"))

	m := newTestManager(mock, &stubEngines{})
	err := m.RunTask(context.Background(), "task-1", "group-1")

	assert.ErrorIs(t, err, ErrTaskNotRunnable)
	assert.Empty(t, mock.CallsTo(driver.MarkTaskRunningQuery))
}

func TestRunTask_EngineFailureMarksTaskFailed(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetExpansionTaskQuery, taskRecord("task-1", "cluster_entities", "pending"))

	m := newTestManager(mock, &stubEngines{err: errors.New("store timeout")})
	err := m.RunTask(context.Background(), "task-1", "group-1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store timeout")

	failed := mock.CallsTo(driver.MarkTaskFailedQuery)
	assert.Len(t, failed, 1)
	assert.Equal(t, "store timeout", failed[0].Params["error"])
	assert.Empty(t, mock.CallsTo(driver.MarkTaskCompletedQuery))
}

func TestRunTask_CompletionWriteFailureMarksTaskFailed(t *testing.T) {
	// A task whose completion write fails must still reach a terminal
	// state; otherwise it is stuck running and can never be re-run.
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetExpansionTaskQuery, taskRecord("task-1", "infer_links", "pending"))
	mock.Errs[driver.MarkTaskCompletedQuery] = errors.New("store timeout")

	engines := &stubEngines{links: []model.InferredLink{
		{GroupID: "group-1", SourceUUID: "n1", TargetUUID: "n2", Type: model.EdgeRelatesTo, Confidence: 0.65},
	}}
	m := newTestManager(mock, engines)

	err := m.RunTask(context.Background(), "task-1", "group-1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to mark task completed")

	failed := mock.CallsTo(driver.MarkTaskFailedQuery)
	assert.Len(t, failed, 1)
	assert.Contains(t, failed[0].Params["error"], "store timeout")
}

func TestRunTask_MergeDuplicatesEndToEnd(t *testing.T) {
	// Real duplicate detector against mocked store rows: two near-identical
	// organization labels yield exactly one duplicate_of link.
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetExpansionTaskQuery, taskRecord("task-1", "merge_duplicates", "pending"))
	mock.SetResult(driver.SameTypeNodesQuery,
		driver.MockRecord("uuid", "n1", "name", "Acme Corp", "node_type", "organization"),
		driver.MockRecord("uuid", "n2", "name", "Acme Corporation", "node_type", "organization"),
	)

	m := newTestManager(mock, &stubEngines{})
	m.Duplicate = duplicate.NewDetector(mock, config.DefaultHeuristics(), zap.NewNop())

	err := m.RunTask(context.Background(), "task-1", "group-1")
	assert.NoError(t, err)

	saves := mock.CallsTo(driver.SaveInferredLinkQuery)
	assert.Len(t, saves, 1)
	assert.Equal(t, "duplicate_of", saves[0].Params["edge_type"])
	assert.Equal(t, textsim.TrigramSimilarity("Acme Corp", "Acme Corporation"), saves[0].Params["confidence"])

	completed := mock.CallsTo(driver.MarkTaskCompletedQuery)
	assert.Len(t, completed, 1)
	assert.Equal(t, []string{"uuid-1"}, completed[0].Params["discovered_link_uuids"])
}

func TestGetTask(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetExpansionTaskQuery, taskRecord("task-1", "merge_duplicates", "pending"))

	m := newTestManager(mock, &stubEngines{})
	task, err := m.GetTask(context.Background(), "task-1", "group-1")

	assert.NoError(t, err)
	assert.Equal(t, "task-1", task.UUID)
	assert.Equal(t, model.TaskMergeDuplicates, task.Type)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.Nil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)
}
