package expansion

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"

	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
)

func linkRecord(uuid string, confidence float64, approved interface{}) *neo4j.Record {
	return driver.MockRecord(
		"uuid", uuid,
		"group_id", "group-1",
		"source_node_uuid", "n1",
		"target_node_uuid", "n2",
		"edge_type", "relates_to",
		"confidence", confidence,
		"evidence", []interface{}{"accessed together in 4 sessions"},
		"approved", approved,
		"approved_by", nil,
		"approved_at", nil,
		"created_at", "2024-01-15T11:00:00Z",
	)
}

func TestApproveLink_MaterializesEdge(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetInferredLinkQuery, linkRecord("link-1", 0.72, nil))

	m := newTestManager(mock, &stubEngines{})
	err := m.ApproveLink(context.Background(), "link-1", "group-1", "reviewer-7")

	assert.NoError(t, err)

	edges := mock.CallsTo(driver.SaveGraphEdgeQuery)
	assert.Len(t, edges, 1)
	assert.Equal(t, "n1", edges[0].Params["source_uuid"])
	assert.Equal(t, "n2", edges[0].Params["target_uuid"])
	assert.Equal(t, "relates_to", edges[0].Params["edge_type"])
	assert.Equal(t, 0.72, edges[0].Params["weight"])

	var metadata map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(edges[0].Params["metadata"].(string)), &metadata))
	assert.Equal(t, true, metadata["inferred"])
	assert.Equal(t, "link-1", metadata["link_uuid"])
	assert.Equal(t, "reviewer-7", metadata["approved_by"])

	reviews := mock.CallsTo(driver.MarkLinkReviewedQuery)
	assert.Len(t, reviews, 1)
	assert.Equal(t, true, reviews[0].Params["approved"])
	assert.Equal(t, "reviewer-7", reviews[0].Params["approved_by"])
}

func TestApproveLink_SecondApprovalRejected(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetInferredLinkQuery, linkRecord("link-1", 0.72, true))

	m := newTestManager(mock, &stubEngines{})
	err := m.ApproveLink(context.Background(), "link-1", "group-1", "reviewer-7")

	assert.ErrorIs(t, err, ErrLinkAlreadyReviewed)
	assert.Empty(t, mock.CallsTo(driver.SaveGraphEdgeQuery))
	assert.Empty(t, mock.CallsTo(driver.MarkLinkReviewedQuery))
}

func TestRejectLink_NeverMaterializes(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetInferredLinkQuery, linkRecord("link-1", 0.72, nil))

	m := newTestManager(mock, &stubEngines{})
	err := m.RejectLink(context.Background(), "link-1", "group-1")

	assert.NoError(t, err)
	assert.Empty(t, mock.CallsTo(driver.SaveGraphEdgeQuery))

	reviews := mock.CallsTo(driver.MarkLinkReviewedQuery)
	assert.Len(t, reviews, 1)
	assert.Equal(t, false, reviews[0].Params["approved"])
}

func TestRejectLink_AlreadyReviewed(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.GetInferredLinkQuery, linkRecord("link-1", 0.72, false))

	m := newTestManager(mock, &stubEngines{})
	err := m.RejectLink(context.Background(), "link-1", "group-1")

	assert.ErrorIs(t, err, ErrLinkAlreadyReviewed)
}

func TestGetLink_NotFound(t *testing.T) {
	mock := driver.NewMockDriver()

	m := newTestManager(mock, &stubEngines{})
	_, err := m.GetLink(context.Background(), "absent", "group-1")

	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestListPendingLinks(t *testing.T) {
	mock := driver.NewMockDriver()
	mock.SetResult(driver.ListPendingLinksQuery,
		linkRecord("link-1", 0.9, nil),
		linkRecord("link-2", 0.65, nil),
	)

	m := newTestManager(mock, &stubEngines{})
	links, err := m.ListPendingLinks(context.Background(), "group-1")

	assert.NoError(t, err)
	assert.Len(t, links, 2)
	assert.Equal(t, "link-1", links[0].UUID)
	assert.Equal(t, 0.9, links[0].Confidence)
	assert.Nil(t, links[0].Approved)
	assert.Equal(t, model.EdgeRelatesTo, links[0].Type)
	assert.Equal(t, []string{"accessed together in 4 sessions"}, links[0].Evidence)
}
