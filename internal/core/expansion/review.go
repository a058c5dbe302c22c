package expansion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
)

var (
	ErrLinkNotFound        = errors.New("inferred link not found")
	ErrLinkAlreadyReviewed = errors.New("inferred link already reviewed")
)

// GetLink loads a single inferred link.
func (m *Manager) GetLink(ctx context.Context, linkID, groupID string) (*model.InferredLink, error) {
	result, err := m.Driver.ExecuteQuery(ctx, driver.GetInferredLinkQuery, map[string]interface{}{
		"uuid":     linkID,
		"group_id": groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load inferred link: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, ErrLinkNotFound
	}
	link := linkFromRecord(result.Records[0])
	return &link, nil
}

// ListPendingLinks returns the review queue for a tenant, highest
// confidence first.
func (m *Manager) ListPendingLinks(ctx context.Context, groupID string) ([]model.InferredLink, error) {
	result, err := m.Driver.ExecuteQuery(ctx, driver.ListPendingLinksQuery, map[string]interface{}{
		"group_id": groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending links: %w", err)
	}

	links := make([]model.InferredLink, 0, len(result.Records))
	for _, rec := range result.Records {
		links = append(links, linkFromRecord(rec))
	}
	return links, nil
}

// ApproveLink materializes an inferred link as a real graph edge whose
// weight is the link's confidence, then marks the link approved. A link
// that has already been reviewed is left untouched, so approving twice
// cannot create a second edge.
func (m *Manager) ApproveLink(ctx context.Context, linkID, groupID, userID string) error {
	link, err := m.GetLink(ctx, linkID, groupID)
	if err != nil {
		return err
	}
	if link.Approved != nil {
		return ErrLinkAlreadyReviewed
	}

	now := m.Now().UTC()

	metadata, err := json.Marshal(map[string]interface{}{
		"inferred":    true,
		"link_uuid":   link.UUID,
		"evidence":    link.Evidence,
		"approved_by": userID,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize edge metadata: %w", err)
	}

	edge := model.EntityEdge{
		UUID:       m.UUIDGenerator(),
		SourceUUID: link.SourceUUID,
		TargetUUID: link.TargetUUID,
		GroupID:    groupID,
		Type:       link.Type,
		Weight:     link.Confidence,
		Metadata:   string(metadata),
		CreatedAt:  now,
	}

	if _, err := m.Driver.ExecuteQuery(ctx, driver.SaveGraphEdgeQuery, map[string]interface{}{
		"uuid":        edge.UUID,
		"group_id":    edge.GroupID,
		"source_uuid": edge.SourceUUID,
		"target_uuid": edge.TargetUUID,
		"edge_type":   string(edge.Type),
		"weight":      edge.Weight,
		"metadata":    edge.Metadata,
		"created_at":  edge.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to materialize edge: %w", err)
	}

	if _, err := m.Driver.ExecuteQuery(ctx, driver.MarkLinkReviewedQuery, map[string]interface{}{
		"uuid":        link.UUID,
		"group_id":    groupID,
		"approved":    true,
		"approved_by": userID,
		"approved_at": now.Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to mark link approved: %w", err)
	}

	m.Logger.Info("inferred link approved",
		zap.String("link_uuid", link.UUID),
		zap.String("group_id", groupID),
		zap.String("approved_by", userID),
		zap.Float64("confidence", link.Confidence))

	return nil
}

// RejectLink discards an inferred link without creating an edge. Rejected
// links are never materialized.
func (m *Manager) RejectLink(ctx context.Context, linkID, groupID string) error {
	link, err := m.GetLink(ctx, linkID, groupID)
	if err != nil {
		return err
	}
	if link.Approved != nil {
		return ErrLinkAlreadyReviewed
	}

	if _, err := m.Driver.ExecuteQuery(ctx, driver.MarkLinkReviewedQuery, map[string]interface{}{
		"uuid":        link.UUID,
		"group_id":    groupID,
		"approved":    false,
		"approved_by": "",
		"approved_at": m.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to mark link rejected: %w", err)
	}

	m.Logger.Info("inferred link rejected",
		zap.String("link_uuid", link.UUID),
		zap.String("group_id", groupID))

	return nil
}

func linkFromRecord(rec *neo4j.Record) model.InferredLink {
	return model.InferredLink{
		UUID:       driver.RecordString(rec, "uuid"),
		GroupID:    driver.RecordString(rec, "group_id"),
		SourceUUID: driver.RecordString(rec, "source_node_uuid"),
		TargetUUID: driver.RecordString(rec, "target_node_uuid"),
		Type:       model.EdgeType(driver.RecordString(rec, "edge_type")),
		Confidence: driver.RecordFloat(rec, "confidence"),
		Evidence:   driver.RecordStringSlice(rec, "evidence"),
		Approved:   driver.RecordBoolPtr(rec, "approved"),
		ApprovedBy: driver.RecordString(rec, "approved_by"),
		ApprovedAt: driver.RecordTimePtr(rec, "approved_at"),
		CreatedAt:  driver.RecordTime(rec, "created_at"),
	}
}
