package conflict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	ErrConflictNotFound        = errors.New("conflict not found")
	ErrConflictAlreadyResolved = errors.New("conflict already resolved")
)

// Summary reports the aggregate outcome of one resolution batch.
type Summary struct {
	Resolved  int `json:"resolved"`
	Escalated int `json:"escalated"`
}

// Orchestrator walks a tenant's pending conflicts in creation order,
// classifies each one and dispatches it to the matching tier. A resolver
// failure escalates that single conflict; it never aborts the batch, so a
// crashed batch can simply be re-invoked.
type Orchestrator struct {
	Driver     driver.GraphDriver
	Basic      *BasicResolver
	Model      *LLMResolver
	Human      *HumanResolver
	Heuristics config.Heuristics
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewOrchestrator(d driver.GraphDriver, basic *BasicResolver, llmResolver *LLMResolver, human *HumanResolver, h config.Heuristics, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		Driver:     d,
		Basic:      basic,
		Model:      llmResolver,
		Human:      human,
		Heuristics: h,
		Logger:     logger,
		Now:        time.Now,
	}
}

// ResolveConflicts processes every pending conflict for the tenant and
// returns aggregate counts.
func (o *Orchestrator) ResolveConflicts(ctx context.Context, groupID string) (Summary, error) {
	result, err := o.Driver.ExecuteQuery(ctx, driver.GetPendingConflictsQuery, map[string]interface{}{
		"group_id": groupID,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load pending conflicts: %w", err)
	}

	var summary Summary
	for _, rec := range result.Records {
		conflict := conflictFromRecord(rec)

		resolved, escalated := o.resolveOne(ctx, &conflict)
		switch {
		case resolved:
			summary.Resolved++
		case escalated:
			summary.Escalated++
		}
	}

	o.Logger.Info("conflict batch finished",
		zap.String("group_id", groupID),
		zap.Int("resolved", summary.Resolved),
		zap.Int("escalated", summary.Escalated))

	return summary, nil
}

// resolveOne takes a single conflict toward a terminal state. A conflict
// counts as escalated only when the escalation write landed; one whose
// escalation write failed stays pending and counts as neither, so the next
// batch picks it up again.
func (o *Orchestrator) resolveOne(ctx context.Context, conflict *model.ConflictingFact) (resolved, escalated bool) {
	tier := ClassifyTier(conflict, o.Heuristics)

	switch tier {
	case model.TierBasic:
		resolution := o.Basic.Resolve(conflict)
		if err := o.persistResolution(ctx, conflict, resolution, ""); err != nil {
			return false, o.escalate(ctx, conflict, err.Error())
		}
		return true, false

	case model.TierLLM:
		outcome := o.Model.Resolve(ctx, conflict)
		if outcome.Escalate {
			return false, o.escalate(ctx, conflict, outcome.EscalationReason)
		}
		if err := o.persistResolution(ctx, conflict, *outcome.Resolution, outcome.MergedFact); err != nil {
			return false, o.escalate(ctx, conflict, err.Error())
		}
		return true, false

	default: // model.TierHuman
		return false, o.escalate(ctx, conflict, "two authoritative sources disagree")
	}
}

// ResolveManually is the out-of-band human entry point: a reviewer supplies
// an explicit winner, reason and optional merged text. Human resolutions
// are always recorded at confidence 1.0. Pending and escalated conflicts
// can be resolved this way; resolved ones cannot be re-resolved.
func (o *Orchestrator) ResolveManually(ctx context.Context, conflictID, groupID, userID string, winner model.Winner, reason, mergedFact string) error {
	if !winner.Valid() {
		return fmt.Errorf("unknown winner: %s", winner)
	}

	conflict, err := o.getConflict(ctx, conflictID, groupID)
	if err != nil {
		return err
	}
	if conflict.Status == model.ConflictResolved {
		return ErrConflictAlreadyResolved
	}

	resolution := model.ConflictResolution{
		Winner:         winner,
		Reason:         reason,
		ResolvedBy:     model.TierHuman,
		Confidence:     1.0,
		ResolvedAt:     o.Now().UTC(),
		ResolvedByUser: userID,
	}

	return o.persistResolution(ctx, conflict, resolution, mergedFact)
}

func (o *Orchestrator) getConflict(ctx context.Context, conflictID, groupID string) (*model.ConflictingFact, error) {
	result, err := o.Driver.ExecuteQuery(ctx, driver.GetConflictQuery, map[string]interface{}{
		"uuid":     conflictID,
		"group_id": groupID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load conflict: %w", err)
	}
	if len(result.Records) == 0 {
		return nil, ErrConflictNotFound
	}
	conflict := conflictFromRecord(result.Records[0])
	return &conflict, nil
}

// persistResolution writes the resolution and, for a MERGED verdict with
// merged text, rewrites the surviving fact node.
func (o *Orchestrator) persistResolution(ctx context.Context, conflict *model.ConflictingFact, resolution model.ConflictResolution, mergedFact string) error {
	data, err := json.Marshal(resolution)
	if err != nil {
		return fmt.Errorf("failed to serialize resolution: %w", err)
	}

	if _, err := o.Driver.ExecuteQuery(ctx, driver.ResolveConflictQuery, map[string]interface{}{
		"uuid":       conflict.UUID,
		"group_id":   conflict.GroupID,
		"resolution": string(data),
	}); err != nil {
		return fmt.Errorf("failed to persist resolution: %w", err)
	}

	if resolution.Winner == model.WinnerMerged && mergedFact != "" {
		if _, err := o.Driver.ExecuteQuery(ctx, driver.UpdateFactTextQuery, map[string]interface{}{
			"uuid":     conflict.FactAUUID,
			"group_id": conflict.GroupID,
			"text":     mergedFact,
		}); err != nil {
			return fmt.Errorf("failed to apply merged fact: %w", err)
		}
	}

	o.Logger.Info("conflict resolved",
		zap.String("conflict_uuid", conflict.UUID),
		zap.String("winner", string(resolution.Winner)),
		zap.String("tier", string(resolution.ResolvedBy)),
		zap.Float64("confidence", resolution.Confidence))

	return nil
}

// escalate hands the conflict to the human tier and reports whether the
// escalation write succeeded. On failure there is nothing left to do but
// log: the conflict stays pending and the next batch picks it up again.
func (o *Orchestrator) escalate(ctx context.Context, conflict *model.ConflictingFact, reason string) bool {
	if err := o.Human.Escalate(ctx, conflict, reason); err != nil {
		o.Logger.Error("conflict escalation failed",
			zap.String("conflict_uuid", conflict.UUID),
			zap.Error(err))
		return false
	}
	return true
}

func conflictFromRecord(rec *neo4j.Record) model.ConflictingFact {
	return model.ConflictingFact{
		UUID:      driver.RecordString(rec, "uuid"),
		GroupID:   driver.RecordString(rec, "group_id"),
		FactAUUID: driver.RecordString(rec, "fact_a_uuid"),
		FactBUUID: driver.RecordString(rec, "fact_b_uuid"),
		FactA:     driver.RecordString(rec, "fact_a"),
		FactB:     driver.RecordString(rec, "fact_b"),
		SourceA:   driver.RecordString(rec, "source_a"),
		SourceB:   driver.RecordString(rec, "source_b"),
		DateA:     driver.RecordTime(rec, "date_a"),
		DateB:     driver.RecordTime(rec, "date_b"),
		Status:    model.ConflictStatus(driver.RecordString(rec, "status")),
		CreatedAt: driver.RecordTime(rec, "created_at"),
	}
}
