package conflict

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/driver"
	"github.com/Zynapses/radiant-graph/internal/notify"
)

// HumanResolver is the terminal tier: it never decides, it escalates. The
// conflict is marked escalated and a reviewer is notified; the actual human
// verdict arrives later through the orchestrator's manual entry point.
type HumanResolver struct {
	Driver   driver.GraphDriver
	Notifier notify.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewHumanResolver(d driver.GraphDriver, notifier notify.Notifier, logger *zap.Logger) *HumanResolver {
	return &HumanResolver{
		Driver:   d,
		Notifier: notifier,
		Logger:   logger,
		Now:      time.Now,
	}
}

// Escalate records the escalation and emits a medium-priority notification
// carrying both fact texts. Notification delivery is fire-and-forget: a
// sink failure is logged, not propagated.
func (r *HumanResolver) Escalate(ctx context.Context, f *model.ConflictingFact, reason string) error {
	if _, err := r.Driver.ExecuteQuery(ctx, driver.EscalateConflictQuery, map[string]interface{}{
		"uuid":     f.UUID,
		"group_id": f.GroupID,
		"reason":   reason,
	}); err != nil {
		return fmt.Errorf("failed to escalate conflict: %w", err)
	}

	if r.Notifier != nil {
		err := r.Notifier.Notify(ctx, notify.Notification{
			GroupID: f.GroupID,
			Type:    "conflict_escalated",
			Title:   "Conflicting facts need review",
			Message: fmt.Sprintf("Fact A: %s\nFact B: %s\nReason: %s", f.FactA, f.FactB, reason),
			Metadata: map[string]interface{}{
				"conflict_uuid": f.UUID,
				"fact_a_uuid":   f.FactAUUID,
				"fact_b_uuid":   f.FactBUUID,
			},
			Priority: "medium",
		})
		if err != nil {
			r.Logger.Warn("escalation notification failed",
				zap.String("conflict_uuid", f.UUID),
				zap.Error(err))
		}
	}

	r.Logger.Info("conflict escalated",
		zap.String("conflict_uuid", f.UUID),
		zap.String("group_id", f.GroupID),
		zap.String("reason", reason))

	return nil
}
