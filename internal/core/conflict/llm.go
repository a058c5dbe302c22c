package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/common"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/llm"
)

// Outcome is what an LLM-tier attempt produces: either a resolution to
// persist, or an escalation with its reason. A transport failure or
// unparseable model output is an escalation, never an error, so a single
// bad verdict cannot abort an orchestrator batch.
type Outcome struct {
	Resolution       *model.ConflictResolution
	MergedFact       string
	Escalate         bool
	EscalationReason string
}

// LLMResolver asks the reasoning model for a verdict and defensively
// parses whatever comes back.
type LLMResolver struct {
	LLM        llm.LLMClient
	Heuristics config.Heuristics
	Now        func() time.Time
}

func NewLLMResolver(client llm.LLMClient, h config.Heuristics) *LLMResolver {
	return &LLMResolver{
		LLM:        client,
		Heuristics: h,
		Now:        time.Now,
	}
}

func (r *LLMResolver) Resolve(ctx context.Context, f *model.ConflictingFact) Outcome {
	if r.LLM == nil {
		return escalation("no reasoning model configured")
	}

	prompt := fmt.Sprintf(`Two facts about the same concept disagree.

Fact A: %s
  Source: %s
  Stated: %s

Fact B: %s
  Source: %s
  Stated: %s

Decide which fact should win. Return a JSON object:
{"winner": "A" | "B" | "BOTH_VALID" | "MERGED", "reason": "...", "confidence": 0.0-1.0, "merged_fact": "..."}

Include "merged_fact" only when the winner is MERGED.`,
		f.FactA, f.SourceA, f.DateA.Format("2006-01-02"),
		f.FactB, f.SourceB, f.DateB.Format("2006-01-02"))

	response, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return escalation(fmt.Sprintf("reasoning model unavailable: %v", err))
	}

	decision, err := common.ParseJSON[model.ResolutionDecision](response)
	if err != nil {
		return escalation(fmt.Sprintf("unparseable model verdict: %v", err))
	}

	winner := model.Winner(decision.Winner)
	if !winner.Valid() {
		return escalation(fmt.Sprintf("model returned unknown winner %q", decision.Winner))
	}

	if decision.Confidence < r.Heuristics.LLMMinConfidence {
		return escalation(fmt.Sprintf("model confidence %.2f below threshold %.2f",
			decision.Confidence, r.Heuristics.LLMMinConfidence))
	}

	return Outcome{
		Resolution: &model.ConflictResolution{
			Winner:     winner,
			Reason:     decision.Reason,
			ResolvedBy: model.TierLLM,
			Confidence: decision.Confidence,
			ResolvedAt: r.Now().UTC(),
		},
		MergedFact: decision.MergedFact,
	}
}

func escalation(reason string) Outcome {
	return Outcome{Escalate: true, EscalationReason: reason}
}
