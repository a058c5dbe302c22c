// Package conflict resolves contradictory facts through three escalating
// tiers: deterministic rules, reasoning-model judgment, and human
// arbitration. Lower tiers never retry; anything they cannot safely decide
// escalates upward.
package conflict

import (
	"strings"
	"time"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/core/textsim"
)

// ClassifyTier picks the resolution tier for a conflict. The rules are
// evaluated in fixed order and the first match wins:
//
//  1. basic: the date gap exceeds the stale threshold, a recency question.
//  2. basic: the texts are near-identical, a non-disagreement.
//  3. llm: both facts carry numbers and need semantic judgment, not recency.
//  4. human: two authoritative sources disagreeing is inherently an edge case.
//  5. llm: everything else.
func ClassifyTier(f *model.ConflictingFact, h config.Heuristics) model.ConflictTier {
	gap := f.DateA.Sub(f.DateB)
	if gap < 0 {
		gap = -gap
	}
	if gap > time.Duration(h.StaleDateGapDays)*24*time.Hour {
		return model.TierBasic
	}

	if textsim.Similarity(f.FactA, f.FactB) > h.NearIdenticalTextThreshold {
		return model.TierBasic
	}

	if textsim.ContainsNumber(f.FactA) && textsim.ContainsNumber(f.FactB) {
		return model.TierLLM
	}

	if isAuthoritative(f.SourceA, h.AuthoritativeSources) && isAuthoritative(f.SourceB, h.AuthoritativeSources) {
		return model.TierHuman
	}

	return model.TierLLM
}

func isAuthoritative(source string, markers []string) bool {
	lower := strings.ToLower(source)
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
