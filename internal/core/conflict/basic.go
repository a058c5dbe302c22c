package conflict

import (
	"time"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/model"
)

// BasicResolver applies deterministic recency and detail rules. Its
// resolutions always carry the fixed basic-rules confidence, never a
// computed one.
type BasicResolver struct {
	Heuristics config.Heuristics
	Now        func() time.Time
}

func NewBasicResolver(h config.Heuristics) *BasicResolver {
	return &BasicResolver{
		Heuristics: h,
		Now:        time.Now,
	}
}

// Resolve picks a winner: a strictly newer fact wins outright; on equal
// dates the substantially longer fact wins as more detailed; failing both,
// side A wins by default.
func (r *BasicResolver) Resolve(f *model.ConflictingFact) model.ConflictResolution {
	var winner model.Winner
	var reason string

	switch {
	case f.DateA.After(f.DateB):
		winner = model.WinnerA
		reason = "fact A is newer"
	case f.DateB.After(f.DateA):
		winner = model.WinnerB
		reason = "fact B is newer"
	case float64(len(f.FactA)) > r.Heuristics.DetailRatio*float64(len(f.FactB)):
		winner = model.WinnerA
		reason = "fact A is more detailed"
	case float64(len(f.FactB)) > r.Heuristics.DetailRatio*float64(len(f.FactA)):
		winner = model.WinnerB
		reason = "fact B is more detailed"
	default:
		winner = model.WinnerA
		reason = "facts appear equivalent; defaulting to first encountered"
	}

	return model.ConflictResolution{
		Winner:     winner,
		Reason:     reason,
		ResolvedBy: model.TierBasic,
		Confidence: r.Heuristics.BasicRuleConfidence,
		ResolvedAt: r.Now().UTC(),
	}
}
