package model

import "time"

type ConflictStatus string

const (
	ConflictPending   ConflictStatus = "pending"
	ConflictResolved  ConflictStatus = "resolved"
	ConflictEscalated ConflictStatus = "escalated"
)

// ConflictTier names the resolution strategy that produced a resolution.
type ConflictTier string

const (
	TierBasic ConflictTier = "basic_rules"
	TierLLM   ConflictTier = "llm"
	TierHuman ConflictTier = "human"
)

type Winner string

const (
	WinnerA         Winner = "A"
	WinnerB         Winner = "B"
	WinnerBothValid Winner = "BOTH_VALID"
	WinnerMerged    Winner = "MERGED"
)

func (w Winner) Valid() bool {
	switch w {
	case WinnerA, WinnerB, WinnerBothValid, WinnerMerged:
		return true
	}
	return false
}

// ConflictResolution is embedded in a ConflictingFact once it is resolved.
// Basic-rules resolutions always carry confidence 0.85, human resolutions
// always 1.0; llm resolutions are only persisted at confidence >= 0.6.
type ConflictResolution struct {
	Winner         Winner       `json:"winner"`
	Reason         string       `json:"reason"`
	ResolvedBy     ConflictTier `json:"resolved_by"`
	Confidence     float64      `json:"confidence"`
	ResolvedAt     time.Time    `json:"resolved_at"`
	ResolvedByUser string       `json:"resolved_by_user,omitempty"`
}

// ConflictingFact pairs two contradictory facts about the same concept.
// Detection is external; the orchestrator mutates the record exactly once,
// to resolved or escalated, and both states are terminal.
type ConflictingFact struct {
	UUID             string              `json:"uuid"`
	GroupID          string              `json:"group_id"`
	FactAUUID        string              `json:"fact_a_uuid"`
	FactBUUID        string              `json:"fact_b_uuid"`
	FactA            string              `json:"fact_a"`
	FactB            string              `json:"fact_b"`
	SourceA          string              `json:"source_a"`
	SourceB          string              `json:"source_b"`
	DateA            time.Time           `json:"date_a"`
	DateB            time.Time           `json:"date_b"`
	Status           ConflictStatus      `json:"status"`
	Resolution       *ConflictResolution `json:"resolution,omitempty"`
	EscalationReason string              `json:"escalation_reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// ResolutionDecision is the JSON shape the reasoning model is asked to
// return when resolving a conflict.
type ResolutionDecision struct {
	Winner     string  `json:"winner"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	MergedFact string  `json:"merged_fact,omitempty"`
}
