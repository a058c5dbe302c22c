package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// Heuristics holds every tuning constant used by the expansion engines and
// the conflict tiers. The values are heuristic and deliberately fixed; they
// live in config (and are passed explicitly into each component) so that
// retuning never means touching control flow.
type Heuristics struct {
	// Link inference: co-occurrence pass.
	CoAccessMinCount       int     `toml:"co_access_min_count"`
	CoAccessBaseConfidence float64 `toml:"co_access_base_confidence"`
	CoAccessConfidenceStep float64 `toml:"co_access_confidence_step"`
	CoAccessMaxConfidence  float64 `toml:"co_access_max_confidence"`

	// Link inference: embedding similarity pass.
	EmbeddingSimilarityThreshold float64 `toml:"embedding_similarity_threshold"`

	// Cluster detection.
	SharedNeighborMinCount int     `toml:"shared_neighbor_min_count"`
	ClusterBaseConfidence  float64 `toml:"cluster_base_confidence"`
	ClusterConfidenceStep  float64 `toml:"cluster_confidence_step"`
	ClusterMaxConfidence   float64 `toml:"cluster_max_confidence"`

	// Pattern detection.
	SequenceMinCount       int     `toml:"sequence_min_count"`
	SequenceBaseConfidence float64 `toml:"sequence_base_confidence"`
	SequenceConfidenceStep float64 `toml:"sequence_confidence_step"`
	SequenceMaxConfidence  float64 `toml:"sequence_max_confidence"`
	AnomalyStdDevs         float64 `toml:"anomaly_std_devs"`
	AnomalyConfidence      float64 `toml:"anomaly_confidence"`

	// Duplicate detection.
	DuplicateSimilarityThreshold float64 `toml:"duplicate_similarity_threshold"`

	// Conflict tier classification and basic rules.
	StaleDateGapDays           int      `toml:"stale_date_gap_days"`
	NearIdenticalTextThreshold float64  `toml:"near_identical_text_threshold"`
	DetailRatio                float64  `toml:"detail_ratio"`
	BasicRuleConfidence        float64  `toml:"basic_rule_confidence"`
	LLMMinConfidence           float64  `toml:"llm_min_confidence"`
	AuthoritativeSources       []string `toml:"authoritative_sources"`
}

type Config struct {
	LLM        LLMConfig      `toml:"llm"`
	Memgraph   MemgraphConfig `toml:"memgraph"`
	Heuristics Heuristics     `toml:"heuristics"`
}

// DefaultHeuristics returns the tuning constants the engine ships with.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		CoAccessMinCount:       3,
		CoAccessBaseConfidence: 0.5,
		CoAccessConfidenceStep: 0.05,
		CoAccessMaxConfidence:  0.9,

		EmbeddingSimilarityThreshold: 0.85,

		SharedNeighborMinCount: 2,
		ClusterBaseConfidence:  0.4,
		ClusterConfidenceStep:  0.1,
		ClusterMaxConfidence:   0.85,

		SequenceMinCount:       5,
		SequenceBaseConfidence: 0.5,
		SequenceConfidenceStep: 0.02,
		SequenceMaxConfidence:  0.9,
		AnomalyStdDevs:         2.0,
		AnomalyConfidence:      0.8,

		DuplicateSimilarityThreshold: 0.8,

		StaleDateGapDays:           30,
		NearIdenticalTextThreshold: 0.9,
		DetailRatio:                1.2,
		BasicRuleConfidence:        0.85,
		LLMMinConfidence:           0.6,
		AuthoritativeSources:       []string{"official", "verified", "certified", "approved"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Config{Heuristics: DefaultHeuristics()}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}
