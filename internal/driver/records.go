package driver

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record value helpers. Memgraph hands back int64 for counts, float64 for
// reals, []interface{} for lists and nil for absent properties; these
// return zero values on a surprise type instead of panicking.

func RecordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func RecordInt(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func RecordFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func RecordBoolPtr(rec *neo4j.Record, key string) *bool {
	v, _ := rec.Get(key)
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}

func RecordStringSlice(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// RecordTime parses a timestamp property stored as an RFC3339 string.
func RecordTime(rec *neo4j.Record, key string) time.Time {
	v, _ := rec.Get(key)
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RecordTimePtr is RecordTime for nullable timestamp properties.
func RecordTimePtr(rec *neo4j.Record, key string) *time.Time {
	t := RecordTime(rec, key)
	if t.IsZero() {
		return nil
	}
	return &t
}
