package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// QueryCall records one ExecuteQuery invocation against a MockDriver.
type QueryCall struct {
	Query  string
	Params map[string]interface{}
}

// MockDriver is an in-memory GraphDriver for tests. Results and errors are
// keyed by the exact query text, which works because every query the
// engines run is a named constant in this package.
type MockDriver struct {
	Calls   []QueryCall
	Results map[string]neo4j.EagerResult
	Errs    map[string]error
}

func NewMockDriver() *MockDriver {
	return &MockDriver{
		Results: make(map[string]neo4j.EagerResult),
		Errs:    make(map[string]error),
	}
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Calls = append(m.Calls, QueryCall{Query: query, Params: params})
	if err, ok := m.Errs[query]; ok {
		return neo4j.EagerResult{}, err
	}
	if res, ok := m.Results[query]; ok {
		return res, nil
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// CallsTo returns the recorded invocations of one query.
func (m *MockDriver) CallsTo(query string) []QueryCall {
	var calls []QueryCall
	for _, c := range m.Calls {
		if c.Query == query {
			calls = append(calls, c)
		}
	}
	return calls
}

// SetResult installs the records a query should return.
func (m *MockDriver) SetResult(query string, records ...*neo4j.Record) {
	m.Results[query] = neo4j.EagerResult{Records: records}
}

// MockRecord builds a record from alternating key/value pairs.
func MockRecord(pairs ...interface{}) *neo4j.Record {
	rec := &neo4j.Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Keys = append(rec.Keys, pairs[i].(string))
		rec.Values = append(rec.Values, pairs[i+1])
	}
	return rec
}
