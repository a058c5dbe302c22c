package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
}

func NewMemgraphDriver(uri, username, password string) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	return &MemgraphDriver{Driver: driver}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Entity(uuid);",
		"CREATE INDEX ON :Entity(group_id);",
		"CREATE INDEX ON :Session(group_id);",

		"CREATE INDEX ON :ExpansionTask(uuid);",
		"CREATE INDEX ON :ExpansionTask(group_id);",

		"CREATE INDEX ON :InferredLink(uuid);",
		"CREATE INDEX ON :InferredLink(group_id);",

		"CREATE INDEX ON :PatternDetection(uuid);",
		"CREATE INDEX ON :PatternDetection(group_id);",

		"CREATE INDEX ON :ConflictingFact(uuid);",
		"CREATE INDEX ON :ConflictingFact(group_id);",
		"CREATE INDEX ON :ConflictingFact(status);",

		"CREATE INDEX ON :Notification(group_id);",
	}

	for _, q := range queries {
		// Creation fails when the index already exists; keep going.
		_, _ = d.ExecuteQuery(ctx, q, nil)
	}

	return nil
}
