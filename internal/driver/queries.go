package driver

const (
	// --- expansion tasks ---

	SaveExpansionTaskQuery = `
		MERGE (t:ExpansionTask {uuid: $uuid})
		SET t.group_id = $group_id,
			t.task_type = $task_type,
			t.source_node_uuids = $source_node_uuids,
			t.scope = $scope,
			t.status = $status,
			t.progress = $progress,
			t.created_at = $created_at
		RETURN t.uuid AS uuid
	`

	GetExpansionTaskQuery = `
		MATCH (t:ExpansionTask {uuid: $uuid, group_id: $group_id})
		RETURN t.uuid AS uuid, t.group_id AS group_id, t.task_type AS task_type,
			t.source_node_uuids AS source_node_uuids, t.scope AS scope,
			t.status AS status, t.progress AS progress,
			t.discovered_link_uuids AS discovered_link_uuids, t.error AS error,
			t.created_at AS created_at, t.started_at AS started_at,
			t.completed_at AS completed_at
	`

	MarkTaskRunningQuery = `
		MATCH (t:ExpansionTask {uuid: $uuid, group_id: $group_id})
		SET t.status = 'running', t.progress = 0, t.started_at = $started_at
		RETURN t.uuid AS uuid
	`

	UpdateTaskProgressQuery = `
		MATCH (t:ExpansionTask {uuid: $uuid, group_id: $group_id})
		SET t.progress = $progress
		RETURN t.uuid AS uuid
	`

	MarkTaskCompletedQuery = `
		MATCH (t:ExpansionTask {uuid: $uuid, group_id: $group_id})
		SET t.status = 'completed', t.progress = 100,
			t.discovered_link_uuids = $discovered_link_uuids,
			t.completed_at = $completed_at
		RETURN t.uuid AS uuid
	`

	MarkTaskFailedQuery = `
		MATCH (t:ExpansionTask {uuid: $uuid, group_id: $group_id})
		SET t.status = 'failed', t.error = $error, t.completed_at = $completed_at
		RETURN t.uuid AS uuid
	`

	// --- link inference reads ---

	// Unordered node pairs co-accessed in the same session, with no edge
	// between them in either direction. The pair is ordered by uuid so each
	// pair appears once.
	CoAccessCandidatesQuery = `
		MATCH (s:Session {group_id: $group_id})-[:ACCESSED]->(a:Entity {group_id: $group_id}),
			(s)-[:ACCESSED]->(b:Entity {group_id: $group_id})
		WHERE a.uuid < b.uuid
		WITH a, b, count(DISTINCT s) AS co_count
		WHERE co_count >= $min_count AND NOT (a)-[:RELATES_TO]-(b)
		RETURN a.uuid AS source_uuid, a.name AS source_name,
			b.uuid AS target_uuid, b.name AS target_name, co_count
	`

	// Same-type node pairs whose stored embeddings are close in cosine
	// space. Relies on the MAGE vector module being loaded.
	EmbeddingSimilarityCandidatesQuery = `
		MATCH (a:Entity {group_id: $group_id}), (b:Entity {group_id: $group_id})
		WHERE a.uuid < b.uuid
			AND a.node_type = b.node_type
			AND a.name_embedding IS NOT NULL AND b.name_embedding IS NOT NULL
			AND NOT (a)-[:RELATES_TO]-(b)
		WITH a, b, vector_search.cosine_similarity(a.name_embedding, b.name_embedding) AS sim
		WHERE sim > $threshold
		RETURN a.uuid AS source_uuid, a.name AS source_name,
			b.uuid AS target_uuid, b.name AS target_name, sim
	`

	// --- cluster detection reads ---

	// Unconnected node pairs sharing outgoing neighbours. The intersection
	// is computed store-side so neighbour sets never land in app memory.
	SharedNeighborCandidatesQuery = `
		MATCH (a:Entity {group_id: $group_id})-[:RELATES_TO]->(n:Entity),
			(b:Entity {group_id: $group_id})-[:RELATES_TO]->(n)
		WHERE a.uuid < b.uuid AND NOT (a)-[:RELATES_TO]-(b)
		WITH a, b, count(DISTINCT n) AS shared_count
		WHERE shared_count >= $min_shared
		RETURN a.uuid AS source_uuid, a.name AS source_name,
			b.uuid AS target_uuid, b.name AS target_name, shared_count
	`

	// --- pattern detection reads ---

	TwoHopSequenceQuery = `
		MATCH (a:Entity {group_id: $group_id})-[e1:RELATES_TO]->(b:Entity)-[e2:RELATES_TO]->(c:Entity)
		WITH e1.edge_type AS first_type, e2.edge_type AS second_type, count(*) AS occurrences
		WHERE occurrences >= $min_count
		RETURN first_type, second_type, occurrences
		ORDER BY occurrences DESC
	`

	NodeDegreesQuery = `
		MATCH (n:Entity {group_id: $group_id})
		OPTIONAL MATCH (n)-[e:RELATES_TO]-()
		RETURN n.uuid AS uuid, n.name AS name, count(e) AS degree
		ORDER BY n.uuid
	`

	// --- duplicate detection reads ---

	SameTypeNodesQuery = `
		MATCH (n:Entity {group_id: $group_id})
		WHERE n.node_type IS NOT NULL
		RETURN n.uuid AS uuid, n.name AS name, n.node_type AS node_type
		ORDER BY n.node_type, n.uuid
	`

	// --- inferred links ---

	SaveInferredLinkQuery = `
		MERGE (l:InferredLink {uuid: $uuid})
		SET l.group_id = $group_id,
			l.source_node_uuid = $source_node_uuid,
			l.target_node_uuid = $target_node_uuid,
			l.edge_type = $edge_type,
			l.confidence = $confidence,
			l.evidence = $evidence,
			l.created_at = $created_at
		RETURN l.uuid AS uuid
	`

	GetInferredLinkQuery = `
		MATCH (l:InferredLink {uuid: $uuid, group_id: $group_id})
		RETURN l.uuid AS uuid, l.group_id AS group_id,
			l.source_node_uuid AS source_node_uuid,
			l.target_node_uuid AS target_node_uuid,
			l.edge_type AS edge_type, l.confidence AS confidence,
			l.evidence AS evidence, l.approved AS approved,
			l.approved_by AS approved_by, l.approved_at AS approved_at,
			l.created_at AS created_at
	`

	ListPendingLinksQuery = `
		MATCH (l:InferredLink {group_id: $group_id})
		WHERE l.approved IS NULL
		RETURN l.uuid AS uuid, l.group_id AS group_id,
			l.source_node_uuid AS source_node_uuid,
			l.target_node_uuid AS target_node_uuid,
			l.edge_type AS edge_type, l.confidence AS confidence,
			l.evidence AS evidence, l.approved AS approved,
			l.approved_by AS approved_by, l.approved_at AS approved_at,
			l.created_at AS created_at
		ORDER BY l.confidence DESC
	`

	MarkLinkReviewedQuery = `
		MATCH (l:InferredLink {uuid: $uuid, group_id: $group_id})
		SET l.approved = $approved, l.approved_by = $approved_by,
			l.approved_at = $approved_at
		RETURN l.uuid AS uuid
	`

	// Materializes an approved link as a real edge carrying its provenance.
	SaveGraphEdgeQuery = `
		MATCH (source:Entity {uuid: $source_uuid, group_id: $group_id})
		MATCH (target:Entity {uuid: $target_uuid, group_id: $group_id})
		MERGE (source)-[e:RELATES_TO {uuid: $uuid}]->(target)
		SET e.group_id = $group_id,
			e.edge_type = $edge_type,
			e.weight = $weight,
			e.metadata = $metadata,
			e.created_at = $created_at
		RETURN e.uuid AS uuid
	`

	// --- pattern detections ---

	SavePatternDetectionQuery = `
		MERGE (p:PatternDetection {uuid: $uuid})
		SET p.group_id = $group_id,
			p.pattern_type = $pattern_type,
			p.description = $description,
			p.affected_node_uuids = $affected_node_uuids,
			p.confidence = $confidence,
			p.suggested_action = $suggested_action,
			p.detected_at = $detected_at
		RETURN p.uuid AS uuid
	`

	// --- conflicting facts ---

	GetPendingConflictsQuery = `
		MATCH (c:ConflictingFact {group_id: $group_id, status: 'pending'})
		RETURN c.uuid AS uuid, c.group_id AS group_id,
			c.fact_a_uuid AS fact_a_uuid, c.fact_b_uuid AS fact_b_uuid,
			c.fact_a AS fact_a, c.fact_b AS fact_b,
			c.source_a AS source_a, c.source_b AS source_b,
			c.date_a AS date_a, c.date_b AS date_b,
			c.status AS status, c.created_at AS created_at
		ORDER BY c.created_at ASC
	`

	GetConflictQuery = `
		MATCH (c:ConflictingFact {uuid: $uuid, group_id: $group_id})
		RETURN c.uuid AS uuid, c.group_id AS group_id,
			c.fact_a_uuid AS fact_a_uuid, c.fact_b_uuid AS fact_b_uuid,
			c.fact_a AS fact_a, c.fact_b AS fact_b,
			c.source_a AS source_a, c.source_b AS source_b,
			c.date_a AS date_a, c.date_b AS date_b,
			c.status AS status, c.created_at AS created_at
	`

	ResolveConflictQuery = `
		MATCH (c:ConflictingFact {uuid: $uuid, group_id: $group_id})
		SET c.status = 'resolved', c.resolution = $resolution
		RETURN c.uuid AS uuid
	`

	EscalateConflictQuery = `
		MATCH (c:ConflictingFact {uuid: $uuid, group_id: $group_id})
		SET c.status = 'escalated', c.escalation_reason = $reason
		RETURN c.uuid AS uuid
	`

	// Applies a MERGED verdict to the surviving fact node.
	UpdateFactTextQuery = `
		MATCH (f:Fact {uuid: $uuid, group_id: $group_id})
		SET f.text = $text, f.merged = true
		RETURN f.uuid AS uuid
	`

	// --- notifications ---

	SaveNotificationQuery = `
		CREATE (n:Notification {uuid: $uuid})
		SET n.group_id = $group_id,
			n.type = $type,
			n.title = $title,
			n.message = $message,
			n.metadata = $metadata,
			n.priority = $priority,
			n.created_at = $created_at
		RETURN n.uuid AS uuid
	`
)
