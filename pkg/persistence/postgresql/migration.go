package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Status registry. position preserves insertion order.
			CREATE TABLE workflow_statuses (
				id VARCHAR(255) PRIMARY KEY,
				position BIGSERIAL NOT NULL,
				name VARCHAR(255) NOT NULL,
				entity_type VARCHAR(50) NOT NULL,
				color VARCHAR(32) NOT NULL DEFAULT '',
				sort_order INT NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT true,
				allowed_transitions JSONB NOT NULL DEFAULT '[]',
				automation_rules JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_workflow_statuses_entity_type ON workflow_statuses(entity_type);
			CREATE INDEX idx_workflow_statuses_position ON workflow_statuses(position);

			CREATE TABLE assignment_rules (
				id VARCHAR(255) PRIMARY KEY,
				position BIGSERIAL NOT NULL,
				name VARCHAR(255) NOT NULL,
				entity_type VARCHAR(50) NOT NULL,
				method VARCHAR(50) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true,
				criteria JSONB NOT NULL DEFAULT '[]',
				assign_to_role VARCHAR(255) NOT NULL,
				specific_users JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_assignment_rules_entity_type ON assignment_rules(entity_type);
		`,
		2: `
			CREATE TABLE status_history (
				id VARCHAR(255) PRIMARY KEY,
				entity_type VARCHAR(50) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				from_status VARCHAR(255) NOT NULL DEFAULT '',
				to_status VARCHAR(255) NOT NULL,
				changed_by VARCHAR(255) NOT NULL DEFAULT '',
				changed_at TIMESTAMP WITH TIME ZONE NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				duration_days DOUBLE PRECISION
			);

			CREATE INDEX idx_status_history_entity ON status_history(entity_type, entity_id, changed_at);
		`,
		3: `
			-- seq orders entries that share a changed_at.
			ALTER TABLE status_history ADD COLUMN seq BIGSERIAL NOT NULL;

			DROP INDEX idx_status_history_entity;
			CREATE INDEX idx_status_history_entity ON status_history(entity_type, entity_id, changed_at, seq);
		`,
	}
}
