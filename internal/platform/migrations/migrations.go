// Package migrations creates the relational schema, including the
// row-level-security policies that enforce tenant isolation.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// statements run in order inside Apply. Every tenant-owned table enables and
// forces row-level security with a policy matching the per-transaction
// binding set by the session layer (app.current_tenant). FORCE applies the
// policy to the table owner too, since the server connects with the same
// role that ran the migrations.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		tenant_id UUID PRIMARY KEY,
		name      TEXT NOT NULL UNIQUE,
		time      TIMESTAMPTZ NOT NULL DEFAULT now(),
		status    TEXT NOT NULL DEFAULT 'ACTIVE',
		tier      TEXT NOT NULL DEFAULT 'BRONZE'
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		user_id   UUID PRIMARY KEY,
		tenant_id UUID NOT NULL REFERENCES tenants (tenant_id),
		name      TEXT,
		email     TEXT,
		time      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		project_id  UUID PRIMARY KEY,
		tenant_id   UUID NOT NULL REFERENCES tenants (tenant_id),
		name        TEXT NOT NULL,
		description TEXT,
		time        TIMESTAMPTZ NOT NULL DEFAULT now(),
		user_id     UUID NOT NULL REFERENCES users (user_id),
		UNIQUE (tenant_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS frontiers (
		frontier_id UUID PRIMARY KEY,
		project_id  UUID NOT NULL REFERENCES projects (project_id),
		tenant_id   UUID NOT NULL REFERENCES tenants (tenant_id),
		name        TEXT NOT NULL,
		description TEXT,
		time        TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (project_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS factors (
		frontier_id UUID NOT NULL REFERENCES frontiers (frontier_id) ON DELETE CASCADE,
		tenant_id   UUID NOT NULL REFERENCES tenants (tenant_id),
		factor      TEXT NOT NULL,
		influence   TEXT NOT NULL DEFAULT 'ABSENT',
		PRIMARY KEY (frontier_id, factor)
	)`,

	`CREATE TABLE IF NOT EXISTS empiricals (
		frontier_id UUID NOT NULL REFERENCES frontiers (frontier_id) ON DELETE CASCADE,
		tenant_id   UUID NOT NULL REFERENCES tenants (tenant_id),
		empirical   TEXT NOT NULL,
		value       INTEGER NOT NULL CHECK (value BETWEEN 0 AND 100),
		PRIMARY KEY (frontier_id, empirical)
	)`,

	`CREATE TABLE IF NOT EXISTS functions_data (
		function_id UUID PRIMARY KEY,
		frontier_id UUID NOT NULL REFERENCES frontiers (frontier_id),
		tenant_id   UUID NOT NULL REFERENCES tenants (tenant_id),
		type        TEXT NOT NULL CHECK (type IN ('ALI', 'AIE')),
		name        TEXT NOT NULL,
		description TEXT,
		UNIQUE (frontier_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS record_layouts (
		function_id UUID NOT NULL REFERENCES functions_data (function_id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		tenant_id   UUID NOT NULL REFERENCES tenants (tenant_id),
		description TEXT,
		PRIMARY KEY (function_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS data_elements (
		function_id        UUID NOT NULL,
		record_layout_name TEXT NOT NULL,
		name               TEXT NOT NULL,
		tenant_id          UUID NOT NULL REFERENCES tenants (tenant_id),
		description        TEXT,
		PRIMARY KEY (function_id, record_layout_name, name),
		FOREIGN KEY (function_id, record_layout_name)
			REFERENCES record_layouts (function_id, name) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS functions_transactions (
		function_id UUID PRIMARY KEY,
		frontier_id UUID NOT NULL REFERENCES frontiers (frontier_id),
		tenant_id   UUID NOT NULL REFERENCES tenants (tenant_id),
		type        TEXT NOT NULL CHECK (type IN ('EE', 'CE', 'SE')),
		name        TEXT NOT NULL,
		description TEXT,
		UNIQUE (frontier_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS data_function_refs (
		function_id            UUID NOT NULL REFERENCES functions_transactions (function_id) ON DELETE CASCADE,
		referenced_function_id UUID NOT NULL,
		tenant_id              UUID NOT NULL REFERENCES tenants (tenant_id),
		PRIMARY KEY (function_id, referenced_function_id)
	)`,

	`ALTER TABLE users ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE projects ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE frontiers ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE factors ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE empiricals ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE functions_data ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE record_layouts ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE data_elements ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE functions_transactions ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,
	`ALTER TABLE data_function_refs ENABLE ROW LEVEL SECURITY, FORCE ROW LEVEL SECURITY`,

	`DROP POLICY IF EXISTS tenant_isolation ON users;
	 CREATE POLICY tenant_isolation ON users
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON projects;
	 CREATE POLICY tenant_isolation ON projects
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON frontiers;
	 CREATE POLICY tenant_isolation ON frontiers
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON factors;
	 CREATE POLICY tenant_isolation ON factors
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON empiricals;
	 CREATE POLICY tenant_isolation ON empiricals
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON functions_data;
	 CREATE POLICY tenant_isolation ON functions_data
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON record_layouts;
	 CREATE POLICY tenant_isolation ON record_layouts
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON data_elements;
	 CREATE POLICY tenant_isolation ON data_elements
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON functions_transactions;
	 CREATE POLICY tenant_isolation ON functions_transactions
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
	`DROP POLICY IF EXISTS tenant_isolation ON data_function_refs;
	 CREATE POLICY tenant_isolation ON data_function_refs
	 USING (tenant_id = current_setting('app.current_tenant')::uuid)`,
}

// Apply executes every migration statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

// Count returns the number of migration statements; used by tests.
func Count() int { return len(statements) }
