package migrations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestApplyExecutesAllStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	for i := 0; i < Count(); i++ {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := Apply(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyStopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnError(errors.New("syntax error"))

	if err := Apply(context.Background(), db); err == nil {
		t.Fatal("expected error when a statement fails")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// Every table with row-level security enabled must also force it, so the
// owning role is not exempt, and must carry the tenant isolation policy
// keyed on the per-transaction binding.
func TestEveryProtectedTableHasPolicy(t *testing.T) {
	enabled := []string{}
	policies := map[string]bool{}

	for _, statement := range statements {
		switch {
		case strings.Contains(statement, "ENABLE ROW LEVEL SECURITY"):
			table := strings.Fields(statement)[2]
			enabled = append(enabled, table)
			if !strings.Contains(statement, "FORCE ROW LEVEL SECURITY") {
				t.Errorf("%s: row level security not forced on the table owner", table)
			}
		case strings.Contains(statement, "CREATE POLICY tenant_isolation"):
			fields := strings.Fields(statement)
			for i, field := range fields {
				if field == "ON" {
					policies[strings.TrimSuffix(fields[i+1], ";")] = true
				}
			}
			if !strings.Contains(statement, "current_setting('app.current_tenant')") {
				t.Errorf("policy not keyed on app.current_tenant: %s", statement)
			}
		}
	}

	if len(enabled) != 10 {
		t.Fatalf("tables with row level security = %d, want 10", len(enabled))
	}
	for _, table := range enabled {
		if !policies[table] {
			t.Errorf("%s: tenant isolation policy missing", table)
		}
	}
}
