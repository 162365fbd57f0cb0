package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users", Message: "duplicate key value"}
	err := Wrap(CodeConflict, fmt.Errorf("insert: %w", pgErr), "create user")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "users_email_key" || d.PGTable != "users" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected chain of 3, got %d: %v", len(d.Chain), d.Chain)
	}
	if d.Fields()["pg_constraint"] != "users_email_key" {
		t.Fatalf("expected constraint in fields")
	}
}

func TestDumpExtractsPQDetails(t *testing.T) {
	err := Wrap(CodeDependency, &pq.Error{Code: "40001", Table: "orders", Message: "serialization failure"}, "patch order")

	d := Dump(err)
	if d.PGCode != "40001" || d.PGTable != "orders" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if !d.Retryable {
		t.Fatalf("dependency errors are retryable")
	}
}

func TestDumpPlainError(t *testing.T) {
	d := Dump(fmt.Errorf("plain"))
	if d.Code != "" || d.PGCode != "" {
		t.Fatalf("unexpected typed fields %+v", d)
	}
	if _, ok := d.Fields()["pg_code"]; ok {
		t.Fatalf("empty pg fields should be skipped")
	}
	if empty := Dump(nil); empty.TopMessage != "" || empty.Chain != nil {
		t.Fatalf("nil error should dump to zero value")
	}
}
