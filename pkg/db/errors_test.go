package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "uq_reconciliation_alerts_unresolved_dedup",
	}

	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{
			name:       "typed pg error with matching constraint",
			err:        uniqueErr,
			constraint: "uq_reconciliation_alerts_unresolved_dedup",
			want:       true,
		},
		{
			name:       "typed pg error wrapped",
			err:        fmt.Errorf("insert alert: %w", uniqueErr),
			constraint: "uq_reconciliation_alerts_unresolved_dedup",
			want:       true,
		},
		{
			name:       "typed pg error without constraint filter",
			err:        uniqueErr,
			constraint: "",
			want:       true,
		},
		{
			name:       "typed pg error with different constraint",
			err:        uniqueErr,
			constraint: "uq_other",
			want:       false,
		},
		{
			name:       "typed pg error with non unique code",
			err:        &pgconn.PgError{Code: "23503", ConstraintName: "fk_alerts_org"},
			constraint: "",
			want:       false,
		},
		{
			name:       "untyped message fallback",
			err:        errors.New(`duplicate key value violates unique constraint "uq_reconciliation_alerts_unresolved_dedup"`),
			constraint: "uq_reconciliation_alerts_unresolved_dedup",
			want:       true,
		},
		{
			name:       "untyped message without duplicate marker",
			err:        errors.New("uq_reconciliation_alerts_unresolved_dedup is busy"),
			constraint: "uq_reconciliation_alerts_unresolved_dedup",
			want:       false,
		},
		{
			name:       "unrelated error",
			err:        errors.New("connection refused"),
			constraint: "",
			want:       false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}
