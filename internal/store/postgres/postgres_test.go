package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapErr(t *testing.T) {
	fkViolation := &pgconn.PgError{Code: "23503", ConstraintName: "monthly_usage_user_id_fkey"}
	other := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		want    error
		wantMsg string
	}{
		{"nil", nil, nil, ""},
		{"no rows", sql.ErrNoRows, store.ErrNotFound, ""},
		{"wrapped no rows", fmt.Errorf("get user: %w", sql.ErrNoRows), store.ErrNotFound, ""},
		{"unique violation", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}, store.ErrConflict, "users_email_key"},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), store.ErrConflict, ""},
		{"other pg error", fkViolation, fkViolation, ""},
		{"driver error", other, other, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if tt.wantMsg != "" && !strings.Contains(got.Error(), tt.wantMsg) {
				t.Errorf("expected %q in %q", tt.wantMsg, got.Error())
			}
		})
	}
}
