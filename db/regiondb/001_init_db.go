package regiondb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

func init() {
	migrate(up001, down001)
}

func up001(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, strings.ReplaceAll(`
		CREATE TABLE regions (
			code  TEXT PRIMARY KEY NOT NULL,
			class TEXT NOT NULL,
			name  TEXT NOT NULL,
			ap    TEXT NOT NULL DEFAULT '',
			pos   INTEGER NOT NULL
		) STRICT;
	`, `
		`, "\n")); err != nil {
		return fmt.Errorf("create regions table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, strings.ReplaceAll(`
		CREATE TABLE aliases (
			code  TEXT NOT NULL,
			alias TEXT NOT NULL,
			pos   INTEGER NOT NULL,
			PRIMARY KEY (code, pos)
		) STRICT;
	`, `
		`, "\n")); err != nil {
		return fmt.Errorf("create aliases table: %w", err)
	}
	return nil
}

func down001(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DROP TABLE aliases`); err != nil {
		return fmt.Errorf("drop aliases table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE regions`); err != nil {
		return fmt.Errorf("drop regions table: %w", err)
	}
	return nil
}
