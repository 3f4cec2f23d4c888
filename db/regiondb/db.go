// Package regiondb implements sqlite3 database storage for region reference
// tables.
package regiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	"github.com/r2northstar/usregion/pkg/usregion"
)

// ErrEmpty is returned by Load if the database does not contain any regions.
var ErrEmpty = errors.New("no regions in database")

// DB stores a region table in a sqlite3 database.
type DB struct {
	x *sqlx.DB
}

// Open opens a DB from the provided sqlite3 filename.
func Open(name string) (*DB, error) {
	x, err := sqlx.Connect("sqlite3", (&url.URL{
		Path: name,
		RawQuery: (url.Values{
			"_journal":      {"WAL"},
			"_busy_timeout": {"6000"},
		}).Encode(),
	}).String())
	if err != nil {
		return nil, err
	}
	return &DB{x}, nil
}

func (db *DB) Close() error {
	return db.x.Close()
}

type regionRow struct {
	Code  string `db:"code"`
	Class string `db:"class"`
	Name  string `db:"name"`
	AP    string `db:"ap"`
	Pos   int64  `db:"pos"`
}

type aliasRow struct {
	Code  string `db:"code"`
	Alias string `db:"alias"`
	Pos   int64  `db:"pos"`
}

// Load reads the stored regions into a new table, in the order they were
// saved.
func (db *DB) Load(ctx context.Context) (*usregion.Table, error) {
	tx, err := db.x.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var regions []regionRow
	if err := tx.SelectContext(ctx, &regions, `SELECT code, class, name, ap, pos FROM regions ORDER BY pos`); err != nil {
		return nil, fmt.Errorf("get regions: %w", err)
	}
	if len(regions) == 0 {
		return nil, ErrEmpty
	}

	var aliases []aliasRow
	if err := tx.SelectContext(ctx, &aliases, `SELECT code, alias, pos FROM aliases ORDER BY code, pos`); err != nil {
		return nil, fmt.Errorf("get aliases: %w", err)
	}
	other := map[string][]string{}
	for _, a := range aliases {
		other[a.Code] = append(other[a.Code], a.Alias)
	}

	rs := make([]usregion.Record, len(regions))
	for i, r := range regions {
		rs[i] = usregion.Record{
			Code:  r.Code,
			Name:  r.Name,
			AP:    r.AP,
			Other: other[r.Code],
			Class: usregion.Class(r.Class),
		}
		delete(other, r.Code)
	}
	if len(other) != 0 {
		return nil, fmt.Errorf("found aliases for %d unknown regions", len(other))
	}

	t, err := usregion.NewTable(rs)
	if err != nil {
		return nil, fmt.Errorf("invalid region table: %w", err)
	}
	return t, nil
}

// Save replaces the stored regions with the contents of t.
func (db *DB) Save(ctx context.Context, t *usregion.Table) error {
	tx, err := db.x.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM aliases`); err != nil {
		return fmt.Errorf("clear aliases: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM regions`); err != nil {
		return fmt.Errorf("clear regions: %w", err)
	}
	for i, r := range t.Records() {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO
			regions ( code,  class,  name,  ap,  pos)
			VALUES  (:code, :class, :name, :ap, :pos)
		`, regionRow{
			Code:  r.Code,
			Class: string(r.Class),
			Name:  r.Name,
			AP:    r.AP,
			Pos:   int64(i),
		}); err != nil {
			return fmt.Errorf("insert region %q: %w", r.Code, err)
		}
		for j, a := range r.Other {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO
				aliases ( code,  alias,  pos)
				VALUES  (:code, :alias, :pos)
			`, aliasRow{
				Code:  r.Code,
				Alias: a,
				Pos:   int64(j),
			}); err != nil {
				return fmt.Errorf("insert alias %q for region %q: %w", a, r.Code, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
