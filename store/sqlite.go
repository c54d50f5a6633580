package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/use-agent/founderscope/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	name        TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	industries  TEXT NOT NULL,
	website     TEXT NOT NULL,
	last_stage  TEXT NOT NULL,
	linkedin    TEXT NOT NULL,
	location    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS founders (
	company     TEXT NOT NULL REFERENCES companies(name) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	connections TEXT,
	location    TEXT,
	education   TEXT NOT NULL,
	experience  TEXT NOT NULL,
	PRIMARY KEY (company, position)
);`

// ExportSQLite writes the store into a SQLite database at path, replacing
// rows of companies already present. Nested lists are stored as JSON.
func (s *Store) ExportSQLite(ctx context.Context, path string) error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return eris.Wrap(err, "store: open sqlite")
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return eris.Wrap(err, "store: create schema")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin")
	}
	defer tx.Rollback()

	for name, c := range s.All() {
		if err := exportCompany(ctx, tx, name, c); err != nil {
			return eris.Wrapf(err, "store: export %s", name)
		}
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "store: commit")
	}
	return nil
}

func exportCompany(ctx context.Context, tx *sql.Tx, name string, c *models.Company) error {
	industries, err := json.Marshal(c.Industries)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM founders WHERE company = ?`, name); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO companies (name, description, industries, website, last_stage, linkedin, location)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			industries  = excluded.industries,
			website     = excluded.website,
			last_stage  = excluded.last_stage,
			linkedin    = excluded.linkedin,
			location    = excluded.location`,
		name, c.Description, string(industries), c.Website, c.LastStage, c.LinkedIn, c.Location)
	if err != nil {
		return err
	}

	for i, f := range c.Founders {
		edu, err := json.Marshal(f.Education)
		if err != nil {
			return err
		}
		exp, err := json.Marshal(f.Experience)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO founders (company, position, name, connections, location, education, experience)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			name, i, f.Name, f.Connections, f.Location, string(edu), string(exp))
		if err != nil {
			return err
		}
	}
	return nil
}
