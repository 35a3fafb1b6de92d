package sql

import "strings"

// schema is applied on every open. Records are never dropped; only status
// and score fields change after insertion, and the proofs table only grows.
const schema = `
CREATE TABLE IF NOT EXISTS rigs
(
    id            BLOB PRIMARY KEY,
    owner         BLOB NOT NULL,
    status        INTEGER NOT NULL,
    registered_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reputation
(
    rig            BLOB PRIMARY KEY,
    score          INTEGER NOT NULL,
    total_proofs   INTEGER NOT NULL DEFAULT 0,
    valid_proofs   INTEGER NOT NULL DEFAULT 0,
    invalid_proofs INTEGER NOT NULL DEFAULT 0,
    last_update    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions
(
    rig             BLOB PRIMARY KEY,
    total_work      INTEGER NOT NULL DEFAULT 0,
    last_submission INTEGER NOT NULL DEFAULT 0,
    active          INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS proofs
(
    digest   BLOB PRIMARY KEY,
    rig      BLOB NOT NULL,
    work     INTEGER NOT NULL,
    consumed INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS proofs_by_rig ON proofs (rig);
`

func applySchema(db *Database) error {
	// sqlite prepares one statement at a time, so the script is executed
	// statement by statement.
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt+";", nil, nil); err != nil {
			return err
		}
	}
	return nil
}
