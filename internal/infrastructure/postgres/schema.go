package postgres

import (
	"context"
	"fmt"
)

// changesChannel canal LISTEN/NOTIFY; el payload es el nombre del libro modificado.
const changesChannel = "ledger_changes"

// schemaSQL crea las tablas si no existen. El índice único sobre (ledger, identity_key)
// garantiza en la base un solo registro por clave de identidad.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	seq          BIGSERIAL,
	id           TEXT PRIMARY KEY,
	ledger       TEXT NOT NULL,
	identity_key TEXT NOT NULL,
	sku          TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	origin       TEXT NOT NULL DEFAULT '',
	destination  TEXT NOT NULL DEFAULT '',
	quantity     BIGINT NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL,
	created_by   TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS ledger_entries_identity_uq ON ledger_entries (ledger, identity_key);
CREATE INDEX IF NOT EXISTS ledger_entries_ledger_seq_idx ON ledger_entries (ledger, seq);

CREATE TABLE IF NOT EXISTS catalog_items (
	sku           TEXT PRIMARY KEY,
	description   TEXT NOT NULL,
	location_hint TEXT NOT NULL DEFAULT ''
);`

// EnsureSchema aplica el esquema (idempotente).
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
