package store

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS deals (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	mode TEXT NOT NULL,
	round INTEGER NOT NULL DEFAULT 0,
	config TEXT NOT NULL,
	state TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	deal_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	extracted_offer TEXT,
	decision TEXT,
	utility_score REAL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (deal_id) REFERENCES deals(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_deal_id ON messages(deal_id);
`

// InitSchema creates the tables if they do not exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
