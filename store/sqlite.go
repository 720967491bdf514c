package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/negotiate"
)

// SQLiteStore persists deals in a single SQLite file. Config, state,
// and offer columns hold JSON documents.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path with WAL
// journaling and initializes the schema. A single connection avoids
// SQLite's writer lock contention.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateDeal(ctx context.Context, deal *Deal) error {
	config, err := json.Marshal(deal.Config)
	if err != nil {
		return fmt.Errorf("store: marshal config: %w", err)
	}
	state, err := json.Marshal(deal.State)
	if err != nil {
		return fmt.Errorf("store: marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deals (id, status, mode, round, config, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		deal.ID.String(), deal.Status, deal.Mode, deal.Round, string(config), string(state),
		deal.CreatedAt, deal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert deal: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, mode, round, config, state, created_at, updated_at
		 FROM deals WHERE id = ?`, id.String())
	return scanDeal(row)
}

func scanDeal(row *sql.Row) (*Deal, error) {
	var (
		deal      Deal
		rawID     string
		rawConfig string
		rawState  string
	)
	err := row.Scan(&rawID, &deal.Status, &deal.Mode, &deal.Round, &rawConfig, &rawState,
		&deal.CreatedAt, &deal.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan deal: %w", err)
	}

	deal.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("store: parse deal id: %w", err)
	}
	if err := json.Unmarshal([]byte(rawConfig), &deal.Config); err != nil {
		return nil, fmt.Errorf("store: unmarshal config: %w", err)
	}
	if err := json.Unmarshal([]byte(rawState), &deal.State); err != nil {
		return nil, fmt.Errorf("store: unmarshal state: %w", err)
	}
	return &deal, nil
}

// SaveTurn updates the deal row and inserts the turn's messages in one
// transaction.
func (s *SQLiteStore) SaveTurn(ctx context.Context, deal *Deal, msgs ...*Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	config, err := json.Marshal(deal.Config)
	if err != nil {
		return fmt.Errorf("store: marshal config: %w", err)
	}
	state, err := json.Marshal(deal.State)
	if err != nil {
		return fmt.Errorf("store: marshal state: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE deals SET status = ?, mode = ?, round = ?, config = ?, state = ?, updated_at = ?
		 WHERE id = ?`,
		deal.Status, deal.Mode, deal.Round, string(config), string(state), deal.UpdatedAt,
		deal.ID.String())
	if err != nil {
		return fmt.Errorf("store: update deal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDealNotFound
	}

	for _, msg := range msgs {
		if err := insertMessage(ctx, tx, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertMessage(ctx context.Context, tx *sql.Tx, msg *Message) error {
	extracted, err := marshalNullable(msg.ExtractedOffer)
	if err != nil {
		return fmt.Errorf("store: marshal extracted offer: %w", err)
	}
	decision, err := marshalNullable(msg.Decision)
	if err != nil {
		return fmt.Errorf("store: marshal decision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, deal_id, role, content, extracted_offer, decision, utility_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.DealID.String(), msg.Role, msg.Content, extracted, decision,
		msg.UtilityScore, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, dealID uuid.UUID) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, deal_id, role, content, extracted_offer, decision, utility_score, created_at
		 FROM messages WHERE deal_id = ? ORDER BY id`, dealID.String())
	if err != nil {
		return nil, fmt.Errorf("store: query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var (
			msg       Message
			rawDealID string
			extracted sql.NullString
			decision  sql.NullString
			score     sql.NullFloat64
		)
		if err := rows.Scan(&msg.ID, &rawDealID, &msg.Role, &msg.Content, &extracted, &decision,
			&score, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		msg.DealID, err = uuid.Parse(rawDealID)
		if err != nil {
			return nil, fmt.Errorf("store: parse message deal id: %w", err)
		}
		if extracted.Valid {
			var o offer.Offer
			if err := json.Unmarshal([]byte(extracted.String), &o); err != nil {
				return nil, fmt.Errorf("store: unmarshal extracted offer: %w", err)
			}
			msg.ExtractedOffer = &o
		}
		if decision.Valid {
			var d negotiate.Decision
			if err := json.Unmarshal([]byte(decision.String), &d); err != nil {
				return nil, fmt.Errorf("store: unmarshal decision: %w", err)
			}
			msg.Decision = &d
		}
		if score.Valid {
			msg.UtilityScore = &score.Float64
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// marshalNullable turns a nil pointer into a SQL NULL instead of the
// JSON string "null".
func marshalNullable(v any) (any, error) {
	switch t := v.(type) {
	case *offer.Offer:
		if t == nil {
			return nil, nil
		}
	case *negotiate.Decision:
		if t == nil {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
