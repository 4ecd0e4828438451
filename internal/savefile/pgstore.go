package savefile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultSlot = "default"

// PGStore keeps the XML save document in Postgres, one row per slot. It is
// meant for hosts without a writable disk; the document format is identical to
// the file backend.
type PGStore struct {
	db   *pgxpool.Pool
	slot string
}

func NewPGStore(db *pgxpool.Pool, slot string) *PGStore {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = DefaultSlot
	}
	return &PGStore{db: db, slot: slot}
}

func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_saves (
			slot     TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create game_saves: %w", err)
	}
	return nil
}

func (s *PGStore) Load(ctx context.Context) (*game.Snapshot, error) {
	var document string
	err := s.db.QueryRow(ctx, `
		SELECT document
		FROM game_saves
		WHERE slot = $1
	`, s.slot).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("read save slot %q: %w", s.slot, err)
	}
	snap, err := Decode([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("decode save slot %q: %w", s.slot, err)
	}
	return snap, nil
}

func (s *PGStore) Save(ctx context.Context, snap *game.Snapshot) error {
	body, err := Encode(snap)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO game_saves (slot, document, saved_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot) DO UPDATE
		SET document = EXCLUDED.document, saved_at = EXCLUDED.saved_at
	`, s.slot, string(body))
	if err != nil {
		return fmt.Errorf("write save slot %q: %w", s.slot, err)
	}
	return nil
}

func (s *PGStore) Remove(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM game_saves WHERE slot = $1`, s.slot); err != nil {
		return fmt.Errorf("delete save slot %q: %w", s.slot, err)
	}
	return nil
}
