package savefile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"

	"github.com/google/uuid"
)

const DefaultPath = "game_data.xml"

// FileStore keeps the save at a fixed path. Writes go to a sibling temp file
// that is renamed into place, so readers see either the old or the new save.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{path: path}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) (*game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, game.ErrNoSave
		}
		return nil, fmt.Errorf("read save file: %w", err)
	}
	snap, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return snap, nil
}

func (f *FileStore) Save(ctx context.Context, snap *game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := Encode(snap)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(f.path)+"."+uuid.NewString()+".tmp")
	if err := writeSynced(tmp, body); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace save file: %w", err)
	}
	return nil
}

// Remove deletes the save file. A missing file is not an error.
func (f *FileStore) Remove(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove save file: %w", err)
	}
	return nil
}

func writeSynced(path string, body []byte) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	if _, err := file.Write(body); err != nil {
		_ = file.Close()
		return fmt.Errorf("write temp save: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("sync temp save: %w", err)
	}
	return file.Close()
}
