package savefile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"
)

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope", "game_data.xml"))
	snap, err := store.Load(t.Context())
	if !errors.Is(err, game.ErrNoSave) {
		t.Fatalf("got %v", err)
	}
	if snap != nil {
		t.Fatalf("got snapshot %+v", snap)
	}
}

func TestFileStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "saves", "game_data.xml"))
	want := sampleSnapshot()
	if err := store.Save(t.Context(), want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(t.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mismatch\n got: %+v\nwant: %+v", got, want)
	}

	// Second save overwrites and leaves no temp files behind.
	want.Currency = game.CurrencyEUR
	want.Players = want.Players[:1]
	if err := store.Save(t.Context(), want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "saves"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "game_data.xml" {
		t.Fatalf("unexpected files: %v", entries)
	}
	got, err = store.Load(t.Context())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Currency != game.CurrencyEUR || len(got.Players) != 1 {
		t.Fatalf("reload got %+v", got)
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_data.xml")
	if err := os.WriteFile(path, []byte("<game><currency>HUF"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := NewFileStore(path).Load(t.Context())
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("got %v", err)
	}
	if errors.Is(err, game.ErrNoSave) {
		t.Fatalf("corrupt file must not look like a missing save")
	}
}

func TestFileStoreRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_data.xml")
	store := NewFileStore(path)
	if err := store.Remove(t.Context()); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if err := store.Save(t.Context(), sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Remove(t.Context()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still present: %v", err)
	}
}

func TestFileStoreHonoursCanceledContext(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "game_data.xml"))
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := store.Save(ctx, sampleSnapshot()); !errors.Is(err, context.Canceled) {
		t.Fatalf("save got %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("canceled save wrote a file")
	}
}

func TestFileStoreDefaultPath(t *testing.T) {
	if got := NewFileStore("").Path(); got != DefaultPath {
		t.Fatalf("got %q", got)
	}
}

func TestServiceWithFileStore(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "game_data.xml")

	svc := game.NewService(NewFileStore(path), nil)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load empty: %v", err)
	}
	p, err := svc.CreatePlayer(ctx, game.CreatePlayerInput{Name: "Ann"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetCurrency(ctx, game.CurrencyEUR); err != nil {
		t.Fatalf("currency: %v", err)
	}
	if _, err := svc.RecordTransaction(ctx, game.TransactionInput{PlayerID: p.ID, CashAmount: 100, Description: "Fizetés"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	restarted := game.NewService(NewFileStore(path), nil)
	if err := restarted.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(restarted.Snapshot(), svc.Snapshot()) {
		t.Fatalf("restart mismatch\n got: %+v\nwant: %+v", restarted.Snapshot(), svc.Snapshot())
	}

	restarted.ResetGame(ctx)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("reset kept the save file")
	}
}

func TestServiceWithFileStoreSavesOnCanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_data.xml")
	svc := game.NewService(NewFileStore(path), nil)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := svc.CreatePlayer(ctx, game.CreatePlayerInput{Name: "Ann"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	snap, err := NewFileStore(path).Load(t.Context())
	if err != nil {
		t.Fatalf("save missing after canceled request: %v", err)
	}
	if len(snap.Players) != 1 || snap.Players[0].Name != "Ann" {
		t.Fatalf("saved %+v", snap.Players)
	}

	svc.ResetGame(ctx)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("reset with canceled context kept the save file")
	}
}

func TestServiceResavesUnusualKinds(t *testing.T) {
	doc := strings.Replace(legacySave, "</insurances>",
		"  <home.guard>True</home.guard>\n        <életbiztosítás>True</életbiztosítás>\n      </insurances>", 1)
	doc = strings.Replace(doc, "</loans>",
		"  <lakás-hitel.2>\n          <active>True</active>\n          <remaining>5</remaining>\n        </lakás-hitel.2>\n      </loans>", 1)
	path := filepath.Join(t.TempDir(), "game_data.xml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx := t.Context()
	svc := game.NewService(NewFileStore(path), nil)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := svc.CreatePlayer(ctx, game.CreatePlayerInput{Name: "Bob"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	snap, err := NewFileStore(path).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(snap, svc.Snapshot()) {
		t.Fatalf("disk and memory differ\n disk: %+v\n  mem: %+v", snap, svc.Snapshot())
	}
	anna := snap.Players[0]
	if !anna.Insurances["home.guard"] || !anna.Insurances["életbiztosítás"] {
		t.Fatalf("insurances %v", anna.Insurances)
	}
	if l := anna.Loans["lakás-hitel.2"]; !l.Active || l.Remaining != 5 {
		t.Fatalf("loan %+v", l)
	}
}
