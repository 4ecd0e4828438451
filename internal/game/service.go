package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Persister stores complete game snapshots. Load returns ErrNoSave when
// nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Remove(ctx context.Context) error
}

// Service owns the game State and serialises every operation on it. Each
// successful mutation is followed by a full save; a failed save is logged and
// the in-memory state stays authoritative.
type Service struct {
	store Persister
	log   *slog.Logger
	opts  []Option

	mu    sync.Mutex
	state *State
}

func NewService(store Persister, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store: store,
		log:   logger,
		opts:  opts,
		state: NewState(opts...),
	}
}

// Load replaces the current state with the persisted one. On any failure the
// service keeps a fresh empty game; a missing save is not an error.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = NewState(s.opts...)
	if s.store == nil {
		return nil
	}
	snap, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoSave) {
		s.log.Info("no saved game, starting new game")
		return nil
	}
	if err != nil {
		s.log.Error("load saved game failed, starting new game", "err", err)
		return fmt.Errorf("%w: load: %w", ErrPersistence, err)
	}
	state, err := NewStateFromSnapshot(snap, s.opts...)
	if err != nil {
		s.log.Error("saved game rejected, starting new game", "err", err)
		return fmt.Errorf("%w: load: %w", ErrPersistence, err)
	}
	s.state = state
	s.log.Info("saved game loaded",
		"players", len(snap.Players),
		"transactions", len(state.transactions),
		"currency", state.currency,
	)
	return nil
}

func (s *Service) ListPlayers() PlayersView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return PlayersView{
		Players:  s.state.Players(),
		Currency: s.state.Currency(),
		Settings: s.state.Rules(),
	}
}

func (s *Service) Player(id int) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.Player(id)
	if !ok {
		return Player{}, ErrPlayerNotFound
	}
	return p, nil
}

func (s *Service) CreatePlayer(ctx context.Context, in CreatePlayerInput) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.state.AddPlayer(in.Name, in.Avatar)
	if err != nil {
		return Player{}, err
	}
	s.persist(ctx)
	return p, nil
}

func (s *Service) DeletePlayer(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.RemovePlayer(id) {
		return ErrPlayerNotFound
	}
	s.persist(ctx)
	return nil
}

func (s *Service) PatchPlayer(ctx context.Context, id int, patch PlayerPatch) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.state.UpdatePlayer(id, patch)
	if err != nil {
		return Player{}, err
	}
	s.persist(ctx)
	return p, nil
}

// RecordTransaction applies the deltas to the player's balances and logs the
// movement under the player's current name.
func (s *Service) RecordTransaction(ctx context.Context, in TransactionInput) (TransactionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.state.Player(in.PlayerID)
	if !ok {
		return TransactionResult{}, ErrPlayerNotFound
	}
	cash := current.Cash + in.CashAmount
	account := current.Account + in.AccountAmount
	updated, err := s.state.UpdatePlayer(in.PlayerID, PlayerPatch{Cash: &cash, Account: &account})
	if err != nil {
		return TransactionResult{}, err
	}
	description := in.Description
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}
	tx := s.state.AddTransaction(updated.Name, in.CashAmount, in.AccountAmount, description)
	s.persist(ctx)
	return TransactionResult{Player: updated, Transaction: tx}, nil
}

func (s *Service) ListTransactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.RecentTransactions(RecentTransactionLimit)
}

func (s *Service) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Currency()
}

func (s *Service) SetCurrency(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.SetCurrency(code); err != nil {
		return s.state.Currency(), err
	}
	s.persist(ctx)
	return s.state.Currency(), nil
}

// ResetGame drops the persisted save and starts an empty game. The empty
// state is written on the next mutation, not here. The removal outlives a
// canceled request so the old game cannot come back on restart.
func (s *Service) ResetGame(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Remove(context.WithoutCancel(ctx)); err != nil {
			s.log.Error("remove saved game failed", "err", err)
		} else {
			s.log.Info("saved game removed")
		}
	}
	s.state = NewState(s.opts...)
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Snapshot()
}

// persist writes the whole state once the mutation has been applied. It
// ignores cancellation of ctx: a mutation that was applied is always saved.
func (s *Service) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	snap := s.state.Snapshot()
	if err := s.store.Save(context.WithoutCancel(ctx), snap); err != nil {
		s.log.Error("save game failed", "err", fmt.Errorf("%w: %w", ErrPersistence, err))
		return
	}
	s.log.Info("game saved", "players", len(snap.Players), "transactions", len(snap.Transactions))
}
