package game

import (
	"fmt"
	"slices"
	"time"
)

// State is the in-memory game: roster, ledger and active currency. It is not
// safe for concurrent use; Service serialises access.
type State struct {
	currency     string
	nextID       int
	players      []Player
	transactions []Transaction
	now          func() time.Time
}

type Option func(*State)

// WithClock overrides the time source used to stamp transactions.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

func NewState(opts ...Option) *State {
	s := &State{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// NewStateFromSnapshot rebuilds a State from persisted data. The snapshot is
// checked against the roster invariants; a ledger longer than the cap keeps
// only its newest entries.
func NewStateFromSnapshot(snap *Snapshot, opts ...Option) (*State, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if !IsSupportedCurrency(snap.Currency) {
		return nil, fmt.Errorf("%w: currency %q", ErrInvalidSnapshot, snap.Currency)
	}
	if snap.NextID < 1 {
		return nil, fmt.Errorf("%w: next id %d", ErrInvalidSnapshot, snap.NextID)
	}
	names := make(map[string]struct{}, len(snap.Players))
	ids := make(map[int]struct{}, len(snap.Players))
	for _, p := range snap.Players {
		if p.ID >= snap.NextID {
			return nil, fmt.Errorf("%w: player id %d not below next id %d", ErrInvalidSnapshot, p.ID, snap.NextID)
		}
		if _, dup := ids[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate player id %d", ErrInvalidSnapshot, p.ID)
		}
		if _, dup := names[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate player name %q", ErrInvalidSnapshot, p.Name)
		}
		ids[p.ID] = struct{}{}
		names[p.Name] = struct{}{}
	}

	s := NewState(opts...)
	copied := snap.Clone()
	s.currency = copied.Currency
	s.nextID = copied.NextID
	s.players = copied.Players
	s.transactions = copied.Transactions
	if len(s.transactions) > MaxTransactions {
		s.transactions = s.transactions[len(s.transactions)-MaxTransactions:]
	}
	return s, nil
}

func (s *State) Reset() {
	s.currency = DefaultCurrency
	s.nextID = 1
	s.players = []Player{}
	s.transactions = []Transaction{}
}

func (s *State) Snapshot() *Snapshot {
	return (&Snapshot{
		Currency:     s.currency,
		NextID:       s.nextID,
		Players:      s.players,
		Transactions: s.transactions,
	}).Clone()
}

func (s *State) Currency() string { return s.currency }

func (s *State) NextID() int { return s.nextID }

func (s *State) Rules() CurrencyRules {
	rules, _ := RulesFor(s.currency)
	return rules
}

func (s *State) Players() []Player {
	out := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Clone())
	}
	return out
}

func (s *State) Transactions() []Transaction {
	return slices.Clone(s.transactions)
}

// RecentTransactions returns up to n of the newest transactions, newest first.
func (s *State) RecentTransactions(n int) []Transaction {
	start := max(len(s.transactions)-n, 0)
	out := append([]Transaction{}, s.transactions[start:]...)
	slices.Reverse(out)
	return out
}

func (s *State) AddPlayer(name, avatar string) (Player, error) {
	name, err := normalizePlayerName(name)
	if err != nil {
		return Player{}, err
	}
	if s.indexByName(name) >= 0 {
		return Player{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	avatar = normalizeAvatar(avatar)
	rules := s.Rules()
	p := Player{
		ID:         s.nextID,
		Name:       name,
		Avatar:     avatar,
		Cash:       rules.StartCash,
		Account:    rules.StartAccount,
		Insurances: NewInsurances(),
		Loans:      NewLoans(),
	}
	s.nextID++
	s.players = append(s.players, p)
	return p.Clone(), nil
}

// RemovePlayer reports whether a player was removed. Removing an unknown id is
// not an error at this level.
func (s *State) RemovePlayer(id int) bool {
	i := s.indexByID(id)
	if i < 0 {
		return false
	}
	s.players = slices.Delete(s.players, i, i+1)
	return true
}

func (s *State) Player(id int) (Player, bool) {
	i := s.indexByID(id)
	if i < 0 {
		return Player{}, false
	}
	return s.players[i].Clone(), true
}

func (s *State) UpdatePlayer(id int, patch PlayerPatch) (Player, error) {
	i := s.indexByID(id)
	if i < 0 {
		return Player{}, ErrPlayerNotFound
	}
	if patch.Name != nil {
		name, err := normalizePlayerName(*patch.Name)
		if err != nil {
			return Player{}, err
		}
		if j := s.indexByName(name); j >= 0 && j != i {
			return Player{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		patch.Name = &name
	}
	if patch.Avatar != nil {
		avatar := normalizeAvatar(*patch.Avatar)
		patch.Avatar = &avatar
	}
	if patch.Insurances != nil {
		for kind := range *patch.Insurances {
			if err := ValidateKind(kind); err != nil {
				return Player{}, err
			}
		}
	}
	if patch.Loans != nil {
		for kind := range *patch.Loans {
			if err := ValidateKind(kind); err != nil {
				return Player{}, err
			}
		}
	}
	patch.apply(&s.players[i])
	return s.players[i].Clone(), nil
}

// AddTransaction appends to the ledger and trims it to the newest
// MaxTransactions entries. The id is the ledger length after the append, so ids
// repeat once trimming starts.
func (s *State) AddTransaction(playerName string, cash, account int64, description string) Transaction {
	tx := Transaction{
		ID:            len(s.transactions) + 1,
		PlayerName:    playerName,
		CashAmount:    cash,
		AccountAmount: account,
		Description:   description,
		Timestamp:     s.now().Format(TimestampLayout),
	}
	s.transactions = append(s.transactions, tx)
	if len(s.transactions) > MaxTransactions {
		s.transactions = slices.Clone(s.transactions[len(s.transactions)-MaxTransactions:])
	}
	return tx
}

func (s *State) SetCurrency(code string) error {
	if !IsSupportedCurrency(code) {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	s.currency = code
	return nil
}

func (s *State) indexByID(id int) int {
	return slices.IndexFunc(s.players, func(p Player) bool { return p.ID == id })
}

func (s *State) indexByName(name string) int {
	return slices.IndexFunc(s.players, func(p Player) bool { return p.Name == name })
}
