package game

import (
	"encoding/xml"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	MaxTransactions        = 50
	RecentTransactionLimit = 30

	DefaultAvatar      = "green"
	DefaultDescription = "Tranzakció"

	// TimestampLayout is wall-clock time only; the ledger never stores a date.
	TimestampLayout = "15:04:05"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrEmptyName           = fmt.Errorf("%w: player name is required", ErrValidation)
	ErrDuplicateName       = fmt.Errorf("%w: player already exists", ErrValidation)
	ErrUnsupportedCurrency = fmt.Errorf("%w: unsupported currency", ErrValidation)
	ErrInvalidKind         = fmt.Errorf("%w: invalid insurance or loan kind", ErrValidation)

	ErrPlayerNotFound  = errors.New("player not found")
	ErrNoSave          = errors.New("no saved game")
	ErrPersistence     = errors.New("persistence failed")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Insurances maps an insurance kind to whether the player holds it. Unknown
// kinds read from a save file are kept as-is.
type Insurances map[string]bool

type Loan struct {
	Active    bool  `json:"active"`
	Remaining int64 `json:"remaining"`
}

type Loans map[string]Loan

type Player struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Avatar       string     `json:"avatar"`
	Cash         int64      `json:"cash"`
	Account      int64      `json:"account"`
	HasApartment bool       `json:"hasApartment"`
	HasCar       bool       `json:"hasCar"`
	HasFurniture bool       `json:"hasFurniture"`
	Insurances   Insurances `json:"insurances"`
	Loans        Loans      `json:"loans"`
}

type Transaction struct {
	ID            int    `json:"id"`
	PlayerName    string `json:"playerName"`
	CashAmount    int64  `json:"cashAmount"`
	AccountAmount int64  `json:"accountAmount"`
	Description   string `json:"description"`
	Timestamp     string `json:"timestamp"`
}

// Snapshot is the complete persistable game state.
type Snapshot struct {
	Currency     string
	NextID       int
	Players      []Player
	Transactions []Transaction
}

// Kinds become element names in the save file. Any unprefixed name the XML
// parser accepts is valid, so every kind read from a save can be written back.
func ValidateKind(kind string) error {
	if !isXMLName(kind) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil
}

func isXMLName(s string) bool {
	if s == "" || strings.ContainsRune(s, ':') {
		return false
	}
	tok, err := xml.NewDecoder(strings.NewReader("<" + s + "/>")).Token()
	if err != nil {
		return false
	}
	start, ok := tok.(xml.StartElement)
	return ok && start.Name.Space == "" && start.Name.Local == s && len(start.Attr) == 0
}

var knownInsurances = []string{
	InsuranceChildFuture,
	InsurancePension,
	InsuranceHomeGuard,
	InsuranceCasco,
	InsuranceChildFuturePaid,
}

var knownLoans = []string{LoanApartment, LoanCar}

func NewInsurances() Insurances {
	out := make(Insurances, len(knownInsurances))
	for _, kind := range knownInsurances {
		out[kind] = false
	}
	return out
}

func NewLoans() Loans {
	out := make(Loans, len(knownLoans))
	for _, kind := range knownLoans {
		out[kind] = Loan{}
	}
	return out
}

// Kinds lists the keys with the known flags first in their canonical order,
// followed by any others sorted by name.
func (in Insurances) Kinds() []string {
	return orderedKeys(in, knownInsurances)
}

func (l Loans) Kinds() []string {
	return orderedKeys(l, knownLoans)
}

func orderedKeys[V any](m map[string]V, known []string) []string {
	out := make([]string, 0, len(m))
	for _, k := range known {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	var extra []string
	for k := range m {
		if !slices.Contains(known, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

func (p Player) Clone() Player {
	out := p
	out.Insurances = maps.Clone(p.Insurances)
	out.Loans = maps.Clone(p.Loans)
	return out
}

func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Currency:     s.Currency,
		NextID:       s.NextID,
		Players:      make([]Player, 0, len(s.Players)),
		Transactions: slices.Clone(s.Transactions),
	}
	for _, p := range s.Players {
		out.Players = append(out.Players, p.Clone())
	}
	if out.Transactions == nil {
		out.Transactions = []Transaction{}
	}
	return out
}

func normalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

func normalizeAvatar(avatar string) string {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return DefaultAvatar
	}
	return avatar
}
