// Package savefile converts game snapshots to and from the XML save format
// and stores them on disk or in Postgres.
//
// The format mirrors the files written by earlier versions of the game:
// every leaf is element text, booleans are the literals True and False, and
// the insurance and loan sections hold one element per kind.
package savefile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"
)

var ErrCorrupt = errors.New("corrupt save file")

type document struct {
	XMLName      xml.Name          `xml:"game"`
	Currency     *string           `xml:"currency"`
	NextID       *string           `xml:"next_id"`
	Players      *playersElem      `xml:"players"`
	Transactions *transactionsElem `xml:"transactions"`
}

type playersElem struct {
	Players []playerElem `xml:"player"`
}

type playerElem struct {
	ID           *string         `xml:"id"`
	Name         *string         `xml:"name"`
	Avatar       *string         `xml:"avatar"`
	Cash         *string         `xml:"cash"`
	Account      *string         `xml:"account"`
	HasApartment *string         `xml:"hasApartment"`
	HasCar       *string         `xml:"hasCar"`
	HasFurniture *string         `xml:"hasFurniture"`
	Insurances   *insurancesElem `xml:"insurances"`
	Loans        *loansElem      `xml:"loans"`
}

type insurancesElem struct {
	Flags []flagElem `xml:",any"`
}

type flagElem struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type loansElem struct {
	Loans []loanElem `xml:",any"`
}

type loanElem struct {
	XMLName   xml.Name
	Active    *string `xml:"active"`
	Remaining *string `xml:"remaining"`
}

type transactionsElem struct {
	Transactions []transactionElem `xml:"transaction"`
}

type transactionElem struct {
	ID            *string `xml:"id"`
	PlayerName    *string `xml:"playerName"`
	CashAmount    *string `xml:"cashAmount"`
	AccountAmount *string `xml:"accountAmount"`
	Description   *string `xml:"description"`
	Timestamp     *string `xml:"timestamp"`
}

// Encode renders snap as an indented XML document.
func Encode(snap *game.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New("encode: nil snapshot")
	}
	doc := document{
		Currency:     text(snap.Currency),
		NextID:       text(strconv.Itoa(snap.NextID)),
		Players:      &playersElem{Players: make([]playerElem, 0, len(snap.Players))},
		Transactions: &transactionsElem{Transactions: make([]transactionElem, 0, len(snap.Transactions))},
	}
	for _, p := range snap.Players {
		el, err := encodePlayer(p)
		if err != nil {
			return nil, fmt.Errorf("encode player %d: %w", p.ID, err)
		}
		doc.Players.Players = append(doc.Players.Players, el)
	}
	for _, tx := range snap.Transactions {
		doc.Transactions.Transactions = append(doc.Transactions.Transactions, transactionElem{
			ID:            text(strconv.Itoa(tx.ID)),
			PlayerName:    text(tx.PlayerName),
			CashAmount:    text(strconv.FormatInt(tx.CashAmount, 10)),
			AccountAmount: text(strconv.FormatInt(tx.AccountAmount, 10)),
			Description:   text(tx.Description),
			Timestamp:     text(tx.Timestamp),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	return append(out, '\n'), nil
}

func encodePlayer(p game.Player) (playerElem, error) {
	el := playerElem{
		ID:           text(strconv.Itoa(p.ID)),
		Name:         text(p.Name),
		Avatar:       text(p.Avatar),
		Cash:         text(strconv.FormatInt(p.Cash, 10)),
		Account:      text(strconv.FormatInt(p.Account, 10)),
		HasApartment: text(formatBool(p.HasApartment)),
		HasCar:       text(formatBool(p.HasCar)),
		HasFurniture: text(formatBool(p.HasFurniture)),
		Insurances:   &insurancesElem{},
		Loans:        &loansElem{},
	}
	for _, kind := range p.Insurances.Kinds() {
		if err := game.ValidateKind(kind); err != nil {
			return playerElem{}, err
		}
		el.Insurances.Flags = append(el.Insurances.Flags, flagElem{
			XMLName: xml.Name{Local: kind},
			Value:   formatBool(p.Insurances[kind]),
		})
	}
	for _, kind := range p.Loans.Kinds() {
		if err := game.ValidateKind(kind); err != nil {
			return playerElem{}, err
		}
		loan := p.Loans[kind]
		el.Loans.Loans = append(el.Loans.Loans, loanElem{
			XMLName:   xml.Name{Local: kind},
			Active:    text(formatBool(loan.Active)),
			Remaining: text(strconv.FormatInt(loan.Remaining, 10)),
		})
	}
	return el, nil
}

// Decode parses a save document. Any missing required element or unparsable
// value fails the whole decode with ErrCorrupt; nothing partial is returned.
func Decode(data []byte) (*game.Snapshot, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	currency, err := requireString(doc.Currency, "currency")
	if err != nil {
		return nil, err
	}
	nextID, err := requireInt(doc.NextID, "next_id")
	if err != nil {
		return nil, err
	}
	snap := &game.Snapshot{
		Currency:     strings.TrimSpace(currency),
		NextID:       nextID,
		Players:      []game.Player{},
		Transactions: []game.Transaction{},
	}
	if doc.Players != nil {
		for i, el := range doc.Players.Players {
			p, err := decodePlayer(el)
			if err != nil {
				return nil, fmt.Errorf("player %d: %w", i, err)
			}
			snap.Players = append(snap.Players, p)
		}
	}
	if doc.Transactions != nil {
		for i, el := range doc.Transactions.Transactions {
			tx, err := decodeTransaction(el)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: %w", i, err)
			}
			snap.Transactions = append(snap.Transactions, tx)
		}
	}
	return snap, nil
}

func decodePlayer(el playerElem) (game.Player, error) {
	var (
		p   game.Player
		err error
	)
	if p.ID, err = requireInt(el.ID, "id"); err != nil {
		return p, err
	}
	if p.Name, err = requireString(el.Name, "name"); err != nil {
		return p, err
	}
	if p.Avatar, err = requireString(el.Avatar, "avatar"); err != nil {
		return p, err
	}
	if p.Cash, err = requireInt64(el.Cash, "cash"); err != nil {
		return p, err
	}
	if p.Account, err = requireInt64(el.Account, "account"); err != nil {
		return p, err
	}
	if p.HasApartment, err = requireBool(el.HasApartment, "hasApartment"); err != nil {
		return p, err
	}
	if p.HasCar, err = requireBool(el.HasCar, "hasCar"); err != nil {
		return p, err
	}
	if p.HasFurniture, err = requireBool(el.HasFurniture, "hasFurniture"); err != nil {
		return p, err
	}

	p.Insurances = game.Insurances{}
	if el.Insurances != nil {
		for _, f := range el.Insurances.Flags {
			v, err := parseBool(f.Value)
			if err != nil {
				return p, fmt.Errorf("%w: insurances/%s: %w", ErrCorrupt, f.XMLName.Local, err)
			}
			p.Insurances[f.XMLName.Local] = v
		}
	}
	p.Loans = game.Loans{}
	if el.Loans != nil {
		for _, l := range el.Loans.Loans {
			field := "loans/" + l.XMLName.Local
			active, err := requireBool(l.Active, field+"/active")
			if err != nil {
				return p, err
			}
			remaining, err := requireInt64(l.Remaining, field+"/remaining")
			if err != nil {
				return p, err
			}
			p.Loans[l.XMLName.Local] = game.Loan{Active: active, Remaining: remaining}
		}
	}
	return p, nil
}

func decodeTransaction(el transactionElem) (game.Transaction, error) {
	var (
		tx  game.Transaction
		err error
	)
	if tx.ID, err = requireInt(el.ID, "id"); err != nil {
		return tx, err
	}
	if tx.PlayerName, err = requireString(el.PlayerName, "playerName"); err != nil {
		return tx, err
	}
	if tx.CashAmount, err = requireInt64(el.CashAmount, "cashAmount"); err != nil {
		return tx, err
	}
	if tx.AccountAmount, err = requireInt64(el.AccountAmount, "accountAmount"); err != nil {
		return tx, err
	}
	if tx.Description, err = requireString(el.Description, "description"); err != nil {
		return tx, err
	}
	if tx.Timestamp, err = requireString(el.Timestamp, "timestamp"); err != nil {
		return tx, err
	}
	return tx, nil
}

func text(s string) *string { return &s }

func requireString(v *string, field string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: missing %s", ErrCorrupt, field)
	}
	return *v, nil
}

func requireInt(v *string, field string) (int, error) {
	s, err := requireString(v, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, field, err)
	}
	return n, nil
}

func requireInt64(v *string, field string) (int64, error) {
	s, err := requireString(v, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, field, err)
	}
	return n, nil
}

func requireBool(v *string, field string) (bool, error) {
	s, err := requireString(v, field)
	if err != nil {
		return false, err
	}
	b, err := parseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrCorrupt, field, err)
	}
	return b, nil
}
