package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Fprintln(os.Stderr, msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

// moneyPrinter prints whole-unit amounts with locale grouping and the currency
// symbol after the number, the way the board game prints them.
type moneyPrinter struct {
	p      *message.Printer
	symbol string
}

func newMoney(symbol string) moneyPrinter {
	return newMoneyIn(language.Hungarian, symbol)
}

func newMoneyIn(tag language.Tag, symbol string) moneyPrinter {
	return moneyPrinter{p: message.NewPrinter(tag), symbol: symbol}
}

func (m moneyPrinter) Format(v int64) string {
	s := m.p.Sprintf("%d", v)
	if m.symbol == "" {
		return s
	}
	return s + " " + m.symbol
}

func (m moneyPrinter) Signed(v int64) string {
	text := m.Format(v)
	switch {
	case v > 0:
		return success.Sprint("+" + text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func renderPlayers(w io.Writer, view game.PlayersView) {
	money := newMoney(view.Settings.Symbol)
	accent.Fprintf(w, "\n== PLAYERS (%s) ==\n", view.Currency)
	if len(view.Players) == 0 {
		neutral.Fprintln(w, "No players yet. Add one with `gazd add NAME`.")
		return
	}
	fmt.Fprintf(w, "%-4s %-20s %-8s %16s %16s  %-24s %s\n", "ID", "NAME", "AVATAR", "CASH", "ACCOUNT", "ASSETS", "LOANS")
	for _, p := range view.Players {
		fmt.Fprintf(w, "%-4d %-20s %-8s %16s %16s  %-24s %s\n",
			p.ID,
			truncate(p.Name, 20),
			truncate(p.Avatar, 8),
			money.Format(p.Cash),
			money.Format(p.Account),
			assets(p),
			loans(p, money),
		)
	}
	fmt.Fprintln(w)
}

func renderHistory(w io.Writer, txs []game.Transaction, money moneyPrinter) {
	accent.Fprintln(w, "\n== TRANSACTIONS ==")
	if len(txs) == 0 {
		neutral.Fprintln(w, "No transactions yet.")
		return
	}
	fmt.Fprintf(w, "%-4s %-8s %-20s %16s %16s  %s\n", "ID", "TIME", "PLAYER", "CASH", "ACCOUNT", "DESCRIPTION")
	for _, tx := range txs {
		fmt.Fprintf(w, "%-4d %-8s %-20s %16s %16s  %s\n",
			tx.ID,
			tx.Timestamp,
			truncate(tx.PlayerName, 20),
			money.Format(tx.CashAmount),
			money.Format(tx.AccountAmount),
			tx.Description,
		)
	}
	fmt.Fprintln(w)
}

func assets(p game.Player) string {
	var out []string
	if p.HasApartment {
		out = append(out, "apartment")
	}
	if p.HasFurniture {
		out = append(out, "furniture")
	}
	if p.HasCar {
		out = append(out, "car")
	}
	for _, kind := range p.Insurances.Kinds() {
		if p.Insurances[kind] && kind != game.InsuranceChildFuturePaid {
			out = append(out, kind)
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

func loans(p game.Player, money moneyPrinter) string {
	var out []string
	for _, kind := range p.Loans.Kinds() {
		if l := p.Loans[kind]; l.Active {
			out = append(out, kind+" "+money.Format(l.Remaining))
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
