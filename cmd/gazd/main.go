package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "github.com/BmintBe/Gazdalkodj-okosabban/internal/cli"
	"github.com/BmintBe/Gazdalkodj-okosabban/internal/config"
	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.LoadCLIFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg.APIBaseURL).Execute(); err != nil {
		printError(fmt.Sprintf("error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd(apiBase string) *cobra.Command {
	root := &cobra.Command{
		Use:          "gazd",
		Short:        "Gazdálkodj Okosan bank terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "game server base URL")

	root.AddCommand(
		newPlayersCmd(&apiBase),
		newAddCmd(&apiBase),
		newRemoveCmd(&apiBase),
		newTxCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newCurrencyCmd(&apiBase),
		newSetCmd(&apiBase),
		newResetCmd(&apiBase),
	)
	return root
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newPlayersCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "players",
		Short:   "List players and balances",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			view, err := newClient(apiBase).Players(ctx)
			if err != nil {
				return err
			}
			renderPlayers(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newAddCmd(apiBase *string) *cobra.Command {
	var avatar string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a player with the starting balances",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			p, err := client.CreatePlayer(ctx, strings.Join(args, " "), avatar)
			if err != nil {
				return err
			}
			view, err := client.Players(ctx)
			if err != nil {
				return err
			}
			money := newMoney(view.Settings.Symbol)
			printSuccess(fmt.Sprintf("Player #%d %s added (cash %s, account %s).", p.ID, p.Name, money.Format(p.Cash), money.Format(p.Account)))
			return nil
		},
	}
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar colour (default green)")
	return cmd
}

func newRemoveCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Short:   "Remove a player",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlayerID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			msg, err := newClient(apiBase).DeletePlayer(ctx, id)
			if err != nil {
				return err
			}
			printSuccess(msg)
			return nil
		},
	}
}

func newTxCmd(apiBase *string) *cobra.Command {
	var (
		cash, account int64
		desc          string
	)
	cmd := &cobra.Command{
		Use:   "tx ID",
		Short: "Record a cash and/or account movement for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlayerID(args[0])
			if err != nil {
				return err
			}
			if cash == 0 && account == 0 {
				return fmt.Errorf("nothing to record: pass --cash and/or --account")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			res, err := client.RecordTransaction(ctx, game.TransactionInput{
				PlayerID:      id,
				CashAmount:    cash,
				AccountAmount: account,
				Description:   desc,
			})
			if err != nil {
				return err
			}
			view, err := client.Players(ctx)
			if err != nil {
				return err
			}
			money := newMoney(view.Settings.Symbol)
			printSuccess(fmt.Sprintf("#%d %s: %s", res.Transaction.ID, res.Transaction.PlayerName, res.Transaction.Description))
			fmt.Fprintf(cmd.OutOrStdout(), "Cash:    %s -> %s\n", money.Signed(res.Transaction.CashAmount), money.Format(res.Player.Cash))
			fmt.Fprintf(cmd.OutOrStdout(), "Account: %s -> %s\n", money.Signed(res.Transaction.AccountAmount), money.Format(res.Player.Account))
			return nil
		},
	}
	cmd.Flags().Int64Var(&cash, "cash", 0, "cash delta (negative to pay)")
	cmd.Flags().Int64Var(&account, "account", 0, "bank account delta (negative to pay)")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	return cmd
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the most recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			txs, err := client.Transactions(ctx)
			if err != nil {
				return err
			}
			view, err := client.Players(ctx)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), txs, newMoney(view.Settings.Symbol))
			return nil
		},
	}
}

func newCurrencyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "currency [CODE]",
		Short: "Show or switch the game currency (" + strings.Join(game.SupportedCurrencies(), ", ") + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			if len(args) == 0 {
				code, err := client.Currency(ctx)
				if err != nil {
					return err
				}
				printInfo("Currency: " + code)
				return nil
			}
			code, err := client.SetCurrency(ctx, strings.ToUpper(strings.TrimSpace(args[0])))
			if err != nil {
				return err
			}
			printSuccess("Currency set to " + code + ". Existing balances are not converted.")
			return nil
		},
	}
}

func newSetCmd(apiBase *string) *cobra.Command {
	var (
		cash, account             int64
		apartment, car, furniture bool
		name, avatar              string
	)
	cmd := &cobra.Command{
		Use:   "set ID",
		Short: "Overwrite player fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlayerID(args[0])
			if err != nil {
				return err
			}
			var patch game.PlayerPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("avatar") {
				patch.Avatar = &avatar
			}
			if flags.Changed("cash") {
				patch.Cash = &cash
			}
			if flags.Changed("account") {
				patch.Account = &account
			}
			if flags.Changed("apartment") {
				patch.HasApartment = &apartment
			}
			if flags.Changed("car") {
				patch.HasCar = &car
			}
			if flags.Changed("furniture") {
				patch.HasFurniture = &furniture
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change: pass at least one flag")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			p, err := newClient(apiBase).UpdatePlayer(ctx, id, patch)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Player #%d %s updated.", p.ID, p.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar colour")
	cmd.Flags().Int64Var(&cash, "cash", 0, "cash balance")
	cmd.Flags().Int64Var(&account, "account", 0, "bank account balance")
	cmd.Flags().BoolVar(&apartment, "apartment", false, "owns an apartment")
	cmd.Flags().BoolVar(&car, "car", false, "owns a car")
	cmd.Flags().BoolVar(&furniture, "furniture", false, "owns furniture")
	return cmd
}

func newResetCmd(apiBase *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all players and transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				choice, err := promptChoice("Reset the whole game", []string{"yes", "no"}, "no")
				if err != nil {
					return err
				}
				if choice != "yes" {
					printWarn("Reset cancelled.")
					return nil
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			msg, err := newClient(apiBase).Reset(ctx)
			if err != nil {
				return err
			}
			printSuccess(msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func parsePlayerID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid player id %q", raw)
	}
	return id, nil
}
