package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/bankdapp/app"
	cmdutil "github.com/tranvictor/bankdapp/cmd/util"
)

func newBankApp(cmd *cobra.Command) (*app.App, error) {
	bc, ok := cmdutil.BankContextFrom(cmd)
	if !ok {
		return nil, errors.New("bank context is not resolved")
	}
	return app.New(appUI, bc.Provider, app.NewNodeSessionFactory(bc.Network, bc.Contract, bc.GasOpts)), nil
}

// interruptible cancels on Ctrl-C.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

// oneShot connects the wallet, runs action and renders the resulting page.
// A failure is shown on the page, so only the exit status is returned.
func oneShot(action func(ctx context.Context, a *app.App) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newBankApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := interruptible(cmd)
		defer stop()

		err = a.Connect(ctx)
		if err == nil && action != nil {
			err = action(ctx, a)
		}
		a.Render(appUI)
		if err != nil {
			return errReported
		}
		return nil
	}
}

func bankPreprocess(cmd *cobra.Command, args []string) error {
	return cmdutil.CommonBankPreprocess(appUI, cmd)
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the bank page and use it interactively",
	Long: `Open the bank page: connect your wallet, see the bank name, its owner and your
balance, deposit and withdraw ETH. The owner of the bank also gets the admin
panel to set the bank name.

Ctrl-C while waiting for a tx gives up waiting, the tx may still be mined.`,
	Args:    cobra.NoArgs,
	PreRunE: bankPreprocess,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBankApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		app.NewConsole(a, func() (context.Context, context.CancelFunc) {
			return interruptible(cmd)
		}).Run()
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:     "info",
	Short:   "Show the bank name, its owner and your balance",
	Args:    cobra.NoArgs,
	PreRunE: bankPreprocess,
	RunE:    oneShot(nil),
}

var depositCmd = &cobra.Command{
	Use:     "deposit <amount in ETH>",
	Short:   "Deposit ETH into the bank",
	Example: "bankdapp deposit 0.5",
	Args:    cobra.ExactArgs(1),
	PreRunE: bankPreprocess,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(func(ctx context.Context, a *app.App) error {
			return a.Deposit(ctx, args[0])
		})(cmd, args)
	},
}

var withdrawCmd = &cobra.Command{
	Use:     "withdraw <amount in ETH>",
	Short:   "Withdraw ETH from your balance in the bank to your wallet",
	Example: "bankdapp withdraw 0.5",
	Args:    cobra.ExactArgs(1),
	PreRunE: bankPreprocess,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(func(ctx context.Context, a *app.App) error {
			return a.Withdraw(ctx, args[0])
		})(cmd, args)
	},
}

var setNameCmd = &cobra.Command{
	Use:     "set-name <name>",
	Short:   "Set the name of the bank, only its owner can",
	Example: `bankdapp set-name "Gopher Savings"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bankPreprocess,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return oneShot(func(ctx context.Context, a *app.App) error {
			return a.SetBankName(ctx, name)
		})(cmd, args)
	},
}

func init() {
	for _, c := range []*cobra.Command{consoleCmd, infoCmd, depositCmd, withdrawCmd, setNameCmd} {
		AddBankFlags(c)
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{consoleCmd, depositCmd, withdrawCmd, setNameCmd} {
		AddCommonFlagsToTransactionalCmds(c)
	}
}
