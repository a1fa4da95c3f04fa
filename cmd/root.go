// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tranvictor/bankdapp/config"
	"github.com/tranvictor/bankdapp/networks"
	"github.com/tranvictor/bankdapp/ui"
	"github.com/tranvictor/bankdapp/util/logger"
	"github.com/tranvictor/bankdapp/wallet"
)

var (
	appUI ui.UI = ui.NewTerminalUI()
	// errUI keeps stdout clean for commands whose output is read by scripts
	errUI ui.UI = ui.NewTerminalUIOn(os.Stderr)
)

// errReported is returned by commands that already showed their failure on
// the page. It only sets the exit status.
var errReported = errors.New("reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bankdapp",
	Short: "Deploy a Bank contract and use it from your terminal",
	Long: fmt.Sprintf(`bankdapp is the companion of the Bank smart contract.

It supports you on two ends:

	1. It deploys a Bank contract to a network and remembers where it went,
	so the other commands find it without flags.

	2. It opens the bank page: connect one of your wallets, read the bank
	name, its owner and your balance, deposit and withdraw ETH and, if you
	own the bank, rename it.

Wallets are keystores registered with "bankdapp wallet add", or a private
key in %s.

By default, bankdapp talks to a local hardhat or anvil node. You can add
your custom node of a network by setting its node variable, see
"bankdapp network list".

Every flag can also be set in ~/.bankdapp/config.yaml or with a BANKDAPP_
prefixed env var, e.g. BANKDAPP_NETWORK=sepolia.`,
		wallet.PrivateKeyVariableName,
	),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(cmd.Flags(), config.DefaultConfigFile()); err != nil {
			return err
		}
		if err := config.ValidateGas(); err != nil {
			return err
		}
		return logger.Init(config.Verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(
		&config.NetworkString, "network", "k", networks.NetworkString,
		fmt.Sprintf("network to use. Valid values: %v.", networks.GetSupportedNetworkNames()),
	)
	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "print the developer log to stderr")

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		if !errors.Is(err, errReported) {
			errUI.Error("%s", err)
		}
		os.Exit(1)
	}
}
