package util

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tranvictor/bankdapp/accounts"
	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/config"
	"github.com/tranvictor/bankdapp/deploy"
	"github.com/tranvictor/bankdapp/networks"
	"github.com/tranvictor/bankdapp/ui"
	"github.com/tranvictor/bankdapp/util/logger"
	"github.com/tranvictor/bankdapp/wallet"
)

var ErrNoDeployment = errors.New("no Bank deployment recorded")

// ResolveContract turns the --contract value into an address. An empty
// value picks the latest deployment on network, anything that is not an
// address is searched in the address book.
func ResolveContract(
	input string,
	network networks.Network,
	deployments *deploy.Registry,
	registry *accounts.Registry,
	labelsFile string,
) (common.Address, error) {
	input = strings.TrimSpace(input)
	if bankcommon.IsAddress(input) {
		return common.HexToAddress(input), nil
	}
	if input == "" {
		d, found, err := deployments.Latest(network.GetName())
		if err != nil {
			return common.Address{}, err
		}
		if !found {
			return common.Address{}, fmt.Errorf(
				"%w on %s, run `bankdapp deploy` or pass --contract", ErrNoDeployment, network.GetName(),
			)
		}
		return common.HexToAddress(d.Address), nil
	}

	book, err := LoadAddressBook(labelsFile, deployments, registry)
	if err != nil {
		return common.Address{}, err
	}
	defer book.Close()
	found, err := book.Search(input, 1)
	if err != nil {
		return common.Address{}, err
	}
	if len(found) == 0 {
		return common.Address{}, fmt.Errorf("no address matches %q", input)
	}
	logger.L().Debugw("contract resolved", "input", input, "match", bankcommon.PlainAddress(found[0]))
	return common.HexToAddress(found[0].Address), nil
}

// CommonBankPreprocess selects the network, resolves the contract and
// detects the wallet for the commands talking to a Bank. The result is
// attached to the command context.
func CommonBankPreprocess(u ui.UI, cmd *cobra.Command) error {
	if err := networks.SetNetwork(config.NetworkString); err != nil {
		return err
	}
	network := networks.CurrentNetwork()
	registry := accounts.DefaultRegistry()

	contract, err := ResolveContract(
		config.Contract, network, deploy.DefaultRegistry(), registry, LabelsFile(),
	)
	if err != nil {
		return err
	}

	provider, err := wallet.Detect(u, registry, config.From, os.Getenv(wallet.PrivateKeyVariableName))
	if err != nil && !errors.Is(err, wallet.ErrNoProvider) {
		return err
	}
	logger.L().Debugw("bank context",
		"network", network.GetName(), "contract", contract.Hex(), "wallet", provider != nil,
	)

	cmd.SetContext(WithBankContext(cmd.Context(), BankContext{
		Network:  network,
		Contract: contract,
		Provider: provider,
		GasOpts:  GasOptions(),
	}))
	return nil
}
