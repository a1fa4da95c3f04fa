package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"sort"
	"time"

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

const defaultArtifact = "artifacts/contracts/Bank.sol/Bank.json"

type deployJob struct {
	ui       ui.UI
	out      io.Writer
	provider wallet.Provider
	backend  deploy.Backend
	network  networks.Network
	registry *deploy.Registry
	artifact string
	opts     deploy.Options
	timeout  time.Duration
}

// deployer signs with the first account the provider authorizes.
func (j deployJob) deployer(ctx context.Context) (*deploy.Deployer, error) {
	if j.provider == nil {
		return nil, wallet.ErrNoProvider
	}
	addrs, err := j.provider.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no account authorized", wallet.ErrUserRejected)
	}
	acc, err := j.provider.Account(ctx, addrs[0])
	if err != nil {
		return nil, err
	}
	return deploy.NewDeployer(j.backend, j.network.GetChainID(), acc, j.opts), nil
}

// runDeploy publishes the artifact and prints the two report lines to
// j.out. Everything else goes to j.ui.
func runDeploy(ctx context.Context, j deployJob) error {
	artifact, err := deploy.LoadArtifact(j.artifact)
	if err != nil {
		return err
	}
	if err = artifact.CheckBankABI(); err != nil {
		return fmt.Errorf("%s: %w", j.artifact, err)
	}

	d, err := j.deployer(ctx)
	if err != nil {
		return err
	}
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	stop := j.ui.Spinner(fmt.Sprintf("Deploying %s to %s from %s...", artifact.ContractName, j.network.GetName(), d.Address().Hex()))
	result, err := d.Deploy(ctx, artifact.Bytecode)
	stop()
	if err != nil {
		return err
	}

	if j.registry != nil {
		err = j.registry.Add(deploy.Deployment{
			Name:      artifact.ContractName,
			Network:   j.network.GetName(),
			ChainID:   j.network.GetChainID(),
			Address:   result.ContractAddress.Hex(),
			Deployer:  result.Deployer.Hex(),
			TxHash:    result.TxHash.Hex(),
			Timestamp: time.Now(),
		})
		if err != nil {
			j.ui.Warn("Couldn't record the deployment: %s", err)
		}
	}
	deploy.Report(j.out, result)
	return nil
}

// primaryNode prefers the user's own node, then the first default node by
// name.
func primaryNode(network networks.Network) (string, error) {
	nodes, err := networks.GetNodes(network)
	if err != nil {
		return "", err
	}
	if url, found := nodes["custom-node"]; found {
		return url, nil
	}
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return nodes[names[0]], nil
}

func gweiOrNil(gwei float64) *big.Int {
	if gwei <= 0 {
		return nil
	}
	return bankcommon.GweiToWei(gwei)
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a Bank contract",
	Long: `Deploy the Bank contract compiled in --artifact (a hardhat or solc artifact json)
with the first account of your wallet, wait for it to be mined and print:

	Bank deployed to: <address>
	Bank owner address: <deployer>

The deployment is recorded in ~/.bankdapp/deployments.json so the other commands
use it by default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := networks.SetNetwork(config.NetworkString); err != nil {
			return err
		}
		network := networks.CurrentNetwork()

		provider, err := wallet.Detect(errUI, accounts.DefaultRegistry(), config.From, os.Getenv(wallet.PrivateKeyVariableName))
		if err != nil && !errors.Is(err, wallet.ErrNoProvider) {
			return err
		}

		url, err := primaryNode(network)
		if err != nil {
			return err
		}
		backend, err := deploy.NewW3Backend(url)
		if err != nil {
			return err
		}
		defer backend.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		err = runDeploy(ctx, deployJob{
			ui:       errUI,
			out:      cmd.OutOrStdout(),
			provider: provider,
			backend:  backend,
			network:  network,
			registry: deploy.DefaultRegistry(),
			artifact: config.ArtifactPath,
			opts: deploy.Options{
				GasFeeCap: gweiOrNil(config.GasFeeCap),
				GasTipCap: gweiOrNil(config.GasTipCap),
				GasLimit:  config.DeployGas,
			},
			timeout: config.Timeout,
		})
		if err != nil {
			logger.L().Errorw("deployment failed", "network", network.GetName(), "err", err)
		}
		return err
	},
}

func init() {
	deployCmd.Flags().StringVar(&config.ArtifactPath, "artifact", defaultArtifact, "path to the compiled Bank artifact json")
	deployCmd.Flags().Float64Var(&config.GasFeeCap, "gas-fee-cap", 0, "max fee per gas in gwei. If default value is used, it is twice the node gas price plus the tip")
	deployCmd.Flags().Float64Var(&config.GasTipCap, "gas-tip-cap", 0, "max priority fee per gas in gwei. If default value is used, we will ask the node")
	deployCmd.Flags().Uint64Var(&config.DeployGas, "deploy-gas", 0, "gas limit of the creation tx. If default value is used, the node estimates it")
	deployCmd.Flags().DurationVar(&config.Timeout, "timeout", 5*time.Minute, "how long to wait for the creation tx to be mined")
	deployCmd.Flags().StringVarP(&config.From, "from", "f", "", "wallet to deploy from, see bankdapp wallet list")
	rootCmd.AddCommand(deployCmd)
}
