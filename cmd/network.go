package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/bankdapp/networks"
)

var (
	NetworkConfig string
	NetworkForce  bool
)

// readNetworkConfig accepts inline json or a path to a json file.
func readNetworkConfig(config string) (networks.Network, error) {
	config = strings.TrimSpace(config)
	if config == "" {
		return nil, fmt.Errorf("--config is required")
	}
	content := []byte(config)
	if !strings.HasPrefix(config, "{") {
		var err error
		if content, err = os.ReadFile(config); err != nil {
			return nil, fmt.Errorf("couldn't read the network config: %w", err)
		}
	}
	return networks.NewNetworkFromJSON(content)
}

// networkConflicts lists the registered networks sharing a name or the chain
// ID of nw.
func networkConflicts(nw networks.Network) []string {
	res := []string{}
	for _, name := range append([]string{nw.GetName()}, nw.GetAlternativeNames()...) {
		if _, err := networks.GetNetwork(name); err == nil {
			res = append(res, fmt.Sprintf("network with name %s already exists", name))
		}
	}
	if existing, err := networks.GetNetworkByID(nw.GetChainID()); err == nil && existing.GetName() != nw.GetName() {
		res = append(res, fmt.Sprintf("chain ID %d is already used by %s", nw.GetChainID(), existing.GetName()))
	}
	return res
}

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new network to the supported networks list locally",
	Long: `--config takes a network config json filepath OR a json string in the following format:
	{
		"name": "network_name",
		"alternative_names": ["alternative_name_1"],
		"chain_id": 1,
		"native_token_symbol": "ETH",
		"native_token_decimal": 18,
		"block_time": 12,
		"node_variable_name": "BANKDAPP_NODE_NETWORK_NAME",
		"default_nodes": {
			"node_name_1": "node_url_1"
		},
		"block_explorer_url": "https://etherscan.io"
	}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		newNetwork, err := readNetworkConfig(NetworkConfig)
		if err != nil {
			return err
		}

		conflicts := networkConflicts(newNetwork)
		if len(conflicts) > 0 && !NetworkForce {
			return fmt.Errorf("%s, use --force to replace", strings.Join(conflicts, "; "))
		}
		for _, c := range conflicts {
			appUI.Warn("%s. It will be replaced.", c)
		}

		if err = networks.AddNetwork(newNetwork); err != nil {
			return fmt.Errorf("failed to add the new network: %w", err)
		}
		appUI.Success(
			"Network %s with chain ID %d added and saved to %s.",
			newNetwork.GetName(), newNetwork.GetChainID(), networks.CustomNetworksDir(),
		)
		return nil
	},
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of supported networks",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rows := [][]string{}
		for _, n := range networks.GetSupportedNetworks() {
			nodes, err := networks.GetNodes(n)
			if err != nil {
				appUI.Error("%s: %s", n.GetName(), err)
				continue
			}
			names := make([]string, 0, len(nodes))
			for name := range nodes {
				names = append(names, name)
			}
			sort.Strings(names)
			for i, name := range names {
				network, chainID, variable := "", "", ""
				if i == 0 {
					network = n.GetName()
					chainID = fmt.Sprintf("%d", n.GetChainID())
					variable = n.GetNodeVariableName()
				}
				rows = append(rows, []string{network, chainID, variable, name, nodes[name]})
			}
		}
		appUI.Table([]string{"Network", "Chain ID", "Node variable", "Node", "URL"}, rows)
		appUI.Info("To add a network: bankdapp network add --config <json>")
		appUI.Info("To delete a network, delete its json file in %s.", networks.CustomNetworksDir())
	},
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage the networks bankdapp supports",
}

func init() {
	addNetworkCmd.Flags().StringVarP(&NetworkConfig, "config", "c", "", "Path to the network config json file, or the json itself")
	addNetworkCmd.Flags().BoolVarP(&NetworkForce, "force", "f", false, "Replace the network if it already exists")

	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
