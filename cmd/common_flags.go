package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/bankdapp/config"
)

func AddBankFlags(c *cobra.Command) {
	c.PersistentFlags().
		StringVarP(&config.Contract, "contract", "c", "", "Bank contract. It can be an address or a label to look up in the address book. If empty, the latest deployment on the network is used")
	c.PersistentFlags().
		StringVarP(&config.From, "from", "f", "", "Wallet to connect. It is a hint to look it up in the list of registered wallets, see bankdapp wallet list")
}

func AddCommonFlagsToTransactionalCmds(c *cobra.Command) {
	c.PersistentFlags().
		Float64VarP(&config.GasPrice, "gasprice", "p", 0, "Gas price in gwei. If default value is used, we will ask the nodes. The gas price to be used in the tx is gas price + extra gas price")
	c.PersistentFlags().
		Float64VarP(&config.TipGas, "tipgas", "s", 0, "tip in gwei, will be use in dynamic fee tx, default value get from node.")
	c.PersistentFlags().
		Float64VarP(&config.ExtraGasPrice, "extraprice", "P", 0, "Extra gas price in gwei. The gas price to be used in the tx is gas price + extra gas price")
	c.PersistentFlags().
		Uint64VarP(&config.GasLimit, "gas", "g", 0, "Base gas limit for the tx. If default value is used, we will use the nodes to estimate the gas limit. The gas limit to be used in the tx is gas limit + extra gas limit")
	c.PersistentFlags().
		Uint64VarP(&config.ExtraGasLimit, "extragas", "G", 0, "Extra gas limit for the tx. The gas limit to be used in the tx is gas limit + extra gas limit")
}
