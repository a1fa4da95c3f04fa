package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/bankdapp/accounts"
	cmdutil "github.com/tranvictor/bankdapp/cmd/util"
	"github.com/tranvictor/bankdapp/wallet"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage your wallets",
}

func handleAddPrivateKey(registry *accounts.Registry) error {
	appUI.Warn("Storing plain private key is NOT secure. Let's encrypt it to a Keystore.")
	privHex := appUI.Secret("Paste your private key in hex (it is not displayed): ")
	passphrase := appUI.Secret("Enter your passphrase to encrypt the private key: ")
	if confirm := appUI.Secret("Enter it again: "); confirm != passphrase {
		return fmt.Errorf("passphrases don't match")
	}
	desc := cmdutil.PromptInput(appUI, "Please enter description of this wallet, it is used to search your wallet by keywords")
	ad, err := registry.ImportPrivateKey(privHex, passphrase, desc)
	if err != nil {
		return fmt.Errorf("private key encryption failed: %w", err)
	}
	appUI.Success("Stored encrypted private key of %s at %s.", ad.Address, ad.Keypath)
	return nil
}

func handleAddKeystore(registry *accounts.Registry) error {
	appUI.Warn("Keystore is convenient but not so safe. Use it only for unimportant frequent tasks.")
	path := cmdutil.PromptFilePath(appUI, "Please enter the path to your keystore file")
	desc := cmdutil.PromptInput(appUI, "Please enter description of this wallet, it is used to search your wallet by keywords")
	ad, err := registry.AddKeystore(path, desc)
	if err != nil {
		return fmt.Errorf("keystore verification failed: %w", err)
	}
	appUI.Success("Registered %s. Please don't move %s later.", ad.Address, ad.Keypath)
	return nil
}

var addWalletCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a wallet to bankdapp",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := accounts.DefaultRegistry()
		keyType := cmdutil.PromptItemInList(appUI, "Enter key type (keystore or privatekey):", []string{"keystore", "privatekey"})
		var err error
		if strings.TrimSpace(keyType) == "keystore" {
			err = handleAddKeystore(registry)
		} else {
			err = handleAddPrivateKey(registry)
		}
		if err != nil {
			return err
		}
		appUI.Info("You can check your list of wallets using: bankdapp wallet list")
		return nil
	},
}

var listWalletCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of your wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		accs, err := accounts.DefaultRegistry().Accounts()
		if err != nil {
			return err
		}
		appUI.Info("You have %d wallets:", len(accs))
		rows := make([][]string, 0, len(accs))
		for i, acc := range accs {
			rows = append(rows, []string{fmt.Sprintf("%d", i+1), acc.Address, acc.Kind, acc.Desc})
		}
		appUI.Table([]string{"#", "Address", "Kind", "Description"}, rows)
		appUI.Info("To add more wallets: bankdapp wallet add")
		appUI.Info("To use a raw private key without registering it, set %s.", wallet.PrivateKeyVariableName)
		return nil
	},
}

func init() {
	walletCmd.AddCommand(listWalletCmd)
	walletCmd.AddCommand(addWalletCmd)
	rootCmd.AddCommand(walletCmd)
}
