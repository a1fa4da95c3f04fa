package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/bankdapp/accounts"
	cmdutil "github.com/tranvictor/bankdapp/cmd/util"
	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/deploy"
)

var whoisCmd = &cobra.Command{
	Use:   "whois <address>...",
	Short: "Show the label of one or multiple addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := cmdutil.LoadAddressBook(cmdutil.LabelsFile(), deploy.DefaultRegistry(), accounts.DefaultRegistry())
		if err != nil {
			return err
		}
		defer book.Close()

		for _, arg := range args {
			if !bankcommon.IsAddress(arg) {
				appUI.Warn("%s is not an address", arg)
				continue
			}
			appUI.Info("%s", bankcommon.VerboseAddress(book.Resolve(arg)))
		}
		return nil
	},
}

var addressCmd = &cobra.Command{
	Use:   "addr <keywords>",
	Short: "Find at most 10 addresses matching the keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := cmdutil.LoadAddressBook(cmdutil.LabelsFile(), deploy.DefaultRegistry(), accounts.DefaultRegistry())
		if err != nil {
			return err
		}
		defer book.Close()

		found, err := book.Search(strings.Join(args, " "), 10)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(found))
		for _, a := range found {
			rows = append(rows, []string{a.Address, a.Desc})
		}
		appUI.Table([]string{"Address", "Label"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoisCmd)
	rootCmd.AddCommand(addressCmd)
}
