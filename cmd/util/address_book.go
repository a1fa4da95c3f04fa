package util

import (
	"path/filepath"

	"github.com/tranvictor/bankdapp/accounts"
	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/deploy"
	"github.com/tranvictor/bankdapp/util/addrbook"
)

func LabelsFile() string {
	return filepath.Join(bankcommon.DataDir(), "addresses.json")
}

// LoadAddressBook indexes the labels file, the recorded deployments and
// the registered wallets. Later sources override earlier ones so a wallet
// description wins over a hand written label.
func LoadAddressBook(
	labelsFile string,
	deployments *deploy.Registry,
	registry *accounts.Registry,
) (*addrbook.Book, error) {
	entries, err := addrbook.LoadLabels(labelsFile)
	if err != nil {
		return nil, err
	}
	if deployments != nil {
		labels, err := deployments.Labels()
		if err != nil {
			return nil, err
		}
		entries = append(entries, labels...)
	}
	if registry != nil {
		accs, err := registry.Accounts()
		if err != nil {
			return nil, err
		}
		for _, acc := range accs {
			entries = append(entries, bankcommon.Address{Address: acc.Address, Desc: acc.Desc})
		}
	}
	return addrbook.New(entries)
}
