package banktest

import (
	"time"

	"github.com/tranvictor/bankdapp/bank"
	"github.com/tranvictor/bankdapp/util/account"
	"github.com/tranvictor/bankdapp/util/broadcaster"
	"github.com/tranvictor/bankdapp/util/monitor"
	"github.com/tranvictor/bankdapp/util/reader"
	"github.com/tranvictor/bankdapp/util/txmanager"
)

func (c *Chain) Reader() *reader.EthReader {
	return reader.NewEthReaderWithNodes(c)
}

func (c *Chain) Broadcaster() *broadcaster.Broadcaster {
	return broadcaster.NewBroadcasterWithNodes(c)
}

// TxManager wires the chain into a tx manager whose monitor polls every
// millisecond.
func (c *Chain) TxManager() *txmanager.TxManager {
	r := c.Reader()
	return txmanager.NewTxManager(
		ChainID,
		r,
		c.Broadcaster(),
		monitor.NewGenericTxMonitor(r).WithInterval(time.Millisecond),
		txmanager.GasOptions{},
	)
}

// Contract returns a Bank proxy at ContractAddress that signs with the
// given private keys.
func (c *Chain) Contract(keys ...string) *bank.Contract {
	tm := c.TxManager()
	for _, k := range keys {
		acc, err := account.NewPrivateKeyAccount(k)
		if err != nil {
			panic(err)
		}
		tm.SetAccount(acc)
	}
	return bank.NewContract(ContractAddress, tm.Reader(), tm)
}
