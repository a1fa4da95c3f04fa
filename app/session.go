package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/bankdapp/bank"
	"github.com/tranvictor/bankdapp/networks"
	"github.com/tranvictor/bankdapp/util/account"
	"github.com/tranvictor/bankdapp/util/broadcaster"
	"github.com/tranvictor/bankdapp/util/monitor"
	"github.com/tranvictor/bankdapp/util/reader"
	"github.com/tranvictor/bankdapp/util/txmanager"
)

// Session is everything one wallet connection uses: the nodes of the
// network, the unlocked account and the contract proxy. It is created on
// connect and closed on disconnect.
type Session struct {
	Network     networks.Network
	Reader      *reader.EthReader
	Broadcaster *broadcaster.Broadcaster
	Monitor     *monitor.TxMonitor
	TxManager   *txmanager.TxManager
	Account     *account.Account
	Contract    *bank.Contract
}

func NewSession(
	network networks.Network,
	r *reader.EthReader,
	b *broadcaster.Broadcaster,
	m *monitor.TxMonitor,
	contract common.Address,
	acc *account.Account,
	gasOpts txmanager.GasOptions,
) *Session {
	tm := txmanager.NewTxManager(network.GetChainID(), r, b, m, gasOpts)
	tm.SetAccount(acc)
	return &Session{
		Network:     network,
		Reader:      r,
		Broadcaster: b,
		Monitor:     m,
		TxManager:   tm,
		Account:     acc,
		Contract:    bank.NewContract(contract, r, tm),
	}
}

func (s *Session) Address() common.Address {
	return s.Account.Address()
}

func (s *Session) Close() {
	s.Reader.Close()
	s.Broadcaster.Close()
}

// SessionFactory opens a session for an unlocked account.
type SessionFactory func(ctx context.Context, acc *account.Account) (*Session, error)

// NewNodeSessionFactory opens sessions against the rpc nodes of network. It
// checks the nodes serve the network's chain and that the contract exists.
func NewNodeSessionFactory(
	network networks.Network,
	contract common.Address,
	gasOpts txmanager.GasOptions,
) SessionFactory {
	return func(ctx context.Context, acc *account.Account) (*Session, error) {
		nodes, err := networks.GetNodes(network)
		if err != nil {
			return nil, err
		}
		r := reader.NewEthReaderGeneric(nodes)
		b := broadcaster.NewGenericBroadcaster(nodes)
		m := monitor.NewGenericTxMonitor(r)
		if bt := network.GetBlockTime(); bt > 0 {
			m = m.WithInterval(bt)
		}
		s := NewSession(network, r, b, m, contract, acc, gasOpts)

		if err = s.check(ctx, contract); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
}

func (s *Session) check(ctx context.Context, contract common.Address) error {
	chainID, err := s.Reader.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("couldn't reach %s: %w", s.Network.GetName(), err)
	}
	if chainID.Uint64() != s.Network.GetChainID() {
		return fmt.Errorf(
			"nodes of %s serve chain %s, expected %d",
			s.Network.GetName(), chainID, s.Network.GetChainID(),
		)
	}
	code, err := s.Reader.GetCode(ctx, contract.Hex())
	if err != nil {
		return fmt.Errorf("couldn't read the bank contract: %w", err)
	}
	if len(code) == 0 {
		return fmt.Errorf("no contract at %s on %s, deploy one first", contract.Hex(), s.Network.GetName())
	}
	return nil
}
