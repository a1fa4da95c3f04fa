package broadcaster

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/tranvictor/bankdapp/common"
)

const TIMEOUT time.Duration = 4 * time.Second

// Node is anything that accepts a raw signed tx.
type Node interface {
	NodeName() string
	// data must be hex encoded of the signed tx
	SendRawTransaction(ctx context.Context, data string) error
}

type rpcNode struct {
	name   string
	url    string
	mu     sync.Mutex
	client *rpc.Client
}

func (n *rpcNode) NodeName() string {
	return n.name
}

func (n *rpcNode) SendRawTransaction(ctx context.Context, data string) error {
	n.mu.Lock()
	if n.client == nil {
		client, err := rpc.DialContext(ctx, n.url)
		if err != nil {
			n.mu.Unlock()
			return fmt.Errorf("couldn't connect to %s: %w", n.url, err)
		}
		n.client = client
	}
	client := n.client
	n.mu.Unlock()
	return client.CallContext(ctx, nil, "eth_sendRawTransaction", data)
}

func (n *rpcNode) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client != nil {
		n.client.Close()
		n.client = nil
	}
}

// Broadcaster takes a signed tx and try to broadcast it to all
// nodes that it manages as fast as possible. It reports whether the tx
// reached at least 1 node.
type Broadcaster struct {
	nodes map[string]Node
}

func NewGenericBroadcaster(nodes map[string]string) *Broadcaster {
	ns := []Node{}
	for name, url := range nodes {
		ns = append(ns, &rpcNode{name: name, url: url})
	}
	return NewBroadcasterWithNodes(ns...)
}

func NewBroadcasterWithNodes(nodes ...Node) *Broadcaster {
	ns := map[string]Node{}
	for _, n := range nodes {
		ns[n.NodeName()] = n
	}
	return &Broadcaster{nodes: ns}
}

func (b *Broadcaster) NodeNames() []string {
	res := []string{}
	for name := range b.nodes {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (b *Broadcaster) Close() {
	for _, n := range b.nodes {
		if c, ok := n.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

func (b *Broadcaster) BroadcastTx(ctx context.Context, tx *types.Transaction) (string, bool, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return "", false, fmt.Errorf("tx is not valid, couldn't use rlp to encode it: %w", err)
	}
	return b.Broadcast(ctx, hexutil.Encode(data))
}

// Broadcast sends data to every node once. The returned error joins the
// failures of all nodes when none of them accepted the tx.
func (b *Broadcaster) Broadcast(ctx context.Context, data string) (string, bool, error) {
	hash := common.RawTxToHash(data)
	if len(b.nodes) == 0 {
		return hash, false, fmt.Errorf("broadcaster has no node")
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()

	parallelTasks := []func() error{}
	for id := range b.nodes {
		n := b.nodes[id]
		parallelTasks = append(parallelTasks, func() error {
			if err := n.SendRawTransaction(timeout, data); err != nil {
				return fmt.Errorf("%s: %w", n.NodeName(), err)
			}
			return nil
		})
	}
	numErrs, err := common.RunParallel(parallelTasks...)
	if numErrs == len(b.nodes) {
		return hash, false, err
	}
	return hash, true, nil
}
