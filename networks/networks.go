package networks

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tranvictor/bankdapp/util/logger"
)

var (
	cachedNetwork Network
	mu            sync.Mutex
)

var NetworkString string = "localhost"

func CurrentNetwork() Network {
	mu.Lock()
	cached := cachedNetwork
	mu.Unlock()
	if cached != nil {
		return cached
	}

	if err := SetNetwork(NetworkString); err != nil {
		logger.L().Warnw("falling back to localhost", "network", NetworkString, "err", err)
		mu.Lock()
		cachedNetwork = Localhost
		mu.Unlock()
	}
	mu.Lock()
	defer mu.Unlock()
	return cachedNetwork
}

func SetNetwork(networkStr string) error {
	nw, err := GetNetwork(networkStr)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if cachedNetwork != nil && cachedNetwork != nw {
		logger.L().Infow("switched network", "from", cachedNetwork.GetName(), "to", nw.GetName())
	}
	cachedNetwork = nw
	return nil
}

// GetNodes returns the rpc nodes of a network keyed by a display name. A node
// set in the network's node variable is added as "custom-node".
func GetNodes(network Network) (map[string]string, error) {
	nodes := map[string]string{}
	for name, url := range network.GetDefaultNodes() {
		nodes[name] = url
	}
	if v := network.GetNodeVariableName(); v != "" {
		customNode := strings.TrimSpace(os.Getenv(v))
		if customNode != "" {
			nodes["custom-node"] = customNode
		}
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf(
			"network %s has no node, set %s to an rpc url",
			network.GetName(), network.GetNodeVariableName(),
		)
	}
	return nodes, nil
}
