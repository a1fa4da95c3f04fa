package deploy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/tranvictor/bankdapp/bank"
)

var ErrNoBytecode = errors.New("artifact has no creation bytecode")

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte
}

type rawArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

// solc and foundry nest the bytecode under "object"
type bytecodeObject struct {
	Object string `json:"object"`
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		obj := bytecodeObject{}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("unsupported bytecode format: %w", err)
		}
		str = obj.Object
	}
	str = strings.TrimSpace(str)
	if str == "" || str == "0x" {
		return nil, ErrNoBytecode
	}
	if !strings.HasPrefix(str, "0x") {
		str = "0x" + str
	}
	code, err := hexutil.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	return code, nil
}

// ParseArtifact reads a hardhat artifact or a solc/foundry combined output
// for a single contract.
func ParseArtifact(content []byte) (*Artifact, error) {
	raw := rawArtifact{}
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	if len(raw.Bytecode) == 0 {
		return nil, ErrNoBytecode
	}
	code, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid artifact abi: %w", err)
	}
	return &Artifact{
		ContractName: raw.ContractName,
		ABI:          parsed,
		Bytecode:     code,
	}, nil
}

func LoadArtifact(path string) (*Artifact, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	artifact, err := ParseArtifact(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return artifact, nil
}

// CheckBankABI makes sure the artifact exposes every Bank method the client
// uses, so the wrong contract is not deployed by mistake.
func (a *Artifact) CheckBankABI() error {
	expected := bank.ABI()
	missing := []string{}
	for name, m := range expected.Methods {
		got, found := a.ABI.Methods[name]
		if !found || got.Sig != m.Sig {
			missing = append(missing, m.Sig)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("artifact is not a Bank contract, missing: %s", strings.Join(missing, ", "))
	}
	if len(a.ABI.Constructor.Inputs) > 0 {
		return fmt.Errorf("Bank constructor must take no arguments, it takes %d", len(a.ABI.Constructor.Inputs))
	}
	return nil
}
