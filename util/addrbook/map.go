package addrbook

import (
	"strings"

	bankcommon "github.com/tranvictor/bankdapp/common"
)

// Map is an AddressResolver over lower-cased addresses, for tests.
//
//	r := addrbook.Map{
//	    "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266": "bank owner",
//	}
type Map map[string]string

func (m Map) Resolve(addr string) bankcommon.Address {
	if desc, ok := m[strings.ToLower(addr)]; ok {
		return bankcommon.Address{Address: addr, Desc: desc}
	}
	return bankcommon.Address{Address: addr, Desc: bankcommon.UnknownDesc}
}
