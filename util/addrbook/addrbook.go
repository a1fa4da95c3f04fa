// Package addrbook maps addresses to human readable labels and searches
// labels for the whois command.
//
// Production code builds a [Book] from the registered accounts, the known
// Bank deployments and the user's addresses.json. Tests can inject [Map].
package addrbook

import (
	bankcommon "github.com/tranvictor/bankdapp/common"
)

// AddressResolver maps a hex address to a labelled bankcommon.Address.
//
// If the address is not known, Desc must be set to bankcommon.UnknownDesc.
type AddressResolver interface {
	Resolve(addr string) bankcommon.Address
}
