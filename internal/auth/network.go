package auth

import (
	"fmt"

	"github.com/feral-file/ff-registry/internal/clarity"
	"github.com/feral-file/ff-registry/internal/domain"
)

// Network selects the chain id of the signing domain
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

const (
	ChainIDMainnet uint64 = 1
	ChainIDTestnet uint64 = 2147483648
)

// ChainID returns the chain id of the network
func (n Network) ChainID() (uint64, error) {
	switch n {
	case NetworkMainnet:
		return ChainIDMainnet, nil
	case NetworkTestnet:
		return ChainIDTestnet, nil
	default:
		return 0, fmt.Errorf("%w: unknown network %q", domain.ErrInvalidInput, n)
	}
}

// AddressVersion returns the single-sig address version used on the network
func (n Network) AddressVersion() byte {
	if n == NetworkTestnet {
		return domain.AddressVersionTestnetSingleSig
	}
	return domain.AddressVersionMainnetSingleSig
}

// Domain separates signatures of one application and network from every other
type Domain struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	ChainID uint64 `json:"chainId"`
}

// NewDomain builds the signing domain for a network
func NewDomain(name, version string, network Network) (Domain, error) {
	if name == "" || version == "" {
		return Domain{}, fmt.Errorf("%w: domain name and version are required", domain.ErrInvalidInput)
	}
	chainID, err := network.ChainID()
	if err != nil {
		return Domain{}, err
	}
	return Domain{Name: name, Version: version, ChainID: chainID}, nil
}

// Tuple returns the domain as the structured value that is hashed
func (d Domain) Tuple() clarity.Tuple {
	return clarity.Tuple{
		"name":     clarity.StringASCII(d.Name),
		"version":  clarity.StringASCII(d.Version),
		"chain-id": clarity.NewUInt(d.ChainID),
	}
}
