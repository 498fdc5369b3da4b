package asyncevm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/params"
)

// NetworkID selects a chain configuration (fork schedule, chain ID),
// per spec §6's "Network configuration". The zero value selects mainnet.
type NetworkID uint64

const (
	Mainnet NetworkID = 1
	Sepolia NetworkID = 11155111
	Holesky NetworkID = 17000
)

// Config is the immutable, process-lifetime state an Engine holds
// alongside its backend handle (spec §3's Engine lifecycle note).
type Config struct {
	// Network selects the chain config. Zero value resolves to Mainnet.
	Network NetworkID

	// ChainConfig, if set, overrides Network entirely — for custom or
	// private networks the NetworkID enum has no entry for.
	ChainConfig *params.ChainConfig

	// EVMCallGasCap overrides the default gas cap (spec §6:
	// EVM_CALL_GAS_CAP = 50_000_000) applied to every EVM Adapter
	// invocation and enforced against tx.gas during input validation.
	EVMCallGasCap uint64

	// EVMCallLimit overrides the default Prefetch Loop safety ceiling
	// (spec §6: EVM_CALL_LIMIT = 10_000).
	EVMCallLimit int
}

// DefaultEVMCallGasCap is spec §6's EVM_CALL_GAS_CAP.
const DefaultEVMCallGasCap = 50_000_000

func (c Config) chainConfig() (*params.ChainConfig, error) {
	if c.ChainConfig != nil {
		return c.ChainConfig, nil
	}
	switch c.Network {
	case 0, Mainnet:
		return params.MainnetChainConfig, nil
	case Sepolia:
		return params.SepoliaChainConfig, nil
	case Holesky:
		return params.HoleskyChainConfig, nil
	default:
		return nil, fmt.Errorf("asyncevm: unknown network id %d, set Config.ChainConfig explicitly", c.Network)
	}
}

func (c Config) gasCap() uint64 {
	if c.EVMCallGasCap != 0 {
		return c.EVMCallGasCap
	}
	return DefaultEVMCallGasCap
}

func (c Config) callLimit() int {
	if c.EVMCallLimit != 0 {
		return c.EVMCallLimit
	}
	return 0 // 0 signals "use the prefetch package default" — see prefetch.Run
}
