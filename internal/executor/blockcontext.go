package executor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// GetHashFn resolves the BLOCKHASH opcode's result for a given block
// number. The default, installed by NewBlockContext, always returns the
// zero hash — BLOCKHASH is a declared Non-goal (spec §1) — except it
// preserves the source engine's placeholder behavior for the header's own
// number, per SPEC_FULL.md's resolution of the §9 open question.
type GetHashFn func(n uint64) common.Hash

// NewBlockContext builds the vm.BlockContext the EVM Adapter executes
// against, from the supplied header (spec §4.C): timestamp, gas limit,
// base fee, prev-randao, difficulty, coinbase, excess-blob-gas (defaulting
// to 0), and a GetHash callback.
//
// Open question (spec §9): the source computes
// parentHash = rlp_hash(header) — the hash of the *current* header, not
// its parent. Whether this is an intentional BLOCKHASH-disabling
// placeholder or a bug is undecided upstream; SPEC_FULL.md directs this
// implementation to preserve the behavior exactly rather than silently
// "fixing" it, while exposing getHash as an override point for a future
// post-Pectra system-contract-backed hash source (EIP-2935).
func NewBlockContext(header *types.Header) vm.BlockContext {
	return NewBlockContextWithHashFn(header, DefaultGetHashFn(header))
}

// NewBlockContextWithHashFn is NewBlockContext with an explicit GetHashFn
// override, the hook spec §9 asks for.
func NewBlockContextWithHashFn(header *types.Header, getHash GetHashFn) vm.BlockContext {
	excessBlobGas := uint64(0)
	if header.ExcessBlobGas != nil {
		excessBlobGas = *header.ExcessBlobGas
	}
	baseFee := new(big.Int)
	if header.BaseFee != nil {
		baseFee = header.BaseFee
	}
	var random *common.Hash
	if header.MixDigest != (common.Hash{}) {
		r := header.MixDigest
		random = &r
	}
	return vm.BlockContext{
		CanTransfer:   core.CanTransfer,
		Transfer:      core.Transfer,
		GetHash:       func(n uint64) common.Hash { return getHash(n) },
		Coinbase:      header.Coinbase,
		BlockNumber:   new(big.Int).Set(header.Number),
		Time:          header.Time,
		Difficulty:    new(big.Int).Set(header.Difficulty),
		BaseFee:       baseFee,
		BlobBaseFee:   new(big.Int),
		GasLimit:      header.GasLimit,
		Random:        random,
		ExcessBlobGas: &excessBlobGas,
	}
}

// DefaultGetHashFn reproduces the source's parentHash placeholder: every
// block number resolves to the zero hash except the header's own number,
// which resolves to rlp_hash(header) — the hash of the *current* header rather
// than an ancestor, preserved verbatim per the §9 decision above.
func DefaultGetHashFn(header *types.Header) GetHashFn {
	return func(n uint64) common.Hash {
		if header.Number != nil && n == header.Number.Uint64() {
			h, err := rlp.EncodeToBytes(header)
			if err != nil {
				return common.Hash{}
			}
			return crypto.Keccak256Hash(h)
		}
		return common.Hash{}
	}
}
