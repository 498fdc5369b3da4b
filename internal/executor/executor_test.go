package executor

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/ledger"
)

func testHeader() *types.Header {
	return &types.Header{
		Number:     big.NewInt(19_000_000),
		Time:       1_700_000_000,
		GasLimit:   30_000_000,
		BaseFee:    big.NewInt(1_000_000_000),
		Difficulty: big.NewInt(0),
		Coinbase:   common.Address{0xc0},
	}
}

// TestExecutePureTransfer exercises spec §8 scenario 1: a pure ETH
// transfer to an account with no code should consume exactly the
// intrinsic gas (21000) and produce no output or revert.
func TestExecutePureTransfer(t *testing.T) {
	to := common.Address{0xaa}
	l := ledger.New()
	l.InstallAccount(to, &asynctypes.Account{Balance: uint256.NewInt(1_000_000_000_000_000_000)})
	l.InstallCode(to, nil)

	from := common.Address{}
	l.InstallAccount(from, &asynctypes.Account{Balance: uint256.NewInt(10_000_000_000_000_000_000)})

	one := hexutil.Big(*big.NewInt(1))
	tx := &asynctypes.TransactionArgs{To: &to, Value: &one}

	res, err := Execute(l, params.MainnetChainConfig, testHeader(), tx, 50_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Error != "" {
		t.Fatalf("unexpected revert: %s", res.Error)
	}
	if res.GasUsed != 21000 {
		t.Fatalf("gas used = %d, want 21000", res.GasUsed)
	}
	if len(res.Output) != 0 {
		t.Fatalf("expected empty output, got %x", res.Output)
	}
}

// TestExecuteMissingContractCode exercises spec §8 scenario 3: calling an
// address with no code (backend reported empty code) should succeed with
// only intrinsic gas consumed.
func TestExecuteMissingContractCode(t *testing.T) {
	to := common.Address{0xcc}
	l := ledger.New()
	l.InstallCode(to, []byte{})

	tx := &asynctypes.TransactionArgs{To: &to}
	res, err := Execute(l, params.MainnetChainConfig, testHeader(), tx, 50_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GasUsed != 21000 {
		t.Fatalf("gas used = %d, want 21000", res.GasUsed)
	}
}
