package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/vouchernet/voucher-contract/common"
)

const cashPath = "../contracts/cash"

func deployCashContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, cashPath, path.Join(cashPath, "config.yml"))
	e.DeployContract(t, c, []any{e.CommitteeHash})
	return c.Hash
}

func newCashInvoker(t *testing.T) *neotest.ContractInvoker {
	e := newExecutor(t)
	return e.CommitteeInvoker(deployCashContract(t, e))
}

func TestCashTokenInfo(t *testing.T) {
	c := newCashInvoker(t)

	c.Invoke(t, "CASH", "symbol")
	c.Invoke(t, 2, "decimals")
	c.Invoke(t, 0, "totalSupply")
	c.Invoke(t, common.Version, "version")
}

func TestCashMint(t *testing.T) {
	c := newCashInvoker(t)

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()

	c.WithSigners(acc).InvokeFail(t, common.ErrOwnerWitnessFailed, "mint", accHash, 100)

	c.Invoke(t, stackitem.Null{}, "mint", accHash, 100)
	c.Invoke(t, 100, "balanceOf", accHash)
	c.Invoke(t, 100, "totalSupply")

	c.InvokeFail(t, "negative amount", "mint", accHash, -1)
}

func TestCashTransfer(t *testing.T) {
	c := newCashInvoker(t)

	from := c.NewAccount(t)
	to := c.NewAccount(t)
	fromHash := from.ScriptHash()
	toHash := to.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", fromHash, 42)

	cFrom := c.WithSigners(from)
	cFrom.Invoke(t, true, "transfer", fromHash, toHash, 30, nil)
	c.Invoke(t, 12, "balanceOf", fromHash)
	c.Invoke(t, 30, "balanceOf", toHash)

	// supply is unaffected by transfers
	c.Invoke(t, 42, "totalSupply")

	// more than the remaining balance
	cFrom.Invoke(t, false, "transfer", fromHash, toHash, 13, nil)
	c.Invoke(t, 12, "balanceOf", fromHash)

	// no witness of the sender
	c.WithSigners(to).Invoke(t, false, "transfer", fromHash, toHash, 1, nil)
	c.Invoke(t, 12, "balanceOf", fromHash)

	cFrom.InvokeFail(t, "negative amount", "transfer", fromHash, toHash, -1, nil)
}
