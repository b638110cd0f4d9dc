package tests

import (
	"path"
	"testing"

	istorage "github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
	"github.com/vouchernet/voucher-contract/common"
	cst "github.com/vouchernet/voucher-contract/contracts/voucher/voucherconst"
)

const voucherPath = "../contracts/voucher"

const testBaseURI = "https://vouchers.example/item/"

func deployVoucherContract(t *testing.T, e *neotest.Executor, cashHash util.Uint160) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, voucherPath, path.Join(voucherPath, "config.yml"))
	e.DeployContract(t, c, []any{e.CommitteeHash, cashHash, testBaseURI})
	return c.Hash
}

type voucherInvoker struct {
	*neotest.ContractInvoker

	cash     *neotest.ContractInvoker
	hash     util.Uint160
	cashHash util.Uint160
}

func newVoucherInvoker(t *testing.T) *voucherInvoker {
	e := newExecutor(t)

	cashHash := deployCashContract(t, e)
	hash := deployVoucherContract(t, e, cashHash)

	return &voucherInvoker{
		ContractInvoker: e.CommitteeInvoker(hash),
		cash:            e.CommitteeInvoker(cashHash),
		hash:            hash,
		cashHash:        cashHash,
	}
}

// fundCustody mints cash directly to the voucher contract account forming
// the reserve backing future voucher issues.
func (v *voucherInvoker) fundCustody(t *testing.T, amount int64) {
	v.cash.Invoke(t, stackitem.Null{}, "mint", v.hash, amount)
}

func (v *voucherInvoker) checkBalance(t *testing.T, owner util.Uint160, id, expected int64) {
	v.Invoke(t, expected, "balanceOf", owner, id)
}

func (v *voucherInvoker) checkCashBalance(t *testing.T, acc util.Uint160, expected int64) {
	v.cash.Invoke(t, expected, "balanceOf", acc)
}

func TestVoucherDeploy(t *testing.T) {
	v := newVoucherInvoker(t)

	v.Invoke(t, common.Version, "version")
	v.Invoke(t, stackitem.NewByteArray(v.CommitteeHash.BytesBE()), "owner")
	v.Invoke(t, stackitem.NewByteArray(v.cashHash.BytesBE()), "cashToken")
	v.Invoke(t, stackitem.NewArray([]stackitem.Item{
		stackitem.Make(cst.UnitVoucher),
		stackitem.Make(cst.TenVoucher),
	}), "denominations")
}

func TestVoucherRate(t *testing.T) {
	v := newVoucherInvoker(t)

	v.Invoke(t, cst.UnitRate, "rate", cst.UnitVoucher)
	v.Invoke(t, cst.TenRate, "rate", cst.TenVoucher)
	v.InvokeFail(t, cst.ErrUnknownDenomination, "rate", 2)
	v.InvokeFail(t, cst.ErrUnknownDenomination, "rate", 0)
}

func TestVoucherMint(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()

	// empty reserve backs nothing
	v.InvokeFail(t, cst.ErrInsufficientReserve, "mint", userHash, cst.UnitVoucher, 1, nil)
	v.checkBalance(t, userHash, cst.UnitVoucher, 0)

	v.fundCustody(t, 10)

	v.InvokeFail(t, cst.ErrUnknownDenomination, "mint", userHash, 2, 1, nil)
	v.InvokeFail(t, cst.ErrInsufficientReserve, "mint", userHash, cst.UnitVoucher, 11, nil)
	v.InvokeFail(t, cst.ErrInsufficientReserve, "mint", userHash, cst.TenVoucher, 2, nil)
	v.checkBalance(t, userHash, cst.UnitVoucher, 0)
	v.checkBalance(t, userHash, cst.TenVoucher, 0)

	v.InvokeFail(t, "negative amount", "mint", userHash, cst.UnitVoucher, -1, nil)

	v.Invoke(t, stackitem.Null{}, "mint", userHash, cst.TenVoucher, 1, nil)
	v.checkBalance(t, userHash, cst.TenVoucher, 1)
	v.Invoke(t, 1, "totalSupply", cst.TenVoucher)

	// no cash moves at issue time
	v.checkCashBalance(t, v.hash, 10)
	v.checkCashBalance(t, userHash, 0)

	v.WithSigners(user).InvokeFail(t, common.ErrOwnerWitnessFailed, "mint", userHash, cst.UnitVoucher, 1, nil)
}

func TestVoucherMintBatch(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()

	v.fundCustody(t, 10)

	v.InvokeFail(t, cst.ErrLengthMismatch, "mintBatch", userHash,
		[]any{cst.UnitVoucher}, []any{1, 1}, nil)

	// an unknown denomination aborts the whole batch
	v.InvokeFail(t, cst.ErrUnknownDenomination, "mintBatch", userHash,
		[]any{cst.UnitVoucher, 2}, []any{1, 1}, nil)
	v.checkBalance(t, userHash, cst.UnitVoucher, 0)

	// reserve is checked against the summed batch value
	v.InvokeFail(t, cst.ErrInsufficientReserve, "mintBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 1}, nil)
	v.checkBalance(t, userHash, cst.UnitVoucher, 0)
	v.checkBalance(t, userHash, cst.TenVoucher, 0)

	v.fundCustody(t, 1)

	v.Invoke(t, stackitem.Null{}, "mintBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 1}, nil)
	v.Invoke(t, stackitem.NewArray([]stackitem.Item{
		stackitem.Make(1),
		stackitem.Make(1),
	}), "balanceOfBatch", []any{userHash, userHash}, []any{cst.UnitVoucher, cst.TenVoucher})
}

func TestVoucherBalanceOfBatch(t *testing.T) {
	v := newVoucherInvoker(t)

	u1 := v.NewAccount(t).ScriptHash()
	u2 := v.NewAccount(t).ScriptHash()

	v.InvokeFail(t, cst.ErrLengthMismatch, "balanceOfBatch",
		[]any{u1, u2}, []any{cst.UnitVoucher})

	v.fundCustody(t, 12)
	v.Invoke(t, stackitem.Null{}, "mint", u1, cst.UnitVoucher, 2, nil)
	v.Invoke(t, stackitem.Null{}, "mint", u2, cst.TenVoucher, 1, nil)

	v.Invoke(t, stackitem.NewArray([]stackitem.Item{
		stackitem.Make(2),
		stackitem.Make(1),
		stackitem.Make(0),
	}), "balanceOfBatch",
		[]any{u1, u2, u1}, []any{cst.UnitVoucher, cst.TenVoucher, cst.TenVoucher})
}

func TestVoucherSwapRoundTrip(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()

	v.fundCustody(t, 11)
	v.Invoke(t, stackitem.Null{}, "mint", userHash, cst.UnitVoucher, 1, nil)
	v.Invoke(t, stackitem.Null{}, "mint", userHash, cst.TenVoucher, 1, nil)

	vUser := v.WithSigners(user)

	vUser.Invoke(t, stackitem.Null{}, "swap", userHash, cst.UnitVoucher, 1)
	v.checkBalance(t, userHash, cst.UnitVoucher, 0)
	v.checkCashBalance(t, userHash, 1)
	v.checkCashBalance(t, v.hash, 10)

	vUser.Invoke(t, stackitem.Null{}, "swap", userHash, cst.TenVoucher, 1)
	v.checkBalance(t, userHash, cst.TenVoucher, 0)
	v.checkCashBalance(t, userHash, 11)
	v.checkCashBalance(t, v.hash, 0)

	v.Invoke(t, 0, "totalSupply", cst.UnitVoucher)
	v.Invoke(t, 0, "totalSupply", cst.TenVoucher)
}

func TestVoucherSwapErrorPrecedence(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()
	vUser := v.WithSigners(user)

	// valid denomination, empty balance
	vUser.InvokeFail(t, cst.ErrInsufficientBalance, "swap", userHash, cst.UnitVoucher, 1)

	v.fundCustody(t, 5)
	v.Invoke(t, stackitem.Null{}, "mint", userHash, cst.UnitVoucher, 5, nil)

	// sufficient balance, unknown denomination
	vUser.InvokeFail(t, cst.ErrUnknownDenomination, "swap", userHash, 2, 1)
	v.checkBalance(t, userHash, cst.UnitVoucher, 5)

	// holder witness is required
	other := v.NewAccount(t)
	v.WithSigners(other).InvokeFail(t, common.ErrOwnerWitnessFailed, "swap", userHash, cst.UnitVoucher, 1)
	v.checkBalance(t, userHash, cst.UnitVoucher, 5)
}

func TestVoucherSwapBatch(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()
	vUser := v.WithSigners(user)

	v.fundCustody(t, 11)
	v.Invoke(t, stackitem.Null{}, "mintBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 1}, nil)

	vUser.InvokeFail(t, cst.ErrLengthMismatch, "swapBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1})

	vUser.Invoke(t, stackitem.Null{}, "swapBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 1})

	v.Invoke(t, stackitem.NewArray([]stackitem.Item{
		stackitem.Make(0),
		stackitem.Make(0),
	}), "balanceOfBatch", []any{userHash, userHash}, []any{cst.UnitVoucher, cst.TenVoucher})
	v.checkCashBalance(t, userHash, 11)
	v.checkCashBalance(t, v.hash, 0)
}

func TestVoucherSwapBatchAtomicity(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()
	vUser := v.WithSigners(user)

	v.fundCustody(t, 11)
	v.Invoke(t, stackitem.Null{}, "mintBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 1}, nil)

	// second element exceeds the holdings, first must stay intact
	vUser.InvokeFail(t, cst.ErrInsufficientBalance, "swapBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 2})
	v.checkBalance(t, userHash, cst.UnitVoucher, 1)
	v.checkBalance(t, userHash, cst.TenVoucher, 1)
	v.checkCashBalance(t, userHash, 0)

	// unknown denomination anywhere in the batch prevents every debit
	vUser.InvokeFail(t, cst.ErrUnknownDenomination, "swapBatch", userHash,
		[]any{cst.UnitVoucher, 3}, []any{1, 1})
	v.checkBalance(t, userHash, cst.UnitVoucher, 1)
}

func TestVoucherBurn(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()
	sink := util.Uint160{}

	v.fundCustody(t, 20)
	v.Invoke(t, stackitem.Null{}, "mint", userHash, cst.TenVoucher, 2, nil)

	v.WithSigners(user).InvokeFail(t, common.ErrOwnerWitnessFailed, "burn", userHash, cst.TenVoucher, 1)

	v.InvokeFail(t, cst.ErrInsufficientBalance, "burn", userHash, cst.TenVoucher, 3)
	v.checkBalance(t, userHash, cst.TenVoucher, 2)

	v.Invoke(t, stackitem.Null{}, "burn", userHash, cst.TenVoucher, 1)
	v.checkBalance(t, userHash, cst.TenVoucher, 1)
	v.Invoke(t, 1, "totalSupply", cst.TenVoucher)

	// backing cash of the burnt voucher leaves custody for the sink
	v.checkCashBalance(t, v.hash, 10)
	v.checkCashBalance(t, sink, 10)
	v.checkCashBalance(t, userHash, 0)
}

func TestVoucherBurnSkipsCatalog(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()

	// burn does not validate the denomination: an unknown one fails on
	// the (empty) balance, not on the catalog
	v.InvokeFail(t, cst.ErrInsufficientBalance, "burn", userHash, 7, 1)
	v.Invoke(t, stackitem.Null{}, "burn", userHash, 7, 0)

	v.InvokeFail(t, cst.ErrInsufficientBalance, "burnBatch", userHash, []any{7}, []any{1})
	v.Invoke(t, stackitem.Null{}, "burnBatch", userHash, []any{7}, []any{0})
}

func TestVoucherBurnBatch(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()
	sink := util.Uint160{}

	v.fundCustody(t, 11)
	v.Invoke(t, stackitem.Null{}, "mintBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 1}, nil)

	v.InvokeFail(t, cst.ErrLengthMismatch, "burnBatch", userHash,
		[]any{cst.UnitVoucher}, []any{1, 1})

	// any failing element reverts the whole batch
	v.InvokeFail(t, cst.ErrInsufficientBalance, "burnBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 2})
	v.checkBalance(t, userHash, cst.UnitVoucher, 1)
	v.checkBalance(t, userHash, cst.TenVoucher, 1)

	v.Invoke(t, stackitem.Null{}, "burnBatch", userHash,
		[]any{cst.UnitVoucher, cst.TenVoucher}, []any{1, 1})
	v.checkBalance(t, userHash, cst.UnitVoucher, 0)
	v.checkBalance(t, userHash, cst.TenVoucher, 0)
	v.checkCashBalance(t, sink, 11)
	v.checkCashBalance(t, v.hash, 0)
}

func TestVoucherURI(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)

	v.Invoke(t, testBaseURI+"1", "uri", cst.UnitVoucher)
	v.Invoke(t, testBaseURI+"10", "uri", cst.TenVoucher)

	v.WithSigners(user).InvokeFail(t, common.ErrOwnerWitnessFailed, "setURI", cst.UnitVoucher, "unit.json")
	v.WithSigners(user).InvokeFail(t, common.ErrOwnerWitnessFailed, "setBaseURI", "x://")

	v.Invoke(t, stackitem.Null{}, "setURI", cst.UnitVoucher, "unit.json")
	v.Invoke(t, testBaseURI+"unit.json", "uri", cst.UnitVoucher)
	v.Invoke(t, testBaseURI+"10", "uri", cst.TenVoucher)

	// base change composes with existing overrides
	v.Invoke(t, stackitem.Null{}, "setBaseURI", "ipfs://vouchers/")
	v.Invoke(t, "ipfs://vouchers/unit.json", "uri", cst.UnitVoucher)
	v.Invoke(t, "ipfs://vouchers/10", "uri", cst.TenVoucher)

	// overrides are not limited to the catalog
	v.Invoke(t, stackitem.Null{}, "setURI", 77, "special.json")
	v.Invoke(t, "ipfs://vouchers/special.json", "uri", 77)
}

func TestVoucherCashToken(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()
	vUser := v.WithSigners(user)

	vUser.InvokeFail(t, common.ErrOwnerWitnessFailed, "cashToken")
	vUser.InvokeFail(t, common.ErrOwnerWitnessFailed, "setCashToken", v.cashHash)

	v.Invoke(t, stackitem.NewByteArray(v.cashHash.BytesBE()), "cashToken")
	v.InvokeFail(t, "incorrect cash token script hash length", "setCashToken", []byte{1, 2, 3})

	v.Invoke(t, stackitem.Null{}, "setCashToken", userHash)
	v.Invoke(t, stackitem.NewByteArray(userHash.BytesBE()), "cashToken")

	v.Invoke(t, stackitem.Null{}, "setCashToken", v.cashHash)
	v.Invoke(t, stackitem.NewByteArray(v.cashHash.BytesBE()), "cashToken")
}

func TestVoucherSwapRollbackOnTransferFailure(t *testing.T) {
	v := newVoucherInvoker(t)

	a := v.NewAccount(t)
	b := v.NewAccount(t)
	aHash := a.ScriptHash()
	bHash := b.ScriptHash()

	// the reserve check is per call, so two issues against the same
	// custody balance leave the second holder uncovered
	v.fundCustody(t, 10)
	v.Invoke(t, stackitem.Null{}, "mint", aHash, cst.TenVoucher, 1, nil)
	v.Invoke(t, stackitem.Null{}, "mint", bHash, cst.TenVoucher, 1, nil)

	v.WithSigners(a).Invoke(t, stackitem.Null{}, "swap", aHash, cst.TenVoucher, 1)
	v.checkCashBalance(t, aHash, 10)
	v.checkCashBalance(t, v.hash, 0)

	// the cash transfer fails after the local debit, rolling it back
	v.WithSigners(b).InvokeFail(t, "failed to transfer cash", "swap", bHash, cst.TenVoucher, 1)
	v.checkBalance(t, bHash, cst.TenVoucher, 1)
	v.checkCashBalance(t, bHash, 0)
	v.Invoke(t, 1, "totalSupply", cst.TenVoucher)
}

func TestVoucherTransferOwnership(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()
	vUser := v.WithSigners(user)

	vUser.InvokeFail(t, common.ErrOwnerWitnessFailed, "transferOwnership", userHash)

	v.Invoke(t, stackitem.Null{}, "transferOwnership", userHash)
	v.Invoke(t, stackitem.NewByteArray(userHash.BytesBE()), "owner")

	v.fundCustody(t, 1)
	v.InvokeFail(t, common.ErrOwnerWitnessFailed, "mint", userHash, cst.UnitVoucher, 1, nil)
	vUser.Invoke(t, stackitem.Null{}, "mint", userHash, cst.UnitVoucher, 1, nil)
	v.checkBalance(t, userHash, cst.UnitVoucher, 1)
}

func TestVoucherIterators(t *testing.T) {
	v := newVoucherInvoker(t)

	user := v.NewAccount(t)
	userHash := user.ScriptHash()

	v.fundCustody(t, 10)
	v.Invoke(t, stackitem.Null{}, "mint", userHash, cst.TenVoucher, 1, nil)
	v.Invoke(t, stackitem.Null{}, "setURI", cst.TenVoucher, "ten.json")

	s, err := v.TestInvoke(t, "iterateBalances")
	require.NoError(t, err)

	items := iteratorToArray(s.Pop().Value().(*istorage.Iterator))
	require.Len(t, items, 1)

	kv := items[0].Value().([]stackitem.Item)
	key, err := kv[0].TryBytes()
	require.NoError(t, err)
	require.Equal(t, userHash.BytesBE(), key[:util.Uint160Size])
	require.EqualValues(t, cst.TenVoucher, bigint.FromBytes(key[util.Uint160Size:]).Int64())

	amount, err := kv[1].TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, 1, amount.Int64())

	s, err = v.TestInvoke(t, "iterateOverrides")
	require.NoError(t, err)

	items = iteratorToArray(s.Pop().Value().(*istorage.Iterator))
	require.Len(t, items, 1)

	kv = items[0].Value().([]stackitem.Item)
	key, err = kv[0].TryBytes()
	require.NoError(t, err)
	require.EqualValues(t, cst.TenVoucher, bigint.FromBytes(key).Int64())

	suffix, err := kv[1].TryBytes()
	require.NoError(t, err)
	require.Equal(t, "ten.json", string(suffix))
}
