package voucher

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/vouchernet/voucher-contract/common"
	cst "github.com/vouchernet/voucher-contract/contracts/voucher/voucherconst"
)

const (
	balancePrefix  = 'b'
	supplyPrefix   = 's'
	overridePrefix = 'u'

	ownerKey     = 'o'
	cashTokenKey = 'c'
	baseURIKey   = 'r'
)

// nolint:unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner     interop.Hash160
		cashToken interop.Hash160
		baseURI   string
	})

	if len(args.owner) != interop.Hash160Len {
		panic("incorrect owner script hash length")
	}

	if len(args.cashToken) != interop.Hash160Len {
		panic("incorrect cash token script hash length")
	}

	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, cashTokenKey, args.cashToken)
	storage.Put(ctx, baseURIKey, args.baseURI)

	runtime.Log("voucher contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract owner.
func Update(nefFile, manifest []byte, data any) {
	requireOwnerWitness(storage.GetReadOnlyContext())

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("voucher contract updated")
}

// Owner returns the script hash of the contract owner.
func Owner() interop.Hash160 {
	return contractOwner(storage.GetReadOnlyContext())
}

// TransferOwnership hands administrative control of the contract over to
// another account. It can be invoked only by the current contract owner.
//
// It produces OwnershipTransferred notification.
func TransferOwnership(to interop.Hash160) {
	if len(to) != interop.Hash160Len {
		panic("incorrect owner script hash length")
	}

	ctx := storage.GetContext()
	requireOwnerWitness(ctx)

	storage.Put(ctx, ownerKey, to)

	runtime.Notify("OwnershipTransferred", to)
	runtime.Log("contract owner changed")
}

// CashToken returns the script hash of the cash token backing the vouchers.
// It can be invoked only by the contract owner.
func CashToken() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	requireOwnerWitness(ctx)
	return cashTokenHash(ctx)
}

// SetCashToken changes the script hash of the cash token backing the
// vouchers. It can be invoked only by the contract owner. Vouchers issued
// against the previous token keep their denominations; it is up to the
// owner to make sure the new custody account covers them.
//
// It produces CashTokenUpdated notification.
func SetCashToken(token interop.Hash160) {
	if len(token) != interop.Hash160Len {
		panic("incorrect cash token script hash length")
	}

	ctx := storage.GetContext()
	requireOwnerWitness(ctx)

	storage.Put(ctx, cashTokenKey, token)

	runtime.Notify("CashTokenUpdated", token)
	runtime.Log("cash token address updated")
}

// Denominations returns the fixed catalog of voucher denominations.
func Denominations() []int {
	return []int{cst.UnitVoucher, cst.TenVoucher}
}

// Rate returns the cash value of a single voucher of the given
// denomination. It panics if the denomination is outside the catalog.
func Rate(id int) int {
	return requireRate(id)
}

// BalanceOf returns the voucher balance of the given denomination held by
// the account.
func BalanceOf(owner interop.Hash160, id int) int {
	if len(owner) != interop.Hash160Len {
		panic("incorrect owner script hash length")
	}
	return getBalance(storage.GetReadOnlyContext(), owner, id)
}

// BalanceOfBatch returns voucher balances for parallel arrays of accounts
// and denominations. Arrays must be of the same length.
func BalanceOfBatch(owners []interop.Hash160, ids []int) []int {
	if len(owners) != len(ids) {
		panic(cst.ErrLengthMismatch)
	}

	ctx := storage.GetReadOnlyContext()

	balances := make([]int, len(ids))
	for i := range ids {
		if len(owners[i]) != interop.Hash160Len {
			panic("incorrect owner script hash length")
		}
		balances[i] = getBalance(ctx, owners[i], ids[i])
	}
	return balances
}

// TotalSupply returns the number of outstanding vouchers of the given
// denomination.
func TotalSupply(id int) int {
	return getSupply(storage.GetReadOnlyContext(), id)
}

// Mint issues vouchers of the given denomination to the specified account.
// It can be invoked only by the contract owner.
//
// Issued vouchers must be backed by cash already resident on the contract
// account: minting a value bigger than the custody balance of the cash
// token fails. No cash moves at issue time. Data argument is passed
// through for the clients and is not interpreted by the contract.
//
// It produces Transfer notification with empty from field.
func Mint(to interop.Hash160, id, amount int, data any) {
	if len(to) != interop.Hash160Len {
		panic("incorrect recipient script hash length")
	}

	ctx := storage.GetContext()
	requireOwnerWitness(ctx)

	rate := requireRate(id)
	checkReserve(ctx, rate*amount)

	credit(ctx, to, id, amount)
	addSupply(ctx, id, amount)

	runtime.Notify("Transfer", interop.Hash160(nil), to, id, amount)
	runtime.Log("vouchers minted")
}

// MintBatch issues vouchers of multiple denominations to the specified
// account in one atomic step. Ids and amounts are parallel arrays of the
// same length. Every denomination is checked against the catalog and the
// summed cash value of the whole batch is checked against the custody
// balance before any voucher is credited.
//
// It can be invoked only by the contract owner.
//
// It produces Transfer notification with empty from field per batch element.
func MintBatch(to interop.Hash160, ids, amounts []int, data any) {
	if len(to) != interop.Hash160Len {
		panic("incorrect recipient script hash length")
	}

	if len(ids) != len(amounts) {
		panic(cst.ErrLengthMismatch)
	}

	ctx := storage.GetContext()
	requireOwnerWitness(ctx)

	required := 0
	for i := range ids {
		required += requireRate(ids[i]) * amounts[i]
	}
	checkReserve(ctx, required)

	for i := range ids {
		credit(ctx, to, ids[i], amounts[i])
		addSupply(ctx, ids[i], amounts[i])
		runtime.Notify("Transfer", interop.Hash160(nil), to, ids[i], amounts[i])
	}

	runtime.Log("voucher batch minted")
}

// Burn destroys vouchers held by the specified account and moves their
// cash value from the contract account to the sink account, taking it out
// of circulation. It can be invoked only by the contract owner.
//
// Unlike Swap, Burn does not check the denomination against the catalog:
// any stored balance row can be destroyed.
//
// It produces Transfer notification with empty to field.
func Burn(from interop.Hash160, id, amount int) {
	if len(from) != interop.Hash160Len {
		panic("incorrect holder script hash length")
	}

	ctx := storage.GetContext()
	requireOwnerWitness(ctx)

	debit(ctx, from, id, amount)
	addSupply(ctx, id, -amount)

	runtime.Notify("Transfer", from, interop.Hash160(nil), id, amount)

	rate, _ := rateOf(id)
	transferCash(ctx, sinkAccount(), rate*amount)
	runtime.Log("vouchers burned")
}

// BurnBatch destroys vouchers of multiple denominations held by the
// specified account in one atomic step and moves their summed cash value
// from the contract account to the sink account. Ids and amounts are
// parallel arrays of the same length. Like Burn, it does not check
// denominations against the catalog.
//
// It can be invoked only by the contract owner.
//
// It produces Transfer notification with empty to field per batch element.
func BurnBatch(from interop.Hash160, ids, amounts []int) {
	if len(from) != interop.Hash160Len {
		panic("incorrect holder script hash length")
	}

	if len(ids) != len(amounts) {
		panic(cst.ErrLengthMismatch)
	}

	ctx := storage.GetContext()
	requireOwnerWitness(ctx)

	value := 0
	for i := range ids {
		debit(ctx, from, ids[i], amounts[i])
		addSupply(ctx, ids[i], -amounts[i])

		rate, _ := rateOf(ids[i])
		value += rate * amounts[i]

		runtime.Notify("Transfer", from, interop.Hash160(nil), ids[i], amounts[i])
	}

	transferCash(ctx, sinkAccount(), value)
	runtime.Log("voucher batch burned")
}

// Swap redeems vouchers of the given denomination held by the specified
// account for cash at the fixed denomination rate. It can be invoked only
// by the holder of the vouchers.
//
// Vouchers are destroyed first, then the contract transfers their cash
// value from its own account to the holder. A failed cash transfer aborts
// the whole transaction, so no vouchers are lost.
//
// It produces Transfer and Swap notifications.
func Swap(from interop.Hash160, id, amount int) {
	if len(from) != interop.Hash160Len {
		panic("incorrect holder script hash length")
	}

	common.CheckOwnerWitness(from)

	ctx := storage.GetContext()

	rate := requireRate(id)

	debit(ctx, from, id, amount)
	addSupply(ctx, id, -amount)

	runtime.Notify("Transfer", from, interop.Hash160(nil), id, amount)

	value := rate * amount
	transferCash(ctx, from, value)

	runtime.Notify("Swap", from, value)
	runtime.Log("vouchers swapped")
}

// SwapBatch redeems vouchers of multiple denominations held by the
// specified account in one atomic step. Ids and amounts are parallel
// arrays of the same length. Every denomination is checked against the
// catalog before any voucher is destroyed; the summed cash value is
// transferred to the holder with a single cash transfer.
//
// It can be invoked only by the holder of the vouchers.
//
// It produces Transfer notification per batch element and a single Swap
// notification.
func SwapBatch(from interop.Hash160, ids, amounts []int) {
	if len(from) != interop.Hash160Len {
		panic("incorrect holder script hash length")
	}

	if len(ids) != len(amounts) {
		panic(cst.ErrLengthMismatch)
	}

	common.CheckOwnerWitness(from)

	ctx := storage.GetContext()

	// resolve every rate before the first debit, so an unknown
	// denomination aborts the batch with no balance changes
	value := 0
	for i := range ids {
		value += requireRate(ids[i]) * amounts[i]
	}

	for i := range ids {
		debit(ctx, from, ids[i], amounts[i])
		addSupply(ctx, ids[i], -amounts[i])
		runtime.Notify("Transfer", from, interop.Hash160(nil), ids[i], amounts[i])
	}

	transferCash(ctx, from, value)

	runtime.Notify("Swap", from, value)
	runtime.Log("voucher batch swapped")
}

// SetURI sets the display URI suffix for the given denomination. The
// suffix replaces the default decimal representation of the denomination
// in URI composition. Denomination is not checked against the catalog, so
// display entries can be prepared ahead of a catalog extension.
//
// It can be invoked only by the contract owner.
func SetURI(id int, suffix string) {
	ctx := storage.GetContext()
	requireOwnerWitness(ctx)

	storage.Put(ctx, overrideKey(id), suffix)
	runtime.Log("voucher display entry updated")
}

// SetBaseURI sets the common prefix of all display URIs. It can be
// invoked only by the contract owner.
func SetBaseURI(base string) {
	ctx := storage.GetContext()
	requireOwnerWitness(ctx)

	storage.Put(ctx, baseURIKey, base)
	runtime.Log("voucher base URI updated")
}

// Uri returns the display URI of the given denomination: the base URI
// followed by the suffix set with SetURI, or by the decimal
// representation of the denomination if no suffix was set.
func Uri(id int) string {
	ctx := storage.GetReadOnlyContext()

	suffix := std.Itoa(id, 10)
	if raw := storage.Get(ctx, overrideKey(id)); raw != nil {
		suffix = raw.(string)
	}

	return baseURI(ctx) + suffix
}

// IterateOverrides returns an iterator over display URI suffixes set with
// SetURI. Iteration is through key-value pairs, where key is the
// denomination bytes and value is the suffix.
func IterateOverrides() iterator.Iterator {
	return storage.Find(storage.GetReadOnlyContext(), []byte{overridePrefix}, storage.RemovePrefix)
}

// IterateBalances returns an iterator over all non-zero voucher balances.
// Iteration is through key-value pairs, where key is the holder script
// hash followed by the denomination bytes and value is the quantity held.
func IterateBalances() iterator.Iterator {
	return storage.Find(storage.GetReadOnlyContext(), []byte{balancePrefix}, storage.RemovePrefix)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// rateOf maps a denomination to its cash rate. The catalog is fixed;
// extending it is a matter of adding a row here.
func rateOf(id int) (int, bool) {
	switch id {
	case cst.UnitVoucher:
		return cst.UnitRate, true
	case cst.TenVoucher:
		return cst.TenRate, true
	}

	return 0, false
}

func requireRate(id int) int {
	rate, ok := rateOf(id)
	if !ok {
		panic(cst.ErrUnknownDenomination)
	}
	return rate
}

func contractOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

func requireOwnerWitness(ctx storage.Context) {
	common.CheckOwnerWitness(contractOwner(ctx))
}

func cashTokenHash(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, cashTokenKey).(interop.Hash160)
}

// checkReserve panics unless the cash balance of the contract account
// covers the required amount.
func checkReserve(ctx storage.Context, required int) {
	custody := contract.Call(cashTokenHash(ctx), "balanceOf", contract.ReadOnly,
		runtime.GetExecutingScriptHash()).(int)
	if custody < required {
		panic(cst.ErrInsufficientReserve)
	}
}

// transferCash moves cash from the contract account. Local ledger state
// must be mutated before this call; a failed transfer panics and reverts
// the whole transaction.
func transferCash(ctx storage.Context, to interop.Hash160, amount int) {
	transferred := contract.Call(cashTokenHash(ctx), "transfer", contract.All,
		runtime.GetExecutingScriptHash(), to, amount, nil).(bool)
	if !transferred {
		panic("failed to transfer cash, aborting")
	}
}

func sinkAccount() interop.Hash160 {
	return interop.Hash160(make([]byte, interop.Hash160Len))
}

func balanceKey(owner interop.Hash160, id int) []byte {
	return append(append([]byte{balancePrefix}, owner...), convert.ToBytes(id)...)
}

func getBalance(ctx storage.Context, owner interop.Hash160, id int) int {
	raw := storage.Get(ctx, balanceKey(owner, id))
	if raw != nil {
		return raw.(int)
	}

	return 0
}

func credit(ctx storage.Context, to interop.Hash160, id, amount int) {
	if amount < 0 {
		panic("negative amount")
	}

	storage.Put(ctx, balanceKey(to, id), getBalance(ctx, to, id)+amount)
}

func debit(ctx storage.Context, from interop.Hash160, id, amount int) {
	if amount < 0 {
		panic("negative amount")
	}

	balance := getBalance(ctx, from, id)
	if balance < amount {
		panic(cst.ErrInsufficientBalance)
	}

	key := balanceKey(from, id)
	if balance == amount {
		storage.Delete(ctx, key)
	} else {
		storage.Put(ctx, key, balance-amount)
	}
}

func supplyKey(id int) []byte {
	return append([]byte{supplyPrefix}, convert.ToBytes(id)...)
}

func getSupply(ctx storage.Context, id int) int {
	raw := storage.Get(ctx, supplyKey(id))
	if raw != nil {
		return raw.(int)
	}

	return 0
}

func addSupply(ctx storage.Context, id, diff int) {
	supply := getSupply(ctx, id) + diff
	if supply < 0 {
		panic("negative supply after burn")
	}

	key := supplyKey(id)
	if supply == 0 {
		storage.Delete(ctx, key)
	} else {
		storage.Put(ctx, key, supply)
	}
}

func overrideKey(id int) []byte {
	return append([]byte{overridePrefix}, convert.ToBytes(id)...)
}

func baseURI(ctx storage.Context) string {
	raw := storage.Get(ctx, baseURIKey)
	if raw != nil {
		return raw.(string)
	}

	return ""
}
