package cash

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/vouchernet/voucher-contract/common"
)

// Token holds all token info.
type Token struct {
	// Ticker symbol
	Symbol string
	// Amount of decimals
	Decimals int
	// Storage key for circulation value
	CirculationKey string
}

const (
	symbol      = "CASH"
	decimals    = 2
	circulation = "TotalSupply"

	accPrefix = 'a'

	ownerKey = 'o'
)

var token Token

func createToken() Token {
	return Token{
		Symbol:         symbol,
		Decimals:       decimals,
		CirculationKey: circulation,
	}
}

func init() {
	token = createToken()
}

// nolint:unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner interop.Hash160
	})

	if len(args.owner) != interop.Hash160Len {
		panic("incorrect owner script hash length")
	}

	storage.Put(ctx, ownerKey, args.owner)

	runtime.Log("cash contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract owner.
func Update(nefFile, manifest []byte, data any) {
	common.CheckOwnerWitness(storage.Get(storage.GetReadOnlyContext(), ownerKey).(interop.Hash160))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("cash contract updated")
}

// Symbol is a NEP-17 standard method that returns cash token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns precision of cash
// balances.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns total amount of cash
// in circulation.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns cash balance of the
// specified account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return token.balanceOf(ctx, account)
}

// Transfer is a NEP-17 standard method that transfers cash from one account
// to another. It can be invoked by the account owner or by a contract
// transferring cash from its own account.
//
// It produces Transfer notification.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()
	return token.transfer(ctx, from, to, amount)
}

// Mint issues cash to the specified account. It can be invoked only by the
// contract owner. Mint increases total supply of the token.
//
// It produces Transfer notification with empty from field.
func Mint(to interop.Hash160, amount int) {
	if len(to) != interop.Hash160Len {
		panic("incorrect recipient script hash length")
	}

	if amount < 0 {
		panic("negative amount")
	}

	ctx := storage.GetContext()

	common.CheckOwnerWitness(storage.Get(ctx, ownerKey).(interop.Hash160))

	addToBalance(ctx, to, amount)

	supply := token.getSupply(ctx) + amount
	storage.Put(ctx, token.CirculationKey, supply)

	runtime.Notify("Transfer", interop.Hash160(nil), to, amount)
	runtime.Log("cash minted")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// getSupply gets the token totalSupply value from VM storage.
func (t Token) getSupply(ctx storage.Context) int {
	supply := storage.Get(ctx, t.CirculationKey)
	if supply != nil {
		return supply.(int)
	}

	return 0
}

// balanceOf gets the token balance of a specific address.
func (t Token) balanceOf(ctx storage.Context, holder interop.Hash160) int {
	raw := storage.Get(ctx, append([]byte{accPrefix}, holder...))
	if raw != nil {
		return raw.(int)
	}

	return 0
}

func (t Token) transfer(ctx storage.Context, from, to interop.Hash160, amount int) bool {
	if amount < 0 {
		panic("negative amount")
	}

	if len(to) != interop.Hash160Len || !isUsableAddress(from) {
		runtime.Log("bad script hashes")
		return false
	}

	balanceFrom := t.balanceOf(ctx, from)
	if balanceFrom < amount {
		runtime.Log("not enough assets")
		return false
	}

	fromKey := append([]byte{accPrefix}, from...)
	if balanceFrom == amount {
		storage.Delete(ctx, fromKey)
	} else {
		storage.Put(ctx, fromKey, balanceFrom-amount)
	}

	addToBalance(ctx, to, amount)

	runtime.Notify("Transfer", from, to, amount)

	return true
}

func addToBalance(ctx storage.Context, to interop.Hash160, amount int) {
	toKey := append([]byte{accPrefix}, to...)

	raw := storage.Get(ctx, toKey)
	balance := 0
	if raw != nil {
		balance = raw.(int)
	}

	storage.Put(ctx, toKey, balance+amount)
}

// isUsableAddress checks if the sender is either a correct Neo address or SC address.
func isUsableAddress(addr interop.Hash160) bool {
	if len(addr) == interop.Hash160Len {
		if runtime.CheckWitness(addr) {
			return true
		}

		// Check if a smart contract is calling script hash
		callingScriptHash := runtime.GetCallingScriptHash()
		if callingScriptHash.Equals(addr) {
			return true
		}
	}

	return false
}
