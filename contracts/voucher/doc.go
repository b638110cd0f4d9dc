/*
Package voucher implements Voucher contract.

Voucher contract issues and redeems a small fixed catalog of prepaid
voucher denominations backed 1:1 by a cash token held on the contract
account. Each denomination has an immutable cash rate: a UnitVoucher is
worth one unit of cash, a TenVoucher is worth ten. The contract owner
mints vouchers against the cash reserve and may destroy them, moving the
backing cash to the sink account. Holders redeem their own vouchers for
cash at the fixed rate with Swap.

The total cash value of outstanding vouchers never exceeds the reserve:
minting checks the custody balance of the cash token for the whole
(batch) value before crediting anything, and every destruction path moves
cash out of custody in lockstep with the destroyed balance. All
operations are atomic: a failed check or a failed cash transfer reverts
the transaction with no partial effects, including every element of a
batch.

Burn intentionally skips the catalog check that Mint and Swap perform:
it accepts any stored balance row. Since both issue paths validate
denominations, rows outside the catalog cannot hold a positive balance
and the asymmetry is unobservable in practice; it is kept for
compatibility with integrations relying on it.

# Contract notifications

Transfer notification. Empty from field means minting, empty to field
means destruction.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: id
	    type: Integer
	  - name: amount
	    type: Integer

Swap notification.

	Swap:
	  - name: from
	    type: Hash160
	  - name: value
	    type: Integer

CashTokenUpdated notification.

	CashTokenUpdated:
	  - name: token
	    type: Hash160

OwnershipTransferred notification.

	OwnershipTransferred:
	  - name: owner
	    type: Hash160
*/
package voucher
