/*
Package cash implements Cash contract.

Cash contract is a minimal NEP-17 fungible token serving as the reserve
currency behind the Voucher contract. Cash resident on the Voucher
contract account forms the custody backing outstanding vouchers. The
contract owner bootstraps supply with Mint; transfers follow NEP-17
semantics and additionally honor the calling contract's own account, so
the Voucher contract can pay redemptions out of custody.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package cash
