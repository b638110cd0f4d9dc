package voucherconst

const (
	// UnitVoucher is the denomination redeemable for one unit of cash.
	UnitVoucher = 1
	// TenVoucher is the denomination redeemable for ten units of cash.
	TenVoucher = 10

	// UnitRate is the cash value of a single UnitVoucher.
	UnitRate = 1
	// TenRate is the cash value of a single TenVoucher.
	TenRate = 10

	// ErrUnknownDenomination is returned if a denomination is outside the
	// fixed catalog.
	ErrUnknownDenomination = "unknown denomination"

	// ErrInsufficientReserve is returned if issued vouchers would not be
	// covered by the cash on the contract account.
	ErrInsufficientReserve = "insufficient cash reserve"

	// ErrInsufficientBalance is returned if an account holds fewer
	// vouchers than an operation tries to destroy.
	ErrInsufficientBalance = "insufficient voucher balance"

	// ErrLengthMismatch is returned if parallel input arrays of a batch
	// operation differ in length.
	ErrLengthMismatch = "length mismatch of input arrays"
)
