package currency

// Code identifies a currency a wallet can hold or a price can be quoted in.
// FIAT is a placeholder resolved to the platform's home fiat code at
// conversion time; SOL, USDT and COST are the three platform token balances.
type Code string

const (
	FIAT Code = "FIAT"
	SOL  Code = "SOL"
	USDT Code = "USDT"
	COST Code = "COST"

	USD Code = "USD"
	NGN Code = "NGN"
	EUR Code = "EUR"
	GBP Code = "GBP"
)

// WalletCodes are the four balances every wallet carries.
var WalletCodes = []Code{FIAT, SOL, USDT, COST}

// IsWalletCode reports whether c names one of the four wallet balances.
func IsWalletCode(c Code) bool {
	switch c {
	case FIAT, SOL, USDT, COST:
		return true
	}
	return false
}

// Symbol returns the display symbol for a fiat code. Token codes are
// displayed by their code.
func Symbol(c Code) string {
	switch c {
	case NGN:
		return "₦"
	case USD:
		return "$"
	case EUR:
		return "€"
	case GBP:
		return "£"
	}
	return string(c)
}
