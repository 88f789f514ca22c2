package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// LamportsPerSOL is the fixed scale between the ledger's smallest unit and SOL.
const LamportsPerSOL = 1e9

// SOLDecimals is the number of decimal places in one SOL.
const SOLDecimals = 9

// LamportsToSOL converts a lamport balance to SOL for display.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}

// FormatSOL renders a SOL amount with exactly two decimals, e.g. 2.5 => "2.50 SOL".
func FormatSOL(balance float64) string {
	return fmt.Sprintf("%.2f SOL", balance)
}

// FormatBigInt converts a big.Int value to a human-readable string,
// considering the given number of decimals. Trailing zeros are trimmed.
// Example: amount=2500000000, decimals=9 => "2.5"
func FormatBigInt(amount *big.Int, decimals uint8) (string, error) {
	if amount == nil {
		return "0", nil
	}
	if decimals == 0 {
		return amount.String(), nil
	}

	amountFloat := new(big.Float).SetPrec(256).SetInt(amount)
	divisor := new(big.Float).SetPrec(256).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).SetPrec(256).Quo(amountFloat, divisor)

	formattedStr := value.Text('f', int(decimals))
	if strings.Contains(formattedStr, ".") {
		formattedStr = strings.TrimRight(formattedStr, "0")
		formattedStr = strings.TrimRight(formattedStr, ".")
	}
	if strings.HasPrefix(formattedStr, ".") {
		formattedStr = "0" + formattedStr
	}
	if formattedStr == "" {
		if amount.Sign() == 0 {
			return "0", nil
		}
		return value.Text('f', 2), fmt.Errorf("formatting resulted in empty string for non-zero value")
	}
	return formattedStr, nil
}

// FormatLamports renders a lamport balance as an untruncated SOL string.
func FormatLamports(lamports uint64) string {
	s, _ := FormatBigInt(new(big.Int).SetUint64(lamports), SOLDecimals)
	return s
}
