package domain

// PlatformFee returns the platform's cut of an amount at the given fee
// rate in basis points, rounding half up. All math stays in integer
// cents.
func PlatformFee(amountCents int64, feeBps int) int64 {
	if amountCents <= 0 || feeBps <= 0 {
		return 0
	}
	return (amountCents*int64(feeBps) + 5000) / 10000
}

// SplitAmount divides an amount into the platform fee and the writer
// payout. The two parts always sum to the original amount.
func SplitAmount(amountCents int64, feeBps int) (feeCents, payoutCents int64) {
	feeCents = PlatformFee(amountCents, feeBps)
	return feeCents, amountCents - feeCents
}
