package service

const (
	platformFeeBasisPoints = 1000
	basisPointsDenominator = 10000
	minimumPlatformFee     = 10
)

type Split struct {
	PlatformFee   int64
	CreatorAmount int64
}

// ComputeSplit splits a price in minor units into the platform fee (10%,
// rounded half up, never below 10) and the creator's share. Callers must only
// pass prices above zero; a zero price still reports the minimum fee.
func ComputeSplit(price int64) Split {
	fee := (price*platformFeeBasisPoints + basisPointsDenominator/2) / basisPointsDenominator
	if fee < minimumPlatformFee {
		fee = minimumPlatformFee
	}
	return Split{
		PlatformFee:   fee,
		CreatorAmount: price - fee,
	}
}
