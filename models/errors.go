package models

import "errors"

var (
	ErrInvalidMarketTitle   = errors.New("invalid market title")
	ErrInvalidMarketType    = errors.New("invalid market type")
	ErrInvalidMarketID      = errors.New("invalid market ID")
	ErrInvalidClosesAt      = errors.New("invalid closing time")
	ErrMarketNotOpen        = errors.New("market is not open")
	ErrMarketNotClosed      = errors.New("market is not closed")
	ErrMarketAlreadySettled = errors.New("market is already resolved or cancelled")

	ErrInvalidOutcomeText  = errors.New("invalid outcome text")
	ErrInvalidOutcomeValue = errors.New("invalid outcome value")
	ErrOutcomeNotInMarket  = errors.New("outcome does not belong to market")

	ErrInvalidPositionType = errors.New("invalid position type")
	ErrInvalidStake        = errors.New("stake must be positive")
	ErrPositionNotOpen     = errors.New("position is not open")

	ErrInvalidUUID    = errors.New("invalid UUID")
	ErrRecordNotFound = errors.New("record not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	ErrInvalidPoolReference   = errors.New("pool reference must be positive")
	ErrInvalidImpliedBounds   = errors.New("implied probability bounds must satisfy 0 < min < max <= 1")
	ErrInvalidOutcomeLimits   = errors.New("invalid outcome count limits")
	ErrInvalidMarketDuration  = errors.New("invalid market duration limits")
	ErrInvalidSnapshotTTL     = errors.New("snapshot TTL must be positive")
	ErrInvalidStakeLimits     = errors.New("invalid stake limits")
	ErrInvalidOrderBookDepth  = errors.New("order book depth must be positive")
	ErrInvalidPayoutCurrency  = errors.New("payout currency is required")
	ErrInvalidOddsFloor       = errors.New("odds must be at least 1.0")
	ErrMarketClosesAtExceeded = errors.New("market has passed its closing time")
)
