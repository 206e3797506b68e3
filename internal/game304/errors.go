package game304

import "errors"

// Validation failures reported to the acting client. None of them mutate
// state; ErrIllegalCard additionally triggers forfeiture when a committed
// play is adjudicated illegal after the fact.
var (
	ErrOutOfTurn          = errors.New("not your turn")
	ErrInvalidPhase       = errors.New("action not valid in current phase")
	ErrInvalidBidAmount   = errors.New("invalid bid amount")
	ErrBiddingClosed      = errors.New("bidding already closed")
	ErrInvalidTrumpCard   = errors.New("invalid trump card")
	ErrRevealNotAllowed   = errors.New("trump reveal not allowed")
	ErrExchangeNotAllowed = errors.New("card exchange not allowed")
	ErrIllegalCard        = errors.New("illegal card")
	ErrInvalidMode        = errors.New("mode must be 2, 3, or 4")
	ErrStaleAction        = errors.New("stale action")
)
