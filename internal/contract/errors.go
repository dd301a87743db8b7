package contract

import "errors"

var (
	ErrInvalidTicker = errors.New("invalid ticker format")
	ErrInvalidExpiry = errors.New("invalid expiry date")
)
