package entity

import "errors"

// GenericErrorMessage is the only error detail the dashboard exposes.
const GenericErrorMessage = "Error"

var (
	ErrNoAccount       = errors.New("no account connected")
	ErrRefreshInFlight = errors.New("portfolio fetch already in flight")
	ErrUnknownCluster  = errors.New("unknown cluster")
	ErrInvalidAddress  = errors.New("invalid base58 address")
	ErrTokenNotFound   = errors.New("token not found in token list")
)
