package engine

import "errors"

// ErrDealTerminal is returned when a turn arrives for a deal that has
// already ended. The caller should not retry.
var ErrDealTerminal = errors.New("deal is terminal")
