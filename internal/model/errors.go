package model

import "errors"

var (
	// ErrInvalidCategory means an account name does not start with a known category.
	ErrInvalidCategory = errors.New("invalid account category")
	// ErrInvalidDescription means a transaction description spans more than one line.
	ErrInvalidDescription = errors.New("description must be one line")
	// ErrImbalance means fully specified entries do not sum to zero.
	ErrImbalance = errors.New("entries must sum to 0")
	// ErrAmbiguousImplication means more than one entry has no amount.
	ErrAmbiguousImplication = errors.New("only one entry can have an implied amount")
	// ErrUnitMismatch means arithmetic was attempted across currencies or commodities.
	ErrUnitMismatch = errors.New("incompatible units")
)
