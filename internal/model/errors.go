package model

import "errors"

// Common errors used across the application.
//
// Rule violations (wrong turn, wrong status, unclaimable word and so on) are
// not errors: operations report them as "no change" instead.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrIDExhausted  = errors.New("could not generate a unique game id")

	// Configuration errors
	ErrInvalidConfig  = errors.New("invalid game configuration")
	ErrUnknownTileSet = errors.New("unknown tile set")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)
