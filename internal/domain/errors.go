package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgPlayerNotFound   = "player not found"
	ErrMsgFishNotFound     = "fish not found"
	ErrMsgItemNotFound     = "item not found"
	ErrMsgBattleNotFound   = "battle not found"
	ErrMsgBuildingNotFound = "building not found"

	ErrMsgCorruptCatalog = "corrupt catalog data"
	ErrMsgCorruptEntity  = "corrupt stored entity"

	ErrMsgStoreUnavailable = "store unavailable"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
//
// Note that expected gameplay rejections (insufficient gold, duplicate catch
// attempt, unmet prerequisites, ...) are NOT errors: they are CommandResult
// values with a negative code. Errors are reserved for catalog/store trouble.
var (
	ErrPlayerNotFound   = errors.New(ErrMsgPlayerNotFound)
	ErrFishNotFound     = errors.New(ErrMsgFishNotFound)
	ErrItemNotFound     = errors.New(ErrMsgItemNotFound)
	ErrBattleNotFound   = errors.New(ErrMsgBattleNotFound)
	ErrBuildingNotFound = errors.New(ErrMsgBuildingNotFound)

	// Inconsistent-state failures: catalog or stored documents contradict
	// themselves (equipped accessory without metadata, empty drop table on a
	// rolled drop). Distinguishable from plain not-found.
	ErrCorruptCatalog = errors.New(ErrMsgCorruptCatalog)
	ErrCorruptEntity  = errors.New(ErrMsgCorruptEntity)

	ErrStoreUnavailable = errors.New(ErrMsgStoreUnavailable)
)
