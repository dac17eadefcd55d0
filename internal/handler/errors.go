package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidTier       = "Invalid tier. Valid options: single, ten, hundred, thousand"
	ErrMsgInvalidItemID     = "Invalid item id"
	ErrMsgInvalidCount      = "Invalid count"

	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"

	ErrMsgPlayerNotFoundHTTP   = "Player not found"
	ErrMsgFishNotFoundHTTP     = "Fish not found"
	ErrMsgItemNotFoundHTTP     = "Item not found"
	ErrMsgBattleNotFoundHTTP   = "No raid is running"
	ErrMsgBuildingNotFoundHTTP = "Building not found"
)
