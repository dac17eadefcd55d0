package domain

// CommandResult is the structured outcome of every engine operation. Code 0
// (and positive codes where an operation distinguishes outcomes, e.g. catch
// failure vs success) means the operation ran; negative codes are expected
// gameplay rejections and are never logged as failures.
type CommandResult struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

// Rejection codes shared across operations.
const (
	CodeOK = 0

	CodeNoTarget         = -1
	CodeAlreadyAttempted = -2
	CodeMissingItem      = -3
	CodeInsufficientGold = -4
	CodeInsufficientMats = -5
	CodeCooldown         = -6
	CodeLocked           = -7
	CodeInvalidArgs      = -8
	CodeLimitReached     = -9
	CodeWrongState       = -10
)

// OK builds a success result.
func OK(message string) CommandResult {
	return CommandResult{Code: CodeOK, Message: message}
}

// OKPayload builds a success result carrying structured data.
func OKPayload(message string, payload any) CommandResult {
	return CommandResult{Code: CodeOK, Message: message, Payload: payload}
}

// Reject builds a rejection result.
func Reject(code int, message string) CommandResult {
	return CommandResult{Code: code, Message: message}
}
