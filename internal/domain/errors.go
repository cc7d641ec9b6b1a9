package domain

import "errors"

var (
	ErrInvalidNumber        = errors.New("invalid number")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidAddressFormat = errors.New("invalid address format")
	ErrNotConnected         = errors.New("api not connected")
	ErrUnsupportedAsset     = errors.New("unsupported asset")
	ErrConnectionFailed     = errors.New("connection failed")
	ErrUnknownAction        = errors.New("unknown action")
)

const (
	CodeInvalidNumber        = "INVALID_NUMBER"
	CodeNonPositiveAmount    = "NON_POSITIVE_AMOUNT"
	CodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	CodeInvalidAddressFormat = "INVALID_ADDRESS_FORMAT"
	CodeNotConnected         = "NOT_CONNECTED"
	CodeUnsupportedAsset     = "UNSUPPORTED_ASSET"
	CodeConnectionFailed     = "CONNECTION_FAILED"
	CodeUnknownAction        = "UNKNOWN_ACTION"
	CodeInternal             = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidNumber, CodeInvalidNumber},
	{ErrNonPositiveAmount, CodeNonPositiveAmount},
	{ErrInsufficientBalance, CodeInsufficientBalance},
	{ErrInvalidAddressFormat, CodeInvalidAddressFormat},
	{ErrNotConnected, CodeNotConnected},
	{ErrUnsupportedAsset, CodeUnsupportedAsset},
	{ErrConnectionFailed, CodeConnectionFailed},
	{ErrUnknownAction, CodeUnknownAction},
}

// ErrorCode maps err to the stable code reported to transports. Errors outside
// the user-facing taxonomy map to CodeInternal.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
