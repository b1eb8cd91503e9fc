package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrVendorNotFound indicates a reference to a vendor that does not exist.
	ErrVendorNotFound = errors.New("vendor not found")
	// ErrValidation indicates invalid caller input.
	ErrValidation = errors.New("validation failed")
)

// UserSafeMessage maps internal errors to messages safe to show a caller.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "Record not found"
	case errors.Is(err, ErrVendorNotFound):
		return "Vendor not found"
	case errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "Something went wrong"
	}
}
