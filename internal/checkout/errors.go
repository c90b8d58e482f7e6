package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to submit")
	ErrNotAuthenticated    = errors.New("a verified signed-in user is required")
	ErrSubmissionFailed    = errors.New("order submission failed")
	ErrDuplicateSubmission = errors.New("order for this submission attempt already exists")
)
