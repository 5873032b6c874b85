package marketplace

import "errors"

// Resolution errors.
var (
	// ErrTaxonomyUnavailable is returned when the category tree cannot be
	// fetched and no memoized copy exists.
	ErrTaxonomyUnavailable = errors.New("marketplace: taxonomy unavailable")

	// ErrSchemaUnavailable is returned when the attribute schema for a
	// category cannot be fetched.
	ErrSchemaUnavailable = errors.New("marketplace: attribute schema unavailable")

	// ErrNoMatch is returned when every resolution tier has been exhausted
	// without producing a category.
	ErrNoMatch = errors.New("marketplace: no category match")

	// ErrUnsatisfiableRequiredAttribute is returned when a required
	// attribute has no matching fact, no declared values and custom values
	// are not allowed.
	ErrUnsatisfiableRequiredAttribute = errors.New("marketplace: unsatisfiable required attribute")

	// ErrBrandNotFound is returned when the brand lookup yields no result
	// and no fallback brand is configured.
	ErrBrandNotFound = errors.New("marketplace: brand not found")

	// ErrNonNumericAttributeID is returned when the remote schema carries
	// an attribute or value identifier that does not parse as an integer.
	ErrNonNumericAttributeID = errors.New("marketplace: non-numeric attribute identifier")
)

// Submission errors.
var (
	// ErrRejectedAtSubmission is returned when the marketplace rejects the
	// batch synchronously, before any ticket exists.
	ErrRejectedAtSubmission = errors.New("marketplace: submission rejected")

	// ErrSubmissionInFlight is returned when a barcode already has an
	// unresolved submission.
	ErrSubmissionInFlight = errors.New("marketplace: submission already in flight")

	// ErrSubmissionFailed is returned when a batch fails for reasons that
	// do not qualify for a corrective retry.
	ErrSubmissionFailed = errors.New("marketplace: submission failed")

	// ErrPollTimeout is returned when the poll budget is spent before the
	// batch reaches a terminal status.
	ErrPollTimeout = errors.New("marketplace: poll timeout")

	// ErrRetryBudgetExhausted is returned when the corrective retry limit
	// is reached while failures persist.
	ErrRetryBudgetExhausted = errors.New("marketplace: retry budget exhausted")

	// ErrCorrectionNotPossible is returned when reported failures name
	// attributes the schema does not declare, so rebuilding cannot help.
	ErrCorrectionNotPossible = errors.New("marketplace: correction not possible")

	// ErrMarketplaceUnavailable is returned when the remote API stays
	// unreachable after transport retries.
	ErrMarketplaceUnavailable = errors.New("marketplace: remote unavailable")
)

// Persistence errors.
var (
	ErrTicketNotFound  = errors.New("marketplace: ticket not found")
	ErrTicketTerminal  = errors.New("marketplace: ticket already terminal")
	ErrProductNotFound = errors.New("marketplace: product not found")
)
