// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Msg string `json:"msg"`
}

func New(msg string) *APIError {
	return &APIError{Msg: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Msg    string            `json:"msg"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Msg: "validation error", Fields: fields}
}

// ReconciliationError is returned when a drawer close needs a justification
// note. It carries the computed totals so the cashier can recount and retry.
type ReconciliationError struct {
	Msg            string `json:"msg"`
	SystemTotal    string `json:"system_total"`
	PhysicalAmount string `json:"physical_amount"`
	Difference     string `json:"difference"`
}

func NewReconciliation(systemTotal, physicalAmount, difference string) *ReconciliationError {
	return &ReconciliationError{
		Msg:            "justification note required",
		SystemTotal:    systemTotal,
		PhysicalAmount: physicalAmount,
		Difference:     difference,
	}
}
