package command

// Result is the structured outcome of one guarded operation: either a
// success payload or an error message string, never both.
type Result struct {
	// Success reports whether the operation completed.
	Success bool `json:"success"`

	// Data carries the operation's payload on success.
	Data any `json:"data,omitempty"`

	// Error carries the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// ok wraps a success payload.
func ok(data any) *Result {
	return &Result{Success: true, Data: data}
}

// fail wraps an error into the structured failure form.
func fail(err error) *Result {
	return &Result{Success: false, Error: err.Error()}
}
