package decks

// FormatError reports an import payload that is not a list of decks.
// Storage is never touched when it is returned.
type FormatError struct {
	Message string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatError(message string, err error) error {
	return &FormatError{Message: message, Err: err}
}
