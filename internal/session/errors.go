package session

// InputError rejects user input before any request is sent. Its message is
// shown to the user as the failure detail.
type InputError struct {
	msg string
}

func (e *InputError) Error() string {
	return e.msg
}

// UserDetail implements operation.Detailer.
func (e *InputError) UserDetail() string {
	return e.msg
}

var (
	// ErrEmptyURL is returned when a single classification has no URL.
	ErrEmptyURL = &InputError{msg: "Please enter a filing URL."}

	// ErrEmptyURLList is returned when a batch has no URLs.
	ErrEmptyURLList = &InputError{msg: "Please enter at least one filing URL."}
)
