package operation

import (
	"errors"
	"strings"
)

// Kind identifies an operation kind. Each kind has its own Machine.
type Kind string

// Operation kinds.
const (
	KindSingleSubmit Kind = "single-submit"
	KindBatchSubmit  Kind = "batch-submit"
	KindLookupID     Kind = "lookup-id"
	KindLookupURL    Kind = "lookup-url"
	KindFetchAll     Kind = "fetch-all"
	KindDeleteOne    Kind = "delete-one"
	KindDeleteAll    Kind = "delete-all"
)

// Kinds returns every operation kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindSingleSubmit,
		KindBatchSubmit,
		KindLookupID,
		KindLookupURL,
		KindFetchAll,
		KindDeleteOne,
		KindDeleteAll,
	}
}

var fallbackMessages = map[Kind]string{
	KindSingleSubmit: "Failed to classify.",
	KindBatchSubmit:  "Failed to classify batch.",
	KindLookupID:     "Result not found.",
	KindLookupURL:    "No results found for this URL.",
	KindFetchAll:     "Failed to fetch all results.",
	KindDeleteOne:    "Failed to delete result.",
	KindDeleteAll:    "Failed to delete all results.",
}

// Fallback returns the generic failure message shown for the kind when the
// service gives no detail.
func (k Kind) Fallback() string {
	if msg, ok := fallbackMessages[k]; ok {
		return msg
	}
	return "Operation failed."
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Detailer is implemented by errors that carry a user-facing message
// supplied by the remote service.
type Detailer interface {
	UserDetail() string
}

// Message normalizes err into the message shown to the user for kind.
// The service-provided detail wins when present; otherwise the kind's
// fallback message is used. Message returns "" for a nil error.
func Message(kind Kind, err error) string {
	if err == nil {
		return ""
	}
	var d Detailer
	if errors.As(err, &d) {
		if detail := strings.TrimSpace(d.UserDetail()); detail != "" {
			return detail
		}
	}
	return kind.Fallback()
}
