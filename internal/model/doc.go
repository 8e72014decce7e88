// Package model defines the data structures exchanged with the filing
// classification service and the pure helpers that derive display values
// from them.
//
// This package contains the following main types:
//   - Result: one classification of a filing, as returned by the service
//   - ModelOutput: the classifier's output, resolved once at decode time
//     into a tagged union of the shapes the service is known to return
//   - Event: a single classified occurrence inside a ModelOutput
//   - Validation: the service's verdict, boolean or structured
//   - Template: a named prompting strategy offered to the service
//
// Decoding in this package never fails because of an unexpected shape inside
// a result. Unknown shapes are kept as raw JSON so they can still be shown.
package model
