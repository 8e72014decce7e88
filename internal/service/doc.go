// Package service is the HTTP client for the remote filing classification
// service.
//
// Each method maps to one endpoint of the service contract:
//
//	POST   /classify/              Classify
//	POST   /batch/                 Batch
//	GET    /results/{id}           Result
//	GET    /results/by_url/?url=   ResultsByURL
//	GET    /results/all/           AllResults
//	DELETE /results/{id}           DeleteResult
//	DELETE /results/all/           DeleteAll
//
// Failures are returned as one of three error types: *TransportError when
// the service could not be reached, *ServiceError for non-2xx responses, and
// *DecodeError for a 2xx response whose body could not be decoded. Shape
// differences inside a result (model output forms, validation verdicts) never
// produce errors; they are resolved by the model package.
//
// There is no retry. The caller re-triggers the action.
package service
