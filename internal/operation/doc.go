// Package operation implements the lifecycle shared by every asynchronous
// request the client makes to the classification service.
//
// Each operation kind (single submit, batch submit, lookup by id, lookup by
// URL, fetch-all, delete-one, delete-all) owns one Machine. A Machine moves
// through Idle, Pending, Succeeded and Failed, holding exactly one State at a
// time. Starting a new invocation while one is pending does not queue or
// cancel the earlier call; it supersedes it.
//
// # Generation guard
//
// Every Start increments the machine's generation. When a call completes, its
// generation is compared with the machine's current generation and the
// completion is only applied if they match. A superseded completion is
// discarded: the state does not change and the apply hook does not run.
// For two invocations A and B of the same kind where A started first, the
// visible state after both complete is always B's outcome, whichever network
// response arrives first.
//
// Detach bumps the generation one final time and closes the machine, so that
// nothing lands after the owning view is torn down. In-flight calls also see
// their context cancelled.
//
// # Observers
//
// Observers receive a Completion for every finished call, including stale
// ones. The journal and the metrics collector are observers; they never
// affect machine state.
package operation
