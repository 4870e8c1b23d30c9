// Package dispatch runs install/uninstall actions for a batch of products
// and captures one [Outcome] per product.
//
// A batch is best effort: a failing product never stops its siblings, and
// per-product failures are reported as [*ActionError] values inside the
// outcomes rather than as the error of [Dispatcher.Dispatch]. Only a
// [*SchedulingFault] aborts a batch.
//
// Parallel batches run through a [Strategy]:
//   - [PoolStrategy] runs goroutines in this process, optionally bounded.
//   - [ProcessStrategy] runs one worker process per product, isolating
//     crashes from the rest of the batch.
//
// Neither strategy cancels siblings or imposes a timeout; the action
// function owns the per-product timeout.
package dispatch
