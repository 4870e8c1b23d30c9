// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay and maximum delay. It wraps OCM API calls and IIB index
// downloads, where a flaky network or a 5xx response should not fail a
// whole batch. Errors wrapped with [Fatal] stop the loop immediately.
package retry
