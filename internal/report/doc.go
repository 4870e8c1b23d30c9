// Package report turns dispatch outcomes into the final verdict of a run:
// the aggregated result, the terminal table, the machine-readable report
// file and the Prometheus metrics.
package report
