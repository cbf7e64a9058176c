// Package batch runs repository operations across many repositories.
//
// A Task performs one operation on one repository with bounded retry and
// always yields a TaskResult. A Runner executes tasks sequentially or on a
// bounded worker pool and reports progress after every completion. Summarize
// reduces the results into the totals shown to users.
package batch
