// Package workspace runs batch operations and inspections over the configured
// repository list. Service composes the list loader, the batch runner, and a
// RepositoryClient, and writes the JSON results and export documents.
package workspace
