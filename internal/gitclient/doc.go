// Package gitclient drives the git binary to clone, update, and reclone working
// copies and to read their commit history.
package gitclient
