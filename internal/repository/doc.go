// Package repository models the repositories a batch operates on.
//
// A Reference ties an owner/name identifier to its working copy under the
// configured repositories directory. ListLoader reads the list file, and
// Filter narrows a list by a case-insensitive regular expression.
package repository
