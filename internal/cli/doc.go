// Package cli implements the interactive cleanup menu.
//
// The menu reads a choice from 1 to 6, runs the matching action against the
// upload ledger and the provider, and loops until the user exits or input
// ends. Every action that changes the ledger saves it before returning.
package cli
