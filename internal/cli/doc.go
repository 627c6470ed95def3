// Package cli defines the command-line surface: the cobra command tree,
// flag validation and process-level concerns like exit codes. It translates
// flags into the application's configuration and leaves running to the
// caller.
package cli
