// Package cli provides the interactive gophauth command-line client.
//
// It wires configuration, the backend client, the session controller and the
// phone credential provider into a REPL. Each input line is parsed by a fresh
// cobra command tree; a subscriber prints every session state change, the
// way a sign-in screen would refresh its widgets.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
