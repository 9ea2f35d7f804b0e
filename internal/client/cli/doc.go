// Package cli provides the interactive gallerist command-line client.
//
// It wires configuration, local state, the API client, the auth session
// store, the upload registry and an interactive REPL. At start-up the
// bootstrap sequence restores the persisted session and, when a credential
// survives, refreshes the current user in the background while the prompt is
// already usable.
//
// Every command is a view. Protected views go through the route guard with
// the roles derived from their capability:
//   - loading: a "loading" line is printed and the view waits
//   - sign-in redirect: the login view runs instead
//   - default-view redirect: the dashboard runs instead
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
