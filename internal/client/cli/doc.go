// Package cli provides the interactive resume analyzer command-line client.
//
// It wires configuration, the credential store, the HTTP API client and the
// session, upload and analysis components into a REPL. On start the stored
// credential is restored; commands that need an account go through the
// route guard and point the user at login when the session is anonymous.
//
// Commands:
//   - register, login, logout, whoami
//   - upload <path>, retry
//   - analysis <id>, list, dashboard
//   - help, exit | quit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
