// Package cli provides the interactive client shell.
//
// The shell plays the part of a browser tab: it wires configuration, the
// SQLite cookie jar, the HTTP auth client, the process-wide session cache
// and a router over the pages
//
//	/                 home (protected by the route guard)
//	/auth/login       sign in, honors ?redirectTo=
//	/auth/register    create an account
//	anything else     not found
//
// and then serves a REPL that navigates between them. See App and runREPL.
package cli
