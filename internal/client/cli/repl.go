package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Open(ctx context.Context, path string) error
	Back(ctx context.Context) error
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
}

const helpText = "Available commands: open <path>, back, login, register, logout, whoami, help, exit"

// runREPL starts a simple read–eval–print loop for the client shell.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The prompt shows statusFn(): the current
// location, prefixed with the username once signed in. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// Commands
//
//	help           show available commands
//	open <path>    navigate to a location, e.g. "open /"
//	back           go to the previous location
//	login          sign in on the login page
//	register       create an account on the registration page
//	logout         sign out
//	whoami         ask the backend who is signed in
//	exit | quit    leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gophauth %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "back":
			_ = a.Back(ctx)

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
