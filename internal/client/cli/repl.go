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
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	Retry(ctx context.Context) error
	Analysis(ctx context.Context, resumeID string) error
	List(ctx context.Context) error
	Dashboard(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
//
// The first token is the command; for upload the rest of the line is the
// path so names with spaces work. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Not logged in:
//	  help, register, login, exit | quit
//
//	Logged in:
//	  help, whoami, upload <path>, retry, analysis <id>, (l)ist,
//	  dashboard, logout, exit | quit
//
// Handlers print their own errors, so the REPL ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("resume %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, upload <path>, retry, analysis <id>, (l)ist, dashboard, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "upload":
			if rest == "" {
				printlnFn("Usage: upload <path>")
				continue
			}
			_ = a.Upload(ctx, rest)

		case "retry":
			_ = a.Retry(ctx)

		case "analysis", "show":
			if rest == "" {
				printlnFn("Usage: analysis <id>")
				continue
			}
			_ = a.Analysis(ctx, rest)

		case "l", "list":
			_ = a.List(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
