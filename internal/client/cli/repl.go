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
	WhoAmI(ctx context.Context) error
	Categories(ctx context.Context) error
	Filter(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Add(ctx context.Context) error
	Vote(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or when the user types "exit" or "quit".
//
//	Always:
//	  - help                        show available commands
//	  - categories                  list categories
//	  - filter <all|category>       filter the list
//	  - sort <upvotes|recent|mindblowing|false>
//	  - (l)ist                      show the list
//	  - refresh                     reload the list
//	  - vote <id> <interesting|mindblowing|false>
//	  - whoami                      show the current user
//	  - exit | quit
//
//	Not logged in: register, login
//	Logged in:     add, logout
//
// Command errors are reported by the handlers themselves; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("til%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, filter, sort, categories, refresh, add, vote, whoami, logout, exit")
			} else {
				printlnFn("Available commands: (l)ist, filter, sort, categories, refresh, vote, login, register, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "categories":
			_ = a.Categories(ctx)

		case "filter":
			_ = a.Filter(ctx, args)

		case "sort":
			_ = a.Sort(ctx, args)

		case "l", "list":
			_ = a.List(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "add":
			if !a.isLoggedIn() {
				printlnFn("Login to share a fact.")
				continue
			}
			_ = a.Add(ctx)

		case "vote":
			_ = a.Vote(ctx, args)

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
