package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Users(ctx context.Context) error

	List(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Category(ctx context.Context, id string) error
	Tag(ctx context.Context, name string) error
	Sort(ctx context.Context, key string) error
	Page(ctx context.Context, number string) error
	NextPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
	Open(ctx context.Context, id string) error
	ClearFilters(ctx context.Context) error
	Featured(ctx context.Context) error

	Manage(ctx context.Context) error
	NewArticle(ctx context.Context) error
	EditArticle(ctx context.Context, id string) error
	DeleteArticle(ctx context.Context, id string) error
	NewCategory(ctx context.Context) error
	EditCategory(ctx context.Context, id string) error
	DeleteCategory(ctx context.Context, id string) error
	NewTag(ctx context.Context) error
	DeleteTag(ctx context.Context, id string) error
}

// runREPL starts a simple read–eval–print loop for the TaskFlow CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always available:
//	  - help                — show available commands
//	  - login               — authenticate (may continue with an OTP code)
//	  - status              — show session state
//	  - l | list            — show the current article page
//	  - search [text]       — set the search term (empty clears it)
//	  - cat [id]            — filter by category id (empty clears it)
//	  - tag <name>          — toggle a tag filter
//	  - sort <key>          — newest | title | mostViewed
//	  - page <n>            — go to page n
//	  - next | prev         — move one page
//	  - open <id>           — open an article and record a view
//	  - clear               — drop all filters
//	  - featured            — show featured articles
//	  - exit | quit         — leave the program
//
//	Logged in:
//	  - manage              — show own articles and stats
//	  - new | edit | delete — article management
//	  - newcat | editcat | delcat
//	  - newtag | deltag
//	  - users               — list visible accounts
//	  - logout              — log out
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tf %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		if requiresAuth(cmd) && !a.isLoggedIn() {
			printlnFn("Sign in to manage content")
			_ = a.Login(ctx)
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Browse: (l)ist, search [text], cat [id], tag <name>, sort <key>, page <n>, next, prev, open <id>, clear, featured")
			if a.isLoggedIn() {
				printlnFn("Manage: manage, new, edit <id>, delete <id>, newcat, editcat <id>, delcat <id>, newtag, deltag <id>")
				printlnFn("Session: status, users, logout, exit")
			} else {
				printlnFn("Session: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "status":
			_ = a.Status(ctx)

		case "users":
			_ = a.Users(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "cat":
			_ = a.Category(ctx, firstOrEmpty(args))

		case "tag":
			if len(args) == 0 {
				printlnFn("Usage: tag <name>")
				continue
			}
			_ = a.Tag(ctx, args[0])

		case "sort":
			if len(args) == 0 {
				printlnFn("Usage: sort newest|title|mostViewed")
				continue
			}
			_ = a.Sort(ctx, args[0])

		case "page":
			if len(args) == 0 {
				printlnFn("Usage: page <number>")
				continue
			}
			_ = a.Page(ctx, args[0])

		case "next":
			_ = a.NextPage(ctx)

		case "prev":
			_ = a.PrevPage(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <id>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "clear":
			_ = a.ClearFilters(ctx)

		case "featured":
			_ = a.Featured(ctx)

		case "manage":
			_ = a.Manage(ctx)

		case "new":
			_ = a.NewArticle(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.EditArticle(ctx, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.DeleteArticle(ctx, args[0])

		case "newcat":
			_ = a.NewCategory(ctx)

		case "editcat":
			if len(args) == 0 {
				printlnFn("Usage: editcat <id>")
				continue
			}
			_ = a.EditCategory(ctx, args[0])

		case "delcat":
			if len(args) == 0 {
				printlnFn("Usage: delcat <id>")
				continue
			}
			_ = a.DeleteCategory(ctx, args[0])

		case "newtag":
			_ = a.NewTag(ctx)

		case "deltag":
			if len(args) == 0 {
				printlnFn("Usage: deltag <id>")
				continue
			}
			_ = a.DeleteTag(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// requiresAuth names the commands that only make sense with a session.
// The REPL routes an anonymous user into the login flow first.
func requiresAuth(cmd string) bool {
	switch cmd {
	case "manage", "new", "edit", "delete",
		"newcat", "editcat", "delcat", "newtag", "deltag", "users":
		return true
	}
	return false
}

func firstOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
