package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trainingportal/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error

	ListSessions(ctx context.Context) error
	FindSessions(ctx context.Context) error
	ViewSession(ctx context.Context, id string) error
	CreateSession(ctx context.Context) error
	EditSession(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error

	ListUsers(ctx context.Context) error
	AddUser(ctx context.Context) error
	EditUser(ctx context.Context, id string) error
	ToggleUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	GeneratePassword(ctx context.Context) error
	Stats(ctx context.Context) error
	Report(ctx context.Context) error

	Export(ctx context.Context, path string) error
	Import(ctx context.Context, path string) error
	ClearAll(ctx context.Context) error
	DevMode(ctx context.Context, arg string) error
	Backup(ctx context.Context) error
	ListBackups(ctx context.Context) error
	Restore(ctx context.Context, name string) error
}

const (
	helpGuest   = "Available commands: login, exit"
	helpTrainer = "Available commands: (l)ist, find, view <id>, create, edit <id>, delete <id>, whoami, status, logout, exit"
	helpAdmin   = "Admin commands: users, adduser, edituser <id>, toggleuser <id>, deluser <id>, genpass, stats, report,\n" +
		"  export [file], import <file>, clear, devmode [on|off], backup, backups, restore <name>"
)

var adminCommands = map[string]bool{
	"users": true, "adduser": true, "edituser": true, "toggleuser": true, "deluser": true,
	"genpass": true, "stats": true, "report": true, "export": true, "import": true,
	"clear": true, "devmode": true, "backup": true, "backups": true, "restore": true,
}

// needsArg lists commands that take a mandatory argument and its usage line.
var needsArg = map[string]string{
	"view":       "Usage: view <session id>",
	"edit":       "Usage: edit <session id>",
	"delete":     "Usage: delete <session id>",
	"edituser":   "Usage: edituser <user id>",
	"toggleuser": "Usage: toggleuser <user id>",
	"deluser":    "Usage: deluser <user id>",
	"import":     "Usage: import <file>",
	"restore":    "Usage: restore <backup name>",
}

// describe turns a command error into the message shown to the user.
func describe(err error) string {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return "Please fix the following:\n  - " + strings.Join(ve.Problems, "\n  - ")
	case errors.Is(err, common.ErrorNotFound):
		return "Not found."
	case errors.Is(err, common.ErrForbidden):
		return "You can only change your own sessions."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Wrong password or inactive account."
	case errors.Is(err, common.ErrInvalidBundle):
		return "The file is not a valid portal export."
	case errors.Is(err, common.ErrOperationFailed):
		return "The operation failed; your previous data is unchanged."
	default:
		return "Error: " + err.Error()
	}
}

// runREPL starts a read–eval–print loop.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. Guests may only log in. Admin commands are
// refused for trainers. Handler errors are printed and the loop continues.
// The loop exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("portal %s >", statusFn()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if msg := dispatch(ctx, a, cmd, args); msg != "" {
			printlnFn(msg)
		}

		if err != nil {
			return
		}
	}
}

// dispatch runs one command and returns what should be printed, if anything.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) string {
	if cmd == "help" {
		switch {
		case !a.isLoggedIn():
			return helpGuest
		case a.isAdmin():
			return helpTrainer + "\n" + helpAdmin
		default:
			return helpTrainer
		}
	}

	if cmd == "login" {
		if a.isLoggedIn() {
			return "Already logged in. Use 'logout' first."
		}
		return result(a.Login(ctx))
	}

	if !a.isLoggedIn() {
		return "Please log in first."
	}
	if adminCommands[cmd] && !a.isAdmin() {
		return "Admin access required."
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	if usage, ok := needsArg[cmd]; ok && arg == "" {
		return usage
	}

	var err error
	switch cmd {
	case "logout":
		err = a.Logout(ctx)
	case "whoami":
		err = a.WhoAmI(ctx)
	case "status":
		err = a.Status(ctx)
	case "l", "list":
		err = a.ListSessions(ctx)
	case "find":
		err = a.FindSessions(ctx)
	case "view":
		err = a.ViewSession(ctx, arg)
	case "create":
		err = a.CreateSession(ctx)
	case "edit":
		err = a.EditSession(ctx, arg)
	case "delete":
		err = a.DeleteSession(ctx, arg)
	case "users":
		err = a.ListUsers(ctx)
	case "adduser":
		err = a.AddUser(ctx)
	case "edituser":
		err = a.EditUser(ctx, arg)
	case "toggleuser":
		err = a.ToggleUser(ctx, arg)
	case "deluser":
		err = a.DeleteUser(ctx, arg)
	case "genpass":
		err = a.GeneratePassword(ctx)
	case "stats":
		err = a.Stats(ctx)
	case "report":
		err = a.Report(ctx)
	case "export":
		err = a.Export(ctx, arg)
	case "import":
		err = a.Import(ctx, arg)
	case "clear":
		err = a.ClearAll(ctx)
	case "devmode":
		err = a.DevMode(ctx, arg)
	case "backup":
		err = a.Backup(ctx)
	case "backups":
		err = a.ListBackups(ctx)
	case "restore":
		err = a.Restore(ctx, arg)
	default:
		return "Unknown command: " + cmd
	}
	return result(err)
}

func result(err error) string {
	if err == nil {
		return ""
	}
	return describe(err)
}
