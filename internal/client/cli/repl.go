package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gymrecord/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	GoogleLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	Forget(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ShowProfile(ctx context.Context) error
	SetName(ctx context.Context, name string) error
	SetGender(ctx context.Context, value string) error
	Avatar(ctx context.Context, path string) error
	SetLang(ctx context.Context, code string) error
	ReloadTranslations(ctx context.Context) error
	Translate(key string) error
	BodyParts(ctx context.Context) error
	Muscles(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: register, login, google, forget, whoami, lang [code], reload, t <key>, bodyparts, muscles, exit"
	helpSignedIn  = "Available commands: whoami, profile, setname <name>, setgender male|female, avatar <path>, logout, forget, lang [code], reload, t <key>, bodyparts, muscles, exit"
)

// runREPL starts a simple read-eval-print loop for the GymRecord CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the rest of the line as its argument. The loop exits on EOF, when
// ctx is done or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	  - help                  show available commands
//	  - register              create an account
//	  - login                 sign in with e-mail and password
//	  - google                sign in with Google
//	  - logout                sign out
//	  - forget                sign out and remove the local identity
//	  - whoami                show the current session
//	  - profile               show the profile
//	  - setname <name>        change the username
//	  - setgender male|female change the gender
//	  - avatar <path>         upload a profile picture
//	  - lang [code]           show or switch the language
//	  - reload                reload translations
//	  - t <key>               translate a key
//	  - bodyparts | muscles   list vocabularies
//	  - exit | quit           leave the program
//
// Errors returned by command handlers are printed and the loop continues.
// Prompts read by handlers share reader with the loop, so no input is lost
// between them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("gr> %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "google":
			report(a.GoogleLogin(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "forget":
			report(a.Forget(ctx))

		case "whoami":
			report(a.WhoAmI(ctx))

		case "profile":
			report(a.ShowProfile(ctx))

		case "setname":
			report(a.SetName(ctx, arg))

		case "setgender":
			report(a.SetGender(ctx, arg))

		case "avatar":
			report(a.Avatar(ctx, arg))

		case "lang":
			report(a.SetLang(ctx, arg))

		case "reload":
			report(a.ReloadTranslations(ctx))

		case "t":
			report(a.Translate(arg))

		case "bodyparts":
			report(a.BodyParts(ctx))

		case "muscles":
			report(a.Muscles(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", common.UserMessage(err))
	}
}
