package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface runREPL dispatches to. App satisfies
// it; tests use a stub.
type execIface interface {
	isUnlocked() bool
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	ChangePassphrase(ctx context.Context) error
	AddUser(ctx context.Context) error
	ShowLog(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a.
//
//	Locked:
//	  unlock        authenticate and open the lock
//	  help
//	  exit | quit
//
//	Open:
//	  lock          close the lock
//	  passwd        change the passphrase of the current user
//	  adduser       create an account (admin only)
//	  log           dump the event log (admin only)
//	  help
//	  exit | quit
//
// Handler errors are reported by the handlers themselves; the loop keeps
// going until EOF or exit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		line, err := GetSimpleText(reader, fmt.Sprintf("lock [%s]> ", statusFn()), w)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isUnlocked() {
				fmt.Fprintln(w, "Available commands: lock, passwd, adduser, log, exit")
			} else {
				fmt.Fprintln(w, "Available commands: unlock, exit")
			}

		case "unlock", "u":
			_ = a.Unlock(ctx)

		case "lock", "l":
			_ = a.Lock(ctx)

		case "passwd":
			_ = a.ChangePassphrase(ctx)

		case "adduser":
			_ = a.AddUser(ctx)

		case "log":
			_ = a.ShowLog(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
