// Package console is the interactive front end of the lock: a small
// read-eval-print loop that collects credentials, drives the engine and
// maps its status codes to the device messages.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/logging"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// Engine is the part of locksys.Engine the console drives.
type Engine interface {
	OpenLock(ctx context.Context, username string, passphrase []byte) error
	CloseLock(ctx context.Context) error
	ResetPassphrase(ctx context.Context, username string, current, next []byte) error
	AddUser(ctx context.Context, username string, passphrase []byte, admin bool) error
	IsAdmin(ctx context.Context, username string) (bool, error)
	DumpLog(ctx context.Context, w io.Writer) error
}

type App struct {
	engine  Engine
	reader  *bufio.Reader
	out     io.Writer
	log     logging.Logger
	limiter *rate.Limiter

	// terminal selects echo-free passphrase entry.
	terminal bool

	// user is the account that opened the lock, empty while locked.
	user string
}

// NewApp builds a console reading from in and writing to out. Passphrase
// submissions are paced to one per passwordDelay.
func NewApp(engine Engine, in io.Reader, out io.Writer, passwordDelay time.Duration, log logging.Logger) *App {
	limit := rate.Inf
	if passwordDelay > 0 {
		limit = rate.Every(passwordDelay)
	}

	terminal := false
	if f, ok := in.(*os.File); ok && f == os.Stdin {
		terminal = term.IsTerminal(int(f.Fd()))
	}

	return &App{
		engine:   engine,
		reader:   bufio.NewReader(in),
		out:      out,
		log:      log,
		limiter:  rate.NewLimiter(limit, 1),
		terminal: terminal,
	}
}

// Run serves commands until the input ends or the user quits. The lock is
// closed on the way out if it was left open.
func (a *App) Run(ctx context.Context) {
	runREPL(ctx, a, a.status, a.reader, a.out)

	if a.isUnlocked() {
		_ = a.Lock(ctx)
	}
}

func (a *App) isUnlocked() bool { return a.user != "" }

func (a *App) status() string {
	if a.isUnlocked() {
		return "open:" + a.user
	}
	return "locked"
}

func (a *App) text(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}

// secret reads a passphrase and waits for the pacing limiter, so repeated
// guesses cannot be submitted faster than the configured delay.
func (a *App) secret(ctx context.Context, prompt string) ([]byte, error) {
	var (
		pw  []byte
		err error
	)
	if a.terminal {
		pw, err = GetPassword(prompt, a.out)
	} else {
		pw, err = GetPasswordLine(a.reader, prompt, a.out)
	}
	if err != nil {
		return nil, err
	}

	if err := a.limiter.Wait(ctx); err != nil {
		cryptox.SecureZero(pw)
		return nil, err
	}
	return pw, nil
}

func (a *App) say(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// Message returns the text shown to the user for an engine error.
func Message(err error) string {
	switch s := common.StatusOf(err); {
	case s == common.StatusOK:
		return "OK"
	case errors.Is(err, common.ErrAuthFailed), errors.Is(err, common.ErrNotFound):
		return "Authentication Failed."
	case errors.Is(err, common.ErrPermanentlyLocked):
		return "Account permanently locked."
	case errors.Is(err, common.ErrThrottled):
		return "Login temporarily disabled. Please wait."
	case errors.Is(err, common.ErrInvalidInput):
		return "Invalid input."
	default:
		return fmt.Sprintf("Internal Error. Code: %d", s)
	}
}
