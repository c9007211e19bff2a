package console

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
)

var errNotUnlocked = errors.New("lock is not open")
var errNotAdmin = errors.New("administrator rights required")

// Unlock asks for a username and passphrase and tries to open the lock.
func (a *App) Unlock(ctx context.Context) error {
	if a.isUnlocked() {
		a.say("Lock is already open.")
		return nil
	}

	username, err := a.text("Enter username: ")
	if err != nil {
		return err
	}
	pw, err := a.secret(ctx, "Enter passphrase: ")
	if err != nil {
		return err
	}

	// OpenLock wipes pw
	err = a.engine.OpenLock(ctx, username, pw)
	if err != nil {
		a.say("%s", Message(err))
		a.log.Debug(ctx, "unlock failed", "user", username, "status", common.StatusOf(err).String())
		return err
	}

	a.user = username
	a.say("Lock Opened!")

	if admin, err := a.engine.IsAdmin(ctx, username); err == nil && admin {
		a.say("Administrator commands: adduser, log")
	}
	return nil
}

// Lock closes the lock and ends the session.
func (a *App) Lock(ctx context.Context) error {
	if !a.isUnlocked() {
		a.say("Lock is already closed.")
		return nil
	}

	if err := a.engine.CloseLock(ctx); err != nil {
		a.say("%s", Message(err))
		return err
	}
	a.user = ""
	a.say("Lock Closed.")
	return nil
}

// ChangePassphrase lets the user who opened the lock set a new passphrase.
func (a *App) ChangePassphrase(ctx context.Context) error {
	if !a.isUnlocked() {
		a.say("Unlock first.")
		return errNotUnlocked
	}

	current, err := a.secret(ctx, "Re-enter current passphrase to confirm: ")
	if err != nil {
		return err
	}
	next, err := a.secret(ctx, "Enter new passphrase: ")
	if err != nil {
		cryptox.SecureZero(current)
		return err
	}

	if err := a.engine.ResetPassphrase(ctx, a.user, current, next); err != nil {
		a.say("Failed to change password. %s", Message(err))
		return err
	}
	a.say("Password successfully changed.")
	return nil
}

func (a *App) requireAdmin(ctx context.Context) error {
	if !a.isUnlocked() {
		a.say("Unlock first.")
		return errNotUnlocked
	}
	admin, err := a.engine.IsAdmin(ctx, a.user)
	if err != nil || !admin {
		a.say("Administrator rights required.")
		return errNotAdmin
	}
	return nil
}

// AddUser creates an account. Only administrators may use it.
func (a *App) AddUser(ctx context.Context) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}

	username, err := a.text("Enter new username: ")
	if err != nil {
		return err
	}
	pw, err := a.secret(ctx, "Enter new password: ")
	if err != nil {
		return err
	}
	admin := YesNo(a.reader, "Is this user an admin?", a.out)

	if err := a.engine.AddUser(ctx, username, pw, admin); err != nil {
		a.say("Failed to add user. Status: %d", common.StatusOf(err))
		return err
	}
	a.say("User added successfully.")
	return nil
}

// ShowLog prints the event log. Only administrators may use it.
func (a *App) ShowLog(ctx context.Context) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}
	if err := a.engine.DumpLog(ctx, a.out); err != nil {
		a.say("Failed to open log stream. %s", Message(err))
		return err
	}
	return nil
}
