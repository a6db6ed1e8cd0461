package cli

import (
	"context"

	"github.com/iba200/otaku-wireframe/internal/api"
)

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := a.newFlagSet("login")
	email := fs.String("email", "", "account email (prompted if omitted)")
	password := fs.String("password", "", "account password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if user := a.sess.CurrentUser(); user != nil {
		a.status.Notice("Already signed in as %s. Run 'otaku logout' first to switch accounts.", user.Username)
		return nil
	}

	var err error
	if *email, err = a.promptIfEmpty(*email, "email"); err != nil {
		return err
	}
	if *password == "" {
		if *password, err = a.promptSecret("password"); err != nil {
			return err
		}
	}

	req := api.LoginRequest{Email: *email, Password: *password}
	if err := a.validate(a.check.ValidateLogin(&req)); err != nil {
		return err
	}
	user, err := a.sess.Login(ctx, req)
	if err != nil {
		return err
	}
	a.render.Success("Signed in as %s.", user.Username)
	return nil
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := a.newFlagSet("register")
	username := fs.String("username", "", "display name (prompted if omitted)")
	email := fs.String("email", "", "account email (prompted if omitted)")
	password := fs.String("password", "", "account password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username, err = a.promptIfEmpty(*username, "username"); err != nil {
		return err
	}
	if *email, err = a.promptIfEmpty(*email, "email"); err != nil {
		return err
	}
	if *password == "" {
		if *password, err = a.promptSecret("password"); err != nil {
			return err
		}
	}

	req := api.RegisterRequest{Username: *username, Email: *email, Password: *password}
	if err := a.validate(a.check.ValidateRegister(&req)); err != nil {
		return err
	}
	user, err := a.sess.Register(ctx, req)
	if err != nil {
		return err
	}
	a.render.Success("Welcome aboard, %s! You are signed in.", user.Username)
	return nil
}

func (a *App) cmdLogout(ctx context.Context, args []string) error {
	fs := a.newFlagSet("logout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.sess.IsAuthenticated() {
		a.status.Notice("Not signed in.")
		return nil
	}
	if err := a.sess.Logout(); err != nil {
		return err
	}
	a.render.Success("Signed out.")
	return nil
}

func (a *App) cmdWhoami(ctx context.Context, args []string) error {
	fs := a.newFlagSet("whoami")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user := a.sess.CurrentUser()
	if user == nil {
		a.status.Notice("Not signed in.")
		return errReported
	}
	a.render.Profile(user)
	return nil
}

func (a *App) cmdPing(ctx context.Context, args []string) error {
	fs := a.newFlagSet("ping")
	if err := fs.Parse(args); err != nil {
		return err
	}

	health, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	a.render.Health(health)
	return nil
}
