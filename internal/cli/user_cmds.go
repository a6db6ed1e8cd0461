package cli

import (
	"context"

	"github.com/iba200/otaku-wireframe/internal/api"
)

const usersUsage = "usage: otaku users <show|update|list|leaderboard> [arguments]"

func (a *App) cmdUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.status.Error(usersUsage)
		return errReported
	}
	switch args[0] {
	case "show":
		return a.usersShow(ctx, args[1:])
	case "update":
		return a.usersUpdate(ctx, args[1:])
	case "list":
		return a.usersList(ctx, args[1:])
	case "leaderboard":
		return a.usersLeaderboard(ctx, args[1:])
	default:
		a.status.Error("unknown users subcommand %q\n%s", args[0], usersUsage)
		return errReported
	}
}

// usersShow prints a profile: someone else's by id, or the signed-in one.
func (a *App) usersShow(ctx context.Context, args []string) error {
	fs := a.newFlagSet("users show")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		current := a.sess.CurrentUser()
		if current == nil {
			a.status.Error("usage: otaku users show <id> (or sign in to show yourself)")
			return errReported
		}
		id = current.ID
	}

	user, err := a.client.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	a.render.Profile(user)
	return nil
}

// usersUpdate edits a profile. Without an id it targets the signed-in
// user. Role and activity flags only stick when an admin sends them.
func (a *App) usersUpdate(ctx context.Context, args []string) error {
	fs := a.newFlagSet("users update")
	username := fs.String("username", "", "new display name")
	bio := fs.String("bio", "", "new bio")
	avatar := fs.String("avatar", "", "new avatar URL")
	role := fs.String("role", "", "new role: admin|user|moderator (admins)")
	active := fs.Bool("active", true, "account enabled (admins)")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	if id == "" {
		id = fs.Arg(0)
	}
	self := false
	if id == "" {
		id = a.sess.CurrentUser().ID
		self = true
	}

	var req api.UserUpdateRequest
	if flagWasSet(fs, "username") {
		req.Username = username
	}
	if flagWasSet(fs, "bio") {
		req.Bio = bio
	}
	if flagWasSet(fs, "avatar") {
		req.AvatarURL = avatar
	}
	if flagWasSet(fs, "role") {
		req.Role = role
	}
	if flagWasSet(fs, "active") {
		req.Active = active
	}
	if req == (api.UserUpdateRequest{}) {
		a.status.Notice("Nothing to update. Pass at least one of --username, --bio, --avatar, --role, --active.")
		return nil
	}

	if err := a.validate(a.check.ValidateUserUpdate(&req)); err != nil {
		return err
	}
	user, err := a.client.Users.Update(ctx, id, req)
	if err != nil {
		return err
	}
	a.render.Success("Profile updated.")
	a.render.Profile(user)

	if self {
		if err := a.sess.Reload(ctx); err != nil {
			a.status.Notice("Profile saved, but reloading the session failed: %v", err)
		}
	}
	return nil
}

// usersList pages through all members. The backend allows admins only, and
// the client does not bother them without the role either.
func (a *App) usersList(ctx context.Context, args []string) error {
	fs := a.newFlagSet("users list")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", a.cfg.PageSize, "items per page")
	search := fs.String("search", "", "filter by username or email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}

	users, pageMeta, err := a.client.Users.List(ctx, api.ListOptions{
		Page:    *page,
		PerPage: *perPage,
		Search:  *search,
	})
	if err != nil {
		return err
	}
	a.render.UserTable(users, pageMeta)
	return nil
}

func (a *App) usersLeaderboard(ctx context.Context, args []string) error {
	fs := a.newFlagSet("users leaderboard")
	limit := fs.Int("limit", 10, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	users, err := a.client.Users.Leaderboard(ctx, *limit)
	if err != nil {
		return err
	}
	a.render.Leaderboard(users)
	return nil
}
