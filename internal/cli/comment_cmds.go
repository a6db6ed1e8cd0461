package cli

import (
	"context"
	"fmt"

	"github.com/iba200/otaku-wireframe/internal/api"
)

const commentsUsage = "usage: otaku comments <list|new|reply|edit|delete|like|moderate> [arguments]"

func (a *App) cmdComments(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.status.Error(commentsUsage)
		return errReported
	}
	switch args[0] {
	case "list":
		return a.commentsList(ctx, args[1:])
	case "new":
		return a.commentsNew(ctx, args[1:])
	case "reply":
		return a.commentsReply(ctx, args[1:])
	case "edit":
		return a.commentsEdit(ctx, args[1:])
	case "delete":
		return a.commentsDelete(ctx, args[1:])
	case "like":
		return a.commentsLike(ctx, args[1:])
	case "moderate":
		return a.commentsModerate(ctx, args[1:])
	default:
		a.status.Error("unknown comments subcommand %q\n%s", args[0], commentsUsage)
		return errReported
	}
}

func (a *App) commentsList(ctx context.Context, args []string) error {
	fs := a.newFlagSet("comments list")
	article := fs.String("article", "", "article id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *article == "" {
		a.status.Error("usage: otaku comments list --article <id>")
		return errReported
	}

	comments, err := a.client.Comments.ForArticle(ctx, *article)
	if err != nil {
		return err
	}
	a.render.CommentThreads(comments, a.sess.IsModerator())
	return nil
}

func (a *App) commentsNew(ctx context.Context, args []string) error {
	fs := a.newFlagSet("comments new")
	article := fs.String("article", "", "article id")
	message := fs.String("message", "", "comment text (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *article == "" {
		a.status.Error("usage: otaku comments new --article <id> --message <text>")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	body, err := a.promptIfEmpty(*message, "comment")
	if err != nil {
		return err
	}
	req := api.CommentRequest{ArticleID: *article, Content: body}
	if err := a.validate(a.check.ValidateComment(&req)); err != nil {
		return err
	}
	comment, err := a.client.Comments.Create(ctx, req)
	if err != nil {
		return err
	}
	a.render.Success("Comment posted: %s", comment.ID)
	return nil
}

func (a *App) commentsReply(ctx context.Context, args []string) error {
	fs := a.newFlagSet("comments reply")
	message := fs.String("message", "", "reply text (prompted if omitted)")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku comments reply <comment-id> --message <text>")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	body, err := a.promptIfEmpty(*message, "reply")
	if err != nil {
		return err
	}
	req := api.MessageRequest{Content: body}
	if err := a.validate(a.check.ValidateMessage(&req)); err != nil {
		return err
	}
	reply, err := a.client.Comments.ReplyTo(ctx, id, req)
	if err != nil {
		return err
	}
	a.render.Success("Reply posted: %s", reply.ID)
	return nil
}

func (a *App) commentsEdit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("comments edit")
	message := fs.String("message", "", "replacement text (prompted if omitted)")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku comments edit <comment-id> --message <text>")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	body, err := a.promptIfEmpty(*message, "new text")
	if err != nil {
		return err
	}
	req := api.MessageRequest{Content: body}
	if err := a.validate(a.check.ValidateMessage(&req)); err != nil {
		return err
	}
	if _, err := a.client.Comments.Update(ctx, id, req); err != nil {
		return err
	}
	a.render.Success("Comment updated.")
	return nil
}

func (a *App) commentsDelete(ctx context.Context, args []string) error {
	fs := a.newFlagSet("comments delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku comments delete <comment-id> [--yes]")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	if !*yes && !a.confirm(fmt.Sprintf("Delete comment %s?", id)) {
		a.status.Notice("Aborted.")
		return nil
	}
	if err := a.client.Comments.Delete(ctx, id); err != nil {
		return err
	}
	a.render.Success("Comment deleted.")
	return nil
}

func (a *App) commentsLike(ctx context.Context, args []string) error {
	fs := a.newFlagSet("comments like")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku comments like <comment-id>")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	status, err := a.client.Comments.Like(ctx, id)
	if err != nil {
		return err
	}
	a.render.LikeStatus(status)
	return nil
}

func (a *App) commentsModerate(ctx context.Context, args []string) error {
	fs := a.newFlagSet("comments moderate")
	action := fs.String("action", "", "hide or restore")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" || (*action != api.ModerateHide && *action != api.ModerateRestore) {
		a.status.Error("usage: otaku comments moderate <comment-id> --action <hide|restore>")
		return errReported
	}
	if err := a.requireModerator(ctx); err != nil {
		return err
	}

	comment, err := a.client.Comments.Moderate(ctx, id, api.ModerateRequest{Action: *action})
	if err != nil {
		return err
	}
	a.render.Success("Comment %s is now %s.", comment.ID, comment.Status)
	return nil
}
