package cli

import (
	"context"
	"fmt"

	"github.com/iba200/otaku-wireframe/internal/api"
)

const topicsUsage = "usage: otaku topics <list|view|new|edit|delete|reply> [arguments]"

func (a *App) cmdTopics(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.status.Error(topicsUsage)
		return errReported
	}
	switch args[0] {
	case "list":
		return a.topicsList(ctx, args[1:])
	case "view":
		return a.topicsView(ctx, args[1:])
	case "new":
		return a.topicsNew(ctx, args[1:])
	case "edit":
		return a.topicsEdit(ctx, args[1:])
	case "delete":
		return a.topicsDelete(ctx, args[1:])
	case "reply":
		return a.topicsReply(ctx, args[1:])
	default:
		a.status.Error("unknown topics subcommand %q\n%s", args[0], topicsUsage)
		return errReported
	}
}

func (a *App) topicsList(ctx context.Context, args []string) error {
	fs := a.newFlagSet("topics list")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", a.cfg.PageSize, "items per page")
	category := fs.String("category", "", "filter by category")
	sort := fs.String("sort", "", "sort order: newest|active|popular")
	search := fs.String("search", "", "full-text search term")
	if err := fs.Parse(args); err != nil {
		return err
	}

	topics, pageMeta, err := a.client.Forum.Topics(ctx, api.ListOptions{
		Page:     *page,
		PerPage:  *perPage,
		Category: *category,
		Sort:     *sort,
		Search:   *search,
	})
	if err != nil {
		return err
	}
	a.render.TopicTable(topics, pageMeta)
	return nil
}

func (a *App) topicsView(ctx context.Context, args []string) error {
	fs := a.newFlagSet("topics view")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku topics view <id>")
		return errReported
	}

	topic, replies, err := a.client.Forum.Topic(ctx, id)
	if err != nil {
		return err
	}
	a.render.Topic(topic, replies)
	return nil
}

func (a *App) topicsNew(ctx context.Context, args []string) error {
	fs := a.newFlagSet("topics new")
	title := fs.String("title", "", "topic title (prompted if omitted)")
	content := fs.String("content", "", "opening post")
	file := fs.String("file", "", "read the opening post from a file")
	category := fs.String("category", "", "topic category (prompted if omitted)")
	pin := fs.Bool("pin", false, "pin the topic (moderators)")
	lock := fs.Bool("lock", false, "lock the topic (moderators)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	var err error
	if *title, err = a.promptIfEmpty(*title, "title"); err != nil {
		return err
	}
	if *category, err = a.promptIfEmpty(*category, "category"); err != nil {
		return err
	}
	body, err := a.contentFromFlags(*content, *file)
	if err != nil {
		return err
	}

	req := api.TopicRequest{Title: *title, Content: body, Category: *category}
	if flagWasSet(fs, "pin") {
		req.Pinned = pin
	}
	if flagWasSet(fs, "lock") {
		req.Locked = lock
	}
	if err := a.validate(a.check.ValidateTopic(&req)); err != nil {
		return err
	}
	topic, err := a.client.Forum.CreateTopic(ctx, req)
	if err != nil {
		return err
	}
	a.render.Success("Topic opened: %s", topic.ID)
	return nil
}

func (a *App) topicsEdit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("topics edit")
	title := fs.String("title", "", "new title")
	content := fs.String("content", "", "new opening post")
	file := fs.String("file", "", "read the new opening post from a file")
	category := fs.String("category", "", "new category")
	pin := fs.Bool("pin", false, "pin or unpin the topic (moderators)")
	lock := fs.Bool("lock", false, "lock or unlock the topic (moderators)")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku topics edit <id> [flags]")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	current, _, err := a.client.Forum.Topic(ctx, id)
	if err != nil {
		return err
	}
	req := api.TopicRequest{Title: current.Title, Content: current.Content, Category: current.Category}
	if *title != "" {
		req.Title = *title
	}
	if *category != "" {
		req.Category = *category
	}
	if *content != "" || *file != "" {
		if req.Content, err = a.contentFromFlags(*content, *file); err != nil {
			return err
		}
	}
	if flagWasSet(fs, "pin") {
		req.Pinned = pin
	}
	if flagWasSet(fs, "lock") {
		req.Locked = lock
	}

	if err := a.validate(a.check.ValidateTopic(&req)); err != nil {
		return err
	}
	topic, err := a.client.Forum.UpdateTopic(ctx, id, req)
	if err != nil {
		return err
	}
	a.render.Success("Topic updated: %s", topic.ID)
	return nil
}

func (a *App) topicsDelete(ctx context.Context, args []string) error {
	fs := a.newFlagSet("topics delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku topics delete <id> [--yes]")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	if !*yes && !a.confirm(fmt.Sprintf("Delete topic %s and all its replies?", id)) {
		a.status.Notice("Aborted.")
		return nil
	}
	if err := a.client.Forum.DeleteTopic(ctx, id); err != nil {
		return err
	}
	a.render.Success("Topic deleted.")
	return nil
}

func (a *App) topicsReply(ctx context.Context, args []string) error {
	fs := a.newFlagSet("topics reply")
	message := fs.String("message", "", "reply text (prompted if omitted)")
	file := fs.String("file", "", "read the reply from a file")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku topics reply <id> --message <text>")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	body, err := a.contentFromFlags(*message, *file)
	if err != nil {
		return err
	}
	req := api.MessageRequest{Content: body}
	if err := a.validate(a.check.ValidateMessage(&req)); err != nil {
		return err
	}
	reply, err := a.client.Forum.Reply(ctx, id, req)
	if err != nil {
		return err
	}
	a.render.Success("Reply posted: %s", reply.ID)
	return nil
}

func (a *App) cmdCategories(ctx context.Context, args []string) error {
	fs := a.newFlagSet("categories")
	if err := fs.Parse(args); err != nil {
		return err
	}

	categories, err := a.client.Forum.Categories(ctx)
	if err != nil {
		return err
	}
	a.render.Categories(categories)
	return nil
}
