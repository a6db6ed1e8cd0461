package cli

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/domain"
)

const articlesUsage = "usage: otaku articles <list|view|new|edit|delete|like> [arguments]"

func (a *App) cmdArticles(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.status.Error(articlesUsage)
		return errReported
	}
	switch args[0] {
	case "list":
		return a.articlesList(ctx, args[1:])
	case "view":
		return a.articlesView(ctx, args[1:])
	case "new":
		return a.articlesNew(ctx, args[1:])
	case "edit":
		return a.articlesEdit(ctx, args[1:])
	case "delete":
		return a.articlesDelete(ctx, args[1:])
	case "like":
		return a.articlesLike(ctx, args[1:])
	default:
		a.status.Error("unknown articles subcommand %q\n%s", args[0], articlesUsage)
		return errReported
	}
}

func (a *App) articlesList(ctx context.Context, args []string) error {
	fs := a.newFlagSet("articles list")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", a.cfg.PageSize, "items per page")
	category := fs.String("category", "", "filter by category")
	sort := fs.String("sort", "", "sort order: newest|popular")
	search := fs.String("search", "", "full-text search term")
	if err := fs.Parse(args); err != nil {
		return err
	}

	articles, pageMeta, err := a.client.Articles.List(ctx, api.ListOptions{
		Page:     *page,
		PerPage:  *perPage,
		Category: *category,
		Sort:     *sort,
		Search:   *search,
	})
	if err != nil {
		return err
	}
	a.render.ArticleTable(articles, pageMeta)
	return nil
}

func (a *App) articlesView(ctx context.Context, args []string) error {
	fs := a.newFlagSet("articles view")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku articles view <id>")
		return errReported
	}

	var (
		article  *domain.Article
		comments []domain.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		article, err = a.client.Articles.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = a.client.Comments.ForArticle(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	a.render.Article(article, comments, a.sess.IsModerator())
	return nil
}

func (a *App) articlesNew(ctx context.Context, args []string) error {
	fs := a.newFlagSet("articles new")
	title := fs.String("title", "", "article title (prompted if omitted)")
	content := fs.String("content", "", "article content")
	file := fs.String("file", "", "read content from a file")
	category := fs.String("category", "", "article category (prompted if omitted)")
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

	req := api.ArticleRequest{Title: *title, Content: body, Category: *category}
	if err := a.validate(a.check.ValidateArticle(&req)); err != nil {
		return err
	}
	article, err := a.client.Articles.Create(ctx, req)
	if err != nil {
		return err
	}
	a.render.Success("Article published: %s", article.ID)
	return nil
}

func (a *App) articlesEdit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("articles edit")
	title := fs.String("title", "", "new title")
	content := fs.String("content", "", "new content")
	file := fs.String("file", "", "read new content from a file")
	category := fs.String("category", "", "new category")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku articles edit <id> [flags]")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	current, err := a.client.Articles.Get(ctx, id)
	if err != nil {
		return err
	}
	req := api.ArticleRequest{Title: current.Title, Content: current.Content, Category: current.Category}
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

	if err := a.validate(a.check.ValidateArticle(&req)); err != nil {
		return err
	}
	article, err := a.client.Articles.Update(ctx, id, req)
	if err != nil {
		return err
	}
	a.render.Success("Article updated: %s", article.ID)
	return nil
}

func (a *App) articlesDelete(ctx context.Context, args []string) error {
	fs := a.newFlagSet("articles delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku articles delete <id> [--yes]")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	if !*yes && !a.confirm(fmt.Sprintf("Delete article %s?", id)) {
		a.status.Notice("Aborted.")
		return nil
	}
	if err := a.client.Articles.Delete(ctx, id); err != nil {
		return err
	}
	a.render.Success("Article deleted.")
	return nil
}

func (a *App) articlesLike(ctx context.Context, args []string) error {
	fs := a.newFlagSet("articles like")
	id, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		a.status.Error("usage: otaku articles like <id>")
		return errReported
	}
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	status, err := a.client.Articles.Like(ctx, id)
	if err != nil {
		return err
	}
	a.render.LikeStatus(status)
	return nil
}
