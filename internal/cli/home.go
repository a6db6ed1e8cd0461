package cli

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/domain"
)

const homePageSize = 5

// cmdHome renders the landing page. The three sections are independent, so
// they are fetched concurrently and the page fails as a whole only if any
// fetch fails.
func (a *App) cmdHome(ctx context.Context, args []string) error {
	fs := a.newFlagSet("home")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		articles   []domain.Article
		topics     []domain.Topic
		categories []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		articles, _, err = a.client.Articles.List(gctx, api.ListOptions{PerPage: homePageSize, Sort: "newest"})
		return err
	})
	g.Go(func() error {
		var err error
		topics, _, err = a.client.Forum.Topics(gctx, api.ListOptions{PerPage: homePageSize, Sort: "active"})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = a.client.Forum.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if user := a.sess.CurrentUser(); user != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n\n", user.Username)
	}
	a.render.Home(articles, topics, categories)
	return nil
}

// cmdSearch queries articles and topics with the same term in one go.
func (a *App) cmdSearch(ctx context.Context, args []string) error {
	fs := a.newFlagSet("search")
	page := fs.Int("page", 1, "result page")
	category := fs.String("category", "", "restrict to one category")
	term, rest := splitIDArg(args)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if term == "" {
		term = fs.Arg(0)
	}
	if term == "" {
		a.status.Error("usage: otaku search <term>")
		return errReported
	}

	opts := api.ListOptions{
		Page:     *page,
		PerPage:  a.cfg.PageSize,
		Category: *category,
		Search:   term,
	}

	var (
		articles    []domain.Article
		articlePage *api.Page
		topics      []domain.Topic
		topicPage   *api.Page
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		articles, articlePage, err = a.client.Articles.List(gctx, opts)
		return err
	})
	g.Go(func() error {
		var err error
		topics, topicPage, err = a.client.Forum.Topics(gctx, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Articles matching %q:\n", term)
	a.render.ArticleTable(articles, articlePage)
	fmt.Fprintf(a.out, "\nTopics matching %q:\n", term)
	a.render.TopicTable(topics, topicPage)
	return nil
}
