package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/domain"
)

// Renderer writes the terminal views. All output goes to a single writer so
// tests can capture it; color is disabled wholesale for pipes and dumb
// terminals.
type Renderer struct {
	out io.Writer

	title   *color.Color
	label   *color.Color
	success *color.Color
	errc    *color.Color
	notice  *color.Color
	faint   *color.Color
}

// NewRenderer builds a renderer writing to out.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	r := &Renderer{
		out:     out,
		title:   color.New(color.FgCyan, color.Bold),
		label:   color.New(color.Bold),
		success: color.New(color.FgGreen),
		errc:    color.New(color.FgRed),
		notice:  color.New(color.FgYellow),
		faint:   color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{r.title, r.label, r.success, r.errc, r.notice, r.faint} {
			c.DisableColor()
		}
	}
	return r
}

// Success prints a green confirmation line.
func (r *Renderer) Success(format string, a ...any) {
	r.success.Fprintf(r.out, format+"\n", a...)
}

// Notice prints a yellow advisory line.
func (r *Renderer) Notice(format string, a ...any) {
	r.notice.Fprintf(r.out, format+"\n", a...)
}

// Error prints a red error line.
func (r *Renderer) Error(format string, a ...any) {
	r.errc.Fprintf(r.out, format+"\n", a...)
}

// ValidationErrors prints one line per rejected field.
func (r *Renderer) ValidationErrors(msgs []string) {
	for _, msg := range msgs {
		r.errc.Fprintf(r.out, "invalid: %s\n", msg)
	}
}

// Health prints the backend liveness report.
func (r *Renderer) Health(h *api.Health) {
	fmt.Fprintf(r.out, "%s %s (server %s)\n", r.label.Sprint("backend:"), h.Status, h.Version)
}

// Profile prints a full user card.
func (r *Renderer) Profile(u *domain.User) {
	r.title.Fprintf(r.out, "%s\n", u.Username)
	w := r.newTabWriter()
	fmt.Fprintf(w, "%s\t%s\n", r.label.Sprint("id:"), u.ID)
	if u.Email != "" {
		fmt.Fprintf(w, "%s\t%s\n", r.label.Sprint("email:"), u.Email)
	}
	fmt.Fprintf(w, "%s\t%s\n", r.label.Sprint("role:"), u.Role)
	fmt.Fprintf(w, "%s\t%d\n", r.label.Sprint("points:"), u.Points)
	if u.Bio != nil && *u.Bio != "" {
		fmt.Fprintf(w, "%s\t%s\n", r.label.Sprint("bio:"), *u.Bio)
	}
	if u.AvatarURL != nil && *u.AvatarURL != "" {
		fmt.Fprintf(w, "%s\t%s\n", r.label.Sprint("avatar:"), *u.AvatarURL)
	}
	if !u.Active {
		fmt.Fprintf(w, "%s\t%s\n", r.label.Sprint("status:"), "deactivated")
	}
	fmt.Fprintf(w, "%s\t%s\n", r.label.Sprint("joined:"), formatTime(u.CreatedAt))
	w.Flush()
}

// UserTable prints the member roster.
func (r *Renderer) UserTable(users []domain.User, page *api.Page) {
	if len(users) == 0 {
		r.faint.Fprintln(r.out, "No users found.")
		return
	}
	w := r.newTabWriter()
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tPOINTS\tACTIVE\tJOINED")
	for _, u := range users {
		active := "yes"
		if !u.Active {
			active = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", u.ID, u.Username, u.Role, u.Points, active, formatTime(u.CreatedAt))
	}
	w.Flush()
	r.pagination(page)
}

// Leaderboard prints the top members by points.
func (r *Renderer) Leaderboard(users []domain.User) {
	if len(users) == 0 {
		r.faint.Fprintln(r.out, "No users found.")
		return
	}
	r.title.Fprintln(r.out, "Leaderboard")
	w := r.newTabWriter()
	fmt.Fprintln(w, "RANK\tUSERNAME\tPOINTS")
	for i, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, u.Username, u.Points)
	}
	w.Flush()
}

// ArticleTable prints an article listing page.
func (r *Renderer) ArticleTable(articles []domain.Article, page *api.Page) {
	if len(articles) == 0 {
		r.faint.Fprintln(r.out, "No articles found.")
		return
	}
	w := r.newTabWriter()
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tAUTHOR\tVIEWS\tLIKES\tPUBLISHED")
	for _, a := range articles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			a.ID, truncate(a.Title, 48), a.Category, authorName(a.Author), a.Views, a.Likes, formatTime(a.CreatedAt))
	}
	w.Flush()
	r.pagination(page)
}

// Article prints one article with its comment threads. Hidden comments show
// a placeholder unless showHidden is set.
func (r *Renderer) Article(a *domain.Article, comments []domain.Comment, showHidden bool) {
	r.title.Fprintf(r.out, "%s\n", a.Title)
	r.faint.Fprintf(r.out, "by %s in %s · %d views · %d likes · %s\n",
		authorName(a.Author), a.Category, a.Views, a.Likes, formatTime(a.CreatedAt))
	if a.UserLiked {
		r.success.Fprintln(r.out, "You like this article.")
	}
	fmt.Fprintf(r.out, "\n%s\n", a.Content)

	fmt.Fprintf(r.out, "\n%s\n", r.label.Sprintf("Comments (%d)", len(comments)))
	if len(comments) == 0 {
		r.faint.Fprintln(r.out, "No comments yet.")
		return
	}
	for _, c := range comments {
		r.comment(c, showHidden)
	}
}

// CommentThreads prints the comment threads of an article on their own,
// without the article body.
func (r *Renderer) CommentThreads(comments []domain.Comment, showHidden bool) {
	if len(comments) == 0 {
		r.faint.Fprintln(r.out, "No comments yet.")
		return
	}
	for _, c := range comments {
		r.comment(c, showHidden)
	}
}

func (r *Renderer) comment(c domain.Comment, showHidden bool) {
	r.commentLine(0, c.ID, authorName(c.Author), c.Content, c.Status, c.Likes, c.CreatedAt, showHidden)
	for _, reply := range c.Replies {
		r.commentLine(1, reply.ID, authorName(reply.Author), reply.Content, reply.Status, reply.Likes, reply.CreatedAt, showHidden)
	}
}

func (r *Renderer) commentLine(depth int, id, author, content, status string, likes int, at time.Time, showHidden bool) {
	indent := strings.Repeat("  ", depth)
	r.faint.Fprintf(r.out, "%s[%s] %s · %s · %d likes\n", indent, id, author, formatTime(at), likes)
	if status == domain.CommentHidden && !showHidden {
		r.faint.Fprintf(r.out, "%s(hidden by moderators)\n", indent)
		return
	}
	if status == domain.CommentHidden {
		r.notice.Fprintf(r.out, "%s(hidden) %s\n", indent, content)
		return
	}
	fmt.Fprintf(r.out, "%s%s\n", indent, content)
}

// TopicTable prints a forum topic listing page.
func (r *Renderer) TopicTable(topics []domain.Topic, page *api.Page) {
	if len(topics) == 0 {
		r.faint.Fprintln(r.out, "No topics found.")
		return
	}
	w := r.newTabWriter()
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tREPLIES\tVIEWS\tLAST REPLY")
	for _, tp := range topics {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			tp.ID, topicTitle(tp), tp.Category, tp.RepliesCount, tp.Views, lastReply(tp.LastReply))
	}
	w.Flush()
	r.pagination(page)
}

// Topic prints one topic with its reply thread.
func (r *Renderer) Topic(topic *domain.Topic, replies []domain.Reply) {
	r.title.Fprintf(r.out, "%s\n", topicTitle(*topic))
	r.faint.Fprintf(r.out, "by %s in %s · %d views · %s\n",
		authorName(topic.Author), topic.Category, topic.Views, formatTime(topic.CreatedAt))
	fmt.Fprintf(r.out, "\n%s\n", topic.Content)

	fmt.Fprintf(r.out, "\n%s\n", r.label.Sprintf("Replies (%d)", len(replies)))
	if topic.Locked {
		r.notice.Fprintln(r.out, "This topic is locked.")
	}
	if len(replies) == 0 {
		r.faint.Fprintln(r.out, "No replies yet.")
		return
	}
	for _, reply := range replies {
		r.faint.Fprintf(r.out, "[%s] %s · %s\n", reply.ID, authorName(reply.Author), formatTime(reply.CreatedAt))
		fmt.Fprintf(r.out, "%s\n", reply.Content)
	}
}

// Categories prints the forum category index.
func (r *Renderer) Categories(cats []domain.Category) {
	if len(cats) == 0 {
		r.faint.Fprintln(r.out, "No categories found.")
		return
	}
	w := r.newTabWriter()
	fmt.Fprintln(w, "CATEGORY\tTOPICS")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t%d\n", c.Name, c.TopicsCount)
	}
	w.Flush()
}

// Home prints the landing dashboard: fresh articles, active topics and the
// category index side by side.
func (r *Renderer) Home(articles []domain.Article, topics []domain.Topic, cats []domain.Category) {
	r.title.Fprintln(r.out, "Latest articles")
	if len(articles) == 0 {
		r.faint.Fprintln(r.out, "Nothing published yet.")
	}
	for _, a := range articles {
		fmt.Fprintf(r.out, "  %s  %s %s\n", a.ID, truncate(a.Title, 60), r.faint.Sprintf("(%s)", a.Category))
	}

	fmt.Fprintln(r.out)
	r.title.Fprintln(r.out, "Active topics")
	if len(topics) == 0 {
		r.faint.Fprintln(r.out, "No discussions yet.")
	}
	for _, tp := range topics {
		fmt.Fprintf(r.out, "  %s  %s %s\n", tp.ID, topicTitle(tp), r.faint.Sprintf("(%d replies)", tp.RepliesCount))
	}

	fmt.Fprintln(r.out)
	r.title.Fprintln(r.out, "Categories")
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, fmt.Sprintf("%s (%d)", c.Name, c.TopicsCount))
	}
	if len(names) == 0 {
		r.faint.Fprintln(r.out, "None.")
		return
	}
	fmt.Fprintf(r.out, "  %s\n", strings.Join(names, ", "))
}

// LikeStatus prints the outcome of a like toggle.
func (r *Renderer) LikeStatus(s *domain.LikeStatus) {
	if s.Liked {
		r.success.Fprintf(r.out, "Liked (%d likes now)\n", s.LikesCount)
		return
	}
	fmt.Fprintf(r.out, "Like removed (%d likes now)\n", s.LikesCount)
}

func (r *Renderer) pagination(page *api.Page) {
	if page == nil || page.Pages <= 1 {
		return
	}
	r.faint.Fprintf(r.out, "Page %d of %d (%d total)\n", page.Page, page.Pages, page.Total)
}

func (r *Renderer) newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
}

func authorName(u *domain.User) string {
	if u == nil {
		return "-"
	}
	return u.Username
}

func topicTitle(tp domain.Topic) string {
	title := truncate(tp.Title, 48)
	if tp.Pinned {
		title = "[pinned] " + title
	}
	if tp.Locked {
		title = "[locked] " + title
	}
	return title
}

func lastReply(r *domain.ReplySummary) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%s, %s", r.AuthorUsername, formatTime(r.CreatedAt))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
