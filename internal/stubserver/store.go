// Package stubserver is the local development backend. It serves the same
// wire contract the real community backend exposes, backed by an in-memory
// store, so the terminal client can be exercised end to end without external
// services.
package stubserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iba200/otaku-wireframe/internal/domain"
)

// Store errors surfaced to handlers.
var (
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
	ErrNestedReply   = errors.New("replies cannot be nested")
)

// Points awarded per contribution. The leaderboard ranks on the running sum.
const (
	pointsArticle = 10
	pointsTopic   = 5
	pointsComment = 2
)

type userRecord struct {
	user domain.User
	hash []byte
	seq  uint64
}

type articleRecord struct {
	article domain.Article
	seq     uint64
}

type topicRecord struct {
	topic domain.Topic
	seq   uint64
}

type commentRecord struct {
	id        string
	articleID string
	parentID  string
	authorID  string
	content   string
	status    string
	createdAt time.Time
	updatedAt time.Time
	seq       uint64
}

// Store is the in-memory data layer behind the stub handlers. All methods
// are safe for concurrent use and return copies, never internal records.
type Store struct {
	mu  sync.RWMutex
	seq uint64

	users         map[string]*userRecord
	emailIndex    map[string]string
	usernameIndex map[string]string

	articles     map[string]*articleRecord
	articleLikes map[string]map[string]struct{}

	topics  map[string]*topicRecord
	replies map[string][]domain.Reply

	comments     map[string]*commentRecord
	commentLikes map[string]map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]*userRecord),
		emailIndex:    make(map[string]string),
		usernameIndex: make(map[string]string),
		articles:      make(map[string]*articleRecord),
		articleLikes:  make(map[string]map[string]struct{}),
		topics:        make(map[string]*topicRecord),
		replies:       make(map[string][]domain.Reply),
		comments:      make(map[string]*commentRecord),
		commentLikes:  make(map[string]map[string]struct{}),
	}
}

// nextSeq hands out a monotonic insertion counter. Callers hold s.mu.
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// ContentQuery carries the listing parameters shared by article, topic and
// user collections.
type ContentQuery struct {
	Page     int
	PerPage  int
	Sort     string
	Category string
	Search   string
}

func (q ContentQuery) normalize() ContentQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}
	return q
}

// paginate cuts one page out of items and reports the page count.
func paginate[T any](items []T, q ContentQuery) ([]T, int) {
	total := len(items)
	pages := (total + q.PerPage - 1) / q.PerPage
	start := (q.Page - 1) * q.PerPage
	if start >= total {
		return []T{}, pages
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}
	return items[start:end], pages
}

func matchesSearch(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// ---- users ----

// CreateUser registers a new member with the default role. Email and
// username must be unique, compared case-insensitively.
func (s *Store) CreateUser(username, email string, hash []byte) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emailIndex[strings.ToLower(email)]; taken {
		return domain.User{}, ErrEmailTaken
	}
	if _, taken := s.usernameIndex[strings.ToLower(username)]; taken {
		return domain.User{}, ErrUsernameTaken
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		Role:      domain.RoleUser,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.insertUser(user, hash)
	return user, nil
}

// insertUser places a fully formed user into the store. Used by CreateUser
// and by the seed fixtures, which set roles and points directly. Callers
// hold s.mu.
func (s *Store) insertUser(user domain.User, hash []byte) {
	s.users[user.ID] = &userRecord{user: user, hash: hash, seq: s.nextSeq()}
	s.emailIndex[strings.ToLower(user.Email)] = user.ID
	s.usernameIndex[strings.ToLower(user.Username)] = user.ID
}

// Credentials resolves a user by email for password verification.
func (s *Store) Credentials(email string) (domain.User, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return domain.User{}, nil, ErrNotFound
	}
	rec := s.users[id]
	return rec.user, rec.hash, nil
}

// GetUser returns the full user record, email included. Handlers decide how
// much of it the viewer may see.
func (s *Store) GetUser(id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return rec.user, nil
}

// ProfileUpdate carries the optional fields of a user update. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	Username  *string
	Bio       *string
	AvatarURL *string
	Role      *string
	Active    *bool
}

// UpdateProfile applies a partial update to a user.
func (s *Store) UpdateProfile(id string, upd ProfileUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	if upd.Username != nil && !strings.EqualFold(*upd.Username, rec.user.Username) {
		key := strings.ToLower(*upd.Username)
		if _, taken := s.usernameIndex[key]; taken {
			return domain.User{}, ErrUsernameTaken
		}
		delete(s.usernameIndex, strings.ToLower(rec.user.Username))
		s.usernameIndex[key] = id
		rec.user.Username = *upd.Username
	} else if upd.Username != nil {
		rec.user.Username = *upd.Username
	}
	if upd.Bio != nil {
		rec.user.Bio = upd.Bio
	}
	if upd.AvatarURL != nil {
		rec.user.AvatarURL = upd.AvatarURL
	}
	if upd.Role != nil {
		rec.user.Role = *upd.Role
	}
	if upd.Active != nil {
		rec.user.Active = *upd.Active
	}
	rec.user.UpdatedAt = time.Now().UTC()
	return rec.user, nil
}

// ListUsers returns one page of members, search matching username or email.
func (s *Store) ListUsers(q ContentQuery) ([]domain.User, int, int) {
	q = q.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*userRecord, 0, len(s.users))
	for _, rec := range s.users {
		if matchesSearch(q.Search, rec.user.Username, rec.user.Email) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		switch q.Sort {
		case "oldest":
			return recs[i].seq < recs[j].seq
		case "points":
			if recs[i].user.Points != recs[j].user.Points {
				return recs[i].user.Points > recs[j].user.Points
			}
			return recs[i].seq < recs[j].seq
		default: // newest
			return recs[i].seq > recs[j].seq
		}
	})

	total := len(recs)
	page, pages := paginate(recs, q)
	users := make([]domain.User, 0, len(page))
	for _, rec := range page {
		users = append(users, rec.user)
	}
	return users, total, pages
}

// Leaderboard returns the top contributors by points. Deactivated accounts
// are excluded.
func (s *Store) Leaderboard(limit int) []domain.User {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.users))
	for _, rec := range s.users {
		if rec.user.Active {
			users = append(users, rec.user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].Username < users[j].Username
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users
}

// addPoints credits a contribution. Callers hold s.mu.
func (s *Store) addPoints(userID string, n int) {
	if rec, ok := s.users[userID]; ok {
		rec.user.Points += n
	}
}

// publicAuthor returns the embeddable author annotation for content
// listings. Emails never travel on annotations. Callers hold s.mu.
func (s *Store) publicAuthor(id string) *domain.User {
	rec, ok := s.users[id]
	if !ok {
		return nil
	}
	u := rec.user
	u.Email = ""
	return &u
}

// username resolves an author name for reply summaries. Callers hold s.mu.
func (s *Store) username(id string) string {
	if rec, ok := s.users[id]; ok {
		return rec.user.Username
	}
	return "deleted"
}

// ---- articles ----

// CreateArticle publishes an article and credits the author.
func (s *Store) CreateArticle(authorID, title, content, category string) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[authorID]; !ok {
		return domain.Article{}, ErrNotFound
	}
	now := time.Now().UTC()
	rec := &articleRecord{
		article: domain.Article{
			ID:        uuid.New().String(),
			Title:     title,
			Content:   content,
			Category:  category,
			AuthorID:  authorID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		seq: s.nextSeq(),
	}
	s.articles[rec.article.ID] = rec
	s.addPoints(authorID, pointsArticle)
	return s.snapshotArticle(rec, authorID), nil
}

// insertArticle places a seed fixture. Callers hold s.mu.
func (s *Store) insertArticle(a domain.Article) {
	s.articles[a.ID] = &articleRecord{article: a, seq: s.nextSeq()}
}

// GetArticle returns an article without touching its view counter.
func (s *Store) GetArticle(id, viewerID string) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.articles[id]
	if !ok {
		return domain.Article{}, ErrNotFound
	}
	return s.snapshotArticle(rec, viewerID), nil
}

// ViewArticle returns an article and counts the read.
func (s *Store) ViewArticle(id, viewerID string) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.articles[id]
	if !ok {
		return domain.Article{}, ErrNotFound
	}
	rec.article.Views++
	return s.snapshotArticle(rec, viewerID), nil
}

// UpdateArticle replaces the editable fields of an article.
func (s *Store) UpdateArticle(id, viewerID, title, content, category string) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.articles[id]
	if !ok {
		return domain.Article{}, ErrNotFound
	}
	rec.article.Title = title
	rec.article.Content = content
	rec.article.Category = category
	rec.article.UpdatedAt = time.Now().UTC()
	return s.snapshotArticle(rec, viewerID), nil
}

// DeleteArticle removes an article together with its comments and likes.
func (s *Store) DeleteArticle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return ErrNotFound
	}
	delete(s.articles, id)
	delete(s.articleLikes, id)
	for cid, rec := range s.comments {
		if rec.articleID == id {
			delete(s.comments, cid)
			delete(s.commentLikes, cid)
		}
	}
	return nil
}

// ListArticles returns one page of articles after filtering and sorting.
func (s *Store) ListArticles(q ContentQuery, viewerID string) ([]domain.Article, int, int) {
	q = q.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*articleRecord, 0, len(s.articles))
	for _, rec := range s.articles {
		if q.Category != "" && !strings.EqualFold(rec.article.Category, q.Category) {
			continue
		}
		if !matchesSearch(q.Search, rec.article.Title, rec.article.Content) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		switch q.Sort {
		case "popular":
			if a.article.Views != b.article.Views {
				return a.article.Views > b.article.Views
			}
			la, lb := len(s.articleLikes[a.article.ID]), len(s.articleLikes[b.article.ID])
			if la != lb {
				return la > lb
			}
			return a.seq > b.seq
		case "oldest":
			if !a.article.CreatedAt.Equal(b.article.CreatedAt) {
				return a.article.CreatedAt.Before(b.article.CreatedAt)
			}
			return a.seq < b.seq
		default: // newest
			if !a.article.CreatedAt.Equal(b.article.CreatedAt) {
				return a.article.CreatedAt.After(b.article.CreatedAt)
			}
			return a.seq > b.seq
		}
	})

	total := len(recs)
	page, pages := paginate(recs, q)
	articles := make([]domain.Article, 0, len(page))
	for _, rec := range page {
		articles = append(articles, s.snapshotArticle(rec, viewerID))
	}
	return articles, total, pages
}

// ToggleArticleLike flips the viewer's like and returns the new status.
func (s *Store) ToggleArticleLike(id, userID string) (domain.LikeStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return domain.LikeStatus{}, ErrNotFound
	}
	set := s.articleLikes[id]
	if set == nil {
		set = make(map[string]struct{})
		s.articleLikes[id] = set
	}
	if _, liked := set[userID]; liked {
		delete(set, userID)
		return domain.LikeStatus{Liked: false, LikesCount: len(set)}, nil
	}
	set[userID] = struct{}{}
	return domain.LikeStatus{Liked: true, LikesCount: len(set)}, nil
}

// snapshotArticle fills the derived fields of an article copy. Callers hold
// s.mu.
func (s *Store) snapshotArticle(rec *articleRecord, viewerID string) domain.Article {
	a := rec.article
	a.Likes = len(s.articleLikes[a.ID])
	if viewerID != "" {
		_, a.UserLiked = s.articleLikes[a.ID][viewerID]
	}
	a.Author = s.publicAuthor(a.AuthorID)
	return a
}

// ---- topics ----

// CreateTopic opens a discussion thread and credits the author.
func (s *Store) CreateTopic(authorID, title, content, category string, pinned, locked bool) (domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[authorID]; !ok {
		return domain.Topic{}, ErrNotFound
	}
	now := time.Now().UTC()
	rec := &topicRecord{
		topic: domain.Topic{
			ID:        uuid.New().String(),
			Title:     title,
			Content:   content,
			Category:  category,
			Pinned:    pinned,
			Locked:    locked,
			AuthorID:  authorID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		seq: s.nextSeq(),
	}
	s.topics[rec.topic.ID] = rec
	s.addPoints(authorID, pointsTopic)
	return s.snapshotTopic(rec), nil
}

// insertTopic places a seed fixture. Callers hold s.mu.
func (s *Store) insertTopic(t domain.Topic) {
	s.topics[t.ID] = &topicRecord{topic: t, seq: s.nextSeq()}
}

// GetTopic returns a topic without its replies or a view count bump.
func (s *Store) GetTopic(id string) (domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.topics[id]
	if !ok {
		return domain.Topic{}, ErrNotFound
	}
	return s.snapshotTopic(rec), nil
}

// ViewTopic returns a topic with its reply thread and counts the read.
func (s *Store) ViewTopic(id string) (domain.Topic, []domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.topics[id]
	if !ok {
		return domain.Topic{}, nil, ErrNotFound
	}
	rec.topic.Views++

	stored := s.replies[id]
	replies := make([]domain.Reply, len(stored))
	for i, r := range stored {
		r.Author = s.publicAuthor(r.AuthorID)
		replies[i] = r
	}
	return s.snapshotTopic(rec), replies, nil
}

// UpdateTopic replaces the editable fields of a topic. Pinned and locked are
// applied only when set; handlers clear them for non-moderators.
func (s *Store) UpdateTopic(id, title, content, category string, pinned, locked *bool) (domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.topics[id]
	if !ok {
		return domain.Topic{}, ErrNotFound
	}
	rec.topic.Title = title
	rec.topic.Content = content
	rec.topic.Category = category
	if pinned != nil {
		rec.topic.Pinned = *pinned
	}
	if locked != nil {
		rec.topic.Locked = *locked
	}
	rec.topic.UpdatedAt = time.Now().UTC()
	return s.snapshotTopic(rec), nil
}

// DeleteTopic removes a topic and its replies.
func (s *Store) DeleteTopic(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.topics[id]; !ok {
		return ErrNotFound
	}
	delete(s.topics, id)
	delete(s.replies, id)
	return nil
}

// ListTopics returns one page of topics. Pinned topics sort before everything
// else regardless of the requested order.
func (s *Store) ListTopics(q ContentQuery) ([]domain.Topic, int, int) {
	q = q.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*topicRecord, 0, len(s.topics))
	for _, rec := range s.topics {
		if q.Category != "" && !strings.EqualFold(rec.topic.Category, q.Category) {
			continue
		}
		if !matchesSearch(q.Search, rec.topic.Title, rec.topic.Content) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.topic.Pinned != b.topic.Pinned {
			return a.topic.Pinned
		}
		switch q.Sort {
		case "popular":
			if a.topic.Views != b.topic.Views {
				return a.topic.Views > b.topic.Views
			}
			return a.seq > b.seq
		case "oldest":
			if !a.topic.CreatedAt.Equal(b.topic.CreatedAt) {
				return a.topic.CreatedAt.Before(b.topic.CreatedAt)
			}
			return a.seq < b.seq
		case "active":
			la, lb := s.lastActivity(a), s.lastActivity(b)
			if !la.Equal(lb) {
				return la.After(lb)
			}
			return a.seq > b.seq
		default: // newest
			if !a.topic.CreatedAt.Equal(b.topic.CreatedAt) {
				return a.topic.CreatedAt.After(b.topic.CreatedAt)
			}
			return a.seq > b.seq
		}
	})

	total := len(recs)
	page, pages := paginate(recs, q)
	topics := make([]domain.Topic, 0, len(page))
	for _, rec := range page {
		topics = append(topics, s.snapshotTopic(rec))
	}
	return topics, total, pages
}

// CreateReply appends a reply to a topic and credits the author. The locked
// check happens in the handler, where the caller's role is known.
func (s *Store) CreateReply(topicID, authorID, content string) (domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.topics[topicID]; !ok {
		return domain.Reply{}, ErrNotFound
	}
	reply := domain.Reply{
		ID:        uuid.New().String(),
		TopicID:   topicID,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	s.replies[topicID] = append(s.replies[topicID], reply)
	s.addPoints(authorID, pointsComment)

	reply.Author = s.publicAuthor(authorID)
	return reply, nil
}

// insertReply places a seed fixture. Callers hold s.mu.
func (s *Store) insertReply(r domain.Reply) {
	s.replies[r.TopicID] = append(s.replies[r.TopicID], r)
}

// Categories aggregates topic counts per category, sorted by name.
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range s.topics {
		counts[rec.topic.Category]++
	}
	categories := make([]domain.Category, 0, len(counts))
	for name, n := range counts {
		categories = append(categories, domain.Category{Name: name, TopicsCount: n})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories
}

// lastActivity is the instant of the newest reply, or the topic's creation
// when it has none. Callers hold s.mu.
func (s *Store) lastActivity(rec *topicRecord) time.Time {
	if rs := s.replies[rec.topic.ID]; len(rs) > 0 {
		return rs[len(rs)-1].CreatedAt
	}
	return rec.topic.CreatedAt
}

// snapshotTopic fills the derived fields of a topic copy. Callers hold s.mu.
func (s *Store) snapshotTopic(rec *topicRecord) domain.Topic {
	t := rec.topic
	t.Author = s.publicAuthor(t.AuthorID)
	if rs := s.replies[t.ID]; len(rs) > 0 {
		t.RepliesCount = len(rs)
		last := rs[len(rs)-1]
		t.LastReply = &domain.ReplySummary{
			AuthorUsername: s.username(last.AuthorID),
			CreatedAt:      last.CreatedAt,
		}
	}
	return t
}

// ---- comments ----

// CommentInfo carries the fields permission checks need without assembling
// the whole thread.
type CommentInfo struct {
	ID        string
	ArticleID string
	ParentID  string
	AuthorID  string
	Status    string
}

// GetCommentInfo looks up a comment or reply by id.
func (s *Store) GetCommentInfo(id string) (CommentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.comments[id]
	if !ok {
		return CommentInfo{}, ErrNotFound
	}
	return CommentInfo{
		ID:        rec.id,
		ArticleID: rec.articleID,
		ParentID:  rec.parentID,
		AuthorID:  rec.authorID,
		Status:    rec.status,
	}, nil
}

// CommentsForArticle assembles the comment threads of an article in
// chronological order. Hidden entries are included; presentation decides
// what the viewer sees of them.
func (s *Store) CommentsForArticle(articleID, viewerID string) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.articles[articleID]; !ok {
		return nil, ErrNotFound
	}

	var top []*commentRecord
	children := make(map[string][]*commentRecord)
	for _, rec := range s.comments {
		if rec.articleID != articleID {
			continue
		}
		if rec.parentID == "" {
			top = append(top, rec)
		} else {
			children[rec.parentID] = append(children[rec.parentID], rec)
		}
	}
	sort.Slice(top, func(i, j int) bool { return top[i].seq < top[j].seq })

	comments := make([]domain.Comment, 0, len(top))
	for _, rec := range top {
		c := s.snapshotComment(rec, viewerID)
		kids := children[rec.id]
		sort.Slice(kids, func(i, j int) bool { return kids[i].seq < kids[j].seq })
		for _, kid := range kids {
			c.Replies = append(c.Replies, s.snapshotCommentReply(kid, viewerID))
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// CreateComment attaches a top-level comment to an article and credits the
// author.
func (s *Store) CreateComment(articleID, authorID, content string) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[articleID]; !ok {
		return domain.Comment{}, ErrNotFound
	}
	rec := s.insertComment(articleID, "", authorID, content)
	s.addPoints(authorID, pointsComment)
	return s.snapshotComment(rec, authorID), nil
}

// CreateCommentReply attaches a direct reply to a top-level comment. Replies
// to replies are rejected; threads stay one level deep.
func (s *Store) CreateCommentReply(parentID, authorID, content string) (domain.CommentReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.comments[parentID]
	if !ok {
		return domain.CommentReply{}, ErrNotFound
	}
	if parent.parentID != "" {
		return domain.CommentReply{}, ErrNestedReply
	}
	rec := s.insertComment(parent.articleID, parentID, authorID, content)
	s.addPoints(authorID, pointsComment)
	return s.snapshotCommentReply(rec, authorID), nil
}

// insertComment creates a comment record. Callers hold s.mu.
func (s *Store) insertComment(articleID, parentID, authorID, content string) *commentRecord {
	now := time.Now().UTC()
	rec := &commentRecord{
		id:        uuid.New().String(),
		articleID: articleID,
		parentID:  parentID,
		authorID:  authorID,
		content:   content,
		status:    domain.CommentVisible,
		createdAt: now,
		updatedAt: now,
		seq:       s.nextSeq(),
	}
	s.comments[rec.id] = rec
	return rec
}

// UpdateComment replaces the text of a comment or reply.
func (s *Store) UpdateComment(id, viewerID, content string) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, ErrNotFound
	}
	rec.content = content
	rec.updatedAt = time.Now().UTC()
	return s.snapshotComment(rec, viewerID), nil
}

// DeleteComment removes a comment. Deleting a top-level comment takes its
// replies with it.
func (s *Store) DeleteComment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comments[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.comments, id)
	delete(s.commentLikes, id)
	if rec.parentID == "" {
		for cid, child := range s.comments {
			if child.parentID == id {
				delete(s.comments, cid)
				delete(s.commentLikes, cid)
			}
		}
	}
	return nil
}

// ToggleCommentLike flips the viewer's like and returns the new status.
func (s *Store) ToggleCommentLike(id, userID string) (domain.LikeStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return domain.LikeStatus{}, ErrNotFound
	}
	set := s.commentLikes[id]
	if set == nil {
		set = make(map[string]struct{})
		s.commentLikes[id] = set
	}
	if _, liked := set[userID]; liked {
		delete(set, userID)
		return domain.LikeStatus{Liked: false, LikesCount: len(set)}, nil
	}
	set[userID] = struct{}{}
	return domain.LikeStatus{Liked: true, LikesCount: len(set)}, nil
}

// ModerateComment sets the visibility status of a comment or reply.
func (s *Store) ModerateComment(id, viewerID, status string) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, ErrNotFound
	}
	rec.status = status
	rec.updatedAt = time.Now().UTC()
	return s.snapshotComment(rec, viewerID), nil
}

// snapshotComment fills a comment copy. Replies are attached by the thread
// assembler, not here. Callers hold s.mu.
func (s *Store) snapshotComment(rec *commentRecord, viewerID string) domain.Comment {
	c := domain.Comment{
		ID:        rec.id,
		ArticleID: rec.articleID,
		Content:   rec.content,
		Status:    rec.status,
		Likes:     len(s.commentLikes[rec.id]),
		AuthorID:  rec.authorID,
		Author:    s.publicAuthor(rec.authorID),
		CreatedAt: rec.createdAt,
		UpdatedAt: rec.updatedAt,
	}
	if viewerID != "" {
		_, c.UserLiked = s.commentLikes[rec.id][viewerID]
	}
	return c
}

// snapshotCommentReply fills a reply copy. Callers hold s.mu.
func (s *Store) snapshotCommentReply(rec *commentRecord, viewerID string) domain.CommentReply {
	r := domain.CommentReply{
		ID:        rec.id,
		ParentID:  rec.parentID,
		ArticleID: rec.articleID,
		Content:   rec.content,
		Status:    rec.status,
		Likes:     len(s.commentLikes[rec.id]),
		AuthorID:  rec.authorID,
		Author:    s.publicAuthor(rec.authorID),
		CreatedAt: rec.createdAt,
	}
	if viewerID != "" {
		_, r.UserLiked = s.commentLikes[rec.id][viewerID]
	}
	return r
}
