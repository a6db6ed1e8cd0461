package stubserver

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iba200/otaku-wireframe/internal/api"
	"github.com/iba200/otaku-wireframe/internal/config"
	"github.com/iba200/otaku-wireframe/internal/domain"
	"github.com/iba200/otaku-wireframe/internal/tokenstore"
)

// These tests drive the real API client against the stub backend over HTTP,
// so the two sides cannot drift apart on paths, envelopes or the token
// handshake.

func newClientPair(t *testing.T) (*api.Client, *tokenstore.Store, *Server) {
	t.Helper()
	srv := New(&config.StubConfig{
		Port:       "0",
		JWTSecret:  "integration-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	tokens := tokenstore.New(filepath.Join(t.TempDir(), "tokens.json"))
	client, err := api.NewClient(ts.URL, 5*time.Second, tokens, nil)
	require.NoError(t, err)
	return client, tokens, srv
}

func TestClientAgainstStub(t *testing.T) {
	client, tokens, srv := newClientPair(t)
	ctx := context.Background()

	result, err := client.Auth.Register(ctx, api.RegisterRequest{
		Username: "hashida",
		Email:    "hashida@example.com",
		Password: "el-psy-kongroo",
	})
	require.NoError(t, err)
	require.NoError(t, tokens.Save(result.AccessToken, result.RefreshToken))

	me, err := client.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, me.ID)
	assert.Equal(t, "hashida@example.com", me.Email)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, api.Version, health.Version)

	article, err := client.Articles.Create(ctx, api.ArticleRequest{
		Title:    "Doujin games you slept on",
		Content:  "A tour of the indie booths nobody lines up for.",
		Category: "games",
	})
	require.NoError(t, err)
	require.NotEmpty(t, article.ID)

	listed, page, err := client.Articles.List(ctx, api.ListOptions{Category: "games"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, article.ID, listed[0].ID)

	status, err := client.Articles.Like(ctx, article.ID)
	require.NoError(t, err)
	assert.True(t, status.Liked)
	assert.Equal(t, 1, status.LikesCount)

	comment, err := client.Comments.Create(ctx, api.CommentRequest{
		ArticleID: article.ID,
		Content:   "Booth map or it did not happen.",
	})
	require.NoError(t, err)
	reply, err := client.Comments.ReplyTo(ctx, comment.ID, api.MessageRequest{Content: "Attached in the article."})
	require.NoError(t, err)
	assert.Equal(t, comment.ID, reply.ParentID)

	threads, err := client.Comments.ForArticle(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Replies, 1)

	topic, err := client.Forum.CreateTopic(ctx, api.TopicRequest{
		Title:    "Comiket loot thread",
		Content:  "Post your haul.",
		Category: "conventions",
	})
	require.NoError(t, err)
	_, err = client.Forum.Reply(ctx, topic.ID, api.MessageRequest{Content: "Three tote bags. No regrets."})
	require.NoError(t, err)

	gotTopic, replies, err := client.Forum.Topic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotTopic.RepliesCount)
	require.Len(t, replies, 1)
	assert.Equal(t, "Three tote bags. No regrets.", replies[0].Content)

	categories, err := client.Forum.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "conventions", categories[0].Name)

	// Promotion takes effect on the next request; roles are read from the
	// store, not baked into the token.
	role := domain.RoleModerator
	_, err = srv.Store().UpdateProfile(result.User.ID, ProfileUpdate{Role: &role})
	require.NoError(t, err)

	moderated, err := client.Comments.Moderate(ctx, comment.ID, api.ModerateRequest{Action: api.ModerateHide})
	require.NoError(t, err)
	assert.Equal(t, domain.CommentHidden, moderated.Status)
}

func TestClientRefreshAgainstStub(t *testing.T) {
	client, tokens, _ := newClientPair(t)
	ctx := context.Background()

	result, err := client.Auth.Register(ctx, api.RegisterRequest{
		Username: "amane",
		Email:    "amane@example.com",
		Password: "el-psy-kongroo",
	})
	require.NoError(t, err)
	require.NoError(t, tokens.Save(result.AccessToken, result.RefreshToken))

	t.Run("stale access token is refreshed and the call replayed", func(t *testing.T) {
		require.NoError(t, tokens.Save("tampered-access-token", result.RefreshToken))

		me, err := client.Auth.Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, me.ID)

		access, refresh, err := tokens.Load()
		require.NoError(t, err)
		assert.NotEqual(t, "tampered-access-token", access, "the refreshed access token is persisted")
		assert.NotEqual(t, result.RefreshToken, refresh, "the rotated refresh token is persisted")
		assert.NotEmpty(t, refresh)
	})

	t.Run("dead refresh token ends the session", func(t *testing.T) {
		require.NoError(t, tokens.Save("tampered-access-token", "bogus-refresh-token"))

		_, err := client.Auth.Me(ctx)
		require.ErrorIs(t, err, api.ErrSessionExpired)

		access, refresh, err := tokens.Load()
		require.NoError(t, err)
		assert.Empty(t, access)
		assert.Empty(t, refresh)
	})
}
