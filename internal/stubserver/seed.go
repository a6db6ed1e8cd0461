package stubserver

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iba200/otaku-wireframe/internal/domain"
)

// SeedPassword signs in every demo account.
const SeedPassword = "sakura123"

// SeedFixtures loads the demo community: a handful of members, a month of
// articles and topics, and enough replies and likes to make listings
// interesting.
func SeedFixtures(s *Store) {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	now := time.Now().UTC()
	daysAgo := func(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }

	s.mu.Lock()
	defer s.mu.Unlock()

	seedUser := func(username, email, role, bio string, points int, active bool, created time.Time) string {
		u := domain.User{
			ID:        uuid.New().String(),
			Username:  username,
			Email:     email,
			Role:      role,
			Points:    points,
			Active:    active,
			CreatedAt: created,
			UpdatedAt: created,
		}
		if bio != "" {
			u.Bio = &bio
		}
		s.insertUser(u, hash)
		return u.ID
	}

	rintarou := seedUser("rintarou", "rintarou@otaku.dev", domain.RoleAdmin, "Runs the place. Mad scientist, allegedly.", 320, true, daysAgo(400))
	makise := seedUser("makise", "makise@otaku.dev", domain.RoleModerator, "Keeps the threads tidy.", 265, true, daysAgo(390))
	daru := seedUser("daru", "daru@otaku.dev", domain.RoleUser, "Super hacker. Ask me about doujin games.", 180, true, daysAgo(360))
	mayuri := seedUser("mayuri", "mayuri@otaku.dev", domain.RoleUser, "Cosplay and crepes.", 95, true, daysAgo(300))
	faris := seedUser("faris", "faris@otaku.dev", domain.RoleUser, "", 60, true, daysAgo(120))
	// Deactivated account, kept around to demo the sign-in rejection.
	seedUser("suzuha", "suzuha@otaku.dev", domain.RoleUser, "", 10, false, daysAgo(90))

	seedArticle := func(author, title, content, category string, views int, created time.Time) string {
		a := domain.Article{
			ID:        uuid.New().String(),
			Title:     title,
			Content:   content,
			Category:  category,
			Views:     views,
			AuthorID:  author,
			CreatedAt: created,
			UpdatedAt: created,
		}
		s.insertArticle(a)
		return a.ID
	}

	artSeason := seedArticle(daru,
		"Winter season first impressions",
		"Three episodes in, here is where every premiere stands. The sleeper hit nobody had on their list is, once again, an adaptation everyone swore was unadaptable.",
		"anime", 412, daysAgo(28))
	artBerserk := seedArticle(makise,
		"Berserk retrospective: the Golden Age arc",
		"Before the eclipse there was camaraderie. Rereading the Golden Age as a complete unit shows how carefully every later tragedy is set up.",
		"manga", 893, daysAgo(21))
	artMecha := seedArticle(rintarou,
		"Top mecha openings, ranked by pure hype",
		"Scientific criteria: brass section, sword catch frame, amount of sky. Results inside.",
		"anime", 655, daysAgo(14))
	artVN := seedArticle(faris,
		"Visual novels worth your backlog, nya",
		"Yes the good ones are 80 hours. No you cannot skip the common route. A starter list for people who keep bouncing off the genre.",
		"games", 238, daysAgo(9))
	seedArticle(daru,
		"Manga paper stock, an unnecessary deep dive",
		"Why your tankobon yellows and the French editions do not. A tour of paper weights, binding glue and the economics behind them.",
		"manga", 121, daysAgo(4))
	seedArticle(mayuri,
		"CRT shaders are not nostalgia, they are color science",
		"Pixel art was authored against phosphor glow and scanline bloom. Flat-panel raw output is the wrong picture, and here is the proof.",
		"games", 301, daysAgo(2))

	seedTopic := func(author, title, content, category string, pinned, locked bool, views int, created time.Time) string {
		t := domain.Topic{
			ID:        uuid.New().String(),
			Title:     title,
			Content:   content,
			Category:  category,
			Pinned:    pinned,
			Locked:    locked,
			Views:     views,
			AuthorID:  author,
			CreatedAt: created,
			UpdatedAt: created,
		}
		s.insertTopic(t)
		return t.ID
	}

	topRules := seedTopic(rintarou,
		"Forum rules, read before posting",
		"Tag spoilers. No scanlation links. Be kind to first-timers, we were all there once.",
		"meta", true, true, 1540, daysAgo(380))
	topWatching := seedTopic(mayuri,
		"What are you watching this week?",
		"Weekly thread. Drop your three episodes and one hot take.",
		"anime", false, false, 720, daysAgo(7))
	topStarter := seedTopic(makise,
		"Manga recommendations for beginners",
		"A friend wants to start reading but bounces off long series. Collecting short, complete works here.",
		"manga", false, false, 410, daysAgo(12))
	topComiket := seedTopic(daru,
		"Anyone going to summer Comiket?",
		"Planning the usual day-one route. Post your circle lists, we can split the map.",
		"conventions", false, false, 189, daysAgo(5))
	seedTopic(faris,
		"Hidden gem games thread, nya",
		"Rules: under 5000 reviews, you actually finished it, no roguelikes (we know about the roguelikes).",
		"games", false, false, 266, daysAgo(10))
	seedTopic(makise,
		"Best anime of the decade, final round",
		"Voting closed. Thread locked until results are tallied, stop DMing me.",
		"anime", false, true, 2103, daysAgo(30))

	seedReply := func(topic, author, content string, created time.Time) {
		s.insertReply(domain.Reply{
			ID:        uuid.New().String(),
			TopicID:   topic,
			Content:   content,
			AuthorID:  author,
			CreatedAt: created,
		})
	}

	seedReply(topWatching, daru, "Three episodes of the mecha one, obviously. The hot take: the CG crowd scenes are fine and you are all cowards.", daysAgo(6))
	seedReply(topWatching, makise, "Rewatching a 90s detective show for the third time. It holds up better than most of this season.", daysAgo(5))
	seedReply(topWatching, faris, "The cooking anime! Nobody is talking about the cooking anime and it is a crime, nya.", daysAgo(3))
	seedReply(topStarter, daru, "A certain 8-volume boxing series. Complete, devastating, perfect first rec.", daysAgo(11))
	seedReply(topStarter, mayuri, "Short slice-of-life anthologies work great too, you can stop anywhere without a cliffhanger.", daysAgo(8))
	seedReply(topComiket, mayuri, "Day one, east hall first. I will bring the cooler bag again.", daysAgo(4))
	seedReply(topRules, makise, "Rules updated: the old spoiler tag syntax is retired, the new one is in the FAQ.", daysAgo(200))

	seedComment := func(article, parent, author, content, status string, created time.Time) string {
		rec := &commentRecord{
			id:        uuid.New().String(),
			articleID: article,
			parentID:  parent,
			authorID:  author,
			content:   content,
			status:    status,
			createdAt: created,
			updatedAt: created,
			seq:       s.nextSeq(),
		}
		s.comments[rec.id] = rec
		return rec.id
	}

	cSeason := seedComment(artSeason, "", makise, "Calling it now: the unadaptable one sweeps the season awards.", domain.CommentVisible, daysAgo(27))
	seedComment(artSeason, cSeason, daru, "Saving this post so I can quote it in April either way.", domain.CommentVisible, daysAgo(27))
	seedComment(artSeason, "", faris, "The premiere chart is missing the cooking anime and I will not let this go, nya.", domain.CommentVisible, daysAgo(26))
	cBerserk := seedComment(artBerserk, "", mayuri, "I read this arc in one sitting and had to go for a long walk after.", domain.CommentVisible, daysAgo(20))
	seedComment(artBerserk, cBerserk, makise, "The walk is mandatory. It is in the reader's contract.", domain.CommentVisible, daysAgo(19))
	seedComment(artBerserk, "", daru, "full spoiler dump of the eclipse, unmarked, because I am built different", domain.CommentHidden, daysAgo(19))
	seedComment(artMecha, "", daru, "No entry from the 80s OVA era in the top three? Bold. Wrong, but bold.", domain.CommentVisible, daysAgo(13))
	seedComment(artVN, "", mayuri, "Bounced off the genre twice, this list finally made one stick. The 80 hours flew by.", domain.CommentVisible, daysAgo(7))

	like := func(set map[string]map[string]struct{}, target string, users ...string) {
		if set[target] == nil {
			set[target] = make(map[string]struct{})
		}
		for _, u := range users {
			set[target][u] = struct{}{}
		}
	}

	like(s.articleLikes, artBerserk, rintarou, daru, mayuri, faris)
	like(s.articleLikes, artSeason, makise, mayuri)
	like(s.articleLikes, artMecha, daru, faris)
	like(s.articleLikes, artVN, mayuri)
	like(s.commentLikes, cSeason, daru, faris)
	like(s.commentLikes, cBerserk, makise, rintarou, daru)
}
