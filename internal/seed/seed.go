// Package seed fills a development database with demo users, tracks, posts,
// comments and likes. It is intended for development and testing only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"musefeed/internal/models"
	"musefeed/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls how much data a Seeder produces.
type Options struct {
	Users           int
	Media           int
	Posts           int
	CommentsPerPost int
	// LikeRatio is the chance, per user and post, that the user likes the post.
	LikeRatio float64
	// RandSeed makes generated content reproducible; 0 picks a time-based seed.
	RandSeed int64
}

// DefaultOptions is a small but lively feed.
var DefaultOptions = Options{
	Users:           20,
	Media:           15,
	Posts:           80,
	CommentsPerPost: 3,
	LikeRatio:       0.2,
}

// Result reports what a run created.
type Result struct {
	Users    []*models.User
	Media    []*models.Media
	Posts    []*models.Post
	Comments int
	Likes    int
}

// Seeder writes demo data through the repositories so it goes through the
// same paths as the API.
type Seeder struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	users    repository.UserRepository
	media    repository.MediaRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, randSeed int64) *Seeder {
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	return &Seeder{
		db:       db,
		faker:    gofakeit.New(randSeed),
		users:    repository.NewUserRepository(db),
		media:    repository.NewMediaRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
	}
}

// ClearAll hard-deletes every seeded table, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, model := range []any{&models.Like{}, &models.Comment{}, &models.Post{}, &models.Media{}, &models.User{}} {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run creates users and tracks, then posts with comments and likes spread
// across them.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Users <= 0 {
		return nil, errors.New("seed: at least one user is required")
	}
	res := &Result{}

	for i := 0; i < opts.Users; i++ {
		u := &models.User{
			Username: fmt.Sprintf("%s%d", strings.ToLower(s.faker.Username()), i),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", s.faker.UUID()),
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		res.Users = append(res.Users, u)
	}

	for i := 0; i < opts.Media; i++ {
		m := &models.Media{
			Name:   s.trackName(),
			Artist: s.faker.Name(),
			URL:    s.faker.URL(),
		}
		if err := s.media.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("create media: %w", err)
		}
		res.Media = append(res.Media, m)
	}

	for i := 0; i < opts.Posts; i++ {
		post, err := s.seedPost(ctx, res)
		if err != nil {
			return nil, err
		}
		res.Posts = append(res.Posts, post)

		comments, err := s.seedComments(ctx, res.Users, post, opts.CommentsPerPost)
		if err != nil {
			return nil, err
		}
		res.Comments += comments

		likes, err := s.seedLikes(ctx, res.Users, post, opts.LikeRatio)
		if err != nil {
			return nil, err
		}
		res.Likes += likes
	}

	return res, nil
}

func (s *Seeder) seedPost(ctx context.Context, res *Result) (*models.Post, error) {
	author := res.Users[s.faker.Number(0, len(res.Users)-1)]
	post := &models.Post{
		Content:   s.faker.Sentence(s.faker.Number(4, 14)),
		UserID:    author.ID,
		CreatedAt: time.Now().Add(-time.Duration(s.faker.Number(0, 60*24*30)) * time.Minute),
	}
	// Roughly two posts in three share a track.
	if len(res.Media) > 0 && s.faker.Number(0, 2) > 0 {
		post.MediaID = &res.Media[s.faker.Number(0, len(res.Media)-1)].ID
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*models.User, post *models.Post, perPost int) (int, error) {
	if perPost <= 0 {
		return 0, nil
	}
	n := s.faker.Number(0, perPost)
	for i := 0; i < n; i++ {
		comment := &models.Comment{
			Content: s.faker.Sentence(s.faker.Number(2, 10)),
			UserID:  users[s.faker.Number(0, len(users)-1)].ID,
			PostID:  post.ID,
		}
		if err := s.comments.Create(ctx, comment); err != nil {
			return i, fmt.Errorf("create comment: %w", err)
		}
	}
	return n, nil
}

func (s *Seeder) seedLikes(ctx context.Context, users []*models.User, post *models.Post, ratio float64) (int, error) {
	likes := 0
	for _, u := range users {
		if s.faker.Float64Range(0, 1) >= ratio {
			continue
		}
		if _, _, err := s.posts.ToggleLike(ctx, u.ID, post.ID); err != nil {
			return likes, fmt.Errorf("like post %d: %w", post.ID, err)
		}
		likes++
	}
	return likes, nil
}

func (s *Seeder) trackName() string {
	words := []string{s.faker.Adjective(), s.faker.Noun()}
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
