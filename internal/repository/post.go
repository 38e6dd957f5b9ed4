// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"musefeed/internal/models"
	"musefeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Exists(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetOwned(ctx context.Context, id, ownerID uint) (*models.Post, error)
	List(ctx context.Context, currentUserID uint) ([]*models.Post, error)
	SearchByContent(ctx context.Context, query string, currentUserID uint) ([]*models.Post, error)
	ListByMediaIDs(ctx context.Context, mediaIDs, excludeIDs []uint, currentUserID uint) ([]*models.Post, error)
	UpdateContent(ctx context.Context, id, ownerID uint, content string) error
	Delete(ctx context.Context, id, ownerID uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (liked bool, likesCount int64, err error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogWrite(ctx, "create", map[string]any{"post_id": post.ID, "author_id": post.UserID})
	return nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	defer observability.TrackQuery("exists", "posts")()
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "posts")()
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Media").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetOwned is the single-lookup ownership check: absent and foreign rows are
// both reported as gorm.ErrRecordNotFound.
func (r *postRepository) GetOwned(ctx context.Context, id, ownerID uint) (*models.Post, error) {
	defer observability.TrackQuery("get_owned", "posts")()
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Media").
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	return posts, err
}

// SearchByContent matches query as a literal, case-insensitive substring of the content.
func (r *postRepository) SearchByContent(ctx context.Context, query string, currentUserID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("search_content", "posts")()
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Media").
		Where(`LOWER(posts.content) LIKE ? ESCAPE '\'`, ContainsPattern(query)).
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByMediaIDs(ctx context.Context, mediaIDs, excludeIDs []uint, currentUserID uint) ([]*models.Post, error) {
	if len(mediaIDs) == 0 {
		return nil, nil
	}
	defer observability.TrackQuery("list_by_media", "posts")()
	var posts []*models.Post
	q := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Media").
		Where("posts.media_id IN ?", mediaIDs)
	if len(excludeIDs) > 0 {
		q = q.Where("posts.id NOT IN ?", excludeIDs)
	}
	err := q.Order("posts.created_at DESC, posts.id DESC").Find(&posts).Error
	return posts, err
}

// UpdateContent rewrites the content only while the row still belongs to ownerID.
func (r *postRepository) UpdateContent(ctx context.Context, id, ownerID uint, content string) error {
	defer observability.TrackQuery("update", "posts")()
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("content", content)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "update")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.log.LogWrite(ctx, "update", map[string]any{"post_id": id})
	return nil
}

// Delete soft-deletes the post only while it still belongs to ownerID and
// drops its comments and likes in the same transaction.
func (r *postRepository) Delete(ctx context.Context, id, ownerID uint) error {
	defer observability.TrackQuery("delete", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("post_id = ?", id).Delete(&models.Like{}).Error
	})
	if err != nil {
		return err
	}
	r.log.LogWrite(ctx, "delete", map[string]any{"post_id": id})
	return nil
}

// ToggleLike flips userID's membership in the post's liked-by set atomically.
// The post row is locked for the duration so concurrent toggles serialize.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, int64, error) {
	defer observability.TrackQuery("toggle_like", "likes")()
	var (
		liked bool
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&post, postID).Error; err != nil {
			return err
		}

		removed := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			liked = true
		}

		return tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	r.log.LogWrite(ctx, "toggle_like", map[string]any{"post_id": postID, "liked": liked, "likes_count": count})
	return liked, count, nil
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern lowercases q and wraps it for a LIKE ... ESCAPE '\' substring match.
func ContainsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}
