package service

import (
	"context"
	"errors"

	"musefeed/internal/models"
	"musefeed/internal/observability"
	"musefeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type PostService struct {
	postRepo  repository.PostRepository
	mediaRepo repository.MediaRepository
}

type CreatePostInput struct {
	UserID  uint
	Content string `validate:"notblank,max=10000"`
	MediaID *uint  `validate:"omitempty,gt=0"`
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint   `validate:"gt=0"`
	Content string `validate:"notblank,max=10000"`
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository, mediaRepo repository.MediaRepository) *PostService {
	return &PostService{
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
	}
}

// CreatePost stores a post authored by the caller. Only references to the
// author and media are stored; both are resolved on read.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, finish := observability.StartSpan(ctx, "PostService.CreatePost")
	defer func() { finish(err) }()

	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.MediaID != nil {
		exists, err := s.mediaRepo.Exists(ctx, *in.MediaID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if !exists {
			return nil, models.NewNotFoundError("Media", *in.MediaID)
		}
	}

	post = &models.Post{
		Content: in.Content,
		UserID:  in.UserID,
		MediaID: in.MediaID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	created, err := s.postRepo.GetByID(ctx, post.ID, in.UserID)
	return created, storeError(err, "Post", post.ID)
}

// ListPosts returns every post, newest first, with references resolved.
func (s *PostService) ListPosts(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, storeError(err, "Post", id)
	}
	return post, nil
}

// UpdatePost rewrites the caller's post content. A post the caller does not
// own is reported as not found.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	ctx, finish := observability.StartSpan(ctx, "PostService.UpdatePost",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { finish(err) }()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := verifyOwnership(ctx, "post", s.postRepo.GetOwned, in.PostID, in.UserID); err != nil {
		return nil, hideDenial(err, in.PostID)
	}

	if err := s.postRepo.UpdateContent(ctx, in.PostID, in.UserID, in.Content); err != nil {
		return nil, storeError(err, "Post", in.PostID)
	}

	updated, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	return updated, storeError(err, "Post", in.PostID)
}

// DeletePost removes the caller's post together with its comments and likes
// and returns the post as it was before removal.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (post *models.Post, err error) {
	ctx, finish := observability.StartSpan(ctx, "PostService.DeletePost",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { finish(err) }()

	if _, err := verifyOwnership(ctx, "post", s.postRepo.GetOwned, in.PostID, in.UserID); err != nil {
		return nil, hideDenial(err, in.PostID)
	}

	post, err = s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, storeError(err, "Post", in.PostID)
	}

	if err := s.postRepo.Delete(ctx, in.PostID, in.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	return post, nil
}

// hideDenial reports an ownership denial on a post as NOT_FOUND.
func hideDenial(err error, postID uint) error {
	if errors.Is(err, ErrOwnershipDenied) {
		return models.NewNotFoundError("Post", postID)
	}
	return err
}
