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

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint   `validate:"gt=0"`
	Content string `validate:"notblank,max=10000"`
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint   `validate:"gt=0"`
	Content   string `validate:"notblank,max=10000"`
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment attaches a comment by the caller to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, finish := observability.StartSpan(ctx, "CommentService.CreateComment",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { finish(err) }()

	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, in.PostID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	comment = &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	return created, storeError(err, "Comment", comment.ID)
}

// ListComments returns every comment with author and post resolved.
func (s *CommentService) ListComments(ctx context.Context) ([]*models.Comment, error) {
	comments, err := s.commentRepo.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListCommentsByPost returns the post's comments; an unknown post yields an empty list.
func (s *CommentService) ListCommentsByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (comment *models.Comment, err error) {
	ctx, finish := observability.StartSpan(ctx, "CommentService.UpdateComment",
		attribute.Int64("comment.id", int64(in.CommentID)))
	defer func() { finish(err) }()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := verifyOwnership(ctx, "comment", s.commentRepo.GetOwned, in.CommentID, in.UserID); err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateContent(ctx, in.CommentID, in.UserID, in.Content); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, denied("comment")
		}
		return nil, models.NewInternalError(err)
	}

	updated, err := s.commentRepo.GetByID(ctx, in.CommentID)
	return updated, storeError(err, "Comment", in.CommentID)
}

// DeleteComment removes the caller's comment and returns the removed record.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (comment *models.Comment, err error) {
	ctx, finish := observability.StartSpan(ctx, "CommentService.DeleteComment",
		attribute.Int64("comment.id", int64(in.CommentID)))
	defer func() { finish(err) }()

	comment, err = verifyOwnership(ctx, "comment", s.commentRepo.GetOwned, in.CommentID, in.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID, in.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, denied("comment")
		}
		return nil, models.NewInternalError(err)
	}

	return comment, nil
}
