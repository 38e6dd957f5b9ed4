package service

import (
	"context"

	"musefeed/internal/models"
	"musefeed/internal/observability"
	"musefeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type LikeService struct {
	postRepo repository.PostRepository
}

// ToggleLikeResult is the post after the toggle together with the caller's
// resulting membership and the size of the liked-by set.
type ToggleLikeResult struct {
	Post       *models.Post `json:"post"`
	Liked      bool         `json:"liked"`
	LikesCount int64        `json:"likes_count"`
}

func NewLikeService(postRepo repository.PostRepository) *LikeService {
	return &LikeService{postRepo: postRepo}
}

// ToggleLike adds the caller to the post's liked-by set, or removes them if
// already present, as one atomic step.
func (s *LikeService) ToggleLike(ctx context.Context, userID, postID uint) (res *ToggleLikeResult, err error) {
	ctx, finish := observability.StartSpan(ctx, "LikeService.ToggleLike",
		attribute.Int64("post.id", int64(postID)))
	defer func() { finish(err) }()

	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	liked, count, err := s.postRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, storeError(err, "Post", postID)
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	observability.LikeToggles.WithLabelValues(state).Inc()

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, storeError(err, "Post", postID)
	}

	return &ToggleLikeResult{Post: post, Liked: liked, LikesCount: count}, nil
}
