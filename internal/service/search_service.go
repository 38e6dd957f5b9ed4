package service

import (
	"context"
	"strings"

	"musefeed/internal/models"
	"musefeed/internal/observability"
	"musefeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type SearchService struct {
	postRepo  repository.PostRepository
	mediaRepo repository.MediaRepository
}

func NewSearchService(postRepo repository.PostRepository, mediaRepo repository.MediaRepository) *SearchService {
	return &SearchService{postRepo: postRepo, mediaRepo: mediaRepo}
}

// Search returns posts whose content contains query, followed by posts whose
// attached media name contains it. Matching is a case-insensitive literal
// substring match and no post appears twice.
func (s *SearchService) Search(ctx context.Context, query string, currentUserID uint) (posts []*models.Post, err error) {
	query = strings.TrimSpace(query)
	ctx, finish := observability.StartSpan(ctx, "SearchService.Search",
		attribute.String("search.query", query))
	defer func() { finish(err) }()

	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}

	byContent, err := s.postRepo.SearchByContent(ctx, query, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	mediaIDs, err := s.mediaRepo.SearchIDsByName(ctx, query)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var byMedia []*models.Post
	if len(mediaIDs) > 0 {
		byMedia, err = s.postRepo.ListByMediaIDs(ctx, mediaIDs, postIDs(byContent), currentUserID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	observability.SearchResults.WithLabelValues("content").Observe(float64(len(byContent)))
	observability.SearchResults.WithLabelValues("media").Observe(float64(len(byMedia)))

	return mergeUnique(byContent, byMedia), nil
}

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

// mergeUnique concatenates the stages in order, keeping the first occurrence of each id.
func mergeUnique(stages ...[]*models.Post) []*models.Post {
	seen := make(map[uint]struct{})
	out := make([]*models.Post, 0)
	for _, stage := range stages {
		for _, p := range stage {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
