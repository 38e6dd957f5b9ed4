package service

import (
	"context"
	"errors"
	"testing"

	"musefeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	existsFn          func(context.Context, uint) (bool, error)
	getByIDFn         func(context.Context, uint, uint) (*models.Post, error)
	getOwnedFn        func(context.Context, uint, uint) (*models.Post, error)
	listFn            func(context.Context, uint) ([]*models.Post, error)
	searchByContentFn func(context.Context, string, uint) ([]*models.Post, error)
	listByMediaIDsFn  func(context.Context, []uint, []uint, uint) ([]*models.Post, error)
	updateContentFn   func(context.Context, uint, uint, string) error
	deleteFn          func(context.Context, uint, uint) error
	toggleLikeFn      func(context.Context, uint, uint) (bool, int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetOwned(ctx context.Context, id, ownerID uint) (*models.Post, error) {
	return s.getOwnedFn(ctx, id, ownerID)
}
func (s *postRepoStub) List(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	return s.listFn(ctx, currentUserID)
}
func (s *postRepoStub) SearchByContent(ctx context.Context, q string, currentUserID uint) ([]*models.Post, error) {
	return s.searchByContentFn(ctx, q, currentUserID)
}
func (s *postRepoStub) ListByMediaIDs(ctx context.Context, mediaIDs, excludeIDs []uint, currentUserID uint) ([]*models.Post, error) {
	return s.listByMediaIDsFn(ctx, mediaIDs, excludeIDs, currentUserID)
}
func (s *postRepoStub) UpdateContent(ctx context.Context, id, ownerID uint, content string) error {
	return s.updateContentFn(ctx, id, ownerID, content)
}
func (s *postRepoStub) Delete(ctx context.Context, id, ownerID uint) error {
	return s.deleteFn(ctx, id, ownerID)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (bool, int64, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		existsFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		getOwnedFn: func(_ context.Context, id, ownerID uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: ownerID}, nil
		},
		listFn:            func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		searchByContentFn: func(_ context.Context, _ string, _ uint) ([]*models.Post, error) { return nil, nil },
		listByMediaIDsFn:  func(_ context.Context, _, _ []uint, _ uint) ([]*models.Post, error) { return nil, nil },
		updateContentFn:   func(_ context.Context, _, _ uint, _ string) error { return nil },
		deleteFn:          func(_ context.Context, _, _ uint) error { return nil },
		toggleLikeFn:      func(_ context.Context, _, _ uint) (bool, int64, error) { return true, 1, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	getOwnedFn      func(context.Context, uint, uint) (*models.Comment, error)
	listFn          func(context.Context) ([]*models.Comment, error)
	listByPostFn    func(context.Context, uint) ([]*models.Comment, error)
	updateContentFn func(context.Context, uint, uint, string) error
	deleteFn        func(context.Context, uint, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetOwned(ctx context.Context, id, ownerID uint) (*models.Comment, error) {
	return s.getOwnedFn(ctx, id, ownerID)
}
func (s *commentRepoStub) List(ctx context.Context) ([]*models.Comment, error) {
	return s.listFn(ctx)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id, ownerID uint, content string) error {
	return s.updateContentFn(ctx, id, ownerID, content)
}
func (s *commentRepoStub) Delete(ctx context.Context, id, ownerID uint) error {
	return s.deleteFn(ctx, id, ownerID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		getOwnedFn: func(_ context.Context, id, ownerID uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: ownerID}, nil
		},
		listFn:          func(_ context.Context) ([]*models.Comment, error) { return nil, nil },
		listByPostFn:    func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateContentFn: func(_ context.Context, _, _ uint, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _, _ uint) error { return nil },
	}
}

// mediaRepoStub is a stub for repository.MediaRepository.
type mediaRepoStub struct {
	existsFn    func(context.Context, uint) (bool, error)
	searchIDsFn func(context.Context, string) ([]uint, error)
}

func (s *mediaRepoStub) Create(_ context.Context, _ *models.Media) error { return nil }
func (s *mediaRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *mediaRepoStub) SearchIDsByName(ctx context.Context, q string) ([]uint, error) {
	return s.searchIDsFn(ctx, q)
}

func noopMediaRepo() *mediaRepoStub {
	return &mediaRepoStub{
		existsFn:    func(_ context.Context, _ uint) (bool, error) { return true, nil },
		searchIDsFn: func(_ context.Context, _ string) ([]uint, error) { return nil, nil },
	}
}

var errStore = errors.New("connection refused")

// notFound mimics the repositories' owner-scoped miss.
func notFound[T any](_ context.Context, _, _ uint) (*T, error) {
	return nil, gorm.ErrRecordNotFound
}

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeForbidden)
	assert.ErrorIs(t, err, ErrOwnershipDenied)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeNotFound)
}

func assertInternalError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeInternal)
}
