package server

import (
	"musefeed/internal/middleware"
	"musefeed/internal/notifications"
	"musefeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Content string `json:"content"`
	MediaID *uint  `json:"media_id"`
}

// GetPosts lists every post, newest first (public)
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext(), middleware.CallerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", "posts", posts)
}

// SearchPosts matches posts by content and by attached media name (public)
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	posts, err := s.searchService.Search(c.UserContext(), c.Query("q"), middleware.CallerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", "data", posts)
}

// GetPost returns a single post (public)
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, middleware.CallerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", "post", post)
}

// CreatePost publishes a post by the caller (protected)
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:  middleware.CallerID(c),
		Content: req.Content,
		MediaID: req.MediaID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(ctx, notifications.EventPostCreated, map[string]any{
		"post":       post,
		"created_at": nowStamp(),
	})

	return respondOK(c, fiber.StatusCreated, "Post created successfully", "post", post)
}

// UpdatePost rewrites the content of the caller's post (owner only)
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:  middleware.CallerID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(ctx, notifications.EventPostUpdated, map[string]any{
		"post":       post,
		"updated_at": nowStamp(),
	})

	return respondOK(c, fiber.StatusOK, "Post updated successfully", "post", post)
}

// DeletePost removes the caller's post with its comments and likes (owner only)
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.DeletePost(ctx, service.DeletePostInput{
		UserID: middleware.CallerID(c),
		PostID: postID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(ctx, notifications.EventPostDeleted, map[string]any{
		"post_id":    postID,
		"deleted_at": nowStamp(),
	})

	return respondOK(c, fiber.StatusOK, "Post deleted successfully", "post", post)
}

// ToggleLike likes the post for the caller, or removes an existing like (protected)
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.CallerID(c)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.likeService.ToggleLike(ctx, userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(ctx, notifications.EventPostReactionUpdated, map[string]any{
		"post_id":     postID,
		"user_id":     userID,
		"liked":       result.Liked,
		"likes_count": result.LikesCount,
		"updated_at":  nowStamp(),
	})

	return respondOK(c, fiber.StatusOK, "", "data", result)
}
