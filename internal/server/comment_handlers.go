package server

import (
	"musefeed/internal/middleware"
	"musefeed/internal/notifications"
	"musefeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetComments lists every comment with author and post resolved (public)
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListComments(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", "comments", comments)
}

// GetPostComments lists the comments of one post (public)
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListCommentsByPost(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", "comments", comments)
}

// CreateComment creates a comment on a post (protected)
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	created, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID:  middleware.CallerID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(ctx, notifications.EventCommentCreated, map[string]any{
		"post_id":    postID,
		"comment":    created,
		"created_at": nowStamp(),
	})

	return respondOK(c, fiber.StatusCreated, "Comment created successfully", "comment", created)
}

// UpdateComment updates a comment (owner only)
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	updated, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    middleware.CallerID(c),
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(ctx, notifications.EventCommentUpdated, map[string]any{
		"post_id":    updated.PostID,
		"comment":    updated,
		"updated_at": nowStamp(),
	})

	return respondOK(c, fiber.StatusOK, "Comment updated successfully", "comment", updated)
}

// DeleteComment deletes a comment (owner only)
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	deleted, err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    middleware.CallerID(c),
		CommentID: commentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(ctx, notifications.EventCommentDeleted, map[string]any{
		"post_id":    deleted.PostID,
		"comment_id": commentID,
		"deleted_at": nowStamp(),
	})

	return respondOK(c, fiber.StatusOK, "Comment deleted successfully", "comment", deleted)
}
