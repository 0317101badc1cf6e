package handlers

import (
	"errors"
	"net/http"

	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/add-comment/:postId", h.AddComment)
	g.DELETE("/delete-comment/:commentId", h.DeleteComment)
	g.PATCH("/toggle-like-comment/:commentId", h.ToggleLikeComment)
}

// AddComment creates a comment and pushes its id onto the parent post
func (h *CommentHandler) AddComment(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return apperr.BadRequest("Post ID is required")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("Comment text is required")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("Post not found")
		}
		return err
	}

	comment := &models.Comment{
		PostID:  postID,
		OwnerID: userID,
		Text:    req.Text,
	}
	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return err
	}
	if err := h.postRepository.AddComment(c.Request().Context(), postID, comment.ID); err != nil {
		return err
	}

	owner, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return notFoundUser(err)
	}

	view := models.CommentView{
		ID:        comment.ID,
		Text:      comment.Text,
		Owner:     owner.Summary(),
		CreatedAt: comment.CreatedAt,
	}
	return respond(c, http.StatusOK, echo.Map{"newComment": view}, "Comment added successfully")
}

// DeleteComment deletes a comment, owner only, and pulls its id from the
// parent post's comment list
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		return apperr.BadRequest("Comment ID is required")
	}

	comment, err := h.getComment(c, commentID)
	if err != nil {
		return err
	}
	if comment.OwnerID != userID {
		return apperr.Forbidden("You can delete only your own comment")
	}

	if err := h.postRepository.RemoveComment(c.Request().Context(), comment.PostID, commentID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if err := h.commentRepository.DeleteComment(c.Request().Context(), commentID); err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{}, "Comment deleted successfully")
}

// ToggleLikeComment likes the comment if the viewer has not liked it yet
// and unlikes it otherwise
func (h *CommentHandler) ToggleLikeComment(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		return apperr.BadRequest("Comment ID is required")
	}

	comment, err := h.getComment(c, commentID)
	if err != nil {
		return err
	}

	alreadyLiked := false
	for _, id := range comment.Likes {
		if id == userID {
			alreadyLiked = true
			break
		}
	}

	likesCount := len(comment.Likes)
	if alreadyLiked {
		err = h.commentRepository.RemoveLike(c.Request().Context(), commentID, userID)
		likesCount--
	} else {
		err = h.commentRepository.AddLike(c.Request().Context(), commentID, userID)
		likesCount++
	}
	if err != nil {
		return err
	}

	message := "Comment liked successfully"
	if alreadyLiked {
		message = "Comment unliked successfully"
	}
	return respond(c, http.StatusOK, echo.Map{
		"likesCount":  likesCount,
		"likedByUser": !alreadyLiked,
	}, message)
}

func (h *CommentHandler) getComment(c echo.Context, commentID primitive.ObjectID) (*models.Comment, error) {
	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Comment not found")
		}
		return nil, err
	}
	return comment, nil
}
