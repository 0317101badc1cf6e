package handlers

import (
	"net/http"
	"strconv"

	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/service"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowHandler exposes the follow state machine over HTTP. All state
// lives in the follow service; the handler only translates ids and
// envelopes.
type FollowHandler struct {
	followService *service.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followSvc *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followSvc}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.PATCH("/follow-user-request/:targetId", h.FollowUser)
	g.PATCH("/accept-request/:notificationId", h.AcceptRequest)
	g.PATCH("/unfollow-user/:targetId", h.UnfollowUser)
	g.PATCH("/remove-follower/:followerId", h.RemoveFollower)
}

// FollowUser initiates a follow; a private target receives a pending
// request instead of an immediate follow
func (h *FollowHandler) FollowUser(c echo.Context) error {
	senderID := currentUserID(c)
	if senderID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("targetId"))
	if err != nil {
		return apperr.BadRequest("user's id is required to follow that user")
	}

	notification, err := h.followService.Follow(c.Request().Context(), senderID, targetID)
	if err != nil {
		return err
	}

	message := "User followed successfully"
	if notification.Status == models.FollowStatusPending {
		message = "Follow request sent"
	}
	return respond(c, http.StatusOK, echo.Map{"notification": notification}, message)
}

// AcceptRequest confirms a pending follow request addressed to the
// authenticated user
func (h *FollowHandler) AcceptRequest(c echo.Context) error {
	receiverID := currentUserID(c)
	if receiverID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	notificationID, err := strconv.ParseUint(c.Param("notificationId"), 10, 32)
	if err != nil {
		return apperr.BadRequest("notification id is required")
	}

	notification, err := h.followService.AcceptRequest(c.Request().Context(), receiverID, uint(notificationID))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{"notification": notification}, "Follow request accepted successfully")
}

// UnfollowUser removes the authenticated user's follow on the target
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("targetId"))
	if err != nil {
		return apperr.BadRequest("Following ID is required")
	}

	if err := h.followService.Unfollow(c.Request().Context(), userID, targetID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{}, "User unfollowed successfully")
}

// RemoveFollower removes a follower from the authenticated user's account
func (h *FollowHandler) RemoveFollower(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	followerID, err := primitive.ObjectIDFromHex(c.Param("followerId"))
	if err != nil {
		return apperr.BadRequest("Follower ID is required")
	}

	if err := h.followService.RemoveFollower(c.Request().Context(), userID, followerID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{}, "Follower removed successfully")
}
