package handlers

import (
	"net/http"
	"strconv"

	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"github.com/kinjaldesarla/PostIt/internal/service"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler serves the receiver-facing view of the follow-request
// ledger
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	followService          *service.FollowService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, followSvc *service.FollowService) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
		followService:          followSvc,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/:userId", h.GetUserNotifications)
	g.DELETE("/delete-notification/:notificationId", h.RejectRequest)
}

// GetNotifications returns the authenticated user's ledger entries with
// sender profiles attached
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}
	return h.listFor(c, userID)
}

// GetUserNotifications returns another user's ledger entries
func (h *NotificationHandler) GetUserNotifications(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return apperr.BadRequest("userId is required")
	}
	return h.listFor(c, userID)
}

func (h *NotificationHandler) listFor(c echo.Context, recipientID primitive.ObjectID) error {
	notifications, err := h.notificationRepository.GetByRecipientID(c.Request().Context(), recipientID.Hex())
	if err != nil {
		return err
	}

	views, err := h.attachSenders(c, notifications)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"notifications": views}, "notifications fetched")
}

// RejectRequest rejects a pending follow request by deleting the ledger row
func (h *NotificationHandler) RejectRequest(c echo.Context) error {
	receiverID := currentUserID(c)
	if receiverID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	notificationID, err := strconv.ParseUint(c.Param("notificationId"), 10, 32)
	if err != nil {
		return apperr.BadRequest("notification id is required")
	}

	if err := h.followService.RejectRequest(c.Request().Context(), receiverID, uint(notificationID)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{}, "Follow request rejected successfully")
}

// attachSenders batches the sender lookups for a page of notifications
func (h *NotificationHandler) attachSenders(c echo.Context, notifications []models.Notification) ([]models.NotificationView, error) {
	senderIDs := make([]primitive.ObjectID, 0, len(notifications))
	seen := map[string]bool{}
	for i := range notifications {
		hex := notifications[i].SenderID
		if seen[hex] {
			continue
		}
		seen[hex] = true
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			continue
		}
		senderIDs = append(senderIDs, id)
	}

	senders, err := h.userRepository.GetUsersByIDs(c.Request().Context(), senderIDs)
	if err != nil {
		return nil, err
	}
	byHex := make(map[string]models.UserSummary, len(senders))
	for i := range senders {
		byHex[senders[i].ID.Hex()] = senders[i].Summary()
	}

	views := make([]models.NotificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, models.NotificationView{
			Notification: notifications[i],
			Sender:       byHex[notifications[i].SenderID],
		})
	}
	return views, nil
}
