package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowStatus is a viewer's relationship to a target account
type FollowStatus string

const (
	FollowStatusNone      FollowStatus = "none"
	FollowStatusRequested FollowStatus = "requested"
	FollowStatusFollowing FollowStatus = "following"
)

// FollowService owns every mutation of the follower/following membership
// lists and the notification ledger. The two stores are updated as separate
// writes with no transaction across them; the service compensates on
// partial failure and reconciles stale ledger rows on the next follow
// attempt, but a crash mid-sequence can still leave a transient gap.
type FollowService struct {
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
}

// NewFollowService creates a new FollowService
func NewFollowService(users repositories.UserRepository, notifications repositories.NotificationRepository) *FollowService {
	return &FollowService{users: users, notifications: notifications}
}

// ResolveFollowStatus computes the viewer's relationship to the target.
// The membership list is checked before the ledger: a confirmed follower
// may still hold a stale pending row, and the list wins.
func (s *FollowService) ResolveFollowStatus(ctx context.Context, viewerID, targetID primitive.ObjectID) (FollowStatus, error) {
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return FollowStatusNone, err
	}
	return s.resolveAgainst(ctx, viewerID, target)
}

func (s *FollowService) resolveAgainst(ctx context.Context, viewerID primitive.ObjectID, target *models.User) (FollowStatus, error) {
	if containsID(target.Followers, viewerID) {
		return FollowStatusFollowing, nil
	}
	notif, err := s.notifications.FindFollow(ctx, target.ID.Hex(), viewerID.Hex())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return FollowStatusNone, nil
		}
		return FollowStatusNone, err
	}
	if notif.Status == models.FollowStatusPending {
		return FollowStatusRequested, nil
	}
	return FollowStatusNone, nil
}

// Follow initiates a follow from sender to target. A private target gets a
// pending ledger row and no membership change; a public target gets the
// membership established immediately plus an accepted row as a record of
// the event. An accepted row left behind by an earlier unfollow is deleted
// before re-following.
func (s *FollowService) Follow(ctx context.Context, senderID, targetID primitive.ObjectID) (*models.Notification, error) {
	if senderID == targetID {
		return nil, apperr.BadRequest("you can not follow yourself")
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, userLookupError(err)
	}
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, userLookupError(err)
	}

	if containsID(target.Followers, sender.ID) {
		return nil, apperr.BadRequest("Already following this user")
	}

	existing, err := s.notifications.FindFollow(ctx, target.ID.Hex(), sender.ID.Hex())
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.FollowStatusPending {
			return nil, apperr.BadRequest("Follow request already sent and pending")
		}
		// An accepted row with no matching membership means the sender
		// unfollowed earlier and the ledger was not cleaned up. Drop the
		// stale row and fall through to a fresh follow.
		if err := s.notifications.DeleteByID(ctx, existing.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}

	notification := &models.Notification{
		RecipientID: target.ID.Hex(),
		SenderID:    sender.ID.Hex(),
		Type:        models.NotificationTypeFollow,
	}

	if target.IsPrivate {
		notification.Status = models.FollowStatusPending
		if err := s.notifications.CreateNotification(ctx, notification); err != nil {
			return nil, err
		}
		return notification, nil
	}

	if err := s.addMembership(ctx, sender.ID, target.ID); err != nil {
		return nil, err
	}
	notification.Status = models.FollowStatusAccepted
	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// AcceptRequest confirms a pending follow request addressed to receiverID,
// establishing membership in both directions and flipping the ledger row
// to accepted.
func (s *FollowService) AcceptRequest(ctx context.Context, receiverID primitive.ObjectID, notificationID uint) (*models.Notification, error) {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("follow request not found or already handled")
		}
		return nil, err
	}
	if notification.Type != models.NotificationTypeFollow || notification.Status != models.FollowStatusPending {
		return nil, apperr.NotFound("follow request not found or already handled")
	}
	if notification.RecipientID != receiverID.Hex() {
		return nil, apperr.Forbidden("You are not authorized to accept this request")
	}

	senderID, err := primitive.ObjectIDFromHex(notification.SenderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender id on notification %d: %w", notification.ID, err)
	}
	if _, err := s.users.GetUserByID(ctx, senderID); err != nil {
		return nil, userLookupError(err)
	}

	if err := s.addMembership(ctx, senderID, receiverID); err != nil {
		return nil, err
	}
	if err := s.notifications.UpdateStatus(ctx, notification.ID, models.FollowStatusAccepted); err != nil {
		return nil, err
	}
	notification.Status = models.FollowStatusAccepted
	return notification, nil
}

// RejectRequest deletes a pending follow request addressed to receiverID
func (s *FollowService) RejectRequest(ctx context.Context, receiverID primitive.ObjectID, notificationID uint) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("notification not found or already handled")
		}
		return err
	}
	if notification.Type != models.NotificationTypeFollow || notification.Status != models.FollowStatusPending {
		return apperr.NotFound("notification not found or already handled")
	}
	if notification.RecipientID != receiverID.Hex() {
		return apperr.Forbidden("You are not authorized to reject this request")
	}
	return s.notifications.DeleteByID(ctx, notification.ID)
}

// Unfollow removes userID's membership on targetID and deletes the ledger
// row for the pair
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID primitive.ObjectID) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return userLookupError(err)
	}
	if !containsID(user.Following, targetID) {
		return apperr.BadRequest("You are not following this user")
	}
	if err := s.removeMembership(ctx, userID, targetID); err != nil {
		return err
	}
	return s.notifications.DeleteFollow(ctx, targetID.Hex(), userID.Hex())
}

// RemoveFollower removes followerID from userID's followers and deletes the
// ledger row for the pair
func (s *FollowService) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return userLookupError(err)
	}
	if !containsID(user.Followers, followerID) {
		return apperr.BadRequest("This user is not your follower")
	}
	if err := s.removeMembership(ctx, followerID, userID); err != nil {
		return err
	}
	return s.notifications.DeleteFollow(ctx, userID.Hex(), followerID.Hex())
}

// CanView reports whether the viewer may see the target's posts and
// follower/following lists
func (s *FollowService) CanView(viewerID primitive.ObjectID, target *models.User) bool {
	if !target.IsPrivate {
		return true
	}
	if viewerID == target.ID {
		return true
	}
	return containsID(target.Followers, viewerID)
}

// addMembership establishes follower/following symmetry for a confirmed
// follow: followerID appears in followee.Followers and followeeID in
// follower.Following. The two writes are independent; if the second fails
// the first is rolled back so the lists never disagree permanently.
func (s *FollowService) addMembership(ctx context.Context, followerID, followeeID primitive.ObjectID) error {
	if err := s.users.AddFollower(ctx, followeeID, followerID); err != nil {
		return userLookupError(err)
	}
	if err := s.users.AddFollowing(ctx, followerID, followeeID); err != nil {
		// compensate so a half-written follow does not survive
		_ = s.users.RemoveFollower(ctx, followeeID, followerID)
		return userLookupError(err)
	}
	return nil
}

// removeMembership is the inverse of addMembership with the same
// compensation rule
func (s *FollowService) removeMembership(ctx context.Context, followerID, followeeID primitive.ObjectID) error {
	if err := s.users.RemoveFollower(ctx, followeeID, followerID); err != nil {
		return userLookupError(err)
	}
	if err := s.users.RemoveFollowing(ctx, followerID, followeeID); err != nil {
		_ = s.users.AddFollower(ctx, followeeID, followerID)
		return userLookupError(err)
	}
	return nil
}

func userLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	return err
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
