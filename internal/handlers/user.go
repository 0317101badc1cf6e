package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"github.com/kinjaldesarla/PostIt/internal/service"
	"github.com/kinjaldesarla/PostIt/pkg/storage"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
	followService  *service.FollowService
	uploader       storage.Uploader
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, followSvc *service.FollowService, uploader storage.Uploader) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		postRepository: postRepo,
		followService:  followSvc,
		uploader:       uploader,
	}
}

// RegisterProfileRoutes registers profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PATCH("/edit-profile", h.EditProfile)
	g.PATCH("/change-password", h.ChangePassword)
	g.GET("/search", h.SearchUsers)
	g.GET("/search-user/:targetId", h.GetSearchUserProfile)
	g.GET("/profile-follower-following/:userId", h.GetFollowersFollowing)
}

// GetProfile retrieves the authenticated user's own profile with their
// post grid
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return notFoundUser(err)
	}

	posts, err := h.postRepository.GetPostsByOwner(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{
		"profile":   h.profileView(c, user),
		"posts":     postGrid(posts, userID),
		"totalPost": len(posts),
	}, "user profile fetched successfully")
}

// EditProfile updates the authenticated user's profile. An uploaded
// profilePhoto replaces the previous one in blob storage.
func (h *UserHandler) EditProfile(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return notFoundUser(err)
	}

	if req.Fullname != "" {
		user.Fullname = req.Fullname
	}
	if req.Username != "" {
		user.Username = normalizeUsername(req.Username)
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.IsPrivate != nil {
		user.IsPrivate = *req.IsPrivate
	}

	if file, err := c.FormFile("profilePhoto"); err == nil {
		url, key, err := h.uploader.Upload(file, "profiles")
		if err != nil {
			return err
		}
		if user.ProfilePhotoKey != "" {
			// best effort, a dangling object is harmless
			_ = h.uploader.Delete(user.ProfilePhotoKey)
		}
		user.ProfilePhoto = url
		user.ProfilePhotoKey = key
	}

	if err := h.userRepository.UpdateProfile(c.Request().Context(), user); err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{"user": user}, "user profile updated")
}

// ChangePassword replaces the authenticated user's password
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return notFoundUser(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return apperr.BadRequest("password is incorrect")
	}
	if !validPassword(req.NewPassword) {
		return apperr.BadRequest(passwordPolicyMessage)
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperr.BadRequest("new and confirm password are not same")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := h.userRepository.UpdatePassword(c.Request().Context(), userID, string(hashed)); err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{}, "password changed successfully")
}

// SearchUsers searches usernames
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return apperr.BadRequest("Search query is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return err
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return respond(c, http.StatusOK, echo.Map{"users": summaries}, "Users fetched successfully")
}

// GetSearchUserProfile retrieves another user's profile. The post grid and
// follower/following lists are withheld from viewers the visibility gate
// rejects.
func (h *UserHandler) GetSearchUserProfile(c echo.Context) error {
	viewerID := currentUserID(c)
	targetID, err := primitive.ObjectIDFromHex(c.Param("targetId"))
	if err != nil {
		return apperr.BadRequest("user id is required")
	}

	target, err := h.userRepository.GetUserByID(c.Request().Context(), targetID)
	if err != nil {
		return notFoundUser(err)
	}

	followStatus, err := h.followService.ResolveFollowStatus(c.Request().Context(), viewerID, targetID)
	if err != nil {
		return err
	}

	if !h.followService.CanView(viewerID, target) {
		return respond(c, http.StatusOK, echo.Map{
			"profile":      restrictedProfile(target),
			"followStatus": followStatus,
			"posts":        []models.FeedPost{},
			"totalPost":    0,
		}, "This account is private")
	}

	posts, err := h.postRepository.GetPostsByOwner(c.Request().Context(), target.ID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{
		"profile":      h.profileView(c, target),
		"followStatus": followStatus,
		"posts":        postGrid(posts, viewerID),
		"totalPost":    len(posts),
	}, "user profile fetched successfully")
}

// GetFollowersFollowing returns a user's populated follower and following
// lists, gated for private accounts
func (h *UserHandler) GetFollowersFollowing(c echo.Context) error {
	viewerID := currentUserID(c)
	targetID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return apperr.BadRequest("User ID is required")
	}

	target, err := h.userRepository.GetUserByID(c.Request().Context(), targetID)
	if err != nil {
		return notFoundUser(err)
	}

	if !h.followService.CanView(viewerID, target) {
		return apperr.Forbidden("This account is private")
	}

	followers, err := h.summaries(c, target.Followers)
	if err != nil {
		return err
	}
	following, err := h.summaries(c, target.Following)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{
		"followers":      followers,
		"following":      following,
		"followersCount": len(followers),
		"followingCount": len(following),
	}, "Followers and following fetched successfully")
}

// profileView attaches populated follower/following summaries to a user
func (h *UserHandler) profileView(c echo.Context, user *models.User) echo.Map {
	followers, err := h.summaries(c, user.Followers)
	if err != nil {
		followers = []models.UserSummary{}
	}
	following, err := h.summaries(c, user.Following)
	if err != nil {
		following = []models.UserSummary{}
	}
	return echo.Map{
		"id":             user.ID,
		"fullname":       user.Fullname,
		"username":       user.Username,
		"bio":            user.Bio,
		"profile_photo":  user.ProfilePhoto,
		"is_private":     user.IsPrivate,
		"followers":      followers,
		"following":      following,
		"followersCount": len(user.Followers),
		"followingCount": len(user.Following),
	}
}

func (h *UserHandler) summaries(c echo.Context, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	users, err := h.userRepository.GetUsersByIDs(c.Request().Context(), ids)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}

func restrictedProfile(user *models.User) echo.Map {
	return echo.Map{
		"id":             user.ID,
		"fullname":       user.Fullname,
		"username":       user.Username,
		"bio":            user.Bio,
		"profile_photo":  user.ProfilePhoto,
		"is_private":     user.IsPrivate,
		"followersCount": len(user.Followers),
		"followingCount": len(user.Following),
	}
}

// postGrid projects posts for a profile grid, with like state relative to
// the viewer
func postGrid(posts []models.Post, viewerID primitive.ObjectID) []echo.Map {
	grid := make([]echo.Map, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		liked := false
		for _, id := range p.Likes {
			if id == viewerID {
				liked = true
				break
			}
		}
		grid = append(grid, echo.Map{
			"id":             p.ID,
			"images":         p.Images,
			"caption":        p.Caption,
			"likes_count":    len(p.Likes),
			"comments_count": len(p.Comments),
			"liked_by_user":  liked,
			"created_at":     p.CreatedAt,
		})
	}
	return grid
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func notFoundUser(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	return err
}
