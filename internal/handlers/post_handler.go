package handlers

import (
	"errors"
	"net/http"

	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"github.com/kinjaldesarla/PostIt/pkg/storage"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxPostImages = 3

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	commentRepository repositories.CommentRepository
	uploader          storage.Uploader
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, commentRepo repositories.CommentRepository, uploader storage.Uploader) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		commentRepository: commentRepo,
		uploader:          uploader,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/create-post", h.CreatePost)
	g.PATCH("/update-caption/:postId", h.UpdateCaption)
	g.DELETE("/delete-post/:postId", h.DeletePost)
	g.GET("/allpost", h.GetAllPosts)
	g.PATCH("/toggle-like-post/:postId", h.ToggleLikePost)
	g.GET("/post/:postId", h.GetSinglePost)
}

// CreatePost creates a post from 1-3 uploaded images and a caption
func (h *PostHandler) CreatePost(c echo.Context) error {
	ownerID := currentUserID(c)
	if ownerID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	caption := c.FormValue("caption")
	if caption == "" {
		return apperr.BadRequest("caption required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperr.BadRequest("At least one photo is required")
	}
	files := form.File["post"]
	if len(files) == 0 {
		return apperr.BadRequest("At least one photo is required")
	}
	if len(files) > maxPostImages {
		return apperr.BadRequest("A post can have at most 3 photos")
	}

	var urls, keys []string
	for _, file := range files {
		url, key, err := h.uploader.Upload(file, "posts")
		if err != nil {
			// clean up what already made it to the bucket
			for _, k := range keys {
				_ = h.uploader.Delete(k)
			}
			return err
		}
		urls = append(urls, url)
		keys = append(keys, key)
	}

	post := &models.Post{
		OwnerID:   ownerID,
		Images:    urls,
		ImageKeys: keys,
		Caption:   caption,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{"newPost": post}, "post created successfully")
}

// UpdateCaption edits a post's caption, owner only
func (h *PostHandler) UpdateCaption(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return apperr.BadRequest("post id is required")
	}

	var req models.UpdateCaptionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("new caption is required to edit")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.getPost(c, postID)
	if err != nil {
		return err
	}
	if post.OwnerID != userID {
		return apperr.Forbidden("You cannot edit someone else's post")
	}

	if err := h.postRepository.UpdateCaption(c.Request().Context(), postID, req.Caption); err != nil {
		return err
	}
	post.Caption = req.Caption
	return respond(c, http.StatusOK, echo.Map{"updatedPost": post}, "post updated successfully")
}

// DeletePost deletes a post and its stored images, owner only
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return apperr.BadRequest("post id is required")
	}

	post, err := h.getPost(c, postID)
	if err != nil {
		return err
	}
	if post.OwnerID != userID {
		return apperr.Forbidden("You cannot delete someone else's post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return err
	}
	for _, key := range post.ImageKeys {
		_ = h.uploader.Delete(key)
	}

	return respond(c, http.StatusOK, echo.Map{}, "Post deleted successfully")
}

// GetAllPosts returns the global feed, newest first. A private owner's post
// is included only when the viewer is the owner or already follows them.
func (h *PostHandler) GetAllPosts(c echo.Context) error {
	viewerID := currentUserID(c)
	if viewerID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	viewer, err := h.userRepository.GetUserByID(c.Request().Context(), viewerID)
	if err != nil {
		return notFoundUser(err)
	}

	posts, err := h.postRepository.GetAllPosts(c.Request().Context())
	if err != nil {
		return err
	}

	owners, err := h.ownersByID(c, posts)
	if err != nil {
		return err
	}

	followingSet := make(map[primitive.ObjectID]bool, len(viewer.Following))
	for _, id := range viewer.Following {
		followingSet[id] = true
	}

	feed := make([]models.FeedPost, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		owner, ok := owners[p.OwnerID]
		if !ok {
			continue
		}
		if owner.IsPrivate && p.OwnerID != viewerID && !followingSet[p.OwnerID] {
			continue
		}
		feed = append(feed, feedPost(p, &owner, viewerID))
	}

	return respond(c, http.StatusOK, echo.Map{"posts": feed}, "Posts fetched successfully")
}

// ToggleLikePost likes the post if the viewer has not liked it yet and
// unlikes it otherwise
func (h *PostHandler) ToggleLikePost(c echo.Context) error {
	userID := currentUserID(c)
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized request")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return apperr.BadRequest("Post id is required")
	}

	post, err := h.getPost(c, postID)
	if err != nil {
		return err
	}

	alreadyLiked := false
	for _, id := range post.Likes {
		if id == userID {
			alreadyLiked = true
			break
		}
	}

	if alreadyLiked {
		err = h.postRepository.RemoveLike(c.Request().Context(), postID, userID)
	} else {
		err = h.postRepository.AddLike(c.Request().Context(), postID, userID)
	}
	if err != nil {
		return err
	}

	message := "Post liked successfully"
	if alreadyLiked {
		message = "Post unliked successfully"
	}
	return respond(c, http.StatusOK, echo.Map{"liked": !alreadyLiked}, message)
}

// GetSinglePost returns one post with its owner and populated comments
func (h *PostHandler) GetSinglePost(c echo.Context) error {
	viewerID := currentUserID(c)
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return apperr.BadRequest("postId is required")
	}

	post, err := h.getPost(c, postID)
	if err != nil {
		return err
	}

	owner, err := h.userRepository.GetUserByID(c.Request().Context(), post.OwnerID)
	if err != nil {
		return notFoundUser(err)
	}

	comments, err := h.commentRepository.GetCommentsByIDs(c.Request().Context(), post.Comments)
	if err != nil {
		return err
	}

	commentOwnerIDs := make([]primitive.ObjectID, 0, len(comments))
	for i := range comments {
		commentOwnerIDs = append(commentOwnerIDs, comments[i].OwnerID)
	}
	commentOwners, err := h.userRepository.GetUsersByIDs(c.Request().Context(), commentOwnerIDs)
	if err != nil {
		return err
	}
	ownerByID := make(map[primitive.ObjectID]models.UserSummary, len(commentOwners))
	for i := range commentOwners {
		ownerByID[commentOwners[i].ID] = commentOwners[i].Summary()
	}

	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		cm := &comments[i]
		liked := false
		for _, id := range cm.Likes {
			if id == viewerID {
				liked = true
				break
			}
		}
		views = append(views, models.CommentView{
			ID:          cm.ID,
			Text:        cm.Text,
			Owner:       ownerByID[cm.OwnerID],
			LikesCount:  len(cm.Likes),
			LikedByUser: liked,
			CreatedAt:   cm.CreatedAt,
		})
	}

	detail := models.PostDetail{
		FeedPost: feedPost(post, owner, viewerID),
		Comments: views,
	}
	return respond(c, http.StatusOK, detail, "Single post fetched successfully")
}

func (h *PostHandler) getPost(c echo.Context, postID primitive.ObjectID) (*models.Post, error) {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, err
	}
	return post, nil
}

func (h *PostHandler) ownersByID(c echo.Context, posts []models.Post) (map[primitive.ObjectID]models.User, error) {
	idSet := make(map[primitive.ObjectID]bool, len(posts))
	ids := make([]primitive.ObjectID, 0, len(posts))
	for i := range posts {
		if !idSet[posts[i].OwnerID] {
			idSet[posts[i].OwnerID] = true
			ids = append(ids, posts[i].OwnerID)
		}
	}
	owners, err := h.userRepository.GetUsersByIDs(c.Request().Context(), ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(owners))
	for i := range owners {
		byID[owners[i].ID] = owners[i]
	}
	return byID, nil
}

func feedPost(post *models.Post, owner *models.User, viewerID primitive.ObjectID) models.FeedPost {
	liked := false
	for _, id := range post.Likes {
		if id == viewerID {
			liked = true
			break
		}
	}
	return models.FeedPost{
		ID:            post.ID,
		Images:        post.Images,
		Caption:       post.Caption,
		Owner:         owner.Summary(),
		LikesCount:    len(post.Likes),
		CommentsCount: len(post.Comments),
		LikedByUser:   liked,
		CreatedAt:     post.CreatedAt,
	}
}
