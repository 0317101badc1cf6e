package handlers

import (
	"errors"
	"net/http"

	"github.com/kinjaldesarla/PostIt/internal/apperr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApiResponse is the success envelope every endpoint returns
type ApiResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

func respond(c echo.Context, statusCode int, data interface{}, message string) error {
	return c.JSON(statusCode, ApiResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	})
}

// HTTPErrorHandler maps tagged application errors to {message} with their
// status code; anything untagged becomes a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		_ = c.JSON(appErr.Code, echo.Map{"message": appErr.Message})
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = c.JSON(httpErr.Code, echo.Map{"message": httpErr.Message})
		return
	}

	c.Logger().Error(err)
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal Server Error"})
}

// currentUserID returns the authenticated user's id set by the JWT
// middleware, or the zero ObjectID when the request is unauthenticated.
func currentUserID(c echo.Context) primitive.ObjectID {
	raw, ok := c.Get("userID").(string)
	if !ok {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}
