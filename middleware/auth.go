package middleware

import (
	"errors"
	"net/http"
	"strings"

	"comart-backend/models"
	"comart-backend/repository"
	"comart-backend/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserContextKey is where the authenticated user is stored in the gin context.
const UserContextKey = "user"

// SessionCookieName is the cookie the login handler sets.
const SessionCookieName = "jwt"

// Protect authenticates the request from the session cookie or a bearer
// header and loads the user document into the context.
func Protect(tokens *services.TokenService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookieName)
		if token == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized, token not found"})
			return
		}

		userID, _, err := tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized, invalid token"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized, invalid token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), oid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized"})
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// Authorize restricts a route to the given roles. Must run after Protect.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := CurrentUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized"})
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "This user is not authorized to access this route"})
	}
}

// CurrentUser extracts the authenticated user from the gin context.
func CurrentUser(c *gin.Context) (*models.User, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if user, ok := val.(*models.User); ok {
			return user, nil
		}
	}
	return nil, errors.New("user not found in context")
}
