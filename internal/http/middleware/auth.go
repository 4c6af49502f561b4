package middleware

import (
	"errors"
	"net/http"
	"strings"

	"task_manager/internal/domain"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// TokenVerifier turns a bearer token into the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// verified identity on the gin context.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortError(c, http.StatusUnauthorized, "MISSING_TOKEN", domain.ErrMissingToken.Error())
			return
		}

		id, err := v.Verify(token)
		if err != nil {
			// expired, tampered and malformed tokens all look the same to the client
			abortError(c, http.StatusUnauthorized, "INVALID_TOKEN", domain.ErrInvalidToken.Error())
			return
		}

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(withUserID(c.Request.Context(), id.UserID))
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.Join(domain.ErrMissingToken, errors.New("authorization scheme must be Bearer"))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}
