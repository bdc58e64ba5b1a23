package handlers

import (
	"errors"
	"net/http"
	"strings"

	"task_manager"
	"task_manager/internal/policy"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxSession   = "session"
	ctxPrincipal = "principal"

	msgUnauthenticated = "Unauthenticated."
)

var errNoBearer = errors.New("missing bearer token")

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", errNoBearer
	}
	return strings.TrimSpace(parts[1]), nil
}

// authMiddleware rejects the request with 401 unless it carries a live token.
func (h *Handler) authMiddleware(c *gin.Context) {
	token, err := bearerToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, task_manager.ErrorResponse{Message: msgUnauthenticated})
		return
	}

	sess, err := h.services.Auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthenticated) {
			h.logAndJSONError(c, http.StatusInternalServerError, msgServerError, "auth_lookup_failed", err)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, task_manager.ErrorResponse{Message: msgUnauthenticated})
		return
	}

	setSession(c, sess)
	c.Next()
}

// optionalAuthMiddleware attaches a principal when a valid token is present
// and otherwise lets the request through anonymously.
func (h *Handler) optionalAuthMiddleware(c *gin.Context) {
	token, err := bearerToken(c)
	if err == nil {
		sess, err := h.services.Auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			setSession(c, sess)
		case !errors.Is(err, service.ErrUnauthenticated):
			h.log.Warnw("auth_lookup_failed", "err", err)
		}
	}
	c.Next()
}

func setSession(c *gin.Context, sess *service.Session) {
	c.Set(ctxSession, sess)
	c.Set(ctxPrincipal, policy.PrincipalOf(sess.User))
}

func sessionFrom(c *gin.Context) *service.Session {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*service.Session)
	return sess
}

// principalFrom returns nil for anonymous requests.
func principalFrom(c *gin.Context) *policy.Principal {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*policy.Principal)
	return p
}
