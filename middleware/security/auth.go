package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"VProject/logger"
	usermodel "VProject/module/user/model"
	"VProject/service/storage"
	"VProject/tools/security"
)

// Context key the resolved identity is bound under. Bound exactly once per
// connection, before any application frame is processed.
const CtxUserKey = "authUser"

// Options for the handshake authenticator.
type Options struct {
	JWT       security.Options
	Directory storage.UserDirectory
}

// TokenAuth extracts the credential from the handshake — `token` query
// parameter first, `Authorization: Bearer` as fallback — and binds the
// resolved user into the request context. Absence or failure binds
// anonymous (nil) instead of rejecting here: the session's open step is
// the one that closes unauthenticated connections.
func TokenAuth(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
				if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					token = strings.TrimSpace(authz[len("bearer "):])
				}
			}
		}
		if token == "" {
			logger.Warnf("[auth] no token provided remote=%s", c.ClientIP())
			c.Next()
			return
		}

		user := resolve(c, opts, token)
		if user != nil {
			c.Set(CtxUserKey, user)
			logger.Infof("[auth] user %s authenticated remote=%s", user.Username, c.ClientIP())
		}
		c.Next()
	}
}

// resolve turns a credential into a directory entry. Any failure —
// signature, expiry, malformed token, vanished user — collapses into
// anonymous; it never propagates to the transport layer.
func resolve(c *gin.Context, opts Options, token string) *usermodel.User {
	userID, err := security.VerifyUserID(opts.JWT, token)
	if err != nil {
		logger.Warnf("[auth] invalid token remote=%s err=%v", c.ClientIP(), err)
		return nil
	}
	user, err := opts.Directory.GetUser(c.Request.Context(), userID)
	if err != nil {
		logger.Warnf("[auth] user %d not resolvable err=%v", userID, err)
		return nil
	}
	return user
}

// UserFrom reads the bound identity; nil means anonymous.
func UserFrom(c *gin.Context) *usermodel.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*usermodel.User)
	return u
}

// RequireAuth guards plain HTTP endpoints that have no deferred-rejection
// step of their own.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
