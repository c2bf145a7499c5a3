package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	tokenCookie     = "access_token"
)

// ErrRoleMismatch is returned when a valid token lacks the required role.
var ErrRoleMismatch = errors.New("token role does not match")

// Claims are the JWT claims the dashboard reads.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// requestLogger assigns a request id, stores a request-scoped logger in the
// request context, and logs each completed request.
func requestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		l := base.With().Str("request_id", reqID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		l.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

// recovery converts handler panics into a 500 and logs them.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		zerolog.Ctx(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic in handler")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}

// requireAuth rejects requests without a valid HMAC-signed token.
func requireAuth(opts AuthOpts) gin.HandlerFunc {
	secret := []byte(opts.Secret)
	return func(c *gin.Context) {
		claims, err := ValidateToken(secret, opts.RequiredRole, bearerToken(c))
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("unauthorized request")
			c.Header("WWW-Authenticate", `Bearer realm="matchyard"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("subject", claims.Subject)
		c.Next()
	}
}

// bearerToken reads the token from the Authorization header, falling back to
// the access_token cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if v, err := c.Cookie(tokenCookie); err == nil {
		return v
	}
	return ""
}

// ValidateToken parses an HS256/384/512 token, requires an expiry, and checks
// the role claim when role is non-empty.
func ValidateToken(secret []byte, role, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("missing token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if role != "" && claims.Role != role {
		return nil, ErrRoleMismatch
	}
	return claims, nil
}
