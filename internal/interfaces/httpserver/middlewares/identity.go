package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"docchat/chat-gateway/internal/domain"
	authvalidator "docchat/chat-gateway/internal/infrastructure/auth"
	"docchat/chat-gateway/internal/interfaces/httpserver/responses"
)

const (
	identityContextKey = "identity"
	rawTokenContextKey = "raw_token"

	anonymousIDHeader = "X-Anonymous-Id"
	anonymousIDPrefix = "anon_"
)

// IdentityMiddleware resolves the caller to a normalized identity. A bearer
// JWT wins over an anonymous id; a request carrying neither is rejected.
// Every stored conversation, usage snapshot, and feedback record is keyed by
// the identity resolved here.
func IdentityMiddleware(validator *authvalidator.TokenValidator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, rawToken, ok, err := identityFromJWT(c, validator)
		if err != nil {
			logger.Error().Err(err).Msg("jwt validation failed")
			responses.HandleErrorWithStatus(c, http.StatusUnauthorized, err, "unauthorized")
			return
		}
		if ok {
			setIdentity(c, identity, rawToken)
			c.Next()
			return
		}

		if identity, ok := identityFromAnonymousID(c); ok {
			setIdentity(c, identity, "")
			c.Next()
			return
		}

		logger.Warn().
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Msg("unauthenticated request")
		responses.HandleErrorWithStatus(c, http.StatusUnauthorized, errors.New("authentication required"), "unauthorized")
	}
}

// IdentityFromContext returns the resolved caller identity, if any.
func IdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	val, ok := c.Get(identityContextKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok
}

// RawTokenFromContext returns the bearer token the caller presented, empty
// for anonymous callers.
func RawTokenFromContext(c *gin.Context) string {
	return c.GetString(rawTokenContextKey)
}

func setIdentity(c *gin.Context, identity domain.Identity, rawToken string) {
	c.Set(identityContextKey, identity)
	if rawToken != "" {
		c.Set(rawTokenContextKey, rawToken)
	}
	c.Writer.Header().Set("X-Auth-Method", string(identity.AuthMethod))
}

func identityFromJWT(c *gin.Context, validator *authvalidator.TokenValidator) (domain.Identity, string, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return domain.Identity{}, "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Identity{}, "", false, nil
	}
	if validator == nil {
		return domain.Identity{}, "", false, errors.New("bearer tokens not accepted")
	}

	claims, err := validator.Validate(c.Request.Context(), parts[1])
	if err != nil {
		return domain.Identity{}, "", false, err
	}

	return domain.Identity{
		ID:         claims.Subject,
		AuthMethod: domain.AuthMethodJWT,
		Subject:    claims.Subject,
		Issuer:     claims.Issuer,
		Email:      claims.Email,
	}, parts[1], true, nil
}

func identityFromAnonymousID(c *gin.Context) (domain.Identity, bool) {
	anonymousID := strings.TrimSpace(c.GetHeader(anonymousIDHeader))
	if anonymousID == "" || !strings.HasPrefix(anonymousID, anonymousIDPrefix) {
		return domain.Identity{}, false
	}
	return domain.Identity{
		ID:         anonymousID,
		AuthMethod: domain.AuthMethodAnonymous,
		Subject:    anonymousID,
	}, true
}
