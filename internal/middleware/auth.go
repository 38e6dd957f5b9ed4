// Package middleware provides Fiber middleware: identity, request context, logging, tracing and metrics.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"musefeed/internal/models"
	"musefeed/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token claims every accepted JWT must carry.
const (
	TokenIssuer   = "musefeed-api"
	TokenAudience = "musefeed-client"
)

// userIDLocal is the Fiber locals key holding the authenticated caller.
const userIDLocal = "userID"

// Authenticator verifies HS256 bearer tokens and resolves the caller id from
// the subject claim.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an Authenticator for the given signing secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken signs a token for userID valid for ttl.
func (a *Authenticator) IssueToken(userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseUserID validates tokenString and returns the caller id it was issued for.
func (a *Authenticator) ParseUserID(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(_ *jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, errors.New("missing subject claim")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("invalid subject claim %q", claims.Subject)
	}
	return uint(userID), nil
}

// Required rejects requests without a valid token. WebSocket upgrades may
// pass the token as the "token" query parameter since browsers cannot set
// headers on them.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" && strings.HasPrefix(c.Path(), "/api/ws") {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := a.ParseUserID(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		setCaller(c, userID)
		return c.Next()
	}
}

// Optional resolves the caller when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := bearerToken(c); tokenString != "" {
			if userID, err := a.ParseUserID(tokenString); err == nil {
				setCaller(c, userID)
			}
		}
		return c.Next()
	}
}

// CallerID returns the authenticated caller, or 0 for anonymous requests.
func CallerID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(userIDLocal).(uint); ok {
		return id
	}
	return 0
}

func setCaller(c *fiber.Ctx, userID uint) {
	c.Locals(userIDLocal, userID)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), observability.UserIDKey, userID)
	c.SetUserContext(ctx)
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
