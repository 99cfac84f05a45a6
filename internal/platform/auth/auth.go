package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRolesKey contextKey = "user_roles"
)

// Roles understood by the route groups. RoleAdmin satisfies every check.
const (
	RoleAdmin     = "admin"
	RoleBilling   = "billing"
	RoleClinician = "clinician"
	RoleRegistrar = "registrar"
	RoleViewer    = "viewer"
)

type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

type JWTConfig struct {
	Issuer     string
	SigningKey []byte
	// Leeway tolerates clock skew on exp/nbf.
	Leeway time.Duration
}

// JWTMiddleware validates an HS256 bearer token and stores the subject and
// roles in the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return cfg.SigningKey, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			scheme, tokenStr, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := parser.ParseWithClaims(tokenStr, claims, keyFunc)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			setIdentity(c, claims.Subject, claims.Roles)
			return next(c)
		}
	}
}

// DevAuthMiddleware admits unauthenticated requests as an admin user. Only
// wired when ENV=development.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			setIdentity(c, "dev-user", []string{RoleAdmin})
			return next(c)
		}
	}
}

func setIdentity(c echo.Context, subject string, roles []string) {
	c.Set("user_id", subject)
	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, UserIDKey, subject)
	ctx = context.WithValue(ctx, UserRolesKey, roles)
	c.SetRequest(c.Request().WithContext(ctx))
}

// IssueToken signs an HS256 token. Used by tests and local tooling.
func IssueToken(cfg JWTConfig, subject string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.SigningKey)
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func RolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(UserRolesKey).([]string)
	return roles
}
