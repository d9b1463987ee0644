package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/darasa/core"
)

// Tokens are issued by the external authentication service; this API only
// verifies them against the shared signing key.

const contextTokenKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	IsStudent bool   `json:"is_student,omitempty"`
	IsTeacher bool   `json:"is_teacher,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

func (c Claims) Actor() core.Actor {
	return core.Actor{ID: c.Subject, Username: c.Username, Email: c.Email}
}

// newAppJWTConfig is the JWT auth middleware config.
func newAppJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// NewFacultyClaims builds the claims the auth service would issue for a
// faculty member; used by tests and dev tooling.
func NewFacultyClaims(conf *core.Config, facultyID, username, email string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   facultyID,
			Audience:  "Academia",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username:  username,
		Email:     email,
		IsTeacher: true,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	return token.SignedString([]byte(conf.SecretKey))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
