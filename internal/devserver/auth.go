package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("invalid authorization header")
)

const userIDKey = "uid"

// Auth issues and validates HS256 session tokens whose subject is the user id.
type Auth struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewAuth(secret []byte, ttl time.Duration, now func() time.Time) *Auth {
	return &Auth{
		secret: secret,
		ttl:    ttl,
		now:    now,
		// Expiry is checked against the injected clock below.
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation()),
	}
}

func (a *Auth) Issue(userID int64, email string) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   strconv.FormatInt(userID, 10),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(a.ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

func (a *Auth) UserIDFromAuthHeader(h string) (int64, error) {
	if h == "" {
		return 0, errMissingAuthorization
	}
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return 0, errBadAuthorization
	}
	parsed, err := a.parser.Parse(strings.TrimSpace(tok), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	if !claims.VerifyExpiresAt(a.now().Unix(), true) {
		return 0, errors.New("token expired")
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("missing sub")
	}
	return id, nil
}

// requireUser rejects requests without a valid bearer token and stores the user id on the context.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := s.auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return fail(http.StatusUnauthorized, "No autenticado: "+err.Error())
		}
		s.mu.Lock()
		_, known := s.users[uid]
		s.mu.Unlock()
		if !known {
			return fail(http.StatusUnauthorized, "Usuario no encontrado.")
		}
		c.Set(userIDKey, uid)
		return next(c)
	}
}

func currentUser(c echo.Context) int64 {
	id, _ := c.Get(userIDKey).(int64)
	return id
}
