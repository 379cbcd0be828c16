package providers

import (
	"context"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"io"
	"net/http"
	"onegoodthing/internal/models"
	"onegoodthing/internal/structures"
	"strings"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

type AuthProviderInterface interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

type contextKey string

const (
	userContextKey  contextKey = "ogt_user"
	tokenContextKey contextKey = "ogt_token"
)

// AuthProvider verifies access tokens issued by the hosted auth service.
// Tokens are checked locally with the shared HS256 secret when one is
// configured, and against /auth/v1/user otherwise.
type AuthProvider struct {
	secret  []byte
	issuer  string
	baseURL string
	anonKey string
	client  *http.Client
}

func NewAuthProvider(conf *structures.Config) AuthProviderInterface {
	return &AuthProvider{
		secret:  []byte(conf.Auth.JWTSecret),
		issuer:  conf.Auth.Issuer,
		baseURL: strings.TrimRight(conf.Auth.SupabaseURL, "/"),
		anonKey: conf.Auth.AnonKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *AuthProvider) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	var localErr error
	if len(a.secret) > 0 {
		user, err := a.verifyLocal(token)
		if err == nil {
			return user, nil
		}
		localErr = err
	}
	if a.baseURL == "" {
		return models.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, localErr)
	}
	return a.verifyRemote(ctx, token)
}

func (a *AuthProvider) verifyLocal(token string) (models.User, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return models.User{}, fmt.Errorf("jwt: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return models.User{}, errors.New("jwt: missing subject")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return models.User{ID: sub, Email: email, Role: role}, nil
}

func (a *AuthProvider) verifyRemote(ctx context.Context, token string) (models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return models.User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if a.anonKey != "" {
		req.Header.Set("apikey", a.anonKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return models.User{}, fmt.Errorf("validate token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return models.User{}, fmt.Errorf("%w: %s", ErrUnauthorized, strings.TrimSpace(string(body)))
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		return models.User{}, fmt.Errorf("%w: user without id", ErrUnauthorized)
	}
	return user, nil
}

func WithUser(ctx context.Context, user models.User, token string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, tokenContextKey, token)
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok && user.ID != ""
}

// TokenFromContext returns the caller's raw bearer token, used to forward
// row level security to the hosted store.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func AuthMiddleware(auth AuthProviderInterface, logger Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		user, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			logger.Debugf(GetLogTypeByRequestType(r.Method), "auth rejected for %s: %s", r.URL.Path, err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, token)))
	})
}
