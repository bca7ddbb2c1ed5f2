package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonwraymond/fleetwatch/observe"
)

// Config selects the credentials accepted by the operator endpoints.
type Config struct {
	// APIKeys are the accepted plaintext keys. Each grants OperatorRole.
	APIKeys []string `koanf:"api_keys"`

	// APIKeyHeader names the header carrying API keys.
	// Default: "X-API-Key"
	APIKeyHeader string `koanf:"api_key_header"`

	// JWTSecret enables HS256 bearer tokens when set.
	JWTSecret string `koanf:"jwt_secret"`

	// JWTIssuer and JWTAudience are checked when set.
	JWTIssuer   string `koanf:"jwt_issuer"`
	JWTAudience string `koanf:"jwt_audience"`

	// OperatorRole is the role required for guarded actions.
	// Default: "operator"
	OperatorRole string `koanf:"operator_role"`
}

// Enabled reports whether any credential is configured.
func (c Config) Enabled() bool {
	return len(c.APIKeys) > 0 || c.JWTSecret != ""
}

// Validate checks the configuration without building anything.
func (c Config) Validate() error {
	for i, k := range c.APIKeys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("auth: api_keys[%d] is empty", i)
		}
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}
	return nil
}

// Guard authenticates and authorizes requests to guarded routes.
type Guard struct {
	authn   Authenticator
	authz   Authorizer
	enabled bool
	logger  observe.Logger
}

// NewGuard builds a Guard from cfg. A Guard built from a Config with no
// credentials allows every request.
func NewGuard(cfg Config, logger observe.Logger) (*Guard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	role := cfg.OperatorRole
	if role == "" {
		role = DefaultOperatorRole
	}

	var auths []Authenticator
	if len(cfg.APIKeys) > 0 {
		auths = append(auths, NewKeyRing(cfg.APIKeyHeader, cfg.APIKeys, role))
	}
	if cfg.JWTSecret != "" {
		j, err := NewJWTAuthenticator(JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		})
		if err != nil {
			return nil, err
		}
		auths = append(auths, j)
	}

	return &Guard{
		authn:   chain(auths),
		authz:   OperatorAuthorizer(role),
		enabled: cfg.Enabled(),
		logger:  logger,
	}, nil
}

// Enabled reports whether the guard checks credentials.
func (g *Guard) Enabled() bool {
	return g != nil && g.enabled
}

// Check authenticates r and authorizes action on resource. It returns the
// identity on success, an error matching ErrMissingCredentials,
// ErrInvalidCredentials or ErrTokenExpired when authentication fails, and
// an error matching ErrForbidden when the identity lacks the role.
func (g *Guard) Check(r *http.Request, action, resource string) (*Identity, error) {
	if !g.Enabled() {
		return AnonymousIdentity(), nil
	}
	ctx := r.Context()
	req := &AuthRequest{Headers: r.Header, Resource: resource}

	result, err := g.authn.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !result.Authenticated {
		return nil, result.Error
	}

	if err := g.authz.Authorize(ctx, &AuthzRequest{
		Subject:  result.Identity,
		Resource: resource,
		Action:   action,
	}); err != nil {
		return nil, err
	}
	return result.Identity, nil
}

// Require returns middleware that guards action. The resource is the
// request path.
func (g *Guard) Require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := g.Check(r, action, r.URL.Path)
			if err != nil {
				code := StatusCode(err)
				g.logger.Warn(r.Context(), "request denied",
					observe.F("action", action),
					observe.F("path", r.URL.Path),
					observe.F("status", code),
					observe.F("error", err),
				)
				if code == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", `Bearer realm="fleetwatch"`)
				}
				writeError(w, code, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// StatusCode maps an auth error to an HTTP status code.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenMalformed):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
