package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/authz"
	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/rate"
	"github.com/atelierhq/curator-api/internal/repository"
)

type AuthHandler struct {
	adminRepo repository.AdminRepository
	limiter   *rate.Limiter
	jwtSecret string
	logger    zerolog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(adminRepo repository.AdminRepository, limiter *rate.Limiter, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		adminRepo: adminRepo,
		limiter:   limiter,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if h.limiter != nil {
		key := "login:" + req.Email + ":" + clientIP(r)
		allowed, retryAfter, err := h.limiter.Allow(r.Context(), key)
		if err != nil {
			h.logger.Warn().Err(err).Msg("login rate check failed; allowing request")
		} else if !allowed {
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			http.Error(w, "too many login attempts", http.StatusTooManyRequests)
			return
		}
	}

	admin, err := h.adminRepo.AuthenticateAdmin(req.Email, req.Password)
	if err != nil {
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	rolesClaim := make([]string, 0, len(admin.Roles))
	for _, role := range admin.Roles {
		rolesClaim = append(rolesClaim, string(role))
	}
	highest := models.HighestRole(admin.Roles)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   admin.ID,
		"role":  string(highest),
		"roles": rolesClaim,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		http.Error(w, "Failed to generate token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}
		roles, ok := extractRolesFromClaims(claims)
		if !ok {
			http.Error(w, "Missing role claim", http.StatusUnauthorized)
			return
		}
		adminID, _ := claims["sub"].(string)
		if adminID == "" {
			http.Error(w, "Missing token claim", http.StatusUnauthorized)
			return
		}

		ctx := authz.WithIdentity(r.Context(), adminID, roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractRolesFromClaims(claims jwt.MapClaims) ([]models.AdminRole, bool) {
	rawRoles, ok := claims["roles"]
	if !ok {
		if single, ok := claims["role"].(string); ok && single != "" {
			role := models.AdminRole(single)
			if !models.IsValidRole(role) {
				return nil, false
			}
			return []models.AdminRole{role}, true
		}
		return nil, false
	}

	var roles []models.AdminRole
	switch v := rawRoles.(type) {
	case []interface{}:
		for _, val := range v {
			str, ok := val.(string)
			if !ok {
				return nil, false
			}
			role := models.AdminRole(str)
			if !models.IsValidRole(role) {
				return nil, false
			}
			roles = append(roles, role)
		}
	case []string:
		for _, str := range v {
			role := models.AdminRole(str)
			if !models.IsValidRole(role) {
				return nil, false
			}
			roles = append(roles, role)
		}
	default:
		return nil, false
	}

	if len(roles) == 0 {
		return nil, false
	}
	return roles, true
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
