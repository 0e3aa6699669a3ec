package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/authz"
	"github.com/atelierhq/curator-api/internal/models"
)

type fakeAdminRepo struct {
	admins map[string]models.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]models.Admin)}
}

func (f *fakeAdminRepo) CreateAdmin(email, password, displayName string, roles []models.AdminRole) (models.Admin, error) {
	if email == "" || password == "" {
		return models.Admin{}, errors.New("email and password are required")
	}
	admin := models.Admin{
		ID:          "a-" + email,
		Email:       email,
		DisplayName: displayName,
		IsActive:    true,
		Roles:       models.EnsureDefaultRole(models.NormalizeRoles(roles)),
	}
	f.admins[admin.ID] = admin
	return admin, nil
}

func (f *fakeAdminRepo) AuthenticateAdmin(email, password string) (models.Admin, error) {
	return models.Admin{}, sql.ErrNoRows
}

func (f *fakeAdminRepo) GetAdminByID(adminID string) (models.Admin, error) {
	admin, ok := f.admins[adminID]
	if !ok {
		return models.Admin{}, sql.ErrNoRows
	}
	return admin, nil
}

func (f *fakeAdminRepo) GetAdminByEmail(email string) (models.Admin, error) {
	for _, admin := range f.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return models.Admin{}, sql.ErrNoRows
}

func (f *fakeAdminRepo) DeactivateAdmin(adminID string) error {
	admin, ok := f.admins[adminID]
	if !ok {
		return sql.ErrNoRows
	}
	admin.IsActive = false
	f.admins[adminID] = admin
	return nil
}

func TestCreateAdminEndpoint(t *testing.T) {
	repo := newFakeAdminRepo()
	h := NewAdminHandler(repo, zerolog.Nop())

	rec := httptest.NewRecorder()
	body := `{"email":"ops@example.com","password":"s3cret","display_name":"Ops","roles":["admin"]}`
	h.CreateAdmin(rec, httptest.NewRequest(http.MethodPost, "/api/admins", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	admin, err := repo.GetAdminByEmail("ops@example.com")
	if err != nil {
		t.Fatalf("admin not persisted: %v", err)
	}
	if !admin.IsActive || len(admin.Roles) != 1 || admin.Roles[0] != models.RoleAdmin {
		t.Fatalf("unexpected admin: %+v", admin)
	}
}

func TestCreateAdminRejectsUnknownRole(t *testing.T) {
	h := NewAdminHandler(newFakeAdminRepo(), zerolog.Nop())

	rec := httptest.NewRecorder()
	body := `{"email":"ops@example.com","password":"s3cret","roles":["root"]}`
	h.CreateAdmin(rec, httptest.NewRequest(http.MethodPost, "/api/admins", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeactivateAdminEndpoint(t *testing.T) {
	repo := newFakeAdminRepo()
	seeded, _ := repo.CreateAdmin("ops@example.com", "s3cret", "Ops", nil)
	h := NewAdminHandler(repo, zerolog.Nop())

	r := httptest.NewRequest(http.MethodPost, "/api/admins/"+seeded.ID+"/deactivate", nil)
	rec := httptest.NewRecorder()
	h.DeactivateAdmin(rec, mux.SetURLVars(r, map[string]string{"id": seeded.ID}))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	admin, _ := repo.GetAdminByID(seeded.ID)
	if admin.IsActive {
		t.Fatalf("admin still active: %+v", admin)
	}

	rec = httptest.NewRecorder()
	ghost := httptest.NewRequest(http.MethodPost, "/api/admins/ghost/deactivate", nil)
	h.DeactivateAdmin(rec, mux.SetURLVars(ghost, map[string]string{"id": "ghost"}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown admin, got %d", rec.Code)
	}
}

// Account management is superadmin territory; a plain admin gets 403.
func TestCreateAdminRequiresSuperAdmin(t *testing.T) {
	h := NewAdminHandler(newFakeAdminRepo(), zerolog.Nop())
	gated := authz.RequireRole(models.RoleSuperAdmin)(http.HandlerFunc(h.CreateAdmin))

	body := `{"email":"ops@example.com","password":"s3cret"}`
	r := httptest.NewRequest(http.MethodPost, "/api/admins", strings.NewReader(body))
	r = r.WithContext(authz.WithIdentity(r.Context(), "admin1", []models.AdminRole{models.RoleAdmin}))
	rec := httptest.NewRecorder()
	gated.ServeHTTP(rec, r)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin role, got %d", rec.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/api/admins", strings.NewReader(body))
	r = r.WithContext(authz.WithIdentity(r.Context(), "root1", []models.AdminRole{models.RoleSuperAdmin}))
	rec = httptest.NewRecorder()
	gated.ServeHTTP(rec, r)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for superadmin, got %d: %s", rec.Code, rec.Body.String())
	}
}
