package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelierhq/curator-api/internal/models"
)

type AdminRepository interface {
	CreateAdmin(email, password, displayName string, roles []models.AdminRole) (models.Admin, error)
	AuthenticateAdmin(email, password string) (models.Admin, error)
	GetAdminByID(adminID string) (models.Admin, error)
	GetAdminByEmail(email string) (models.Admin, error)
	DeactivateAdmin(adminID string) error
}

type adminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (a *adminRepository) CreateAdmin(email, password, displayName string, roles []models.AdminRole) (models.Admin, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" {
		return models.Admin{}, errors.New("email is required")
	}
	if password == "" {
		return models.Admin{}, errors.New("password is required")
	}
	if len(roles) == 0 {
		roles = []models.AdminRole{models.RoleViewer}
	}
	if !models.IsValidRoleList(roles) {
		return models.Admin{}, errors.New("invalid roles")
	}
	normalized := models.EnsureDefaultRole(models.NormalizeRoles(roles))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Admin{}, err
	}

	admin := models.Admin{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		IsActive:     true,
		Roles:        normalized,
	}

	const query = `
		INSERT INTO admins (email, display_name, password_hash, is_active, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;`
	err = a.db.QueryRow(query, admin.Email, admin.DisplayName, admin.PasswordHash, admin.IsActive, pq.Array(rolesToStrings(admin.Roles))).
		Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

func (a *adminRepository) AuthenticateAdmin(email, password string) (models.Admin, error) {
	admin, err := a.GetAdminByEmail(email)
	if err != nil {
		return models.Admin{}, err
	}
	if !admin.IsActive {
		return models.Admin{}, errors.New("account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return models.Admin{}, errors.New("invalid credentials")
	}
	return admin, nil
}

func (a *adminRepository) GetAdminByID(adminID string) (models.Admin, error) {
	const query = `
		SELECT id, email, display_name, password_hash, is_active, roles, created_at
		FROM admins WHERE id = $1;`
	return a.scanAdmin(a.db.QueryRow(query, adminID))
}

func (a *adminRepository) GetAdminByEmail(email string) (models.Admin, error) {
	const query = `
		SELECT id, email, display_name, password_hash, is_active, roles, created_at
		FROM admins WHERE email = $1;`
	return a.scanAdmin(a.db.QueryRow(query, strings.TrimSpace(strings.ToLower(email))))
}

func (a *adminRepository) DeactivateAdmin(adminID string) error {
	result, err := a.db.Exec(`UPDATE admins SET is_active = false WHERE id = $1;`, adminID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (a *adminRepository) scanAdmin(row *sql.Row) (models.Admin, error) {
	var (
		admin models.Admin
		roles pq.StringArray
	)
	err := row.Scan(&admin.ID, &admin.Email, &admin.DisplayName, &admin.PasswordHash, &admin.IsActive, &roles, &admin.CreatedAt)
	if err != nil {
		return models.Admin{}, err
	}
	admin.Roles = rolesFromStrings(roles)
	return admin, nil
}

func rolesToStrings(roles []models.AdminRole) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}

func rolesFromStrings(values []string) []models.AdminRole {
	out := make([]models.AdminRole, 0, len(values))
	for _, v := range values {
		out = append(out, models.AdminRole(v))
	}
	return models.EnsureDefaultRole(models.NormalizeRoles(out))
}
