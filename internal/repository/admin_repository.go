package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"welearn/internal/domain"
	"welearn/internal/repository/models"
	"welearn/internal/util"
)

const adminColumns = `id, username, full_name, email, password_hash, date_of_birth, created_at, updated_at, deleted_at`

type sqlxAdminRepository struct {
	db DBTX
}

func NewSQLXAdminRepository(db DBTX) domain.AdminRepository {
	return &sqlxAdminRepository{db: db}
}

func toDomainAdmin(m *models.Admin) *domain.Admin {
	return &domain.Admin{
		ID:           m.ID,
		Username:     m.Username,
		FullName:     m.FullName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DateOfBirth:  m.DateOfBirth,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *sqlxAdminRepository) ListAdmins(ctx context.Context) ([]*domain.Admin, error) {
	var rows []models.Admin
	query := `SELECT ` + adminColumns + ` FROM admins WHERE deleted_at IS NULL ORDER BY username`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	admins := make([]*domain.Admin, 0, len(rows))
	for i := range rows {
		admins = append(admins, toDomainAdmin(&rows[i]))
	}
	return admins, nil
}

func (r *sqlxAdminRepository) GetAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	return r.getOne(ctx, "id", id)
}

func (r *sqlxAdminRepository) GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	return r.getOne(ctx, "username", username)
}

func (r *sqlxAdminRepository) getOne(ctx context.Context, column, value string) (*domain.Admin, error) {
	var row models.Admin
	query := `SELECT ` + adminColumns + ` FROM admins WHERE ` + column + ` = :1 AND deleted_at IS NULL`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin by %s: %w", column, err)
	}
	return toDomainAdmin(&row), nil
}

func (r *sqlxAdminRepository) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	now := time.Now()
	if admin.ID == "" {
		admin.ID = util.NewULID()
	}
	admin.CreatedAt = now
	admin.UpdatedAt = now

	query := `INSERT INTO admins (id, username, full_name, email, password_hash, date_of_birth, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		admin.ID, admin.Username, admin.FullName, admin.Email, admin.PasswordHash,
		admin.DateOfBirth, admin.CreatedAt, admin.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.NewDuplicateUsernameError(admin.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *sqlxAdminRepository) UpdateAdmin(ctx context.Context, admin *domain.Admin) error {
	admin.UpdatedAt = time.Now()
	query := `UPDATE admins SET
				username = :1,
				full_name = :2,
				email = :3,
				password_hash = :4,
				date_of_birth = :5,
				updated_at = :6
			  WHERE id = :7 AND deleted_at IS NULL`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		admin.Username, admin.FullName, admin.Email, admin.PasswordHash,
		admin.DateOfBirth, admin.UpdatedAt, admin.ID,
	)
	if isUniqueViolation(err) {
		return domain.NewDuplicateUsernameError(admin.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	return requireAffected(result, domain.NewNotFoundError("Admin not found"))
}

func (r *sqlxAdminRepository) DeleteAdmin(ctx context.Context, id string) error {
	query := `UPDATE admins SET deleted_at = :1 WHERE id = :2 AND deleted_at IS NULL`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	return requireAffected(result, domain.NewNotFoundError("Admin not found"))
}
