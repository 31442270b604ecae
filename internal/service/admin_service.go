package service

import (
	"context"
	"strings"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/logger"
	"welearn/internal/validation"

	"go.uber.org/zap"
)

// AdminService manages administrator accounts.
type AdminService interface {
	ListAdmins(ctx context.Context) ([]dto.AdminResponse, error)
	GetAdmin(ctx context.Context, id string) (*dto.AdminResponse, error)
	CreateAdmin(ctx context.Context, req dto.AccountRequest) (*dto.AdminResponse, error)
	UpdateAdmin(ctx context.Context, id string, req dto.AccountRequest) (*dto.AdminResponse, error)
	DeleteAdmin(ctx context.Context, id string) error
}

type adminServiceImpl struct {
	repo  domain.AdminRepository
	rules *validation.RuleSet
}

func NewAdminService(repo domain.AdminRepository) AdminService {
	return &adminServiceImpl{
		repo:  repo,
		rules: validation.NewRuleSet(validation.FormAdmin),
	}
}

func toAdminResponse(a *domain.Admin) dto.AdminResponse {
	return dto.AdminResponse{
		ID:          a.ID,
		Username:    a.Username,
		FullName:    a.FullName,
		Email:       a.Email,
		DateOfBirth: a.DateOfBirth.Format(domain.DateLayout),
		CreatedAt:   a.CreatedAt,
	}
}

func adminNotFound() error {
	return domain.NewNotFoundError("Admin not found")
}

func (s *adminServiceImpl) ListAdmins(ctx context.Context) ([]dto.AdminResponse, error) {
	admins, err := s.repo.ListAdmins(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list admins", err)
	}
	out := make([]dto.AdminResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, toAdminResponse(a))
	}
	return out, nil
}

func (s *adminServiceImpl) GetAdmin(ctx context.Context, id string) (*dto.AdminResponse, error) {
	admin, err := s.repo.GetAdminByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get admin", err)
	}
	if admin == nil {
		return nil, adminNotFound()
	}
	resp := toAdminResponse(admin)
	return &resp, nil
}

func (s *adminServiceImpl) CreateAdmin(ctx context.Context, req dto.AccountRequest) (*dto.AdminResponse, error) {
	if errs := s.rules.ValidateForm(req.Fields("adminId", ""), validation.ContextCreate); len(errs) > 0 {
		return nil, errs
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	existing, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check username", err)
	}
	if existing != nil {
		return nil, domain.NewDuplicateUsernameError(username)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, domain.NewInternalError("Failed to create admin", err)
	}
	admin := &domain.Admin{
		Username:     username,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		DateOfBirth:  dob,
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		if domain.IsCode(err, domain.CodeDuplicateUsername) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to create admin", err)
	}
	logger.Get().Info("Admin created", zap.String("adminID", admin.ID))

	resp := toAdminResponse(admin)
	return &resp, nil
}

func (s *adminServiceImpl) UpdateAdmin(ctx context.Context, id string, req dto.AccountRequest) (*dto.AdminResponse, error) {
	if errs := s.rules.ValidateForm(req.Fields("adminId", id), validation.ContextUpdate); len(errs) > 0 {
		return nil, errs
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	admin, err := s.repo.GetAdminByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get admin", err)
	}
	if admin == nil {
		return nil, adminNotFound()
	}

	username := strings.TrimSpace(req.Username)
	if username != admin.Username {
		other, err := s.repo.GetAdminByUsername(ctx, username)
		if err != nil {
			return nil, domain.NewInternalError("Failed to check username", err)
		}
		if other != nil && other.ID != id {
			return nil, domain.NewDuplicateUsernameError(username)
		}
	}

	admin.Username = username
	admin.FullName = strings.TrimSpace(req.FullName)
	admin.Email = strings.TrimSpace(req.Email)
	admin.DateOfBirth = dob
	if req.Password != "" {
		if admin.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, domain.NewInternalError("Failed to update admin", err)
		}
	}
	if err := s.repo.UpdateAdmin(ctx, admin); err != nil {
		if domain.IsCode(err, domain.CodeDuplicateUsername) || domain.IsCode(err, domain.CodeNotFound) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to update admin", err)
	}

	resp := toAdminResponse(admin)
	return &resp, nil
}

func (s *adminServiceImpl) DeleteAdmin(ctx context.Context, id string) error {
	if err := s.repo.DeleteAdmin(ctx, id); err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			return err
		}
		return domain.NewInternalError("Failed to delete admin", err)
	}
	logger.Get().Info("Admin deleted", zap.String("adminID", id))
	return nil
}
