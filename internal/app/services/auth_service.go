package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	appauth "github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/auth"
	"github.com/yigit/achievement-portal/internal/pkg/filestorage"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

// AuthService handles student and admin authentication and the student's own profile
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.StudentAuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.StudentAuthResponse, error)
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminAuthResponse, error)
	Me(ctx context.Context, actor appauth.Actor) (*models.Account, error)
	UpdateProfile(ctx context.Context, actor appauth.Actor, req *dto.UpdateProfileRequest) (*models.Account, error)
	UploadFile(ctx context.Context, actor appauth.Actor, field repositories.FileField, file *multipart.FileHeader) (*models.Account, error)
	// EnsureAdmin creates the admin if the username is free and reports whether it did.
	EnsureAdmin(ctx context.Context, username, password string) (*models.Admin, bool, error)
}

type authServiceImpl struct {
	accounts repositories.AccountStore
	admins   repositories.AdminStore
	jwt      *auth.JWTService
	storage  filestorage.FileStorage
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accounts repositories.AccountStore,
	admins repositories.AdminStore,
	jwt *auth.JWTService,
	storage filestorage.FileStorage,
) AuthService {
	return &authServiceImpl{
		accounts: accounts,
		admins:   admins,
		jwt:      jwt,
		storage:  storage,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.StudentAuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		RollNumber:   strings.TrimSpace(req.RollNumber),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Department:   req.Department,
		Section:      req.Section,
		Year:         req.Year,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	logger.Info().Int64("accountID", account.ID).Str("rollNumber", account.RollNumber).Msg("Student registered")
	return s.studentToken(account)
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.StudentAuthResponse, error) {
	account, err := s.accounts.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.studentToken(account)
}

func (s *authServiceImpl) studentToken(account *models.Account) (*dto.StudentAuthResponse, error) {
	token, expiresIn, err := s.jwt.GenerateToken(account.ID, account.RollNumber, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	return &dto.StudentAuthResponse{Token: token, ExpiresIn: expiresIn, Student: account}, nil
}

func (s *authServiceImpl) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminAuthResponse, error) {
	admin, err := s.admins.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrAdminNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(admin.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwt.GenerateToken(admin.ID, admin.Username, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &dto.AdminAuthResponse{Token: token, ExpiresIn: expiresIn, Admin: admin}, nil
}

func (s *authServiceImpl) Me(ctx context.Context, actor appauth.Actor) (*models.Account, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, actor.ID)
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, actor appauth.Actor, req *dto.UpdateProfileRequest) (*models.Account, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	return s.accounts.UpdateProfile(ctx, actor.ID, req.ToModel())
}

var uploadDirs = map[repositories.FileField]string{
	repositories.FileProfilePic: filestorage.DirProfiles,
	repositories.FileResume:     filestorage.DirResumes,
	repositories.FileBanner:     filestorage.DirBanners,
}

func (s *authServiceImpl) UploadFile(ctx context.Context, actor appauth.Actor, field repositories.FileField, file *multipart.FileHeader) (*models.Account, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	dir, ok := uploadDirs[field]
	if !ok {
		return nil, fmt.Errorf("unsupported file field %q", field)
	}

	current, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	ref, err := s.storage.Save(file, dir)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetFileRef(ctx, actor.ID, field, ref); err != nil {
		_ = s.storage.Delete(ref)
		return nil, err
	}

	var old string
	switch field {
	case repositories.FileProfilePic:
		old = current.ProfilePicURL
	case repositories.FileResume:
		old = current.ResumeURL
	case repositories.FileBanner:
		old = current.BannerURL
	}
	if old != "" {
		if err := s.storage.Delete(old); err != nil {
			logger.Warn().Err(err).Str("ref", old).Msg("Failed to remove replaced upload")
		}
	}

	return s.accounts.GetByID(ctx, actor.ID)
}

func (s *authServiceImpl) EnsureAdmin(ctx context.Context, username, password string) (*models.Admin, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, apperrors.NewValidationError("admin username and password are required", nil)
	}

	existing, err := s.admins.GetByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrAdminNotFound) {
		return nil, false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.Admin{Username: username, PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
