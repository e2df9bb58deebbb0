package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/petition-service/internal/auth"
	"github.com/civicdesk/petition-service/internal/config"
	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/mailer"
	"github.com/civicdesk/petition-service/internal/repository"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// AuthService coordinates registration, verification and login flows
// for citizens, departments and admins.
type AuthService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	admins      repository.AdminRepository
	otps        repository.OTPStore
	mail        mailer.Dispatcher
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	otpTTL      time.Duration
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	AdminRepo      repository.AdminRepository
	OTPStore       repository.OTPStore
	Mail           mailer.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg *config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		admins:      deps.AdminRepo,
		otps:        deps.OTPStore,
		mail:        deps.Mail,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		otpTTL:      cfg.Auth.OTPTTL(),
	}
}

const (
	otpSubjectCitizen    = "citizen"
	otpSubjectDepartment = "department"
)

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterCitizenInput describes citizen signup payload.
type RegisterCitizenInput struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
}

// RegisterCitizen creates an unverified account and emails a
// verification code.
func (s *AuthService) RegisterCitizen(ctx context.Context, input RegisterCitizenInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("email is required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, otpSubjectCitizen, email, user.Name); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyCitizen confirms the emailed code and activates the account.
func (s *AuthService) VerifyCitizen(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	if err := s.checkOTP(ctx, otpSubjectCitizen, email, code); err != nil {
		return err
	}
	if err := s.users.MarkVerified(ctx, email); err != nil {
		return err
	}
	_ = s.otps.Clear(ctx, otpSubjectCitizen, email)
	s.enqueue(mailer.Welcome(email, user.Name))
	return nil
}

// ResendCitizenOTP issues a fresh verification code for an unverified
// account.
func (s *AuthService) ResendCitizenOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.NewConflict("account already verified", nil)
	}
	return s.issueOTP(ctx, otpSubjectCitizen, email, user.Name)
}

// LoginCitizen authenticates a verified citizen.
func (s *AuthService) LoginCitizen(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.EmailVerified {
		return nil, "", time.Time{}, apperrors.NewForbidden("email not verified")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeCitizen)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Profile returns a citizen's own account record.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ProfileUpdateInput describes a profile edit. Empty fields keep the
// stored value; email and password are not editable here.
type ProfileUpdateInput struct {
	Name    string
	Phone   string
	Address string
}

// UpdateProfile applies a citizen's contact-detail changes.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = phone
	}
	if address := strings.TrimSpace(input.Address); address != "" {
		user.Address = address
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// StartDepartmentLogin validates the password and emails a one-time
// code. Departments complete every login with VerifyDepartmentLogin.
func (s *AuthService) StartDepartmentLogin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	dept, err := s.departments.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return err
	}
	if err := auth.ComparePassword(dept.PasswordHash, password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueOTP(ctx, otpSubjectDepartment, email, dept.Name)
}

// VerifyDepartmentLogin exchanges a valid code for an access token.
func (s *AuthService) VerifyDepartmentLogin(ctx context.Context, email, code string) (*domain.Department, string, time.Time, error) {
	email = normalizeEmail(email)
	dept, err := s.departments.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.checkOTP(ctx, otpSubjectDepartment, email, code); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = s.otps.Clear(ctx, otpSubjectDepartment, email)
	token, exp, err := s.tokenMgr.GenerateToken(dept.ID, domain.SubjectTypeDepartment)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return dept, token, exp, nil
}

// LoginAdmin authenticates an administrator.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, string, time.Time, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(admin.ID, domain.SubjectTypeAdmin)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return admin, token, exp, nil
}

func (s *AuthService) issueOTP(ctx context.Context, subject, email, name string) error {
	code, err := auth.GenerateOTP()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.otps.Put(ctx, subject, email, code, s.otpTTL); err != nil {
		return err
	}
	s.enqueue(mailer.OTP(email, name, code))
	return nil
}

func (s *AuthService) checkOTP(ctx context.Context, subject, email, code string) error {
	ok, err := s.otps.Verify(ctx, subject, email, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return apperrors.NewUnauthorized("verification code expired or not issued")
		}
		return err
	}
	if !ok {
		return apperrors.NewUnauthorized("invalid verification code")
	}
	return nil
}

func (s *AuthService) enqueue(msg mailer.Message) {
	if s.mail == nil {
		return
	}
	s.mail.Enqueue(msg)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
