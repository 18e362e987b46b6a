package usecase

import (
	"context"
	"errors"
	"strings"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/delivery/http/middleware"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/service"
	"hospital-scheduler/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, staffID uuid.UUID, tokenID string) error
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	staffRepo    repository.StaffRepository
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
	auditService service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	staffRepo repository.StaffRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		staffRepo:    staffRepo,
		jwtService:   jwtService,
		redisClient:  redisClient,
		auditService: auditService,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	staff, err := u.staffRepo.FindByEmail(ctx, u.db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find staff by email: %+v", err)
		return nil, err
	}
	if staff == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, tokenID, err := u.jwtService.GenerateAccessToken(staff.ID, staff.Email, staff.Role)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	key := middleware.AccessTokenKey(staff.ID, tokenID)
	if err := u.redisClient.Set(ctx, key, "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	_ = u.auditService.LogCreate(ctx, u.db, &staff.ID, entity.AuditActionStaffLogin, staff.Email, map[string]interface{}{
		"role": staff.Role,
	})

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry().Seconds()),
		Role:        staff.Role,
		Email:       staff.Email,
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, staffID uuid.UUID, tokenID string) error {
	if err := u.redisClient.Del(ctx, middleware.AccessTokenKey(staffID, tokenID)).Err(); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	email, _ := middleware.GetStaffEmailFromContext(ctx)
	_ = u.auditService.LogDelete(ctx, u.db, &staffID, entity.AuditActionStaffLogout, email, nil)
	return nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
