package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/auth"
	"github.com/noah-isme/scholarship-api/internal/models"
	"github.com/noah-isme/scholarship-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// DefaultCategories is the starter set of volunteer activity categories.
var DefaultCategories = []models.ActivityCategory{
	{Name: "Tutoring", Description: "Helping students with academic subjects"},
	{Name: "Community Service", Description: "General community improvement activities"},
	{Name: "Environmental Work", Description: "Environmental conservation and cleanup activities"},
	{Name: "Elderly Care", Description: "Supporting elderly members of the community"},
	{Name: "Youth Mentoring", Description: "Mentoring and guidance for younger students"},
	{Name: "Food Distribution", Description: "Food banks and meal distribution programs"},
	{Name: "Healthcare Support", Description: "Assisting in healthcare facilities and programs"},
	{Name: "Animal Welfare", Description: "Supporting animal shelters and rescue organizations"},
}

// AdminBootstrap describes the administrator created on an empty install.
type AdminBootstrap struct {
	Username string
	Email    string
	Password string
}

// SeedService populates reference data.
type SeedService interface {
	SeedCategories(ctx context.Context, token string) (int64, error)
	EnsureDefaultCategories(ctx context.Context) (int64, error)
	BootstrapAdmin(ctx context.Context, admin AdminBootstrap) (bool, error)
}

type seedService struct {
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	categories   CategoryService
	enabled      bool
	token        string
	bcryptCost   int
	logger       zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(categoryRepo repository.CategoryRepository, userRepo repository.UserRepository, categories CategoryService, enabled bool, token string, bcryptCost int, logger zerolog.Logger) SeedService {
	return &seedService{
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		categories:   categories,
		enabled:      enabled,
		token:        token,
		bcryptCost:   bcryptCost,
		logger:       logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedCategories inserts the default categories behind the seed token.
// Existing names are skipped, so repeated calls are harmless.
func (s *seedService) SeedCategories(ctx context.Context, token string) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}
	return s.EnsureDefaultCategories(ctx)
}

func (s *seedService) EnsureDefaultCategories(ctx context.Context) (int64, error) {
	items := make([]models.ActivityCategory, len(DefaultCategories))
	copy(items, DefaultCategories)

	affected, err := s.categoryRepo.UpsertBatch(ctx, items)
	if err != nil {
		return 0, err
	}
	if affected > 0 && s.categories != nil {
		s.categories.Invalidate(ctx)
	}
	s.logger.Info().Int64("affected", affected).Msg("categories seeded")
	return affected, nil
}

// BootstrapAdmin creates the configured administrator unless the username is
// already taken. The account must change its password at first login.
func (s *seedService) BootstrapAdmin(ctx context.Context, admin AdminBootstrap) (bool, error) {
	username := strings.TrimSpace(admin.Username)
	if username == "" || admin.Password == "" {
		return false, nil
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(admin.Password, s.bcryptCost)
	if err != nil {
		return false, err
	}

	user := models.User{
		Username:           username,
		Email:              strings.ToLower(strings.TrimSpace(admin.Email)),
		PasswordHash:       hash,
		Role:               models.RoleAdmin,
		MustChangePassword: true,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("bootstrap administrator created")
	return true, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
