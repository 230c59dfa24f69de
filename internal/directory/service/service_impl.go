package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/internal/clock"
	directorydomain "github.com/tallyhq/tally/internal/directory/domain"
	"github.com/tallyhq/tally/pkg/db"
	"github.com/tallyhq/tally/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  directorydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  directorydomain.Repository
}

func New(p Params) directorydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("directory.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateUser(ctx context.Context, req directorydomain.CreateUserRequest) (*directorydomain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, directorydomain.ErrInvalidTenant
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, directorydomain.ErrInvalidEmail
	}

	user := directorydomain.User{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		Email:       email,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		DisplayName: strings.TrimSpace(req.DisplayName),
		CreatedAt:   s.clock.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, directorydomain.ErrEmailTaken
		}
		return nil, err
	}

	return toResponse(&user), nil
}

func (s *Service) GetUserByID(ctx context.Context, userID string) (*directorydomain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, directorydomain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(userID)
	if err != nil || id == 0 {
		return nil, directorydomain.ErrInvalidUser
	}

	user, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return toResponse(user), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]directorydomain.Response, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, directorydomain.ErrInvalidTenant
	}

	users, err := s.repo.List(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}

	out := make([]directorydomain.Response, 0, len(users))
	for i := range users {
		out = append(out, *toResponse(&users[i]))
	}
	return out, nil
}

func toResponse(u *directorydomain.User) *directorydomain.Response {
	return &directorydomain.Response{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
