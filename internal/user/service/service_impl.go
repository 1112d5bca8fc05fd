package service

import (
	"context"
	"strings"
	"time"

	"github.com/coptimize/openinventory/internal/clock"
	"github.com/coptimize/openinventory/internal/user/domain"
	"github.com/coptimize/openinventory/pkg/db"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Params struct {
	fx.In

	Store *db.Store
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	store *db.Store
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		store: p.Store,
		log:   p.Log.Named("user.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.repo.FindByUsername(ctx, s.store.DB(), strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	at := s.now()
	if err := s.repo.TouchLastLogin(ctx, s.store.DB(), u.ID, at); err != nil {
		s.log.Warn("record last login", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLogin = &at
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}
	if len(req.Password) < 8 {
		return nil, domain.ErrInvalidPassword
	}
	if !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	actor := strings.TrimSpace(req.ActorID)
	now := s.now()
	u := &domain.User{
		ID:            uuid.NewString(),
		Username:      username,
		PasswordHash:  string(hash),
		Role:          req.Role,
		CreatorUserID: &actor,
		CreatedAt:     now,
		UpdatedAt:     &now,
	}
	if err := s.repo.Create(ctx, s.store.DB(), u); err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, domain.ErrUsernameTaken
		case db.IsPermissionDenied(err):
			return nil, domain.ErrPermissionDenied
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, s.store.DB(), strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.FindAll(ctx, s.store.DB())
}

func (s *Service) ChangeRole(ctx context.Context, req domain.ChangeRoleRequest) (*domain.User, error) {
	if !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}
	u, err := s.repo.FindByID(ctx, s.store.DB(), strings.TrimSpace(req.ID))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	if u.Role == req.Role {
		return u, nil
	}

	err = s.repo.UpdateRole(ctx, s.store.DB(), u.ID, req.Role, strings.TrimSpace(req.ActorID), s.now())
	if err != nil {
		if db.IsPermissionDenied(err) {
			return nil, domain.ErrPermissionDenied
		}
		return nil, err
	}
	return s.repo.FindByID(ctx, s.store.DB(), u.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.repo.FindByID(ctx, s.store.DB(), strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrNotFound
	}
	if u.Role == domain.RoleSuperadmin {
		return domain.ErrPermissionDenied
	}
	return s.repo.SoftDelete(ctx, s.store.DB(), u.ID, s.now())
}
