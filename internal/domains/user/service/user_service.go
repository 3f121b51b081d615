package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"moviehub-backend/internal/domains/user/model"
	"moviehub-backend/internal/domains/user/repository"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/pkg/jwt"
)

type userService struct {
	userRepo   repository.UserRepository
	jwtManager *jwt.Manager
}

func NewUserService(userRepo repository.UserRepository, jwtManager *jwt.Manager) ServiceInterface {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthenticatedUser, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		Bio:          req.Bio,
		Image:        req.Image,
		Role:         role,
		PasswordHash: string(hash),
	}

	if _, err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	return s.authenticated(user)
}

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthenticatedUser, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Forbidden(req.Email, "invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Forbidden(req.Email, "invalid credentials")
	}

	return s.authenticated(user)
}

func (s *userService) GetCurrent(ctx context.Context, username string) (*model.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

func (s *userService) Update(ctx context.Context, username string, req model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Image != nil {
		user.Image = req.Image
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, viewer *string, username string) (*model.Profile, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}

	if viewer != nil {
		viewerID, err := s.userRepo.FindIDByUsername(ctx, *viewer)
		if err != nil {
			return nil, err
		}
		following, err := s.userRepo.IsFollowing(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		profile.Following = &following
	}

	return profile, nil
}

func (s *userService) Follow(ctx context.Context, viewer, username string) (*model.Profile, error) {
	if err := s.setFollow(ctx, viewer, username, s.userRepo.Follow); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, &viewer, username)
}

func (s *userService) Unfollow(ctx context.Context, viewer, username string) (*model.Profile, error) {
	if err := s.setFollow(ctx, viewer, username, s.userRepo.Unfollow); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, &viewer, username)
}

func (s *userService) setFollow(ctx context.Context, viewer, username string, op func(context.Context, int64, int64) error) error {
	viewerID, err := s.userRepo.FindIDByUsername(ctx, viewer)
	if err != nil {
		return err
	}
	followedID, err := s.userRepo.FindIDByUsername(ctx, username)
	if err != nil {
		return err
	}
	return op(ctx, viewerID, followedID)
}

func (s *userService) authenticated(user *model.User) (*model.AuthenticatedUser, error) {
	token, err := s.jwtManager.GenerateToken(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.AuthenticatedUser{
		Email:    user.Email,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
		Token:    token,
	}, nil
}
