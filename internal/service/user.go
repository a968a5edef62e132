package service

import (
	"context"
	"time"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *v1.RegisterRequest) error
	Login(ctx context.Context, req *v1.LoginRequest) (string, error)
	GetProfile(ctx context.Context, userId string) (*v1.GetProfileResponseData, error)
	UpdateProfile(ctx context.Context, userId string, req *v1.UpdateProfileRequest) error
}

func NewUserService(
	service *Service,
	userRepo repository.UserRepository,
	logger *log.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		Service:  service,
		logger:   logger,
	}
}

type userService struct {
	userRepo repository.UserRepository
	*Service
	logger *log.Logger
}

func (s *userService) Register(ctx context.Context, req *v1.RegisterRequest) error {
	// 检查邮箱是否已被使用
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get user by email", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if user != nil {
		return v1.ErrEmailAlreadyUse
	}

	// 检查用户名是否已被使用
	user, err = s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get user by username", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if user != nil {
		return v1.ErrUsernameAlreadyUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	userId, err := s.sid.GenString()
	if err != nil {
		return err
	}

	newUser := &model.User{
		UserId:   userId,
		Username: req.Username,
		Nickname: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err = s.userRepo.Create(ctx, newUser); err != nil {
		s.logger.WithContext(ctx).Error("failed to create user", zap.Error(err))
		return v1.ErrInternalServerError
	}
	return nil
}

func (s *userService) Login(ctx context.Context, req *v1.LoginRequest) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get user by email", zap.Error(err))
		return "", v1.ErrInternalServerError
	}
	if user == nil {
		return "", v1.ErrUnauthorized
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", v1.ErrUnauthorized
	}

	token, err := s.jwt.GenToken(user.UserId, time.Now().Add(time.Hour*24*90))
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to generate token", zap.Error(err))
		return "", v1.ErrInternalServerError
	}
	return token, nil
}

func (s *userService) GetProfile(ctx context.Context, userId string) (*v1.GetProfileResponseData, error) {
	user, err := s.userRepo.GetByID(ctx, userId)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get user", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if user == nil {
		return nil, v1.ErrNotFound
	}

	return &v1.GetProfileResponseData{
		UserId:   user.UserId,
		Username: user.Username,
		Nickname: user.Nickname,
		Email:    user.Email,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId string, req *v1.UpdateProfileRequest) error {
	user, err := s.userRepo.GetByID(ctx, userId)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get user", zap.Error(err))
		return v1.ErrInternalServerError
	}
	if user == nil {
		return v1.ErrNotFound
	}

	user.Email = req.Email
	user.Nickname = req.Nickname

	if err = s.userRepo.Update(ctx, user); err != nil {
		s.logger.WithContext(ctx).Error("failed to update user", zap.Error(err))
		return v1.ErrInternalServerError
	}
	return nil
}
