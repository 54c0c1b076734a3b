package service

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/models"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/repository"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) error
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
	GuestLogin(ctx context.Context) (*models.GuestLoginResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, tokens *TokenIssuer) UserService {
	return &userService{userRepo: userRepo, tokens: tokens}
}

// UserPlayerID is the player id games of a registered user are owned by.
func UserPlayerID(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}

// Register handles user registration.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) error {
	// Check if user already exists
	existingUser, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	if existingUser != nil {
		return ErrUsernameTaken
	}

	user := &models.User{
		Username: req.Username,
	}

	return s.userRepo.CreateUser(ctx, user, req.Password)
}

// Login handles user login and returns a JWT on success.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(UserPlayerID(user.ID), user.Username, false)
}

// GuestLogin generates a guest player id and a token for it.
func (s *userService) GuestLogin(ctx context.Context) (*models.GuestLoginResponse, error) {
	playerID := "guest-" + uuid.NewString()
	token, err := s.tokens.Issue(playerID, "", true)
	if err != nil {
		return nil, err
	}
	return &models.GuestLoginResponse{PlayerID: playerID, Token: token}, nil
}
