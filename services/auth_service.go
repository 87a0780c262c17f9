package services

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/greenearthng/greenloop/config"
	"github.com/greenearthng/greenloop/db"
	apiError "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/mailingservices"
	"github.com/greenearthng/greenloop/models"
	"github.com/greenearthng/greenloop/services/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService interface
type AuthService interface {
	SignupUser(request *models.User) (*models.User, error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	SocialLoginUser(profile *models.CreateSocialUserParams) (*models.LoginResponse, *apiError.Error)
	GetUserProfile(userID uint) (*models.User, error)
	UpdateUserProfile(userID uint, fullname string) (*models.User, error)
	ListUsers() ([]models.UserResponse, error)
	SendEmailForPasswordReset(request *models.ForgotPassword) *apiError.Error
	ResetPassword(request *models.ResetPassword, token string) *apiError.Error
}

type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
	mail     mailingservices.Mailer
}

// NewAuthService instantiate an authService
func NewAuthService(authRepo db.AuthRepository, mail mailingservices.Mailer, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
		mail:     mail,
	}
}

func (s *authService) SignupUser(user *models.User) (*models.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if user.Email == "" {
		return nil, errors.New("email is empty")
	}

	if err := s.authRepo.IsEmailExist(user.Email); err != nil {
		log.Printf("SignupUser error: %v", err)
		return nil, apiError.New("email already in use", http.StatusConflict)
	}

	if err := models.ValidatePassword(user.Password); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("SignupUser error hashing password: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	user.HashedPassword = string(hashedPassword)
	user.Password = ""

	created, err := s.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("SignupUser error creating user: %v", err)
		return nil, apiError.GetUniqueContraintError(err)
	}

	return created, nil
}

func GenerateHashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashedPassword), err
}

func (s *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	foundUser, err := s.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("invalid email or password", http.StatusUnauthorized)
		}
		log.Printf("LoginUser error finding user: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if err := foundUser.VerifyPassword(loginRequest.Password); err != nil {
		return nil, apiError.New("invalid email or password", http.StatusUnauthorized)
	}

	return s.buildLoginResponse(foundUser)
}

// SocialLoginUser resolves an identity-provider profile to a user row,
// creating the row lazily on first login. The provider is opaque: all we
// rely on is an email and a display name.
func (s *authService) SocialLoginUser(profile *models.CreateSocialUserParams) (*models.LoginResponse, *apiError.Error) {
	if profile == nil || profile.Email == "" {
		return nil, apiError.New("identity provider returned no email", http.StatusBadRequest)
	}

	foundUser, err := s.authRepo.FindUserByEmail(profile.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SocialLoginUser error finding user: %v", err)
			return nil, apiError.ErrInternalServerError
		}
		foundUser, err = s.authRepo.CreateSocialUser(profile)
		if err != nil {
			log.Printf("SocialLoginUser error creating user: %v", err)
			return nil, apiError.New("unable to create user", http.StatusInternalServerError)
		}
	}

	return s.buildLoginResponse(foundUser)
}

func (s *authService) buildLoginResponse(user *models.User) (*models.LoginResponse, *apiError.Error) {
	accessToken, refreshToken, err := jwt.GenerateTokenPair(user.Email, s.Config.JWTSecret, user.ID)
	if err != nil {
		log.Printf("error generating token pair for user %s: %v", user.Email, err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		UserResponse: models.UserResponse{
			ID:       user.ID,
			Fullname: user.Fullname,
			Email:    user.Email,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *authService) GetUserProfile(userID uint) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateUserProfile(userID uint, fullname string) (*models.User, error) {
	if len(fullname) < 2 {
		return nil, apiError.New("fullname must be at least 2 characters", http.StatusBadRequest)
	}

	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		return nil, err
	}

	user.Fullname = fullname
	if err := s.authRepo.UpdateUser(user); err != nil {
		log.Printf("error updating user %d: %v", userID, err)
		return nil, apiError.ErrInternalServerError
	}
	return user, nil
}

func (s *authService) ListUsers() ([]models.UserResponse, error) {
	users, err := s.authRepo.GetAllUsers()
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	responses := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, models.UserResponse{
			ID:       user.ID,
			Fullname: user.Fullname,
			Email:    user.Email,
		})
	}
	return responses, nil
}

func (s *authService) SendEmailForPasswordReset(request *models.ForgotPassword) *apiError.Error {
	user, err := s.authRepo.FindUserByEmail(request.Email)
	if err != nil {
		return apiError.New("user not found", http.StatusNotFound)
	}

	resetToken, err := jwt.GeneratePasswordResetToken(user.ID, s.Config.JWTSecret)
	if err != nil {
		return apiError.New("failed to generate reset token", http.StatusInternalServerError)
	}

	baseURL := s.Config.BaseUrl
	if baseURL == "" {
		baseURL = os.Getenv("BASE_URL")
	}
	resetLink := fmt.Sprintf("%s/reset-password/%s", baseURL, resetToken)

	if _, err := s.mail.SendResetPassword(user.Email, resetLink); err != nil {
		log.Printf("error sending reset mail to %s: %v", user.Email, err)
		return apiError.New("connection to mail service interrupted", http.StatusInternalServerError)
	}
	return nil
}

func (s *authService) ResetPassword(request *models.ResetPassword, token string) *apiError.Error {
	if request.Password != request.ConfirmPassword {
		return apiError.New("passwords do not match", http.StatusBadRequest)
	}
	if err := models.ValidatePassword(request.Password); err != nil {
		return apiError.New(err.Error(), http.StatusBadRequest)
	}

	claims, err := jwt.ValidateAndGetClaims(token, s.Config.JWTSecret)
	if err != nil {
		return apiError.New("invalid or expired reset token", http.StatusUnauthorized)
	}
	if claims["type"] != "password_reset_token" {
		return apiError.New("invalid reset token", http.StatusUnauthorized)
	}
	idValue, ok := claims["id"].(float64)
	if !ok {
		return apiError.New("invalid reset token", http.StatusUnauthorized)
	}

	hashedPassword, err := GenerateHashPassword(request.Password)
	if err != nil {
		return apiError.ErrInternalServerError
	}

	if err := s.authRepo.ResetPassword(uint(idValue), hashedPassword); err != nil {
		log.Printf("error resetting password: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}
