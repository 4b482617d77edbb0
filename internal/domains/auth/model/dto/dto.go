package dto

import (
	"time"

	"estate/infras/jwt"
	agencyModel "estate/internal/domains/agency/model"
	customerModel "estate/internal/domains/customer/model"
	userModel "estate/internal/domains/user/model"
	"estate/shared/constant"
	gModel "estate/shared/model"
	"estate/shared/timezone"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
	Role     string `json:"role"      validate:"required,oneof=agency customer"`
	Name     string `json:"name"      validate:"required,max=100"`
	Phone    string `json:"phone"     validate:"omitempty,max=20"`
	Address  string `json:"address"   validate:"omitempty,max=255"`
}

func (r *RegisterRequest) ToUserModel(username string, hashedPassword string) userModel.User {
	return userModel.User{
		ID:       uuid.NewString(),
		Email:    r.Email,
		Password: hashedPassword,
		Role:     r.Role,
		Status:   constant.UserStatusActive,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  username,
			ModifiedBy: username,
		},
	}
}

func (r *RegisterRequest) ToAgencyModel(username, userID string) agencyModel.Agency {
	return agencyModel.Agency{
		ID:      uuid.NewString(),
		UserID:  userID,
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
		Image:   constant.ImagePlaceholder,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  username,
			ModifiedBy: username,
		},
	}
}

func (r *RegisterRequest) ToCustomerModel(username, userID string) customerModel.Customer {
	return customerModel.Customer{
		ID:       uuid.NewString(),
		UserID:   userID,
		FullName: r.Name,
		Phone:    r.Phone,
		Address:  r.Address,
		Image:    constant.ImagePlaceholder,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  username,
			ModifiedBy: username,
		},
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"last_login" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	l.AccessToken = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.ExpiresIn = tokenPair.ExpiresIn
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (r *RefreshTokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	r.AccessToken = tokenPair.AccessToken
	r.RefreshToken = tokenPair.RefreshToken
	r.ExpiresIn = tokenPair.ExpiresIn
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password" validate:"required,min=8"`
}

type UpdateStatusRequest struct {
	Status string `db:"status" json:"status" validate:"required,oneof=Active Block"`
}
