package service

import (
	"context"
	"fmt"

	"estate/config"
	"estate/infras/jwt"
	"estate/infras/otel"
	"estate/infras/postgres"
	agencyModel "estate/internal/domains/agency/model"
	agencyRepo "estate/internal/domains/agency/repository"
	"estate/internal/domains/auth/model/dto"
	customerModel "estate/internal/domains/customer/model"
	customerRepo "estate/internal/domains/customer/repository"
	userModel "estate/internal/domains/user/model"
	userRepo "estate/internal/domains/user/repository"
	"estate/shared"
	"estate/shared/constant"
	"estate/shared/failure"
	"estate/shared/password"
	"estate/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID string) error
	SetStatus(ctx context.Context, req dto.UpdateStatusRequest, userID string) error
}

type serviceImpl struct {
	userRepo     userRepo.User
	agencyRepo   agencyRepo.Agency
	customerRepo customerRepo.Customer
	txn          postgres.Transactor
	cfg          *config.Config
	otel         otel.Otel
	jwtService   jwt.JWT
}

func New(
	userRepo userRepo.User,
	agencyRepo agencyRepo.Agency,
	customerRepo customerRepo.Customer,
	txn postgres.Transactor,
	cfg *config.Config,
	otel otel.Otel,
	jwt jwt.JWT,
) Auth {
	return &serviceImpl{
		userRepo:     userRepo,
		agencyRepo:   agencyRepo,
		customerRepo: customerRepo,
		txn:          txn,
		cfg:          cfg,
		otel:         otel,
		jwtService:   jwt,
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer scope.TraceIfError(err)

	emailFilter := shared.FilterByField(userModel.FieldEmail, userModel.TableName, req.Email)

	exists, err := s.userRepo.Exist(ctx, emailFilter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return fmt.Errorf("failed to check if user exists: %w", err)
	}

	if exists {
		return failure.BadRequestFromString("email already registered") // nolint:wrapcheck
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return fmt.Errorf("failed to hash password: %w", err)
	}

	username := constant.ContextGuest
	user := req.ToUserModel(username, hashedPassword)

	// The user row and its role profile land together or not at all.
	err = s.txn.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.userRepo.InsertTx(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		switch req.Role {
		case constant.RoleAgency:
			if err := s.agencyRepo.InsertTx(ctx, tx, req.ToAgencyModel(username, user.ID)); err != nil {
				return fmt.Errorf("failed to create agency profile: %w", err)
			}
		case constant.RoleCustomer:
			if err := s.customerRepo.InsertTx(ctx, tx, req.ToCustomerModel(username, user.ID)); err != nil {
				return fmt.Errorf("failed to create customer profile: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to register user")

		return fmt.Errorf("failed to register user: %w", err)
	}

	return nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer scope.TraceIfError(err)

	emailFilter := shared.FilterByField(userModel.FieldEmail, userModel.TableName, req.Email)

	user, err := s.userRepo.Get(ctx, emailFilter)
	if err != nil || user.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("login attempt with non-existent email")

		return res, failure.BadRequestFromString("invalid email or password") // nolint:wrapcheck
	}

	if err := password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

		return res, failure.BadRequestFromString("invalid email or password") // nolint:wrapcheck
	}

	if user.Status != constant.UserStatusActive {
		return res, failure.Unauthorized("user account is blocked") // nolint:wrapcheck
	}

	profileID, err := s.resolveProfileID(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to resolve profile")

		return res, fmt.Errorf("failed to resolve profile: %w", err)
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email, user.Role, profileID)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	lastLogin := dto.UpdateLastLoginRequest{LastLogin: timezone.Now()}
	updatedFields := shared.TransformFields(lastLogin, user.ID)

	if err := s.userRepo.Update(ctx, updatedFields, emailFilter); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")

		return res, fmt.Errorf("failed to update last login: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) resolveProfileID(ctx context.Context, user userModel.User) (string, error) {
	switch user.Role {
	case constant.RoleAgency:
		agency, err := s.agencyRepo.Get(ctx, shared.FilterByField(agencyModel.FieldUserID, agencyModel.TableName, user.ID))
		if err != nil {
			return constant.Empty, fmt.Errorf("failed to get agency profile: %w", err)
		}

		return agency.ID, nil
	case constant.RoleCustomer:
		customer, err := s.customerRepo.Get(ctx, shared.FilterByField(customerModel.FieldUserID, customerModel.TableName, user.ID))
		if err != nil {
			return constant.Empty, fmt.Errorf("failed to get customer profile: %w", err)
		}

		return customer.ID, nil
	}

	return constant.Empty, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	tokenPair, err := s.jwtService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token") // nolint:wrapcheck
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(userID, userModel.FieldID, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound("user not found") // nolint:wrapcheck
	}

	if err := password.Verify(req.CurrentPassword, user.Password); err != nil {
		return failure.BadRequestFromString("current password is incorrect") // nolint:wrapcheck
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	updatePassword := dto.UpdatePasswordRequest{Password: hashedPassword}
	updatedFields := shared.TransformFields(updatePassword, userID)

	if err = s.userRepo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *serviceImpl) SetStatus(ctx context.Context, req dto.UpdateStatusRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(userID, userModel.FieldID, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound("user not found") // nolint:wrapcheck
	}

	if user.Role == constant.RoleAdmin {
		return failure.Forbidden("admin accounts cannot be blocked") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, actor)
	if err = s.userRepo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update user status")

		return fmt.Errorf("failed to update user status: %w", err)
	}

	return nil
}
