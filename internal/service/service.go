// Package service provisions pre-verified test accounts: an auth user with a
// confirmed email plus, on a best-effort basis, its profile row.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/lmkadmin/internal/logger"
	"github.com/patric-chuzhbe/lmkadmin/internal/models"
	"github.com/patric-chuzhbe/lmkadmin/internal/platform"
	"github.com/patric-chuzhbe/lmkadmin/internal/user"
)

// ErrEmailRegistered is returned by Create when the platform already has a
// user with the requested email.
var ErrEmailRegistered = errors.New("email already registered")

type userCreator interface {
	CreateUser(ctx context.Context, request models.NewUserRequest) (*user.User, error)
}

type profileInserter interface {
	InsertProfile(ctx context.Context, profile models.Profile) error
}

type platformClient interface {
	userCreator
	profileInserter
}

// TestUsers creates test accounts on the platform.
type TestUsers struct {
	platform platformClient
	validate *validator.Validate
	now      func() time.Time
}

// New returns a TestUsers working against the given platform client.
func New(client platformClient) *TestUsers {
	return &TestUsers{
		platform: client,
		validate: validator.New(),
		now:      time.Now,
	}
}

// GeneratedEmail returns the address used when no email is configured.
func GeneratedEmail(now time.Time) string {
	return fmt.Sprintf("testuser%d@example.com", now.Unix())
}

func tasteTags(tags []string) []models.TasteTag {
	trimmed := funk.FilterString(
		funk.Map(tags, strings.TrimSpace).([]string),
		func(tag string) bool { return tag != "" },
	)

	return funk.Map(
		funk.UniqString(trimmed),
		func(tag string) models.TasteTag { return models.TasteTag{Name: tag} },
	).([]models.TasteTag)
}

// Create registers a verified user and then tries to insert its profile.
// A failed profile insert is reported in the returned account but is not an
// error: the application creates missing profiles on first login.
func (s *TestUsers) Create(ctx context.Context, params models.TestUserParams) (*models.TestAccount, error) {
	email := params.Email
	if email == "" {
		email = GeneratedEmail(s.now())
	}

	request := models.NewUserRequest{
		Email:        email,
		Password:     params.Password,
		EmailConfirm: true,
		UserMetadata: models.UserMetadata{FullName: params.FullName},
	}
	if err := s.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("invalid test user: %w", err)
	}

	logger.Log.Infoln("Creating test user", "email", email)

	created, err := s.platform.CreateUser(ctx, request)
	var apiErr *platform.APIError
	if errors.As(err, &apiErr) && apiErr.IsConflict() {
		return nil, fmt.Errorf("%w: %s: %w", ErrEmailRegistered, email, err)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	account := &models.TestAccount{
		UserID:        created.ID,
		Email:         email,
		Password:      params.Password,
		EmailVerified: created.IsEmailConfirmed(),
	}

	logger.Log.Infoln(
		"User created successfully",
		"userID", account.UserID,
		"email", account.Email,
		"emailVerified", account.EmailVerified,
	)

	profile := models.Profile{
		ID:           created.ID,
		FullName:     params.FullName,
		Location:     params.Location,
		TasteProfile: tasteTags(params.Tags),
		CreatedAt:    models.ServerTimestamp,
		UpdatedAt:    models.ServerTimestamp,
	}

	if err := s.insertProfile(ctx, profile); err != nil {
		account.ProfileError = err.Error()
		logger.Log.Warnw(
			"Could not create profile, it can be created on first login",
			"userID", account.UserID,
			"error", err,
		)

		return account, nil
	}

	account.ProfileCreated = true
	logger.Log.Infoln("Profile created successfully", "userID", account.UserID)

	return account, nil
}

func (s *TestUsers) insertProfile(ctx context.Context, profile models.Profile) error {
	if err := s.validate.Struct(profile); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	return s.platform.InsertProfile(ctx, profile)
}
