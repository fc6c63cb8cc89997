// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package waitlist

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tradewayhq/tradeway/internal/platform/validate"
	"github.com/tradewayhq/tradeway/pkg/uuidv7"
)

// Service implements the waitlist use cases.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// JoinInput is a signup submission.
type JoinInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	ReferralSource string `json:"referral_source"`
}

// Join validates and persists a signup. A duplicate email surfaces as
// CONFLICT from the unique index; there is no existence pre-check, so the
// outcome is race-free.
func (service *Service) Join(ctx context.Context, input JoinInput) (*Entry, error) {
	validator := &validate.Validator{}
	validator.Required("name", input.Name).MaxLen("name", input.Name, 120)
	validator.Required("email", input.Email)
	if input.Email != "" {
		validator.Email("email", input.Email)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:             uuidv7.New(),
		Name:           input.Name,
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		ReferralSource: input.ReferralSource,
	}

	if err := service.repository.Create(ctx, entry); err != nil {
		return nil, err
	}

	service.logger.Info("waitlist_joined", slog.String("entry_id", entry.ID))

	return entry, nil
}

// List returns a page of entries for the admin dashboard.
func (service *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return service.repository.List(ctx, limit, offset)
}
