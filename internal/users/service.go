package users

import (
	"context"

	"github.com/pacific-clothing/personnel-api/internal/models"
)

// Service holds user-related business logic on top of a Repository.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a user from an OIDC claims map.
// Returns nil without error when the claims carry no subject.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, nil
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return s.repo.UpsertBySub(ctx, &models.User{Sub: sub, Email: email, Name: name})
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.repo.GetBySub(ctx, sub)
}
