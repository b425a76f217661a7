package users

import (
	"context"
	"errors"
	"strings"

	"resume-builder/internal/shared/auth"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromIdentity stores the profile carried by a verified login.
func (s *Service) UpsertFromIdentity(ctx context.Context, id auth.Identity) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(id.ID) == "" || strings.TrimSpace(id.Email) == "" {
		return errors.New("user id and email are required")
	}
	return s.Repo.Upsert(ctx, User{
		ID:         id.ID,
		Email:      strings.TrimSpace(id.Email),
		GivenName:  strings.TrimSpace(id.GivenName),
		FamilyName: strings.TrimSpace(id.FamilyName),
		PictureURL: id.Picture,
	})
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// Profile merges the stored profile over the token identity. Missing
// profiles fall back to the identity alone.
func (s *Service) Profile(ctx context.Context, id auth.Identity) (User, error) {
	base := User{
		ID:         id.ID,
		Email:      id.Email,
		GivenName:  id.GivenName,
		FamilyName: id.FamilyName,
		PictureURL: id.Picture,
	}
	stored, err := s.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return base, nil
		}
		return User{}, err
	}
	if stored.Email == "" {
		stored.Email = base.Email
	}
	if stored.GivenName == "" && stored.FamilyName == "" {
		stored.GivenName, stored.FamilyName = base.GivenName, base.FamilyName
	}
	if stored.PictureURL == "" {
		stored.PictureURL = base.PictureURL
	}
	return stored, nil
}
