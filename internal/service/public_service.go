package service

import (
	"context"

	"pantryshift/internal/models"
	"pantryshift/internal/repository"
)

// PublicService serves the unauthenticated volunteer-facing board.
type PublicService struct {
	pantries repository.PantryRepository
	shifts   repository.ShiftRepository
}

// NewPublicService returns a new PublicService.
func NewPublicService(pantries repository.PantryRepository, shifts repository.ShiftRepository) *PublicService {
	return &PublicService{pantries: pantries, shifts: shifts}
}

// Shifts returns the non-cancelled shifts of the pantry with the given slug,
// roles included. An unknown slug yields an empty board, not an error; the
// public page renders it as "no shifts posted yet".
func (s *PublicService) Shifts(ctx context.Context, slug string) ([]models.Shift, error) {
	pantry, err := s.pantries.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if pantry == nil {
		return []models.Shift{}, nil
	}
	return s.shifts.ListOpenByPantry(ctx, pantry.ID)
}
