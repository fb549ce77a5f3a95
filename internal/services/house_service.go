package services

import (
	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/ItsBlendi/Hackathon-projekt/internal/repositories"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/errors"
)

// HouseService handles house assignment. It runs once per user at
// registration and plays no part in the scoring pipeline.
type HouseService struct {
	users      *repositories.UserRepository
	aggregates *repositories.AggregateRepository
}

func NewHouseService(users *repositories.UserRepository, aggregates *repositories.AggregateRepository) *HouseService {
	return &HouseService{
		users:      users,
		aggregates: aggregates,
	}
}

// PickHouse returns the least-populated house, preferring empty houses so
// early registrations spread across all four. Ties go to the lowest id.
func (s *HouseService) PickHouse() (uint, error) {
	houses, err := s.aggregates.GetHouses()
	if err != nil {
		return 0, err
	}
	if len(houses) == 0 {
		return 0, errors.New(errors.ErrCodeNotFound, "no houses provisioned")
	}

	counts, err := s.users.CountMembersByHouse()
	if err != nil {
		return 0, err
	}

	best := houses[0].ID
	bestCount := counts[houses[0].ID]
	for _, house := range houses[1:] {
		count := counts[house.ID]
		if count < bestCount || (count == bestCount && house.ID < best) {
			best = house.ID
			bestCount = count
		}
	}

	return best, nil
}

// Register creates a user and assigns them to the least-populated house.
func (s *HouseService) Register(username, email string) (*models.User, error) {
	houseID, err := s.PickHouse()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		HouseID:  &houseID,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}
