package services

import (
	"github.com/ItsBlendi/Hackathon-projekt/internal/repositories"
	"github.com/ItsBlendi/Hackathon-projekt/internal/security"
)

// PlayerEntry is one row of the player leaderboard.
type PlayerEntry struct {
	Rank      int    `json:"rank"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	TotalXP   int64  `json:"total_xp"`
	Level     int    `json:"level"`
	HouseID   *uint  `json:"house_id,omitempty"`
	HouseName string `json:"house_name,omitempty"`
	BestGame  string `json:"best_game,omitempty"`
	HighScore int64  `json:"high_score"`
}

// HouseEntry is one row of the house rankings.
type HouseEntry struct {
	HouseID     uint   `json:"house_id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	TotalXP     int64  `json:"total_xp"`
	MemberCount int64  `json:"member_count"`
}

// PlayerProgress is the dashboard view of one player's standing.
type PlayerProgress struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	TotalXP    int64  `json:"total_xp"`
	Level      int    `json:"level"`
	ProgressXP int64  `json:"progress_xp"`
	XPBar      string `json:"xp_bar"`
	Rank       int64  `json:"rank"`
	BestGame   string `json:"best_game,omitempty"`
	HighScore  int64  `json:"high_score"`
}

// LeaderboardService is read-only. It never mutates the stores and reads
// outside the scoring transaction, accepting read-committed freshness.
type LeaderboardService struct {
	users      *repositories.UserRepository
	ledger     *repositories.LedgerRepository
	aggregates *repositories.AggregateRepository
}

func NewLeaderboardService(
	users *repositories.UserRepository,
	ledger *repositories.LedgerRepository,
	aggregates *repositories.AggregateRepository,
) *LeaderboardService {
	return &LeaderboardService{
		users:      users,
		ledger:     ledger,
		aggregates: aggregates,
	}
}

// TopPlayers returns the ranked player list. Usernames are user-supplied
// content, so they are sanitized before leaving the service.
func (s *LeaderboardService) TopPlayers(limit int) ([]PlayerEntry, error) {
	users, err := s.users.TopUsersByXP(limit)
	if err != nil {
		return nil, err
	}

	houseNames, err := s.houseNames()
	if err != nil {
		return nil, err
	}

	entries := make([]PlayerEntry, 0, len(users))
	for i, user := range users {
		entry := PlayerEntry{
			Rank:     i + 1,
			UserID:   user.ID,
			Username: security.SanitizeHTML(user.Username),
			TotalXP:  user.TotalXP,
			Level:    user.Level(),
			HouseID:  user.HouseID,
		}
		if user.HouseID != nil {
			entry.HouseName = houseNames[*user.HouseID]
		}

		bestGame, highScore, found, err := s.ledger.BestGame(user.ID)
		if err != nil {
			return nil, err
		}
		if found {
			entry.BestGame = bestGame
			entry.HighScore = highScore
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// HouseRankings returns every house ordered by total XP descending.
func (s *LeaderboardService) HouseRankings() ([]HouseEntry, error) {
	houses, err := s.aggregates.GetHouses()
	if err != nil {
		return nil, err
	}

	members, err := s.users.CountMembersByHouse()
	if err != nil {
		return nil, err
	}

	entries := make([]HouseEntry, 0, len(houses))
	for _, house := range houses {
		entries = append(entries, HouseEntry{
			HouseID:     house.ID,
			Name:        house.Name,
			Color:       house.Color,
			TotalXP:     house.TotalXP,
			MemberCount: members[house.ID],
		})
	}

	return entries, nil
}

// Progress returns one player's XP standing for the dashboard.
func (s *LeaderboardService) Progress(userID uint) (*PlayerProgress, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	rank, err := s.aggregates.UserRank(userID)
	if err != nil {
		return nil, err
	}

	progress := &PlayerProgress{
		UserID:     user.ID,
		Username:   security.SanitizeHTML(user.Username),
		TotalXP:    user.TotalXP,
		Level:      user.Level(),
		ProgressXP: user.ProgressXP(),
		XPBar:      user.XPBar(),
		Rank:       rank,
	}

	bestGame, highScore, found, err := s.ledger.BestGame(userID)
	if err != nil {
		return nil, err
	}
	if found {
		progress.BestGame = bestGame
		progress.HighScore = highScore
	}

	return progress, nil
}

func (s *LeaderboardService) houseNames() (map[uint]string, error) {
	houses, err := s.aggregates.GetHouses()
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(houses))
	for _, house := range houses {
		names[house.ID] = house.Name
	}
	return names, nil
}
