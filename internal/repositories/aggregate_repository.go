package repositories

import (
	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/errors"
	"gorm.io/gorm"
)

// AggregateRepository owns the running XP totals on users and houses.
// Increments are read-modify-write under a row lock inside the scoring
// transaction, so concurrent submissions for the same key serialize
// instead of losing updates.
type AggregateRepository struct {
	db *gorm.DB
}

func NewAggregateRepository(db *gorm.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// IncrementUserXP adds delta to the user's total inside the caller's
// transaction and returns the new total.
func (r *AggregateRepository) IncrementUserXP(tx *gorm.DB, userID uint, delta int64) (int64, error) {
	var user models.User
	if err := lockForUpdate(tx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, errors.New(errors.ErrCodeNotFound, "user not found")
		}
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to lock user row")
	}

	newTotal := user.TotalXP + delta
	if err := tx.Model(&user).Update("total_xp", newTotal).Error; err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to update user xp")
	}

	return newTotal, nil
}

// IncrementHouseXP adds delta to the house's total inside the caller's
// transaction and returns the new total.
func (r *AggregateRepository) IncrementHouseXP(tx *gorm.DB, houseID uint, delta int64) (int64, error) {
	var house models.House
	if err := lockForUpdate(tx).First(&house, houseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, errors.New(errors.ErrCodeNotFound, "house not found")
		}
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to lock house row")
	}

	newTotal := house.TotalXP + delta
	if err := tx.Model(&house).Update("total_xp", newTotal).Error; err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to update house xp")
	}

	return newTotal, nil
}

// GetUserXP retrieves the user's current XP total.
func (r *AggregateRepository) GetUserXP(userID uint) (int64, error) {
	var user models.User
	result := r.db.Select("total_xp").First(&user, userID)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeStorageError, "failed to get user xp")
	}

	return user.TotalXP, nil
}

// GetHouseXP retrieves the house's current XP total.
func (r *AggregateRepository) GetHouseXP(houseID uint) (int64, error) {
	var house models.House
	result := r.db.Select("total_xp").First(&house, houseID)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, errors.New(errors.ErrCodeNotFound, "house not found")
	}
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeStorageError, "failed to get house xp")
	}

	return house.TotalXP, nil
}

// UserRank returns the user's 1-based leaderboard position by total XP
// descending. Ties break by highest single score event XP, then by user
// id, so the ordering is deterministic.
func (r *AggregateRepository) UserRank(userID uint) (int64, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, errors.New(errors.ErrCodeNotFound, "user not found")
		}
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to get user")
	}

	var myBest int64
	if err := r.db.Model(&models.ScoreEvent{}).
		Select("COALESCE(MAX(xp_earned), 0)").
		Where("user_id = ?", userID).
		Scan(&myBest).Error; err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to get tie-break score")
	}

	var ahead int64
	err := r.db.Raw(`
		SELECT COUNT(*) FROM users u
		WHERE u.total_xp > ?
		   OR (u.total_xp = ? AND (SELECT COALESCE(MAX(xp_earned), 0) FROM score_events WHERE user_id = u.id) > ?)
		   OR (u.total_xp = ? AND (SELECT COALESCE(MAX(xp_earned), 0) FROM score_events WHERE user_id = u.id) = ? AND u.id < ?)
	`, user.TotalXP, user.TotalXP, myBest, user.TotalXP, myBest, userID).Scan(&ahead).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to compute rank")
	}

	return ahead + 1, nil
}

// GetHouses returns every house ordered by total XP descending.
func (r *AggregateRepository) GetHouses() ([]models.House, error) {
	var houses []models.House
	if err := r.db.Order("total_xp DESC, id ASC").Find(&houses).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to list houses")
	}
	return houses, nil
}
