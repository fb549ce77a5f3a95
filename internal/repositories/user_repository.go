package repositories

import (
	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user. House membership counts are maintained
// in the same transaction so the houses page never shows a torn count.
func (r *UserRepository) CreateUser(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create user")
		}
		if user.HouseID != nil {
			err := tx.Model(&models.House{}).
				Where("id = ?", *user.HouseID).
				Update("member_count", gorm.Expr("member_count + 1")).Error
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "failed to bump house member count")
			}
		}
		return nil
	})
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	result := r.db.First(&user, id)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	result := r.db.Where("username = ?", username).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to get user")
	}

	return &user, nil
}

// GetUserForUpdate locks and returns the user row inside the caller's
// transaction. The lock serializes concurrent submissions for the same
// user and pins the house snapshot for the rest of the transaction.
func (r *UserRepository) GetUserForUpdate(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := lockForUpdate(tx).First(&user, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to lock user")
	}
	return &user, nil
}

// UserExists checks if a user exists by ID
func (r *UserRepository) UserExists(id uint) (bool, error) {
	var count int64
	result := r.db.Model(&models.User{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to check user existence")
	}
	return count > 0, nil
}

// UpdateLastActivity updates user's last activity timestamp
func (r *UserRepository) UpdateLastActivity(userID uint) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Update("last_activity", gorm.Expr("CURRENT_TIMESTAMP"))
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update last activity")
	}
	return nil
}

// TopUsersByXP returns users with XP, ordered for the leaderboard: total
// XP descending, ties by highest single event XP, then by id.
func (r *UserRepository) TopUsersByXP(limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("total_xp > 0").
		Order(`total_xp DESC, (SELECT COALESCE(MAX(xp_earned), 0) FROM score_events WHERE score_events.user_id = users.id) DESC, id ASC`).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to query top users")
	}
	return users, nil
}

// CountMembersByHouse returns the number of active members per house.
func (r *UserRepository) CountMembersByHouse() (map[uint]int64, error) {
	var rows []struct {
		HouseID uint
		Members int64
	}
	err := r.db.Model(&models.User{}).
		Select("house_id, COUNT(*) AS members").
		Where("house_id IS NOT NULL").
		Group("house_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to count house members")
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.HouseID] = row.Members
	}
	return counts, nil
}
