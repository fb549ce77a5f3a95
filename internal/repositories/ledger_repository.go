package repositories

import (
	stderrors "errors"

	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/errors"
	"gorm.io/gorm"
)

// LedgerRepository owns the append-only score_events table. Append is the
// only mutation; everything else is a read. Methods taking a tx argument
// are meant to run inside the scoring transaction.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append inserts a score event inside the caller's transaction. A unique
// index on (user_id, idempotency_key) turns a concurrent duplicate retry
// into a DUPLICATE_SUBMISSION error instead of a double credit.
func (r *LedgerRepository) Append(tx *gorm.DB, event *models.ScoreEvent) error {
	if err := tx.Create(event).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.New(errors.ErrCodeDuplicateSubmission, "score already submitted with this idempotency key")
		}
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to append score event")
	}
	return nil
}

// FindByIdempotencyKey returns the prior event for (userID, key), or nil
// when the submission has not been seen before.
func (r *LedgerRepository) FindByIdempotencyKey(tx *gorm.DB, userID uint, key string) (*models.ScoreEvent, error) {
	var event models.ScoreEvent
	err := tx.Where("user_id = ? AND idempotency_key = ?", userID, key).First(&event).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to look up idempotency key")
	}
	return &event, nil
}

// MaxRawScore returns the user's best raw score for a game before the
// current submission is appended. The second return is false when the
// user has never played the game.
func (r *LedgerRepository) MaxRawScore(tx *gorm.DB, userID uint, gameSlug string) (int64, bool, error) {
	var row struct {
		Best  int64
		Plays int64
	}
	err := tx.Model(&models.ScoreEvent{}).
		Select("COALESCE(MAX(raw_score), 0) AS best, COUNT(*) AS plays").
		Where("user_id = ? AND game_slug = ?", userID, gameSlug).
		Scan(&row).Error
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to query best score")
	}
	return row.Best, row.Plays > 0, nil
}

// MaxRawScoreBefore is MaxRawScore restricted to events appended before
// the given event id. Event ids are monotonic, so this reconstructs the
// personal best as it stood when that event was written.
func (r *LedgerRepository) MaxRawScoreBefore(tx *gorm.DB, userID uint, gameSlug string, beforeID uint) (int64, bool, error) {
	var row struct {
		Best  int64
		Plays int64
	}
	err := tx.Model(&models.ScoreEvent{}).
		Select("COALESCE(MAX(raw_score), 0) AS best, COUNT(*) AS plays").
		Where("user_id = ? AND game_slug = ? AND id < ?", userID, gameSlug, beforeID).
		Scan(&row).Error
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to query best score")
	}
	return row.Best, row.Plays > 0, nil
}

// QueryByUser returns the user's score events, newest first.
func (r *LedgerRepository) QueryByUser(userID uint) ([]models.ScoreEvent, error) {
	var events []models.ScoreEvent
	err := r.db.Where("user_id = ?", userID).
		Order("played_at DESC, id DESC").
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to query score events")
	}
	return events, nil
}

// QueryByUserAndGame returns the user's score events for one game, newest first.
func (r *LedgerRepository) QueryByUserAndGame(userID uint, gameSlug string) ([]models.ScoreEvent, error) {
	var events []models.ScoreEvent
	err := r.db.Where("user_id = ? AND game_slug = ?", userID, gameSlug).
		Order("played_at DESC, id DESC").
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to query score events")
	}
	return events, nil
}

// BestGame returns the game the user has played the most, with their
// highest raw score in it. Ties go to the higher score. found is false
// when the user has no events.
func (r *LedgerRepository) BestGame(userID uint) (gameSlug string, highScore int64, found bool, err error) {
	var row struct {
		GameSlug  string
		HighScore int64
	}
	result := r.db.Model(&models.ScoreEvent{}).
		Select("game_slug, MAX(raw_score) AS high_score").
		Where("user_id = ?", userID).
		Group("game_slug").
		Order("COUNT(*) DESC, MAX(raw_score) DESC").
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return "", 0, false, errors.Wrap(result.Error, errors.ErrCodeStorageError, "failed to query best game")
	}
	if result.RowsAffected == 0 {
		return "", 0, false, nil
	}
	return row.GameSlug, row.HighScore, true, nil
}

// HighestEventXP returns the user's single largest xp_earned, used as the
// leaderboard tie-breaker.
func (r *LedgerRepository) HighestEventXP(userID uint) (int64, error) {
	var best int64
	err := r.db.Model(&models.ScoreEvent{}).
		Select("COALESCE(MAX(xp_earned), 0)").
		Where("user_id = ?", userID).
		Scan(&best).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to query highest event xp")
	}
	return best, nil
}

// SumXPByUser replays the ledger for one user. Reconciliation only.
func (r *LedgerRepository) SumXPByUser(userID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.ScoreEvent{}).
		Select("COALESCE(SUM(xp_earned), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to sum user xp")
	}
	return sum, nil
}

// SumXPByHouse replays the ledger for one house using the house snapshot
// stored on each event, not current membership.
func (r *LedgerRepository) SumXPByHouse(houseID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.ScoreEvent{}).
		Select("COALESCE(SUM(xp_earned), 0)").
		Where("house_id = ?", houseID).
		Scan(&sum).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to sum house xp")
	}
	return sum, nil
}

// CountByUser returns the number of events a user has in the ledger.
func (r *LedgerRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ScoreEvent{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeStorageError, "failed to count score events")
	}
	return count, nil
}
