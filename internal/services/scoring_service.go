package services

import (
	"context"
	"time"

	"github.com/ItsBlendi/Hackathon-projekt/internal/catalog"
	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/ItsBlendi/Hackathon-projekt/internal/repositories"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/errors"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionResult is what the presentation layer renders after a play.
type SubmissionResult struct {
	XPEarned       int64
	NewTotalXP     int64
	NewLevel       int
	IsNewHighScore bool
	// Duplicate is set when the idempotency key matched an earlier
	// submission; the ledger and aggregates were left untouched.
	Duplicate bool
}

// ScoringService is the only writer of score events and XP aggregates.
// Submit applies the ledger append and both aggregate increments in one
// transaction: either all three commit or none do.
type ScoringService struct {
	db          *gorm.DB
	catalog     *catalog.Catalog
	users       *repositories.UserRepository
	ledger      *repositories.LedgerRepository
	aggregates  *repositories.AggregateRepository
	lockTimeout time.Duration
}

func NewScoringService(
	db *gorm.DB,
	gameCatalog *catalog.Catalog,
	users *repositories.UserRepository,
	ledger *repositories.LedgerRepository,
	aggregates *repositories.AggregateRepository,
) *ScoringService {
	return &ScoringService{
		db:         db,
		catalog:    gameCatalog,
		users:      users,
		ledger:     ledger,
		aggregates: aggregates,
	}
}

// WithLockTimeout bounds how long a submission may hold row locks. Zero
// disables the bound.
func (s *ScoringService) WithLockTimeout(d time.Duration) *ScoringService {
	s.lockTimeout = d
	return s
}

// MaxIdempotencyKeyLength bounds client-supplied keys to the column width.
const MaxIdempotencyKeyLength = 64

// Submit records one completed play. idempotencyKey may be empty; the
// service then assigns one, which disables retry dedup for that call but
// keeps the ledger schema uniform.
func (s *ScoringService) Submit(ctx context.Context, userID uint, gameSlug string, rawScore int64, idempotencyKey string) (*SubmissionResult, error) {
	// Catalog lookup happens before the transaction opens; nothing with
	// unbounded latency is allowed while rows are locked.
	def, err := s.catalog.Lookup(gameSlug)
	if err != nil {
		return nil, err
	}

	if rawScore < 0 {
		return nil, errors.New(errors.ErrCodeInvalidScore, "raw score must be non-negative")
	}

	if len(idempotencyKey) > MaxIdempotencyKeyLength {
		return nil, errors.New(errors.ErrCodeValidationFailed, "idempotency key too long")
	}
	clientKeyed := idempotencyKey != ""
	if !clientKeyed {
		idempotencyKey = uuid.NewString()
	}

	// Deterministic: depends only on the raw score and the catalog entry,
	// never on current aggregate state, so replaying the ledger always
	// reproduces the aggregates.
	xpEarned := def.Formula.XP(rawScore)

	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	var result *SubmissionResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the user row first serializes concurrent submissions
		// for the same user and pins the house snapshot. House rows are
		// always locked after user rows, so lock order is consistent.
		user, err := s.users.GetUserForUpdate(tx, userID)
		if err != nil {
			return err
		}

		if clientKeyed {
			prior, err := s.ledger.FindByIdempotencyKey(tx, userID, idempotencyKey)
			if err != nil {
				return err
			}
			if prior != nil {
				// Reconstruct the high-score flag the first response
				// carried: the prior event beat every event before it.
				bestBefore, playedBefore, err := s.ledger.MaxRawScoreBefore(tx, userID, gameSlug, prior.ID)
				if err != nil {
					return err
				}
				result = &SubmissionResult{
					XPEarned:       prior.XPEarned,
					NewTotalXP:     user.TotalXP,
					NewLevel:       user.Level(),
					IsNewHighScore: !playedBefore || prior.RawScore > bestBefore,
					Duplicate:      true,
				}
				return nil
			}
		}

		// Personal-best check reads the pre-append snapshot.
		best, played, err := s.ledger.MaxRawScore(tx, userID, gameSlug)
		if err != nil {
			return err
		}
		isNewHighScore := !played || rawScore > best

		event := &models.ScoreEvent{
			UserID:         userID,
			HouseID:        user.HouseID,
			GameSlug:       gameSlug,
			RawScore:       rawScore,
			XPEarned:       xpEarned,
			IdempotencyKey: idempotencyKey,
		}
		if err := s.ledger.Append(tx, event); err != nil {
			return err
		}

		newTotal, err := s.aggregates.IncrementUserXP(tx, userID, xpEarned)
		if err != nil {
			return err
		}

		if user.HouseID != nil {
			if _, err := s.aggregates.IncrementHouseXP(tx, *user.HouseID, xpEarned); err != nil {
				return err
			}
		}

		result = &SubmissionResult{
			XPEarned:       xpEarned,
			NewTotalXP:     newTotal,
			NewLevel:       int(newTotal/models.XPPerLevel) + 1,
			IsNewHighScore: isNewHighScore,
		}
		return nil
	})

	if txErr != nil {
		if appErr, ok := txErr.(*errors.AppError); ok {
			return nil, appErr
		}
		logger.Error("Score submission transaction failed",
			"user_id", userID,
			"game", gameSlug,
			"error", txErr,
		)
		return nil, errors.Wrap(txErr, errors.ErrCodeStorageError, "failed to save score")
	}

	if result.Duplicate {
		logger.Info("Duplicate score submission short-circuited",
			"user_id", userID,
			"game", gameSlug,
			"idempotency_key", idempotencyKey,
		)
	} else {
		// Best effort; the submission already committed.
		if err := s.users.UpdateLastActivity(userID); err != nil {
			logger.Warn("Failed to update last activity", "user_id", userID, "error", err)
		}
		logger.Info("Score recorded",
			"user_id", userID,
			"game", gameSlug,
			"raw_score", rawScore,
			"xp_earned", result.XPEarned,
			"new_total_xp", result.NewTotalXP,
		)
	}

	return result, nil
}
