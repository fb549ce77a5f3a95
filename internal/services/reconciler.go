package services

import (
	"time"

	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/ItsBlendi/Hackathon-projekt/internal/repositories"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/logger"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Reconciler periodically replays the ledger and compares the sums to the
// stored aggregates. It only reports drift, never repairs it: the scoring
// transaction is the sole writer, so any non-zero drift here means an
// operator needs to look at the ledger, not that the job should guess.
type Reconciler struct {
	db        *gorm.DB
	ledger    *repositories.LedgerRepository
	interval  time.Duration
	scheduler gocron.Scheduler
}

// DriftReport summarizes one reconciliation pass.
type DriftReport struct {
	UsersChecked  int
	HousesChecked int
	UserDrift     int
	HouseDrift    int
}

func (r *DriftReport) Clean() bool {
	return r.UserDrift == 0 && r.HouseDrift == 0
}

func NewReconciler(db *gorm.DB, ledger *repositories.LedgerRepository, interval time.Duration) *Reconciler {
	return &Reconciler{
		db:       db,
		ledger:   ledger,
		interval: interval,
	}
}

// Start schedules the reconciliation job.
func (r *Reconciler) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() {
			report, err := r.Run()
			if err != nil {
				logger.Error("Reconciliation pass failed", "error", err)
				return
			}
			if !report.Clean() {
				logger.Warn("Aggregate drift detected",
					"user_drift", report.UserDrift,
					"house_drift", report.HouseDrift,
				)
			} else {
				logger.Debug("Reconciliation pass clean",
					"users_checked", report.UsersChecked,
					"houses_checked", report.HousesChecked,
				)
			}
		}),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	r.scheduler = scheduler
	logger.Info("Reconciler started", "interval", r.interval.String())
	return nil
}

// Stop shuts the scheduler down.
func (r *Reconciler) Stop() {
	if r.scheduler != nil {
		_ = r.scheduler.Shutdown()
	}
}

// Run performs one reconciliation pass over every user and house.
func (r *Reconciler) Run() (*DriftReport, error) {
	report := &DriftReport{}

	var users []models.User
	if err := r.db.Select("id", "username", "total_xp").Find(&users).Error; err != nil {
		return nil, err
	}
	for _, user := range users {
		ledgerSum, err := r.ledger.SumXPByUser(user.ID)
		if err != nil {
			return nil, err
		}
		report.UsersChecked++
		if ledgerSum != user.TotalXP {
			report.UserDrift++
			logger.Warn("User aggregate out of sync with ledger",
				"user_id", user.ID,
				"aggregate_xp", user.TotalXP,
				"ledger_xp", ledgerSum,
			)
		}
	}

	var houses []models.House
	if err := r.db.Select("id", "name", "total_xp").Find(&houses).Error; err != nil {
		return nil, err
	}
	for _, house := range houses {
		ledgerSum, err := r.ledger.SumXPByHouse(house.ID)
		if err != nil {
			return nil, err
		}
		report.HousesChecked++
		if ledgerSum != house.TotalXP {
			report.HouseDrift++
			logger.Warn("House aggregate out of sync with ledger",
				"house_id", house.ID,
				"house", house.Name,
				"aggregate_xp", house.TotalXP,
				"ledger_xp", ledgerSum,
			)
		}
	}

	return report, nil
}
