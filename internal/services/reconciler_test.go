package services

import (
	"context"
	"testing"
	"time"

	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
)

func TestReconciler_CleanPass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", models.HouseGryffindor)
	bob := f.createUser(t, "bob", models.HouseSlytherin)

	mustSubmit(t, f, ctx, alice.ID, "flappy-bird", 100)
	mustSubmit(t, f, ctx, alice.ID, "reaction-rush", 80)
	mustSubmit(t, f, ctx, bob.ID, "number-ninja", 60)

	reconciler := NewReconciler(f.db, f.ledger, time.Minute)
	report, err := reconciler.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !report.Clean() {
		t.Errorf("report = %+v, want clean", report)
	}
	if report.UsersChecked != 2 {
		t.Errorf("UsersChecked = %d, want 2", report.UsersChecked)
	}
	if report.HousesChecked != 4 {
		t.Errorf("HousesChecked = %d, want 4", report.HousesChecked)
	}
}

func TestReconciler_DetectsUserDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", models.HouseGryffindor)
	mustSubmit(t, f, ctx, alice.ID, "flappy-bird", 100)

	// Corrupt the aggregate behind the scoring engine's back.
	if err := f.db.Model(&models.User{}).Where("id = ?", alice.ID).
		Update("total_xp", 999).Error; err != nil {
		t.Fatalf("failed to corrupt aggregate: %v", err)
	}

	reconciler := NewReconciler(f.db, f.ledger, time.Minute)
	report, err := reconciler.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Clean() {
		t.Fatal("report is clean after corrupting a user aggregate")
	}
	if report.UserDrift != 1 {
		t.Errorf("UserDrift = %d, want 1", report.UserDrift)
	}

	// Detection only: the corrupted value must be left in place for an
	// operator to inspect.
	if got := f.userXP(t, alice.ID); got != 999 {
		t.Errorf("aggregate after reconciliation = %d, want 999 untouched", got)
	}
}

func TestReconciler_DetectsHouseDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.createUser(t, "alice", models.HouseRavenclaw)
	mustSubmit(t, f, ctx, alice.ID, "flappy-bird", 100)

	houseID := f.houseID(t, models.HouseRavenclaw)
	if err := f.db.Model(&models.House{}).Where("id = ?", houseID).
		Update("total_xp", 7).Error; err != nil {
		t.Fatalf("failed to corrupt aggregate: %v", err)
	}

	reconciler := NewReconciler(f.db, f.ledger, time.Minute)
	report, err := reconciler.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.HouseDrift != 1 {
		t.Errorf("HouseDrift = %d, want 1", report.HouseDrift)
	}
	if report.UserDrift != 0 {
		t.Errorf("UserDrift = %d, want 0", report.UserDrift)
	}
}

func TestReconciler_StartStop(t *testing.T) {
	f := newFixture(t)

	reconciler := NewReconciler(f.db, f.ledger, time.Hour)
	if err := reconciler.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	reconciler.Stop()
}
