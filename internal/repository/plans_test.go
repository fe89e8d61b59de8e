package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omarioz/BiyoKaab/internal/domain"
)

func setupMockPlansDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PlansRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPlansRepository(db, zap.NewNop())
	return db, mock, repo
}

func TestActiveForOwner_Success(t *testing.T) {
	db, mock, repo := setupMockPlansDB(t)
	defer db.Close()

	ownerID := uuid.New().String()
	planID := uuid.New().String()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	rows := sqlmock.NewRows([]string{
		"plan_id", "owner_id", "system_id", "plan_text", "date_start", "date_end",
		"priority_rules", "status", "created_at",
	}).AddRow(planID, ownerID, nil, "Qorshaha biyaha", start, end,
		`{"order":["human","livestock","crop"]}`, "active", time.Now())

	mock.ExpectQuery(`SELECT`).WithArgs(ownerID, domain.PlanStatusActive).WillReturnRows(rows)

	plan, err := repo.ActiveForOwner(context.Background(), ownerID)

	require.NoError(t, err)
	assert.Equal(t, planID, plan.PlanID)
	assert.Equal(t, domain.PlanStatusActive, plan.Status)
	assert.JSONEq(t, `{"order":["human","livestock","crop"]}`, string(plan.PriorityRules))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveForOwner_NoActivePlan(t *testing.T) {
	db, mock, repo := setupMockPlansDB(t)
	defer db.Close()

	ownerID := uuid.New().String()
	mock.ExpectQuery(`SELECT`).WithArgs(ownerID, domain.PlanStatusActive).WillReturnError(sql.ErrNoRows)

	_, err := repo.ActiveForOwner(context.Background(), ownerID)

	assert.ErrorIs(t, err, domain.ErrNoActivePlan)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapActive_ArchivesThenInserts(t *testing.T) {
	db, mock, repo := setupMockPlansDB(t)
	defer db.Close()

	ownerID := uuid.New().String()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE water_plans`).
		WithArgs(domain.PlanStatusArchived, ownerID, domain.PlanStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO water_plans`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	plan := &domain.WaterPlan{
		OwnerID:       ownerID,
		PlanText:      "Maalinta 1: 80L dadka",
		DateStart:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DateEnd:       time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		PriorityRules: json.RawMessage(`{"order":["human","livestock","crop"]}`),
	}
	err := repo.SwapActive(context.Background(), plan)

	require.NoError(t, err)
	assert.NotEmpty(t, plan.PlanID)
	assert.Equal(t, domain.PlanStatusActive, plan.Status)
	assert.WithinDuration(t, now, plan.CreatedAt, time.Second)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapActive_ConcurrentLoserGetsConflict(t *testing.T) {
	db, mock, repo := setupMockPlansDB(t)
	defer db.Close()

	ownerID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE water_plans`).
		WithArgs(domain.PlanStatusArchived, ownerID, domain.PlanStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// The partial unique index rejects the second concurrent active insert.
	mock.ExpectQuery(`INSERT INTO water_plans`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "water_plans_one_active_per_owner"})
	mock.ExpectRollback()

	plan := &domain.WaterPlan{
		OwnerID:   ownerID,
		PlanText:  "duplicate",
		DateStart: time.Now(),
		DateEnd:   time.Now().AddDate(0, 0, 7),
	}
	err := repo.SwapActive(context.Background(), plan)

	assert.ErrorIs(t, err, domain.ErrPlanConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapActive_ArchiveFailureAbortsInsert(t *testing.T) {
	db, mock, repo := setupMockPlansDB(t)
	defer db.Close()

	ownerID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE water_plans`).
		WithArgs(domain.PlanStatusArchived, ownerID, domain.PlanStatusActive).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.SwapActive(context.Background(), &domain.WaterPlan{
		OwnerID:   ownerID,
		PlanText:  "never persisted",
		DateStart: time.Now(),
		DateEnd:   time.Now().AddDate(0, 0, 7),
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPlanConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}
