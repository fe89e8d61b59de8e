package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/omarioz/BiyoKaab/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PlansRepository manages the water plan lifecycle. The archive+create swap
// runs in one transaction; the partial unique index
// water_plans(owner_id) WHERE status='active' makes the loser of a
// concurrent swap fail with a unique violation instead of leaving two
// active plans.
type PlansRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPlansRepository creates a plans repository.
func NewPlansRepository(db *sql.DB, logger *zap.Logger) *PlansRepository {
	return &PlansRepository{db: db, logger: logger}
}

// ActiveForOwner returns the owner's active plan or domain.ErrNoActivePlan.
func (r *PlansRepository) ActiveForOwner(ctx context.Context, ownerID string) (*domain.WaterPlan, error) {
	query := `
		SELECT plan_id, owner_id, system_id, plan_text, date_start, date_end, priority_rules, status, created_at
		FROM water_plans
		WHERE owner_id = $1
		  AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, ownerID, domain.PlanStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoActivePlan
		}
		return nil, fmt.Errorf("failed to get active plan: %w", err)
	}
	return plan, nil
}

// SwapActive archives every active plan the owner holds and creates the new
// active plan, atomically. On a concurrent generate for the same owner, the
// transaction that commits second hits the partial unique index and gets
// domain.ErrPlanConflict; nothing is persisted for it.
func (r *PlansRepository) SwapActive(ctx context.Context, plan *domain.WaterPlan) error {
	if plan.PlanID == "" {
		plan.PlanID = uuid.New().String()
	}
	if len(plan.PriorityRules) == 0 {
		plan.PriorityRules = json.RawMessage(`{}`)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin plan swap: %w", err)
	}
	defer tx.Rollback()

	archive := `
		UPDATE water_plans
		SET status = $1
		WHERE owner_id = $2
		  AND status = $3
	`
	res, err := tx.ExecContext(ctx, archive,
		domain.PlanStatusArchived, plan.OwnerID, domain.PlanStatusActive)
	if err != nil {
		return fmt.Errorf("failed to archive active plans: %w", err)
	}
	archived, _ := res.RowsAffected()

	insert := `
		INSERT INTO water_plans
			(plan_id, owner_id, system_id, plan_text, date_start, date_end, priority_rules, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	var systemID sql.NullString
	if plan.SystemID != nil {
		systemID = sql.NullString{String: *plan.SystemID, Valid: true}
	}
	err = tx.QueryRowContext(ctx, insert,
		plan.PlanID,
		plan.OwnerID,
		systemID,
		plan.PlanText,
		plan.DateStart,
		plan.DateEnd,
		[]byte(plan.PriorityRules),
		domain.PlanStatusActive,
	).Scan(&plan.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlanConflict
		}
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlanConflict
		}
		return fmt.Errorf("failed to commit plan swap: %w", err)
	}

	plan.Status = domain.PlanStatusActive
	r.logger.Info("Plan swap committed",
		zap.String("owner_id", plan.OwnerID),
		zap.String("plan_id", plan.PlanID),
		zap.Int64("archived", archived),
	)
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func scanPlan(row rowScanner) (*domain.WaterPlan, error) {
	var p domain.WaterPlan
	var systemID sql.NullString
	var rules []byte

	err := row.Scan(
		&p.PlanID,
		&p.OwnerID,
		&systemID,
		&p.PlanText,
		&p.DateStart,
		&p.DateEnd,
		&rules,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if systemID.Valid {
		p.SystemID = &systemID.String
	}
	p.PriorityRules = json.RawMessage(rules)
	return &p, nil
}
