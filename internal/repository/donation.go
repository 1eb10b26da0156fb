package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/charity/internal/domain"
)

const donationColumns = `id, project_id, amount, currency, donor_name, donor_email, message, anonymous, created_at`

// DonationRepository handles donation data access operations.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository creates a new DonationRepository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create stores the donation and adds raised to the project total in one
// transaction.
func (r *DonationRepository) Create(ctx context.Context, d domain.Donation, raised int64) (*domain.Donation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin donation tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE projects SET raised_amount = raised_amount + $2, updated_at = NOW() WHERE id = $1`,
		d.ProjectID, raised)
	if err != nil {
		if isOutOfRange(err) {
			return nil, domain.AmountOutOfRange()
		}
		return nil, fmt.Errorf("update raised amount: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update raised amount: %w", err)
	} else if n == 0 {
		return nil, domain.NotFound("project")
	}

	var result domain.Donation
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO donations (id, project_id, amount, currency, donor_name, donor_email, message, anonymous)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+donationColumns,
		d.ID, d.ProjectID, d.Amount, d.Currency, d.DonorName, d.DonorEmail, d.Message, d.Anonymous,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("insert donation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit donation: %w", err)
	}
	return &result, nil
}

// ListByProject returns one page of donations for a project, newest first.
func (r *DonationRepository) ListByProject(ctx context.Context, projectID string, page, limit int) ([]domain.Donation, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM donations WHERE project_id = $1`, projectID); err != nil {
		return nil, 0, fmt.Errorf("count donations: %w", err)
	}

	donations := []domain.Donation{}
	err := r.db.SelectContext(ctx, &donations,
		`SELECT `+donationColumns+` FROM donations WHERE project_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		projectID, limit, offset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list donations: %w", err)
	}
	return donations, total, nil
}

func offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
