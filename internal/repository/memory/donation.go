package memory

import (
	"context"
	"time"

	"github.com/sumire/charity/internal/domain"
)

// DonationRepository stores donations in memory.
type DonationRepository struct {
	s *Store
}

// Create stores the donation and raises the project total under one lock.
func (r *DonationRepository) Create(_ context.Context, d domain.Donation, raised int64) (*domain.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[d.ProjectID]
	if !ok {
		return nil, domain.NotFound("project")
	}

	total, err := p.Raise(raised)
	if err != nil {
		return nil, err
	}

	now := r.s.now()
	p.RaisedAmount = total
	p.UpdatedAt = now
	r.s.projects[p.ID] = p

	d.CreatedAt = now
	r.s.donations[d.ID] = d
	return &d, nil
}

func (r *DonationRepository) ListByProject(_ context.Context, projectID string, pageNum, limit int) ([]domain.Donation, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []domain.Donation{}
	for _, d := range r.s.donations {
		if d.ProjectID == projectID {
			matched = append(matched, d)
		}
	}
	newestFirst(matched, func(d domain.Donation) time.Time { return d.CreatedAt })

	return page(matched, pageNum, limit), len(matched), nil
}
