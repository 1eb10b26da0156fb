package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/metrics"
)

// DonationStore defines the donation data access interface. Create must
// add raised to the project total atomically with the insert.
type DonationStore interface {
	Create(ctx context.Context, d domain.Donation, raised int64) (*domain.Donation, error)
	ListByProject(ctx context.Context, projectID string, page, limit int) ([]domain.Donation, int, error)
}

// Converter converts minor-unit amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, amount int64, from, to string) (int64, error)
}

// DonationService records gifts toward projects.
type DonationService struct {
	donations DonationStore
	projects  ProjectStore
	rates     Converter
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewDonationService creates a new DonationService. m may be nil.
func NewDonationService(donations DonationStore, projects ProjectStore, rates Converter, logger *zap.Logger, m *metrics.Metrics) *DonationService {
	return &DonationService{
		donations: donations,
		projects:  projects,
		rates:     rates,
		logger:    logger,
		metrics:   m,
	}
}

// Donate stores d and raises the project total by the amount converted
// into the project currency. Donations go to published projects only.
func (s *DonationService) Donate(ctx context.Context, d domain.Donation) (*domain.Donation, error) {
	project, err := s.projects.FindByID(ctx, d.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.Published {
		return nil, domain.NotFound("project")
	}
	if d.Amount <= 0 || d.Amount > domain.MaxDonationAmount {
		return nil, domain.AmountOutOfRange()
	}

	d.ID = uuid.NewString()
	d.Currency = strings.ToUpper(d.Currency)
	if d.Currency == "" {
		d.Currency = project.Currency
	}

	raised, err := s.rates.Convert(ctx, d.Amount, d.Currency, project.Currency)
	if err != nil {
		return nil, err
	}

	created, err := s.donations.Create(ctx, d, raised)
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	s.metrics.ObserveDonation(created.Currency)
	s.logger.Info("donation received",
		zap.String("donation_id", created.ID),
		zap.String("project_id", created.ProjectID),
		zap.Int64("amount", created.Amount),
		zap.String("currency", created.Currency),
		zap.Int64("raised", raised),
	)
	return created, nil
}

// List returns one page of a project's donations.
func (s *DonationService) List(ctx context.Context, projectID string, page, limit int) ([]domain.Donation, Page, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, Page{}, err
	}

	page, limit = normalizePage(page, limit)
	donations, total, err := s.donations.ListByProject(ctx, projectID, page, limit)
	if err != nil {
		return nil, Page{}, fmt.Errorf("list donations: %w", err)
	}
	return donations, NewPage(page, limit, total), nil
}
