package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.AdmissionDate.IsZero() {
		return fmt.Errorf("admission_date is required")
	}
	if p.ResidencyStatus == "" {
		p.ResidencyStatus = StatusResident
	}
	if !validStatuses[p.ResidencyStatus] {
		return fmt.Errorf("invalid residency_status: %s", p.ResidencyStatus)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// AdmissionDate satisfies the care-plan scheduler's directory dependency.
func (s *Service) AdmissionDate(ctx context.Context, id uuid.UUID) (time.Time, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return p.AdmissionDate, nil
}
