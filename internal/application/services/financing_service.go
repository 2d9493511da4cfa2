package services

import "github.com/fundroad/fundroad-go/internal/domain/entities/financing"

// FinancingService serves the static financing directory.
type FinancingService struct {
	entries []financing.Entry
}

// NewFinancingService creates a new financing service
func NewFinancingService(entries []financing.Entry) *FinancingService {
	return &FinancingService{entries: entries}
}

// Search returns the entries matching filter
func (s *FinancingService) Search(filter financing.Filter) []financing.Entry {
	return filter.Apply(s.entries)
}
