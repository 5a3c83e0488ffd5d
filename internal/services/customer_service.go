package services

import (
	"context"
	"errors"
	"strings"

	"ospreyBack/internal/models"
)

const customerSearchLimit = 10

type CustomerService struct {
	CustomerRepo CustomerStore
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	c, err := s.CustomerRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Customer{}, models.ErrCustomerNotFound
	}
	return c, err
}

func (s *CustomerService) SearchCustomers(ctx context.Context, q string) ([]models.Customer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, models.NewValidationError("search", "Customer ID or search query required")
	}
	return s.CustomerRepo.Search(ctx, q, customerSearchLimit)
}

// findOrCreateCustomer looks a customer up by email and inserts one when the
// email is unknown.
func findOrCreateCustomer(ctx context.Context, repo CustomerStore, c models.Customer) (models.Customer, error) {
	if c.Email != nil && *c.Email != "" {
		existing, err := repo.GetByEmail(ctx, *c.Email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, models.ErrNoRecord) {
			return models.Customer{}, err
		}
	}
	return repo.Create(ctx, c)
}
