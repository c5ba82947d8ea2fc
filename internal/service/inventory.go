package service

import (
	"context"
	"strings"

	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/repository"
)

type inventoryService struct {
	inventory repository.InventoryRepository
	checkouts repository.CheckoutRepository
}

func NewInventoryService(inventory repository.InventoryRepository, checkouts repository.CheckoutRepository) InventoryService {
	return &inventoryService{
		inventory: inventory,
		checkouts: checkouts,
	}
}

func (s *inventoryService) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.inventory.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return items, nil
}

// CheckIn removes the checkout document. The feed delivers the change.
func (s *inventoryService) CheckIn(ctx context.Context, id string) error {
	logger.EnterMethod("inventoryService.CheckIn", "checkoutID", id)
	if strings.TrimSpace(id) == "" {
		return repository.ErrNotFound
	}
	if err := s.checkouts.CheckIn(ctx, id); err != nil {
		logger.ExitMethodWithError("inventoryService.CheckIn", err, "checkoutID", id)
		return err
	}
	logger.ExitMethod("inventoryService.CheckIn", "checkoutID", id)
	return nil
}

func (s *inventoryService) SetOverride(ctx context.Context, id, override string) error {
	logger.EnterMethod("inventoryService.SetOverride", "checkoutID", id, "override", override)
	o, ok := domain.ParseOverride(strings.ToLower(strings.TrimSpace(override)))
	if !ok {
		return ErrInvalidOverride
	}
	if err := s.checkouts.SetOverride(ctx, id, o); err != nil {
		logger.ExitMethodWithError("inventoryService.SetOverride", err, "checkoutID", id)
		return err
	}
	logger.ExitMethod("inventoryService.SetOverride", "checkoutID", id, "override", o.String())
	return nil
}
