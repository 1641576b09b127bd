package services

import (
	"log"

	"gameghor/internal/apperr"
	"gameghor/internal/models"
	"gameghor/internal/policy"
	"gameghor/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// EventPublisher delivers order lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent) error
}

// OrderService is the order ledger. Orders start pending and an admin moves
// them to completed or canceled exactly once.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher
	validate  *validator.Validate
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		validate:  newValidator(),
	}
}

// Place records a new pending order. The game reference and the payment are
// not verified here; an admin confirms the payment before completing it.
func (s *OrderService) Place(in models.PlaceOrderInput) (*models.Order, error) {
	in = in.Normalize()
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	order := &models.Order{
		GameID:           in.GameID,
		EmailForDelivery: in.EmailForDelivery,
		NagadNumber:      in.NagadNumber,
		TransactionID:    in.TransactionID,
		Status:           models.StatusPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	log.Printf("Order %s placed for game %s (txn %s)", order.ID, order.GameID, order.TransactionID)

	s.publish(models.NewOrderEvent(models.EventOrderPlaced, order))
	return order, nil
}

// List returns every order, newest first.
func (s *OrderService) List(identity models.Identity) ([]models.Order, error) {
	if err := policy.Check(identity, policy.ListOrders); err != nil {
		return nil, err
	}
	return s.orderRepo.GetAll()
}

// SetStatus moves a pending order to a terminal status.
func (s *OrderService) SetStatus(identity models.Identity, orderID string, next string) (*models.Order, error) {
	if err := policy.Check(identity, policy.SetOrderStatus); err != nil {
		return nil, err
	}
	status, ok := models.ParseOrderStatus(next)
	if !ok || !status.IsTerminal() {
		return nil, apperr.Validation("status must be completed or canceled")
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, apperr.InvalidTransition("order %s cannot move from %s to %s", orderID, order.Status, status)
	}
	if err := s.orderRepo.UpdateStatus(orderID, order.Status, status); err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	log.Printf("Order %s moved to %s by %s", orderID, status, identity.Email)

	s.publish(models.NewOrderEvent(models.EventOrderStatusChanged, updated))
	return updated, nil
}

func (s *OrderService) publish(event models.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(event); err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", event.Type, event.OrderID, err)
	}
}
