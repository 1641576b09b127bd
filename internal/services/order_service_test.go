package services_test

import (
	"errors"
	"testing"

	"gameghor/internal/apperr"
	"gameghor/internal/models"
	"gameghor/internal/repositories"
	"gameghor/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(event models.OrderEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func validOrderInput() models.PlaceOrderInput {
	return models.PlaceOrderInput{
		GameID:           "g1",
		EmailForDelivery: "buyer@x.com",
		NagadNumber:      "01700000000",
		TransactionID:    "TXN123",
	}
}

func TestOrderService_PlaceStartsPending(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishOrderEvent", mock.MatchedBy(func(e models.OrderEvent) bool {
		return e.Type == models.EventOrderPlaced && e.Status == models.StatusPending
	})).Return(nil).Once()
	service := services.NewOrderService(repositories.NewMockOrderRepository(), publisher)

	order, err := service.Place(validOrderInput())
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "g1", order.GameID)
	publisher.AssertExpectations(t)
}

func TestOrderService_PlaceValidation(t *testing.T) {
	service := services.NewOrderService(repositories.NewMockOrderRepository(), nil)

	mutations := []func(*models.PlaceOrderInput){
		func(in *models.PlaceOrderInput) { in.GameID = "" },
		func(in *models.PlaceOrderInput) { in.EmailForDelivery = "" },
		func(in *models.PlaceOrderInput) { in.EmailForDelivery = "not-an-email" },
		func(in *models.PlaceOrderInput) { in.NagadNumber = "  " },
		func(in *models.PlaceOrderInput) { in.TransactionID = "" },
	}
	for i, mutate := range mutations {
		in := validOrderInput()
		mutate(&in)
		_, err := service.Place(in)
		assert.True(t, errors.Is(err, apperr.ErrValidation), "case %d", i)
	}

	orders, err := service.List(adminIdentity)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_PublishFailureDoesNotFailOrder(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishOrderEvent", mock.Anything).Return(errors.New("broker down")).Once()
	service := services.NewOrderService(repositories.NewMockOrderRepository(), publisher)

	order, err := service.Place(validOrderInput())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	publisher.AssertExpectations(t)
}

func TestOrderService_NonAdminRejected(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	service := services.NewOrderService(repo, nil)
	order, err := service.Place(validOrderInput())
	require.NoError(t, err)

	for _, identity := range []models.Identity{models.Anonymous(), customerIdentity} {
		_, err := service.List(identity)
		assert.True(t, errors.Is(err, apperr.ErrAuthorization))

		_, err = service.SetStatus(identity, order.ID, "completed")
		assert.True(t, errors.Is(err, apperr.ErrAuthorization))
	}

	stored, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestOrderService_TerminalStatusIsFinal(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishOrderEvent", mock.Anything).Return(nil)
	service := services.NewOrderService(repositories.NewMockOrderRepository(), publisher)

	order, err := service.Place(validOrderInput())
	require.NoError(t, err)

	listed, err := service.List(adminIdentity)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.StatusPending, listed[0].Status)

	completed, err := service.SetStatus(adminIdentity, order.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	_, err = service.SetStatus(adminIdentity, order.ID, "canceled")
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	listed, err = service.List(adminIdentity)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, listed[0].Status)

	publisher.AssertNumberOfCalls(t, "PublishOrderEvent", 2)
}

func TestOrderService_SetStatusEdgeCases(t *testing.T) {
	service := services.NewOrderService(repositories.NewMockOrderRepository(), nil)
	order, err := service.Place(validOrderInput())
	require.NoError(t, err)

	_, err = service.SetStatus(adminIdentity, order.ID, "pending")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, "status must be completed or canceled", apperr.DetailOf(err))

	_, err = service.SetStatus(adminIdentity, order.ID, "shipped")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = service.SetStatus(adminIdentity, "missing", "completed")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	canceled, err := service.SetStatus(adminIdentity, order.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, canceled.Status)

	_, err = service.SetStatus(adminIdentity, order.ID, "completed")
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestOrderService_DeletingListingKeepsOrders(t *testing.T) {
	gameRepo := repositories.NewMockGameRepository()
	games := services.NewGameService(gameRepo)
	orders := services.NewOrderService(repositories.NewMockOrderRepository(), nil)

	game, err := games.Create(adminIdentity, models.GameInput{Title: "Chess Pro", Price: floatPtr(10), Platform: "PC"})
	require.NoError(t, err)

	in := validOrderInput()
	in.GameID = game.ID
	placed, err := orders.Place(in)
	require.NoError(t, err)

	require.NoError(t, games.Delete(adminIdentity, game.ID))

	all, err := games.ListAll(adminIdentity)
	require.NoError(t, err)
	assert.Empty(t, all)

	listed, err := orders.List(adminIdentity)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, *placed, listed[0])
}
