package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllUnassigned(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetAll(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetAvailableWithin(
	ctx context.Context, origin kernel.GeoPoint, radiusMeters float64,
) ([]*courier.Courier, error) {
	args := m.Called(ctx, origin, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetAllAvailable(
	ctx context.Context, origin kernel.GeoPoint,
) ([]*courier.Courier, error) {
	args := m.Called(ctx, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockCourierUoWFactory struct{ mock.Mock }

func (m *MockCourierUoWFactory) Create() commands.CourierUoW {
	args := m.Called()
	return args.Get(0).(commands.CourierUoW)
}

// newUoW wires a MockUoW with the usual happy-path transaction expectations.
func newUoW(ctx context.Context, orderRepo *MockOrderRepository, courierRepo *MockCourierRepository) *MockUoW {
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	if orderRepo != nil {
		uow.On("OrderRepository").Return(orderRepo)
	}
	if courierRepo != nil {
		uow.On("CourierRepository").Return(courierRepo)
	}
	return uow
}

func testItems(t *testing.T) []order.Item {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), "Khinkali", 900, 5, "")
	require.NoError(t, err)
	return []order.Item{item}
}

func testPricing(t *testing.T) order.Pricing {
	t.Helper()
	pricing, err := order.NewPricing(4500, 300, 500)
	require.NoError(t, err)
	return pricing
}

func testRestaurantPoint(t *testing.T) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(41.716, 44.828)
	require.NoError(t, err)
	return point
}

func testAddress(t *testing.T) kernel.Address {
	t.Helper()
	point, err := kernel.NewGeoPoint(41.73, 44.81)
	require.NoError(t, err)
	address, err := kernel.NewAddress("12 Rustaveli Ave", "Tbilisi", point, "ring twice")
	require.NoError(t, err)
	return address
}

// orderInStatus reconstructs a delivery order directly in the given status.
func orderInStatus(t *testing.T, status order.Status, courierID *kernel.UUID) *order.Order {
	t.Helper()

	address := testAddress(t)
	createdAt := time.Now().Add(-10 * time.Minute)
	var actualDeliveryAt *time.Time
	if status == order.Delivered {
		at := time.Now()
		actualDeliveryAt = &at
	}

	o, err := order.RestoreOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		testItems(t), testPricing(t),
		order.Delivery, &address, testRestaurantPoint(t),
		status, courierID,
		createdAt.Add(30*time.Minute), actualDeliveryAt, createdAt,
	)
	require.NoError(t, err)
	return o
}

func availableCourier(t *testing.T, lat, lng float64) *courier.Courier {
	t.Helper()

	c, err := courier.NewCourier(kernel.NewUUID(), "Test Courier", "+995555000000")
	require.NoError(t, err)
	require.NoError(t, c.SetStatus(courier.Available))

	point, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	require.NoError(t, c.UpdatePosition(point, time.Now()))
	return c
}
