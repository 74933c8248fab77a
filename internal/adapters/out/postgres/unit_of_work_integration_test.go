package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides integration testing for the
// GORM-based Unit of Work implementation with a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Connect to database
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	// Run migrations
	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.ItemDTO{}, &courierrepo.CourierDTO{})
	suite.Require().NoError(err)

	// Create factory
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db, 15*time.Minute)
}

// SetupTest ensures clean database state before each test.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE order_items, orders, couriers").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

// TestUnitOfWorkFactory_Create verifies the factory creates independent unit
// of work instances that both provide repository access.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.OrderRepository(), "First instance should provide order repository")
	suite.NotNil(uow1.CourierRepository(), "First instance should provide courier repository")
	suite.NotNil(uow2.OrderRepository(), "Second instance should provide order repository")
	suite.NotNil(uow2.CourierRepository(), "Second instance should provide courier repository")
}

// TestUnitOfWork_TransactionLifecycle verifies begin, commit and rollback
// operations including repeated begin calls.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err, "Should begin transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	err = uow.Commit(ctx)
	suite.Require().NoError(err, "Should commit transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err, "Should rollback transaction successfully")
}

// TestUnitOfWork_TransactionErrors verifies error handling for commit and
// rollback without an active transaction.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

// TestUnitOfWork_DispatchTransaction verifies that binding a courier and
// assigning it to an order across both repositories commits atomically.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_DispatchTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder()
	testCourier := createTestCourier()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)
	err = uow.CourierRepository().Add(ctx, testCourier)
	suite.Require().NoError(err)

	// Reload so each aggregate carries its persisted status for the
	// conditional updates below.
	workingOrder, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	workingCourier, err := uow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)

	// Confirm the order and bind the courier within the same transaction.
	err = workingOrder.Confirm()
	suite.Require().NoError(err)
	err = workingCourier.Bind(workingOrder.ID())
	suite.Require().NoError(err)
	err = workingOrder.AssignCourier(workingCourier.ID())
	suite.Require().NoError(err)

	err = uow.OrderRepository().Update(ctx, workingOrder)
	suite.Require().NoError(err)
	err = uow.CourierRepository().Update(ctx, workingCourier)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify both sides of the binding persisted.
	newUow := suite.factory.Create()

	retrievedOrder, err := newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, retrievedOrder.Status())
	suite.Require().NotNil(retrievedOrder.CourierID())
	suite.True(testCourier.ID().IsEqual(*retrievedOrder.CourierID()))

	retrievedCourier, err := newUow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)
	suite.Equal(courier.Busy, retrievedCourier.Status())
	suite.Require().NotNil(retrievedCourier.CurrentOrderID())
	suite.True(testOrder.ID().IsEqual(*retrievedCourier.CurrentOrderID()))
}

// TestUnitOfWork_TransactionRollback verifies rollback discards all changes
// made within the transaction across both repositories.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder()
	testCourier := createTestCourier()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)
	err = uow.CourierRepository().Add(ctx, testCourier)
	suite.Require().NoError(err)

	// Entities are visible within the transaction.
	_, err = uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	_, err = uow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	// Nothing persisted.
	newUow := suite.factory.Create()

	_, err = newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().Error(err, "Order should not exist after rollback")

	_, err = newUow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().Error(err, "Courier should not exist after rollback")
}

// TestUnitOfWork_RepositoryIsolation verifies that repositories obtained
// from different unit of work instances operate independently.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	order1 := createTestOrder()
	order2 := createTestOrder()

	err := uow1.Begin(ctx)
	suite.Require().NoError(err)
	err = uow2.Begin(ctx)
	suite.Require().NoError(err)

	err = uow1.OrderRepository().Add(ctx, order1)
	suite.Require().NoError(err)
	err = uow2.OrderRepository().Add(ctx, order2)
	suite.Require().NoError(err)

	// Each transaction only sees its own changes.
	_, err = uow1.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "UOW1 should see order1")
	_, err = uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")

	_, err = uow2.OrderRepository().Get(ctx, order2.ID())
	suite.Require().NoError(err, "UOW2 should see order2")
	_, err = uow2.OrderRepository().Get(ctx, order1.ID())
	suite.Require().Error(err, "UOW2 should not see order1")

	err = uow1.Commit(ctx)
	suite.Require().NoError(err)
	err = uow2.Rollback(ctx)
	suite.Require().NoError(err)

	// Only order1 persisted.
	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "Order1 should persist after commit")
	_, err = newUow.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "Order2 should not persist after rollback")
}

// TestUnitOfWork_WithoutTransaction verifies that repositories work correctly
// without explicit transaction boundaries for immediate operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder()

	err := uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	retrievedOrder, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrievedOrder.ID())

	newUow := suite.factory.Create()
	retrievedOrder, err = newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrievedOrder.ID())
}

// TestUnitOfWork_DeliveryWorkflow walks an order from confirmation through
// delivery, persisting each transition and completing the courier at the end.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_DeliveryWorkflow() {
	ctx := context.Background()

	// Seed the order and courier outside the workflow transaction.
	seedUow := suite.factory.Create()
	testOrder := createTestOrder()
	testCourier := createTestCourier()
	err := seedUow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)
	err = seedUow.CourierRepository().Add(ctx, testCourier)
	suite.Require().NoError(err)

	// Confirm and dispatch.
	uow := suite.factory.Create()
	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	workingOrder, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	workingCourier, err := uow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(workingOrder.Confirm())
	suite.Require().NoError(workingCourier.Bind(workingOrder.ID()))
	suite.Require().NoError(workingOrder.AssignCourier(workingCourier.ID()))

	err = uow.OrderRepository().Update(ctx, workingOrder)
	suite.Require().NoError(err)
	err = uow.CourierRepository().Update(ctx, workingCourier)
	suite.Require().NoError(err)
	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Walk the kitchen and handoff transitions, reloading per step so each
	// conditional update compares against the persisted status.
	for _, step := range []func(*order.Order) error{
		(*order.Order).StartPreparing,
		(*order.Order).MarkReady,
		(*order.Order).StartDelivering,
	} {
		stepUow := suite.factory.Create()
		err = stepUow.Begin(ctx)
		suite.Require().NoError(err)

		workingOrder, err = stepUow.OrderRepository().Get(ctx, testOrder.ID())
		suite.Require().NoError(err)
		suite.Require().NoError(step(workingOrder))
		err = stepUow.OrderRepository().Update(ctx, workingOrder)
		suite.Require().NoError(err)
		err = stepUow.Commit(ctx)
		suite.Require().NoError(err)
	}

	// Deliver: the order finishes and the courier is completed atomically.
	finalUow := suite.factory.Create()
	err = finalUow.Begin(ctx)
	suite.Require().NoError(err)

	workingOrder, err = finalUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	workingCourier, err = finalUow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(workingOrder.MarkDelivered(time.Now()))
	suite.Require().NoError(workingCourier.Complete())

	err = finalUow.OrderRepository().Update(ctx, workingOrder)
	suite.Require().NoError(err)
	err = finalUow.CourierRepository().Update(ctx, workingCourier)
	suite.Require().NoError(err)
	err = finalUow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify final state using a new unit of work.
	verifyUow := suite.factory.Create()

	retrievedOrder, err := verifyUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Delivered, retrievedOrder.Status())
	suite.NotNil(retrievedOrder.ActualDeliveryAt())

	retrievedCourier, err := verifyUow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)
	suite.Equal(courier.Available, retrievedCourier.Status())
	suite.Nil(retrievedCourier.CurrentOrderID())
	suite.Equal(1, retrievedCourier.TotalDeliveries())
}

// TestUnitOfWork_CancelWorkflowRollback verifies rollback behavior when a
// cancellation transaction is abandoned midway.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CancelWorkflowRollback() {
	ctx := context.Background()

	// Seed a confirmed order with a bound courier.
	seedUow := suite.factory.Create()
	testOrder := createTestOrder()
	testCourier := createTestCourier()
	suite.Require().NoError(testOrder.Confirm())
	suite.Require().NoError(testCourier.Bind(testOrder.ID()))
	suite.Require().NoError(testOrder.AssignCourier(testCourier.ID()))
	err := seedUow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)
	err = seedUow.CourierRepository().Add(ctx, testCourier)
	suite.Require().NoError(err)

	// Start cancelling, then abandon the transaction.
	uow := suite.factory.Create()
	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	workingOrder, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	unboundCourierID, err := workingOrder.Cancel()
	suite.Require().NoError(err)
	suite.Require().NotNil(unboundCourierID)

	err = uow.OrderRepository().Update(ctx, workingOrder)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	// The order is still confirmed with its courier bound.
	newUow := suite.factory.Create()
	retrievedOrder, err := newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, retrievedOrder.Status())
	suite.NotNil(retrievedOrder.CourierID())
}

// createTestOrder creates a valid pending delivery order for testing purposes.
func createTestOrder() *order.Order {
	restaurantPoint, _ := kernel.NewGeoPoint(41.7151, 44.8271)
	destinationPoint, _ := kernel.NewGeoPoint(41.7300, 44.8100)
	destination, _ := kernel.NewAddress("12 Rustaveli Ave", "Tbilisi", destinationPoint, "")
	item, _ := order.NewItem(kernel.NewUUID(), "Khinkali", 900, 5, "")
	pricing, _ := order.NewPricing(4800, 300, 0)

	testOrder, _ := order.NewOrder(
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		[]order.Item{item},
		pricing,
		order.Delivery,
		&destination,
		restaurantPoint,
		time.Now(),
	)
	return testOrder
}

// createTestCourier creates a valid available courier for testing purposes.
func createTestCourier() *courier.Courier {
	testCourier, _ := courier.NewCourier(kernel.NewUUID(), "Test Courier", "+995-555-0102")
	_ = testCourier.SetStatus(courier.Available)
	point, _ := kernel.NewGeoPoint(41.7160, 44.8270)
	_ = testCourier.UpdatePosition(point, time.Now())
	return testCourier
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
