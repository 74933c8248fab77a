package courierrepo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testMaxPositionAge = 15 * time.Minute

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// CourierRepositoryIntegrationTestSuite provides integration tests for
// CourierRepository using PostgreSQL containers to verify persistence and
// the geospatial candidate queries against a real database.
type CourierRepositoryIntegrationTestSuite struct {
	suite.Suite
	container         *postgres.PostgresContainer
	db                *gorm.DB
	courierRepository *courierrepo.GormCourierRepository
	tracker           *MockAggregateTracker
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Get connection string and connect to database
	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	// Auto-migrate the schema
	suite.Require().NoError(db.AutoMigrate(&courierrepo.CourierDTO{}))
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupTest() {
	// Clean the database before each test
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE couriers").Error)

	// Create fresh repository and tracker for each test
	suite.tracker = new(MockAggregateTracker)
	suite.courierRepository = courierrepo.NewGormCourierRepository(suite.db, suite.tracker, testMaxPositionAge)
}

func (suite *CourierRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CourierRepositoryIntegrationTestSuite) TestAdd_ValidCourier_Success() {
	ctx := context.Background()

	newCourier := suite.createTestCourier("Giorgi")

	suite.tracker.On("TrackAggregate", newCourier.ID(), newCourier).Once()

	err := suite.courierRepository.Add(ctx, newCourier)
	suite.Require().NoError(err)

	var count int64
	suite.Require().NoError(suite.db.Model(&courierrepo.CourierDTO{}).Count(&count).Error)
	suite.Equal(int64(1), count)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGet_ExistingCourier_RoundTripsAllFields() {
	ctx := context.Background()

	original := suite.createTestCourier("Nino")
	suite.Require().NoError(original.SetStatus(courier.Available))
	reportedAt := time.Now().UTC().Truncate(time.Millisecond)
	suite.Require().NoError(original.UpdatePosition(suite.geoPoint(41.7151, 44.8271), reportedAt))

	suite.tracker.On("TrackAggregate", original.ID(), original).Once()
	suite.Require().NoError(suite.courierRepository.Add(ctx, original))

	retrieved, err := suite.courierRepository.Get(ctx, original.ID())
	suite.Require().NoError(err)

	suite.Equal(original.ID(), retrieved.ID())
	suite.Equal("Nino", retrieved.Name())
	suite.Equal(original.PhoneNumber(), retrieved.PhoneNumber())
	suite.Equal(courier.Available, retrieved.Status())
	suite.Equal(courier.Available, retrieved.LoadedStatus())
	suite.Nil(retrieved.CurrentOrderID())
	suite.Equal(0, retrieved.TotalDeliveries())

	suite.Require().NotNil(retrieved.Position())
	suite.InDelta(41.7151, retrieved.Position().Point().Lat(), 1e-9)
	suite.InDelta(44.8271, retrieved.Position().Point().Lng(), 1e-9)
	suite.WithinDuration(reportedAt, retrieved.Position().UpdatedAt(), time.Millisecond)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGet_BusyCourier_RestoresOrderBinding() {
	ctx := context.Background()

	busy := suite.createTestCourier("Levan")
	suite.Require().NoError(busy.SetStatus(courier.Available))
	orderID := kernel.NewUUID()
	suite.Require().NoError(busy.Bind(orderID))

	suite.tracker.On("TrackAggregate", busy.ID(), busy).Once()
	suite.Require().NoError(suite.courierRepository.Add(ctx, busy))

	retrieved, err := suite.courierRepository.Get(ctx, busy.ID())
	suite.Require().NoError(err)

	suite.Equal(courier.Busy, retrieved.Status())
	suite.Require().NotNil(retrieved.CurrentOrderID())
	suite.True(orderID.IsEqual(*retrieved.CurrentOrderID()))

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGet_NonExistentCourier_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.courierRepository.Get(ctx, kernel.NewUUID())

	suite.Nil(retrieved)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestUpdate_LoadedCourier_PersistsChanges() {
	ctx := context.Background()

	original := suite.createTestCourier("Tamar")
	suite.tracker.On("TrackAggregate", original.ID(), mock.Anything)
	suite.Require().NoError(suite.courierRepository.Add(ctx, original))

	// Reload so the aggregate carries its persisted status for the
	// conditional update.
	loaded, err := suite.courierRepository.Get(ctx, original.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.SetStatus(courier.Available))
	suite.Require().NoError(loaded.UpdatePosition(suite.geoPoint(41.72, 44.83), time.Now()))

	suite.Require().NoError(suite.courierRepository.Update(ctx, loaded))

	retrieved, err := suite.courierRepository.Get(ctx, loaded.ID())
	suite.Require().NoError(err)
	suite.Equal(courier.Available, retrieved.Status())
	suite.Require().NotNil(retrieved.Position())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestUpdate_ConcurrentStatusChange_ReturnsConflict() {
	ctx := context.Background()

	original := suite.createTestCourier("Zurab")
	suite.Require().NoError(original.SetStatus(courier.Available))
	suite.tracker.On("TrackAggregate", original.ID(), mock.Anything)
	suite.Require().NoError(suite.courierRepository.Add(ctx, original))

	// Two operations load the same available courier.
	first, err := suite.courierRepository.Get(ctx, original.ID())
	suite.Require().NoError(err)
	second, err := suite.courierRepository.Get(ctx, original.ID())
	suite.Require().NoError(err)

	// The first binds an order and wins.
	suite.Require().NoError(first.Bind(kernel.NewUUID()))
	suite.Require().NoError(suite.courierRepository.Update(ctx, first))

	// The second still expects the courier to be available and loses.
	suite.Require().NoError(second.Bind(kernel.NewUUID()))
	err = suite.courierRepository.Update(ctx, second)
	suite.Require().ErrorIs(err, ports.ErrConcurrentModification)

	// The winner's binding is what persisted.
	retrieved, err := suite.courierRepository.Get(ctx, original.ID())
	suite.Require().NoError(err)
	suite.Equal(courier.Busy, retrieved.Status())
	suite.Require().NotNil(retrieved.CurrentOrderID())
	suite.True(first.CurrentOrderID().IsEqual(*retrieved.CurrentOrderID()))

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestUpdate_SimultaneousBinds_ExactlyOneWins() {
	ctx := context.Background()

	original := suite.createTestCourier("Tamar")
	suite.Require().NoError(original.SetStatus(courier.Available))
	suite.tracker.On("TrackAggregate", original.ID(), mock.Anything)
	suite.Require().NoError(suite.courierRepository.Add(ctx, original))

	// Two dispatch cycles load the same available courier and bind it to
	// different orders before either persists.
	first, err := suite.courierRepository.Get(ctx, original.ID())
	suite.Require().NoError(err)
	second, err := suite.courierRepository.Get(ctx, original.ID())
	suite.Require().NoError(err)

	firstOrderID := kernel.NewUUID()
	secondOrderID := kernel.NewUUID()
	suite.Require().NoError(first.Bind(firstOrderID))
	suite.Require().NoError(second.Bind(secondOrderID))

	results := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		results <- suite.courierRepository.Update(ctx, first)
	}()
	go func() {
		defer wg.Done()
		results <- suite.courierRepository.Update(ctx, second)
	}()
	wg.Wait()
	close(results)

	var wins, losses int
	for updateErr := range results {
		switch {
		case updateErr == nil:
			wins++
		case errors.Is(updateErr, ports.ErrConcurrentModification):
			losses++
		default:
			suite.Require().NoError(updateErr)
		}
	}
	suite.Equal(1, wins)
	suite.Equal(1, losses)

	// The courier ended up bound to exactly one of the two orders.
	retrieved, err := suite.courierRepository.Get(ctx, original.ID())
	suite.Require().NoError(err)
	suite.Equal(courier.Busy, retrieved.Status())
	suite.Require().NotNil(retrieved.CurrentOrderID())
	bound := *retrieved.CurrentOrderID()
	suite.True(bound.IsEqual(firstOrderID) || bound.IsEqual(secondOrderID))
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetAll_ReturnsCouriersOrderedByName() {
	ctx := context.Background()

	suite.addCourier(suite.createTestCourier("Vato"))
	suite.addCourier(suite.createTestCourier("Ana"))
	suite.addCourier(suite.createTestCourier("Mari"))

	all, err := suite.courierRepository.GetAll(ctx)
	suite.Require().NoError(err)

	suite.Require().Len(all, 3)
	suite.Equal("Ana", all[0].Name())
	suite.Equal("Mari", all[1].Name())
	suite.Equal("Vato", all[2].Name())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetAvailableWithin_OrdersByDistance() {
	ctx := context.Background()
	origin := suite.geoPoint(41.7151, 44.8271)
	now := time.Now()

	// ~1.1 km, ~110 m and ~11 km north of the origin.
	mid := suite.availableCourierAt("Mid", 41.7251, 44.8271, now)
	near := suite.availableCourierAt("Near", 41.7161, 44.8271, now)
	far := suite.availableCourierAt("Far", 41.8151, 44.8271, now)

	candidates, err := suite.courierRepository.GetAvailableWithin(ctx, origin, 5000)
	suite.Require().NoError(err)

	suite.Require().Len(candidates, 2)
	suite.Equal(near.ID(), candidates[0].ID())
	suite.Equal(mid.ID(), candidates[1].ID())

	// The far courier is still reachable with a wide enough radius.
	candidates, err = suite.courierRepository.GetAvailableWithin(ctx, origin, 20000)
	suite.Require().NoError(err)
	suite.Require().Len(candidates, 3)
	suite.Equal(far.ID(), candidates[2].ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetAvailableWithin_FiltersIneligibleCouriers() {
	ctx := context.Background()
	origin := suite.geoPoint(41.7151, 44.8271)
	now := time.Now()

	eligible := suite.availableCourierAt("Eligible", 41.7161, 44.8271, now)

	// Stale position: reported beyond the staleness horizon.
	suite.availableCourierAt("Stale", 41.7161, 44.8281, now.Add(-time.Hour))

	// No position reported at all.
	positionless := suite.createTestCourier("Positionless")
	suite.Require().NoError(positionless.SetStatus(courier.Available))
	suite.addCourier(positionless)

	// Busy courier next door.
	busy := suite.createTestCourier("Busy")
	suite.Require().NoError(busy.SetStatus(courier.Available))
	suite.Require().NoError(busy.UpdatePosition(suite.geoPoint(41.7152, 44.8271), now))
	suite.Require().NoError(busy.Bind(kernel.NewUUID()))
	suite.addCourier(busy)

	// Offline courier next door.
	offline := suite.createTestCourier("Offline")
	suite.Require().NoError(offline.UpdatePosition(suite.geoPoint(41.7153, 44.8271), now))
	suite.addCourier(offline)

	candidates, err := suite.courierRepository.GetAvailableWithin(ctx, origin, 5000)
	suite.Require().NoError(err)

	suite.Require().Len(candidates, 1)
	suite.Equal(eligible.ID(), candidates[0].ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetAllAvailable_IncludesStaleAndPositionless() {
	ctx := context.Background()
	origin := suite.geoPoint(41.7151, 44.8271)
	now := time.Now()

	near := suite.availableCourierAt("Near", 41.7161, 44.8271, now)
	stale := suite.availableCourierAt("Stale", 41.7251, 44.8271, now.Add(-time.Hour))

	positionless := suite.createTestCourier("Positionless")
	suite.Require().NoError(positionless.SetStatus(courier.Available))
	suite.addCourier(positionless)

	// Offline couriers stay excluded even from the system-wide fallback.
	offline := suite.createTestCourier("Offline")
	suite.Require().NoError(offline.UpdatePosition(origin, now))
	suite.addCourier(offline)

	candidates, err := suite.courierRepository.GetAllAvailable(ctx, origin)
	suite.Require().NoError(err)

	// Distance-ordered with positionless couriers last.
	suite.Require().Len(candidates, 3)
	suite.Equal(near.ID(), candidates[0].ID())
	suite.Equal(stale.ID(), candidates[1].ID())
	suite.Equal(positionless.ID(), candidates[2].ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetAvailableWithin_NoCandidates_ReturnsEmptySlice() {
	ctx := context.Background()
	origin := suite.geoPoint(41.7151, 44.8271)

	candidates, err := suite.courierRepository.GetAvailableWithin(ctx, origin, 5000)
	suite.Require().NoError(err)
	suite.Empty(candidates)

	suite.tracker.AssertExpectations(suite.T())
}

// createTestCourier creates a test courier with the given name.
func (suite *CourierRepositoryIntegrationTestSuite) createTestCourier(name string) *courier.Courier {
	c, err := courier.NewCourier(kernel.NewUUID(), name, "+995-555-0101")
	suite.Require().NoError(err)
	return c
}

// availableCourierAt creates, positions and persists an available courier.
func (suite *CourierRepositoryIntegrationTestSuite) availableCourierAt(
	name string, lat, lng float64, reportedAt time.Time,
) *courier.Courier {
	c := suite.createTestCourier(name)
	suite.Require().NoError(c.SetStatus(courier.Available))
	suite.Require().NoError(c.UpdatePosition(suite.geoPoint(lat, lng), reportedAt))
	suite.addCourier(c)
	return c
}

// addCourier persists a courier with the matching tracker expectation.
func (suite *CourierRepositoryIntegrationTestSuite) addCourier(c *courier.Courier) {
	suite.tracker.On("TrackAggregate", c.ID(), c).Once()
	suite.Require().NoError(suite.courierRepository.Add(context.Background(), c))
}

func (suite *CourierRepositoryIntegrationTestSuite) geoPoint(lat, lng float64) kernel.GeoPoint {
	point, err := kernel.NewGeoPoint(lat, lng)
	suite.Require().NoError(err)
	return point
}

func TestCourierRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CourierRepositoryIntegrationTestSuite))
}
