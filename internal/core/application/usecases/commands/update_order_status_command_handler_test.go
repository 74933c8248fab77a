package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boundPair(t *testing.T, status order.Status) (*order.Order, *courier.Courier) {
	t.Helper()

	assigned := availableCourier(t, 41.72, 44.83)
	o := orderInStatus(t, status, ptrUUID(assigned.ID()))
	require.NoError(t, assigned.Bind(o.ID()))
	return o, assigned
}

func ptrUUID(id kernel.UUID) *kernel.UUID {
	return &id
}

func TestUpdateOrderStatusCommandHandler_Handle_StartPreparing(t *testing.T) {
	ctx := t.Context()
	o, _ := boundPair(t, order.Confirmed)

	orderRepo := new(MockOrderRepository)
	uow := newUoW(ctx, orderRepo, nil)
	uow.On("Commit", ctx).Return(nil).Once()

	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	orderRepo.On("Update", ctx, o).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Preparing)
	require.NoError(t, err)

	handler := commands.NewUpdateOrderStatusCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Preparing, o.Status())
}

func TestUpdateOrderStatusCommandHandler_Handle_DeliveredCompletesCourier(t *testing.T) {
	ctx := t.Context()
	o, assigned := boundPair(t, order.Delivering)

	orderRepo := new(MockOrderRepository)
	courierRepo := new(MockCourierRepository)
	uow := newUoW(ctx, orderRepo, courierRepo)
	uow.On("Commit", ctx).Return(nil).Once()

	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	courierRepo.On("Get", ctx, assigned.ID()).Return(assigned, nil).Once()
	courierRepo.On("Update", ctx, assigned).Return(nil).Once()
	orderRepo.On("Update", ctx, o).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Delivered)
	require.NoError(t, err)

	handler := commands.NewUpdateOrderStatusCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Delivered, o.Status())
	require.NotNil(t, o.ActualDeliveryAt())
	assert.Equal(t, courier.Available, assigned.Status())
	assert.Equal(t, 1, assigned.TotalDeliveries())
	assert.Nil(t, assigned.CurrentOrderID())
	courierRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_IllegalTransition(t *testing.T) {
	ctx := t.Context()
	o := orderInStatus(t, order.Confirmed, nil)

	orderRepo := new(MockOrderRepository)
	uow := newUoW(ctx, orderRepo, nil)
	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.Ready)
	require.NoError(t, err)

	handler := commands.NewUpdateOrderStatusCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrIllegalTransition)
	assert.Equal(t, order.Confirmed, o.Status())
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestNewUpdateOrderStatusCommand_RejectsOutOfScopeTargets(t *testing.T) {
	for _, target := range []order.Status{order.Pending, order.Confirmed, order.Cancelled, order.Unknown} {
		t.Run(target.String(), func(t *testing.T) {
			_, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), target)
			require.Error(t, err)
		})
	}
}
