package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewCreateCourierCommand_ValidInput(t *testing.T) {
	cmd, err := commands.NewCreateCourierCommand("John Doe", "+15550100")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", cmd.Name())
	assert.Equal(t, "+15550100", cmd.PhoneNumber())
	require.NoError(t, cmd.CourierID().Validate())
}

func TestNewCreateCourierCommand_MissingFields(t *testing.T) {
	_, err := commands.NewCreateCourierCommand("", "+15550100")
	require.ErrorIs(t, err, commands.ErrNameIsRequired)

	_, err = commands.NewCreateCourierCommand("John Doe", "")
	require.ErrorIs(t, err, commands.ErrPhoneNumberIsRequired)
}

func TestCreateCourierCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateCourierCommand("John Doe", "+15550100")
	require.NoError(t, err)

	courierRepo := new(MockCourierRepository)
	uow := newUoW(ctx, nil, courierRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	courierRepo.On("Add", ctx, mock.AnythingOfType("*courier.Courier")).Return(nil).Once()

	factory := new(MockCourierUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateCourierCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	added := courierRepo.Calls[0].Arguments[1].(*courier.Courier)
	assert.Equal(t, courier.Offline, added.Status())
	assert.Nil(t, added.Position())
	assert.True(t, added.ID().IsEqual(cmd.CourierID()))
}

func TestCreateCourierCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()

	factory := new(MockCourierUoWFactory)
	handler := commands.NewCreateCourierCommandHandler(factory)
	err := handler.Handle(ctx, commands.CreateCourierCommand{})

	require.ErrorIs(t, err, commands.ErrCreateCourierCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
