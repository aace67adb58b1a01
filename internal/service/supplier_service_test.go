package service_test

import (
	"context"
	"testing"

	"stockroom/internal/apperror"
	"stockroom/internal/dto"
	"stockroom/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierLifecycle(t *testing.T) {
	repo := newStubSupplierRepo()
	svc := service.NewSupplierService(repo)
	ctx := context.Background()

	contact := "Dana Reeve"
	created, err := svc.Create(ctx, dto.CreateSupplierRequest{
		Name:        "Acme Wholesale",
		ContactName: &contact,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	id := uuid.MustParse(created.ID)

	updatedContact := "Lee Ortega"
	updated, err := svc.Update(ctx, id, dto.CreateSupplierRequest{
		Name:        "Acme Wholesale Ltd",
		ContactName: &updatedContact,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Wholesale Ltd", updated.Name)

	require.NoError(t, svc.Deactivate(ctx, id))

	// Deactivated suppliers stay resolvable by ID but drop out of the
	// default listing.
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Active)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSupplier_NotFound(t *testing.T) {
	svc := service.NewSupplierService(newStubSupplierRepo())
	ctx := context.Background()

	var nf *apperror.NotFoundError

	_, err := svc.Get(ctx, uuid.New())
	require.ErrorAs(t, err, &nf)

	err = svc.Deactivate(ctx, uuid.New())
	require.ErrorAs(t, err, &nf)
}
