package attributes

import (
	"context"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCreateAttributeRejectsDuplicates(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAttribute(ctx, "Color")
	require.NoError(t, err)

	_, err = svc.CreateAttribute(ctx, "Color")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateAttributeValueRejectsDuplicatePair(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	color, err := svc.CreateAttribute(ctx, "Color")
	require.NoError(t, err)
	size, err := svc.CreateAttribute(ctx, "Size")
	require.NoError(t, err)

	_, err = svc.CreateAttributeValue(ctx, color.ID, "Red")
	require.NoError(t, err)

	_, err = svc.CreateAttributeValue(ctx, color.ID, "Red")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// The same value under another attribute is fine.
	_, err = svc.CreateAttributeValue(ctx, size.ID, "Red")
	require.NoError(t, err)

	_, err = svc.CreateAttributeValue(ctx, uuid.New(), "Blue")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListAttributes(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	color, err := svc.CreateAttribute(ctx, "Color")
	require.NoError(t, err)
	for _, value := range []string{"Red", "Blue"} {
		_, err := svc.CreateAttributeValue(ctx, color.ID, value)
		require.NoError(t, err)
	}

	rows, err := svc.ListAttributes(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Color", rows[0].Name)

	require.Len(t, rows[0].Values, 2)
	assert.Equal(t, "Blue", rows[0].Values[0].Value)
	assert.Equal(t, "Red", rows[0].Values[1].Value)
}

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:attributes_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.ProductAttribute{},
		&models.ProductAttributeValue{},
	))
	svc, err := NewService(conn)
	require.NoError(t, err)
	return svc
}
