package clients

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/collections"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.ApplySQLiteSchema(context.Background(), conn))

	svc, err := NewService(collections.NewGormStore(conn), nil)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return impl
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "11987654321", NormalizePhone("(11) 98765-4321"))
	assert.Equal(t, "", NormalizePhone(" - "))
}

func TestUpsertLaterWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "bella", models.Client{Phone: "(11) 98765-4321", Name: "Maria", BirthDate: "1990-05-01"})
	require.NoError(t, err)
	assert.Equal(t, "11987654321", first.Phone)

	second, err := svc.Upsert(ctx, "bella", models.Client{Phone: "11987654321", Name: "Maria Silva", BirthDate: "1990-05-02"})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	all, err := svc.List(ctx, "bella")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Maria Silva", all[0].Name)
	assert.Equal(t, "1990-05-02", all[0].BirthDate)
}

func TestFindByPhoneIsExact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Upsert(ctx, "bella", models.Client{Phone: "11987654321", Name: "Maria"})
	require.NoError(t, err)

	found, err := svc.FindByPhone(ctx, "bella", "+11 98765 4321")
	require.NoError(t, err)
	require.NotNil(t, found)

	partial, err := svc.FindByPhone(ctx, "bella", "1198765")
	require.NoError(t, err)
	assert.Nil(t, partial)

	otherTenant, err := svc.FindByPhone(ctx, "corte", "11987654321")
	require.NoError(t, err)
	assert.Nil(t, otherTenant)
}

func TestUpsertValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "bella", models.Client{Name: "Maria"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Upsert(ctx, "bella", models.Client{Phone: "119", Name: " "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Upsert(ctx, "bella", models.Client{Phone: "119", Name: "Maria", BirthDate: "2030-01-01"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Upsert(ctx, "bella", models.Client{Phone: "119", Name: "Maria", BirthDate: "01/02/1990"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
