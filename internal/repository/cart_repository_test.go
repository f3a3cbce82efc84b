package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feelmycode/parabole/internal/model"
	"github.com/feelmycode/parabole/internal/service"
)

func cartLineRow(id, productID, sellerID int64, cnt int) []any {
	return []any{id, productID, "apple", int64(1000), int64(10), "", cnt, sellerID, "shop"}
}

func TestCartRepository_Upsert_AddsToExisting(t *testing.T) {
	var capturedSQL string
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			return rowOf(int64(3), 5, time.Now())
		},
	}

	item := &model.CartItem{UserID: 1, ProductID: 2, Cnt: 2}
	err := NewCartRepositoryWithPool(mock).Upsert(context.Background(), item)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "ON CONFLICT (user_id, product_id) DO UPDATE SET cnt = cart_items.cnt + EXCLUDED.cnt")
	assert.Equal(t, int64(3), item.ID)
	assert.Equal(t, 5, item.Cnt)
}

func TestCartRepository_GetByID_NotFound(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return errRow(pgx.ErrNoRows)
		},
	}

	_, err := NewCartRepositoryWithPool(mock).GetByID(context.Background(), 3)

	assert.ErrorIs(t, err, service.ErrCartItemNotFound)
}

func TestCartRepository_Delete_NotFound(t *testing.T) {
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}

	err := NewCartRepositoryWithPool(mock).Delete(context.Background(), 3)

	assert.ErrorIs(t, err, service.ErrCartItemNotFound)
}

func TestCartRepository_ListByUser(t *testing.T) {
	var capturedSQL string
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedSQL = sql
			return rowsOf(cartLineRow(2, 20, 1, 1), cartLineRow(1, 10, 2, 3)), nil
		},
	}

	lines, err := NewCartRepositoryWithPool(mock).ListByUser(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(2), lines[0].CartItemID)
	assert.Equal(t, "shop", lines[1].StoreName)
	assert.Contains(t, capturedSQL, "ORDER BY ci.id DESC")
	assert.Contains(t, capturedSQL, "NOT p.is_deleted")
}

func TestCartRepository_DeleteByIDs_Empty(t *testing.T) {
	tx := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			t.Fatal("no statement expected for empty ids")
			return pgconn.CommandTag{}, nil
		},
	}

	require.NoError(t, NewCartRepositoryWithPool(nil).DeleteByIDs(context.Background(), tx, nil))
}
