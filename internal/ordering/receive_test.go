package ordering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
)

var receiveTime = submitTime.Add(48 * time.Hour)

func ledgerWith(rows ...models.LedgerRow) *store.MemoryStore {
	m := store.NewMemoryStore()
	for _, r := range rows {
		_ = m.AppendRow(context.Background(), r)
	}
	return m
}

func twoLineOrder() *store.MemoryStore {
	return ledgerWith(
		ledgerRow("ORD-1-1", 1, submitTime, "A", "1001 佐藤", "A", models.RowPending),
		ledgerRow("ORD-1-1", 2, submitTime, "A", "1001 佐藤", "B", models.RowPending),
		ledgerRow("ORD-1-2", 1, submitTime, "B", "1001 佐藤", "C", models.RowPending),
	)
}

func TestReceive_AllPending(t *testing.T) {
	ctx := context.Background()
	m := twoLineOrder()

	res, err := Receive(ctx, m, "ORD-1-1", nil, receiveTime)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Changed)
	assert.Equal(t, models.OrderReceived, res.Status)

	rows, _ := m.RowsByOrder(ctx, "ORD-1-1")
	for _, r := range rows {
		assert.Equal(t, models.RowReceived, r.Status)
		require.NotNil(t, r.ReceivedAt)
		assert.True(t, r.ReceivedAt.Equal(receiveTime))
	}

	other, _ := m.RowsByOrder(ctx, "ORD-1-2")
	assert.Equal(t, models.RowPending, other[0].Status)
}

func TestReceive_FilteredNames(t *testing.T) {
	ctx := context.Background()
	m := twoLineOrder()

	res, err := Receive(ctx, m, "ORD-1-1", []string{"B"}, receiveTime)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, models.OrderPartial, res.Status)

	rows, _ := m.RowsByOrder(ctx, "ORD-1-1")
	assert.Equal(t, models.RowPending, rows[0].Status)
	assert.Equal(t, models.RowReceived, rows[1].Status)
}

func TestReceive_StatusNeverGoesBack(t *testing.T) {
	ctx := context.Background()
	m := twoLineOrder()

	rows, _ := m.RowsByOrder(ctx, "ORD-1-1")
	assert.Equal(t, models.OrderPending, DeriveStatus(rows))

	res, err := Receive(ctx, m, "ORD-1-1", []string{"B"}, receiveTime)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPartial, res.Status)

	later := receiveTime.Add(time.Hour)
	res, err = Receive(ctx, m, "ORD-1-1", nil, later)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, models.OrderReceived, res.Status)

	rows, _ = m.RowsByOrder(ctx, "ORD-1-1")
	require.NotNil(t, rows[0].ReceivedAt)
	assert.True(t, rows[0].ReceivedAt.Equal(later))
	assert.True(t, rows[1].ReceivedAt.Equal(receiveTime))

	first := DeriveStatus(rows)
	assert.Equal(t, models.OrderReceived, first)
	assert.Equal(t, first, DeriveStatus(rows))

	_, err = Receive(ctx, m, "ORD-1-1", []string{"A"}, later.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNothingToReceive)
	rows, _ = m.RowsByOrder(ctx, "ORD-1-1")
	assert.Equal(t, models.OrderReceived, DeriveStatus(rows))
}

func TestReceive_EmptyFilterMatchesNothing(t *testing.T) {
	res, err := Receive(context.Background(), twoLineOrder(), "ORD-1-1", []string{}, receiveTime)

	assert.ErrorIs(t, err, ErrNothingToReceive)
	assert.Equal(t, 0, res.Changed)
	assert.Equal(t, models.OrderPending, res.Status)
}

func TestReceive_AlreadyReceived(t *testing.T) {
	ctx := context.Background()
	m := twoLineOrder()
	_, err := Receive(ctx, m, "ORD-1-1", nil, receiveTime)
	require.NoError(t, err)

	res, err := Receive(ctx, m, "ORD-1-1", nil, receiveTime.Add(time.Hour))

	assert.ErrorIs(t, err, ErrNothingToReceive)
	assert.False(t, res.Success)
	assert.Equal(t, models.OrderReceived, res.Status)

	rows, _ := m.RowsByOrder(ctx, "ORD-1-1")
	assert.True(t, rows[0].ReceivedAt.Equal(receiveTime), "la date de réception n'est pas réécrite")
}

func TestReceive_UnknownOrder(t *testing.T) {
	_, err := Receive(context.Background(), twoLineOrder(), "ORD-404", nil, receiveTime)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReceive_TransportFailure(t *testing.T) {
	res, err := Receive(context.Background(), failingMark{twoLineOrder()}, "ORD-1-1", nil, receiveTime)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNothingToReceive)
	assert.NotErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, 0, res.Changed)
	assert.False(t, res.Success)
}
