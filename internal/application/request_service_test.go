package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

func TestRequestService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewRequestService(f.requests, f.items, f.users, f.clock, zap.NewNop())

	first, err := svc.CreateRequest(ctx, f.booker, CreateItemRequestRequest{Description: "need a ladder"})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	second, err := svc.CreateRequest(ctx, f.booker, CreateItemRequestRequest{Description: "need a saw"})
	require.NoError(t, err)

	on := true
	answer, err := f.itemSvc.CreateItem(ctx, f.owner, CreateItemRequest{
		Name: "Ladder", Description: "3m", Available: &on, RequestID: &first.ID,
	})
	require.NoError(t, err)

	own, err := svc.ListOwnRequests(ctx, f.booker)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, second.ID, own[0].ID)
	assert.Empty(t, own[0].Items)
	require.Len(t, own[1].Items, 1)
	assert.Equal(t, answer.ID, own[1].Items[0].ID)

	others, err := svc.ListOtherRequests(ctx, f.owner, 0, 1)
	require.NoError(t, err)
	require.Len(t, others.Items, 1)
	assert.Equal(t, second.ID, others.Items[0].ID)
	assert.Equal(t, int64(2), others.Total)

	mine, err := svc.ListOtherRequests(ctx, f.booker, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, mine.Items)

	got, err := svc.GetRequest(ctx, f.stranger, first.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = svc.GetRequest(ctx, f.stranger, 99)
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.CreateRequest(ctx, 999, CreateItemRequestRequest{Description: "x"})
	assert.True(t, domain.IsNotFound(err))
}
