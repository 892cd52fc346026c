package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/marketplace/internal/notification/domain"
	"github.com/allisson/marketplace/internal/testutil"
)

func createNotification(t *testing.T, repo *PostgreSQLNotificationRepository, recipientID uuid.UUID, notificationType string) *domain.Notification {
	t.Helper()

	notification := &domain.Notification{
		ID:          uuid.Must(uuid.NewV7()),
		RecipientID: recipientID,
		Type:        notificationType,
		Payload:     []byte(`{"buyerId":"some-buyer"}`),
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	return notification
}

func TestPostgreSQLNotificationRepository_CreateAndList(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	buyerID, sellerID := testutil.CreateTestUsers(t, db, "notification-list")
	repo := NewPostgreSQLNotificationRepository(db)
	ctx := context.Background()

	first := createNotification(t, repo, sellerID, domain.TypeOrderPlaced)
	time.Sleep(10 * time.Millisecond)
	second := createNotification(t, repo, sellerID, domain.TypeOrderCompleted)
	createNotification(t, repo, buyerID, domain.TypeOrderConfirmed)

	notifications, err := repo.ListByRecipient(ctx, sellerID, 0, 50)
	require.NoError(t, err)
	require.Len(t, notifications, 2)

	// Newest first.
	assert.Equal(t, second.ID, notifications[0].ID)
	assert.Equal(t, first.ID, notifications[1].ID)
	assert.JSONEq(t, `{"buyerId":"some-buyer"}`, string(notifications[0].Payload))

	count, err := repo.CountByRecipient(ctx, sellerID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPostgreSQLNotificationRepository_DuplicateRowsAllowed(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	_, sellerID := testutil.CreateTestUsers(t, db, "notification-dup")
	repo := NewPostgreSQLNotificationRepository(db)
	ctx := context.Background()

	orderID := uuid.NullUUID{UUID: uuid.Must(uuid.NewV7()), Valid: true}
	for range 2 {
		notification := &domain.Notification{
			ID:          uuid.Must(uuid.NewV7()),
			RecipientID: sellerID,
			OrderID:     orderID,
			Type:        domain.TypeOrderPlaced,
			Payload:     []byte(`{}`),
		}
		require.NoError(t, repo.Create(ctx, notification))
	}

	count, err := repo.CountByRecipient(ctx, sellerID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
