package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/store"
	"github.com/nestfinance/nest-core/internal/testutil"
)

func TestExporter_Export(t *testing.T) {
	uploader := testutil.NewMockUploader()
	exporter := NewExporter(uploader)

	snap := store.Snapshot{
		UserID: "alice",
		Transactions: []*domain.Transaction{
			{ID: "t1", Type: domain.TransactionTypeExpense, Description: "Coffee", Amount: decimal.NewFromFloat(4.5), Category: "Food"},
		},
		Goals: []*domain.Goal{
			{ID: "g1", Name: "Vacation", TargetAmount: decimal.NewFromInt(2000)},
		},
		Profile: &domain.UserProfile{PlanTier: domain.PlanTierPremium},
	}

	url, err := exporter.Export(context.Background(), snap)
	require.NoError(t, err)
	assert.Contains(t, url, "exports/alice/")
	assert.Contains(t, url, ".json")

	require.Len(t, uploader.Objects, 1)
	for objectPath, payload := range uploader.Objects {
		assert.Contains(t, objectPath, "exports/alice/")

		var doc Document
		require.NoError(t, json.Unmarshal(payload, &doc))
		assert.Equal(t, "alice", doc.UserID)
		require.Len(t, doc.Transactions, 1)
		assert.Equal(t, "Coffee", doc.Transactions[0].Description)
		require.Len(t, doc.Goals, 1)
		require.NotNil(t, doc.Profile)
		assert.Equal(t, domain.PlanTierPremium, doc.Profile.PlanTier)
	}
}

func TestExporter_ExportRequiresSession(t *testing.T) {
	uploader := testutil.NewMockUploader()
	exporter := NewExporter(uploader)

	_, err := exporter.Export(context.Background(), store.Snapshot{})
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.Empty(t, uploader.Objects)
}

func TestExporter_UploadFailurePropagates(t *testing.T) {
	uploader := testutil.NewMockUploader()
	uploader.UploadErr = errors.New("bucket unavailable")
	exporter := NewExporter(uploader)

	_, err := exporter.Export(context.Background(), store.Snapshot{UserID: "alice"})
	assert.ErrorContains(t, err, "bucket unavailable")
}
