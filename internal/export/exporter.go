// Package export writes point-in-time JSON exports of a user's
// collections to object storage and returns a temporary download link.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/store"
)

// DownloadExpiry is how long an export download link stays valid.
const DownloadExpiry = 15 * time.Minute

// Document is the exported JSON shape.
type Document struct {
	ExportedAt   time.Time             `json:"exportedAt"`
	UserID       string                `json:"userId"`
	Transactions []*domain.Transaction `json:"transactions"`
	Goals        []*domain.Goal        `json:"goals"`
	Budgets      []*domain.Budget      `json:"budgets"`
	Accounts     []*domain.Account     `json:"accounts"`
	Profile      *domain.UserProfile   `json:"profile,omitempty"`
}

// Exporter serializes store snapshots and hands them to an Uploader.
type Exporter struct {
	uploader Uploader
}

// NewExporter creates an Exporter.
func NewExporter(uploader Uploader) *Exporter {
	return &Exporter{uploader: uploader}
}

// Export uploads a JSON export of the snapshot and returns a presigned
// download URL.
func (e *Exporter) Export(ctx context.Context, snap store.Snapshot) (string, error) {
	if snap.UserID == "" {
		return "", domain.ErrNoSession
	}

	doc := Document{
		ExportedAt:   time.Now().UTC(),
		UserID:       snap.UserID,
		Transactions: snap.Transactions,
		Goals:        snap.Goals,
		Budgets:      snap.Budgets,
		Accounts:     snap.Accounts,
		Profile:      snap.Profile,
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	objectPath := fmt.Sprintf("exports/%s/%s.json", snap.UserID, doc.ExportedAt.Format("20060102T150405Z"))
	if _, err := e.uploader.Upload(ctx, objectPath, bytes.NewReader(raw), "application/json", int64(len(raw))); err != nil {
		return "", err
	}

	url, err := e.uploader.PresignedURL(ctx, objectPath, DownloadExpiry)
	if err != nil {
		return "", err
	}

	log.Info().
		Str("user_id", snap.UserID).
		Str("object_path", objectPath).
		Int("bytes", len(raw)).
		Msg("Snapshot exported")

	return url, nil
}
