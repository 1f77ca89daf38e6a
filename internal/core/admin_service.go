package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"gwi.com/verification-bot/internal/store"
)

// ReferenceWriter stores uploaded reference files.
type ReferenceWriter interface {
	Save(fileName string, data []byte) error
}

// LedgerExporter exposes the ledger to the export command.
type LedgerExporter interface {
	Load() []store.Record
	Export(path string) error
}

// AdminService implements the administrator commands. Every entry point checks
// the caller against the single configured admin chat.
type AdminService struct {
	adminID    int64
	exportPath string
	references ReferenceWriter
	ledger     LedgerExporter
	messenger  Messenger
	logger     *zap.Logger

	mu             sync.Mutex
	pendingUploads map[int64]struct{}
}

func NewAdminService(adminID int64, exportPath string, references ReferenceWriter, ledger LedgerExporter, messenger Messenger, logger *zap.Logger) *AdminService {
	return &AdminService{
		adminID:        adminID,
		exportPath:     exportPath,
		references:     references,
		ledger:         ledger,
		messenger:      messenger,
		logger:         logger.Named("admin"),
		pendingUploads: make(map[int64]struct{}),
	}
}

// IsAdmin reports whether chatID is the configured administrator.
func (a *AdminService) IsAdmin(chatID int64) bool {
	return chatID == a.adminID
}

// BeginUpload arms a one-shot upload step for the admin chat.
func (a *AdminService) BeginUpload(chatID int64) string {
	if !a.IsAdmin(chatID) {
		a.logger.Warn("unauthorized upload attempt", zap.Int64("chat_id", chatID))
		return msgUploadDenied
	}
	a.mu.Lock()
	a.pendingUploads[chatID] = struct{}{}
	a.mu.Unlock()
	return msgUploadPrompt
}

// AwaitingUpload reports whether the next message from chatID is consumed as
// an upload.
func (a *AdminService) AwaitingUpload(chatID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pendingUploads[chatID]
	return ok
}

// CancelUpload disarms a pending upload step.
func (a *AdminService) CancelUpload(chatID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pendingUploads, chatID)
}

// ReceiveUpload consumes the pending upload step with the given message. It
// returns false if no upload was pending for the chat.
func (a *AdminService) ReceiveUpload(ctx context.Context, in Inbound) (string, bool) {
	a.mu.Lock()
	_, pending := a.pendingUploads[in.ChatID]
	delete(a.pendingUploads, in.ChatID)
	a.mu.Unlock()
	if !pending {
		return "", false
	}
	if !a.IsAdmin(in.ChatID) {
		return msgUploadDenied, true
	}

	doc := in.Document
	if doc == nil || !strings.HasSuffix(doc.FileName, store.ReferenceExt) {
		return msgUploadInvalid, true
	}

	log := a.logger.With(zap.Int64("chat_id", in.ChatID), zap.String("file", doc.FileName))
	data, err := a.messenger.FetchDocument(ctx, doc.FileID)
	if err != nil {
		log.Error("failed to download reference file", zap.Error(err))
		return msgUploadFailed(err), true
	}
	if err := a.references.Save(doc.FileName, data); err != nil {
		if errors.Is(err, store.ErrInvalidReferenceFile) {
			return msgUploadInvalid, true
		}
		log.Error("failed to store reference file", zap.Error(err))
		return msgUploadFailed(err), true
	}
	log.Info("reference file uploaded", zap.Int("bytes", len(data)))
	return msgUploadOK, true
}

// ExportLedger writes the ledger to the export path. The returned document is
// the file to send back, or empty when only the reply should be sent.
func (a *AdminService) ExportLedger(chatID int64) (reply string, document string) {
	if !a.IsAdmin(chatID) {
		a.logger.Warn("unauthorized export attempt", zap.Int64("chat_id", chatID))
		return msgExportDenied, ""
	}
	records := a.ledger.Load()
	if len(records) == 0 {
		return msgNoUsers, ""
	}
	if err := a.ledger.Export(a.exportPath); err != nil {
		a.logger.Error("ledger export failed", zap.String("path", a.exportPath), zap.Error(err))
		return msgExportFailed, ""
	}
	a.logger.Info("ledger exported", zap.String("path", a.exportPath), zap.Int("rows", len(records)))
	return "", a.exportPath
}
