package service

import (
	"achievements_tracker_backend/internal/docstore"
	"achievements_tracker_backend/internal/repository"
	"achievements_tracker_backend/internal/util"
	"achievements_tracker_backend/pkg/logger"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MigrationService moves groups from the legacy flat collection into a user's scope.
type MigrationService struct {
	Store   docstore.Store
	Storage *StorageService
	Now     func() time.Time
}

func NewMigrationService(store docstore.Store, storage *StorageService) *MigrationService {
	return &MigrationService{Store: store, Storage: storage, Now: time.Now}
}

type MigrationOptions struct {
	UID          string
	DeleteSource bool
	Backup       bool
}

type MigrationResult struct {
	Copied    int    `json:"copied" yaml:"copied"`
	Deleted   int    `json:"deleted" yaml:"deleted"`
	BackupURL string `json:"backupUrl,omitempty" yaml:"backup_url,omitempty"`
}

// snapshotEntry 备份文件中的一条文档
type snapshotEntry struct {
	ID      string          `json:"id"`
	Version int64           `json:"version"`
	Fields  docstore.Fields `json:"fields"`
}

// MigrateLegacyGroups copies every document of the flat collection into
// users/{uid}/achievements under the same id. Nothing is copied when the backup fails.
func (s *MigrationService) MigrateLegacyGroups(ctx context.Context, opts MigrationOptions) (*MigrationResult, error) {
	if opts.UID == "" {
		return nil, fmt.Errorf("%w: uid is required", util.ErrInvalidInput)
	}

	docs, err := s.Store.List(ctx, repository.LegacyScope)
	if err != nil {
		return nil, fmt.Errorf("list legacy groups: %w", err)
	}
	result := &MigrationResult{}
	if len(docs) == 0 {
		return result, nil
	}

	if opts.Backup {
		if s.Storage == nil {
			return nil, errors.New("backup requested but no storage is configured")
		}
		url, err := s.backup(ctx, docs)
		if err != nil {
			return nil, fmt.Errorf("backup legacy groups: %w", err)
		}
		result.BackupURL = url
		logger.Log.Info("迁移前备份完成", zap.String("url", url), zap.Int("count", len(docs)))
	}

	target := repository.UserScope(opts.UID)
	for _, doc := range docs {
		if _, err := s.Store.Set(ctx, target, doc.ID, doc.Fields); err != nil {
			return result, fmt.Errorf("copy %s: %w", doc.ID, err)
		}
		result.Copied++
	}

	if opts.DeleteSource {
		for _, doc := range docs {
			deleted, err := s.Store.Delete(ctx, repository.LegacyScope, doc.ID)
			if err != nil {
				return result, fmt.Errorf("delete source %s: %w", doc.ID, err)
			}
			if deleted {
				result.Deleted++
			}
		}
	}

	logger.Log.Info("legacy groups migrated",
		zap.String("userId", opts.UID),
		zap.Int("copied", result.Copied),
		zap.Int("deleted", result.Deleted),
	)
	return result, nil
}

func (s *MigrationService) backup(ctx context.Context, docs []docstore.Document) (string, error) {
	entries := make([]snapshotEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, snapshotEntry{ID: doc.ID, Version: doc.Version, Fields: doc.Fields})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("backups/achievements-%d.json", s.Now().Unix())
	return s.Storage.Upload(ctx, name, bytes.NewReader(data), int64(len(data)), util.MimeJSON)
}
