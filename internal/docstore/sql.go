package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ Store = (*SQLStore)(nil)

// DocumentRecord is the row layout of the documents table.
type DocumentRecord struct {
	Scope     string    `gorm:"primaryKey;size:255"`
	ID        string    `gorm:"primaryKey;size:64"`
	Version   int64     `gorm:"not null;default:1"`
	Data      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (DocumentRecord) TableName() string {
	return "documents"
}

func (r *DocumentRecord) document() (*Document, error) {
	fields := Fields{}
	if err := json.Unmarshal([]byte(r.Data), &fields); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", r.ID, err)
	}
	return &Document{ID: r.ID, Version: r.Version, Fields: fields}, nil
}

// SQLStore stores documents in a single table through gorm; works on MySQL and PostgreSQL.
type SQLStore struct {
	DB *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// Migrate creates or updates the documents table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DocumentRecord{})
}

func (s *SQLStore) Get(ctx context.Context, scope Scope, id string) (*Document, error) {
	var rec DocumentRecord
	err := s.DB.WithContext(ctx).Where("scope = ? AND id = ?", string(scope), id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return rec.document()
}

func (s *SQLStore) List(ctx context.Context, scope Scope) ([]Document, error) {
	var records []DocumentRecord
	err := s.DB.WithContext(ctx).
		Where("scope = ?", string(scope)).
		Order("created_at, id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]Document, 0, len(records))
	for i := range records {
		doc, err := records[i].document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *SQLStore) Add(ctx context.Context, scope Scope, fields Fields) (*Document, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	rec := &DocumentRecord{
		Scope:   string(scope),
		ID:      uuid.New().String(),
		Version: 1,
		Data:    string(data),
	}
	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}
	return &Document{ID: rec.ID, Version: rec.Version, Fields: fields.Clone()}, nil
}

func (s *SQLStore) Set(ctx context.Context, scope Scope, id string, fields Fields) (*Document, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	var version int64 = 1
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec DocumentRecord
		err := tx.Where("scope = ? AND id = ?", string(scope), id).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&DocumentRecord{
				Scope:   string(scope),
				ID:      id,
				Version: version,
				Data:    string(data),
			}).Error
		}
		if err != nil {
			return err
		}

		version = rec.Version + 1
		return tx.Model(&DocumentRecord{}).
			Where("scope = ? AND id = ?", string(scope), id).
			Updates(map[string]interface{}{
				"data":       string(data),
				"version":    version,
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("set document: %w", err)
	}
	return &Document{ID: id, Version: version, Fields: fields.Clone()}, nil
}

func (s *SQLStore) Update(ctx context.Context, scope Scope, id string, fields Fields, expectedVersion int64) (*Document, error) {
	var result *Document
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec DocumentRecord
		err := tx.Where("scope = ? AND id = ?", string(scope), id).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if expectedVersion != AnyVersion && rec.Version != expectedVersion {
			return ErrConflict
		}

		doc, err := rec.document()
		if err != nil {
			return err
		}
		doc.Fields.Merge(fields)
		data, err := json.Marshal(doc.Fields)
		if err != nil {
			return err
		}

		res := tx.Model(&DocumentRecord{}).
			Where("scope = ? AND id = ? AND version = ?", string(scope), id, rec.Version).
			Updates(map[string]interface{}{
				"data":       string(data),
				"version":    rec.Version + 1,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		doc.Version = rec.Version + 1
		result = doc
		return nil
	})

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return nil, err
	default:
		return nil, fmt.Errorf("update document: %w", err)
	}
}

func (s *SQLStore) Delete(ctx context.Context, scope Scope, id string) (bool, error) {
	res := s.DB.WithContext(ctx).
		Where("scope = ? AND id = ?", string(scope), id).
		Delete(&DocumentRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("delete document: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close(context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
