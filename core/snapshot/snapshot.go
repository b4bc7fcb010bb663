package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dash-sync/core/entity"

	"gorm.io/gorm"
)

// Record is one persisted document.
type Record struct {
	Kind      string `gorm:"primaryKey;size:32"`
	Workspace string `gorm:"primaryKey;size:64"`
	DocID     string `gorm:"primaryKey;size:64;column:doc_id"`
	Lifecycle string `gorm:"size:16"`
	Doc       []byte
	UpdatedAt time.Time
}

// TableName sets the snapshot table name.
func (Record) TableName() string {
	return "snapshots"
}

// Store reads and writes snapshot rows.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a connected database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Init creates or migrates the snapshot table.
func (s *Store) Init() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to migrate snapshot table: %w", err)
	}
	return nil
}

// Save replaces the stored collection for one kind and workspace.
func (s *Store) Save(ctx context.Context, kind, workspace string, recs []Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kind = ? AND workspace = ?", kind, workspace).Delete(&Record{}).Error; err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}
		return tx.Create(&recs).Error
	})
}

// Load returns the stored collection for one kind and workspace.
func (s *Store) Load(ctx context.Context, kind, workspace string) ([]Record, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("kind = ? AND workspace = ?", kind, workspace).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Purge drops every snapshot row of a workspace.
func (s *Store) Purge(ctx context.Context, workspace string) error {
	return s.db.WithContext(ctx).Where("workspace = ?", workspace).Delete(&Record{}).Error
}

// Doc is the minimal document shape a snapshot needs to key a row.
type Doc interface {
	EntityID() string
	EntityLifecycle() entity.Lifecycle
}

// Persist builds a session persist hook writing docs of one kind.
// Marshal failures skip the document; a snapshot with a hole is still a
// valid snapshot.
func Persist[T Doc](store *Store, kind string) func(ctx context.Context, workspace string, docs []T) {
	return func(ctx context.Context, workspace string, docs []T) {
		now := time.Now().UTC()
		recs := make([]Record, 0, len(docs))
		for _, d := range docs {
			raw, err := json.Marshal(d)
			if err != nil {
				continue
			}
			recs = append(recs, Record{
				Kind:      kind,
				Workspace: workspace,
				DocID:     d.EntityID(),
				Lifecycle: string(d.EntityLifecycle()),
				Doc:       raw,
				UpdatedAt: now,
			})
		}
		_ = store.Save(ctx, kind, workspace, recs)
	}
}

// Preload loads and decodes the stored collection of one kind. Rows that
// fail to decode are dropped.
func Preload[T any](ctx context.Context, store *Store, kind, workspace string) ([]T, error) {
	recs, err := store.Load(ctx, kind, workspace)
	if err != nil {
		return nil, err
	}
	docs := make([]T, 0, len(recs))
	for _, r := range recs {
		var d T
		if err := json.Unmarshal(r.Doc, &d); err != nil {
			continue
		}
		docs = append(docs, d)
	}
	return docs, nil
}
