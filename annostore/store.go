// Stores annotation snapshots in a SQLite database, through gorm.
package annostore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benoitkugler/okmarker/annolog"
	"github.com/benoitkugler/okmarker/annostate"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned for an unknown snapshot id.
var ErrNotFound = errors.New("annostore: snapshot not found")

// Record is a stored snapshot. MarkerCount, Width and Height
// duplicate the content of State for listings.
type Record struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"index"`
	Width       float64
	Height      float64
	MarkerCount int
	State       datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Record) TableName() string { return "snapshots" }

// Store is a snapshot repository. It is safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path.
// An empty path opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}
	if path == "" {
		// each connection to :memory: is a distinct database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("opening snapshot store: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrating snapshot store: %w", err)
	}
	annolog.Logger().Debug().Str("path", path).Msg("snapshot store opened")
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func encode(state *annostate.AnnotationState) (datatypes.JSON, error) {
	var buf bytes.Buffer
	if err := annostate.Encode(&buf, state); err != nil {
		return nil, err
	}
	return datatypes.JSON(bytes.TrimSpace(buf.Bytes())), nil
}

// Save stores a new snapshot and returns its id.
func (s *Store) Save(ctx context.Context, name string, state *annostate.AnnotationState) (string, error) {
	payload, err := encode(state)
	if err != nil {
		return "", fmt.Errorf("saving snapshot: %w", err)
	}
	rec := Record{
		ID:          uuid.NewString(),
		Name:        name,
		Width:       state.Width,
		Height:      state.Height,
		MarkerCount: len(state.Markers),
		State:       payload,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("saving snapshot: %w", err)
	}
	return rec.ID, nil
}

// Update replaces the content of the snapshot id.
func (s *Store) Update(ctx context.Context, id string, state *annostate.AnnotationState) error {
	payload, err := encode(state)
	if err != nil {
		return fmt.Errorf("updating snapshot %s: %w", id, err)
	}
	res := s.db.WithContext(ctx).Model(&Record{}).Where("id = ?", id).Updates(map[string]any{
		"width":        state.Width,
		"height":       state.Height,
		"marker_count": len(state.Markers),
		"state":        payload,
		"updated_at":   time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("updating snapshot %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Record returns the stored row of the snapshot id.
func (s *Store) Record(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("reading snapshot %s: %w", id, err)
	}
	return rec, nil
}

// Get returns the decoded snapshot id.
func (s *Store) Get(ctx context.Context, id string) (*annostate.AnnotationState, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := annostate.Decode(bytes.NewReader(rec.State))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", id, err)
	}
	return state, nil
}

// List returns the stored snapshots without their content,
// oldest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var out []Record
	err := s.db.WithContext(ctx).Omit("state").Order("created_at").Order("name").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Record{})
	if res.Error != nil {
		return fmt.Errorf("deleting snapshot %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
