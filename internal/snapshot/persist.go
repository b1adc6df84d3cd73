package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/coinstream/internal/model"
)

// document is the persisted JSON layout.
type document struct {
	Data        []model.AssetRecord `json:"data"`
	LastUpdated *string             `json:"lastUpdated"`
}

// Encode serializes a snapshot into the persisted layout.
func Encode(s model.Snapshot) ([]byte, error) {
	doc := document{Data: s.Assets}
	if doc.Data == nil {
		doc.Data = []model.AssetRecord{}
	}
	if s.LastUpdated != nil {
		ts := s.LastUpdated.UTC().Format(time.RFC3339Nano)
		doc.LastUpdated = &ts
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses the persisted layout. A missing or null lastUpdated yields a
// snapshot with no timestamp.
func Decode(data []byte) (model.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Snapshot{}, fmt.Errorf("parse snapshot json: %w", err)
	}

	s := model.Snapshot{Assets: doc.Data}
	if doc.LastUpdated != nil && *doc.LastUpdated != "" {
		ts, err := time.Parse(time.RFC3339Nano, *doc.LastUpdated)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("parse lastUpdated: %w", err)
		}
		ts = ts.UTC()
		s.LastUpdated = &ts
	}
	return s, nil
}

// Persister loads and saves snapshots through a BlobStore.
type Persister struct {
	blob   BlobStore
	logger *slog.Logger
}

// NewPersister creates a Persister.
func NewPersister(blob BlobStore, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{blob: blob, logger: logger}
}

// Load reads the persisted snapshot. It returns ErrNotFound when nothing has
// been saved yet.
func (p *Persister) Load(ctx context.Context) (model.Snapshot, error) {
	data, err := p.blob.Read(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	s, err := Decode(data)
	if err != nil {
		return model.Snapshot{}, err
	}

	p.logger.Info("snapshot loaded",
		"assets", len(s.Assets),
		"last_updated", s.LastUpdated,
	)
	return s, nil
}

// Save writes the snapshot, replacing any previous one.
func (p *Persister) Save(ctx context.Context, s model.Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := p.blob.Write(ctx, data); err != nil {
		return err
	}

	p.logger.Debug("snapshot saved", "assets", len(s.Assets), "bytes", len(data))
	return nil
}
