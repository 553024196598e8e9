package s3sink

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akave-ai/alephweb/internal/model"
)

const defaultBatchSize = 500

// Uploader is implemented by *Client.
type Uploader interface {
	PutObject(ctx context.Context, key string, data []byte, contentType, contentEncoding string) error
}

type archived struct {
	Origin     string                `json:"origin"`
	ReportedAt time.Time             `json:"reported_at"`
	Record     model.TelemetryRecord `json:"record"`
}

// Sink buffers records and uploads them once BatchSize are pending, and on Close.
type Sink struct {
	up        Uploader
	prefix    string
	batchSize int
	now       func() time.Time

	mu    sync.Mutex
	batch []archived
}

// New returns a Sink uploading through up.
func New(up Uploader, prefix string, batchSize int) *Sink {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Sink{up: up, prefix: prefix, batchSize: batchSize, now: time.Now}
}

func (s *Sink) Name() string { return "archive" }

func (s *Sink) Report(ctx context.Context, origin string, rec model.TelemetryRecord) error {
	s.mu.Lock()
	s.batch = append(s.batch, archived{Origin: origin, ReportedAt: s.now().UTC(), Record: rec})
	if len(s.batch) < s.batchSize {
		s.mu.Unlock()
		return nil
	}
	batch := s.batch
	s.batch = nil
	s.mu.Unlock()
	return s.upload(ctx, batch)
}

// Close uploads whatever is still buffered.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	batch := s.batch
	s.batch = nil
	s.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}
	return s.upload(ctx, batch)
}

func (s *Sink) upload(ctx context.Context, batch []archived) error {
	data, err := encodeBatch(batch)
	if err != nil {
		return err
	}
	key := KeyForBatch(s.prefix, s.now(), uuid.New().String())
	if err := s.up.PutObject(ctx, key, data, "application/json", "gzip"); err != nil {
		return fmt.Errorf("upload %s (%d records): %w", key, len(batch), err)
	}
	return nil
}

func encodeBatch(batch []archived) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(batch); err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip batch: %w", err)
	}
	return buf.Bytes(), nil
}
