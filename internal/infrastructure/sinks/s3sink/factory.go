package s3sink

import (
	"context"
	"time"

	"github.com/akave-ai/alephweb/internal/infrastructure/sinks"
	"github.com/akave-ai/alephweb/internal/telemetry"
)

const ensureBucketTimeout = 10 * time.Second

func init() {
	sinks.GlobalRegistry.Register(&Factory{})
}

// Factory creates archive sinks. Registers as "archive".
type Factory struct{}

func (f *Factory) Name() string {
	return "archive"
}

func (f *Factory) ConfigSpec() sinks.SinkTypeInfo {
	return sinks.SinkTypeInfo{
		Type:        "archive",
		Description: "Batches request records into gzipped JSON objects in an S3-compatible bucket.",
		Fields: []sinks.ConfigField{
			{Name: "archive.endpoint", Type: "string", Required: true, Description: "S3 API endpoint", Example: "https://o3.example.com"},
			{Name: "archive.bucket", Type: "string", Required: true, Description: "Bucket receiving batches", Example: "aleph-events"},
			{Name: "archive.region", Type: "string", Required: false, Description: "Bucket region", Example: "us-east-1"},
			{Name: "archive.prefix", Type: "string", Required: false, Description: "Object key prefix", Example: "events"},
			{Name: "archive.batch_size", Type: "number", Required: false, Description: "Records per object", Example: "500"},
		},
	}
}

func (f *Factory) Create(deps sinks.Deps) (telemetry.Sink, error) {
	client, err := NewClient(deps.Archive)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), ensureBucketTimeout)
	defer cancel()
	if err := client.EnsureBucket(ctx); err != nil {
		deps.Logger.Warn().Err(err).Str("bucket", deps.Archive.Bucket).Msg("archive bucket check failed, uploads may fail")
	}
	return New(client, deps.Archive.Prefix, deps.Archive.BatchSize), nil
}
