package s3sink

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/akave-ai/alephweb/internal/model"
)

type upload struct {
	key      string
	data     []byte
	encoding string
}

type fakeUploader struct {
	uploads []upload
	err     error
}

func (f *fakeUploader) PutObject(_ context.Context, key string, data []byte, _, encoding string) error {
	if f.err != nil {
		return f.err
	}
	f.uploads = append(f.uploads, upload{key: key, data: data, encoding: encoding})
	return nil
}

func decode(t *testing.T, data []byte) []archived {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out []archived
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	return out
}

func TestSink_FlushesOnBatchSizeAndClose(t *testing.T) {
	up := &fakeUploader{}
	s := New(up, "events", 2)
	s.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Report(ctx, "views.ui", model.TelemetryRecord{StatusCode: 200 + i}); err != nil {
			t.Fatalf("report: %v", err)
		}
	}
	if len(up.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(up.uploads))
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(up.uploads) != 2 {
		t.Fatalf("uploads = %d, want 2", len(up.uploads))
	}

	first := decode(t, up.uploads[0].data)
	if len(first) != 2 || first[1].Record.StatusCode != 201 || first[0].Origin != "views.ui" {
		t.Fatalf("first batch = %+v", first)
	}
	if !strings.HasPrefix(up.uploads[0].key, "events/2024/01/15/") || !strings.HasSuffix(up.uploads[0].key, ".json.gz") {
		t.Fatalf("key = %q", up.uploads[0].key)
	}
	if up.uploads[0].encoding != "gzip" {
		t.Fatalf("encoding = %q", up.uploads[0].encoding)
	}
}

func TestSink_CloseWithoutRecords(t *testing.T) {
	up := &fakeUploader{}
	if err := New(up, "", 10).Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(up.uploads) != 0 {
		t.Fatal("nothing should be uploaded")
	}
}

func TestSink_UploadError(t *testing.T) {
	up := &fakeUploader{err: errors.New("503")}
	s := New(up, "", 1)
	if err := s.Report(context.Background(), "views.ui", model.TelemetryRecord{}); err == nil {
		t.Fatal("expected upload error")
	}
}

type fakeAPI struct {
	headErr   error
	createErr error
	created   bool
}

func (f *fakeAPI) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeAPI) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = true
	return &s3.CreateBucketOutput{}, f.createErr
}

func (f *fakeAPI) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func TestEnsureBucket(t *testing.T) {
	tests := []struct {
		name        string
		api         *fakeAPI
		wantCreated bool
		wantErr     bool
	}{
		{"exists", &fakeAPI{}, false, false},
		{"missing", &fakeAPI{headErr: errors.New("404")}, true, false},
		{"raced", &fakeAPI{headErr: errors.New("404"), createErr: &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}}, true, false},
		{"denied", &fakeAPI{headErr: errors.New("403"), createErr: &smithy.GenericAPIError{Code: "AccessDenied"}}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{api: tt.api, bucket: "events"}
			err := c.EnsureBucket(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tt.api.created != tt.wantCreated {
				t.Fatalf("created = %v", tt.api.created)
			}
		})
	}
}

func TestKeyForBatch_DefaultPrefix(t *testing.T) {
	got := KeyForBatch("", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), "abc")
	if got != "events/2023/12/31/abc.json.gz" {
		t.Fatalf("key = %q", got)
	}
}
