package s3export

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// fakeS3 records PutObject requests made against a path-style endpoint.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]putRequest
	status  int
}

type putRequest struct {
	body        string
	contentType string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		return &http.Response{
			StatusCode: f.status,
			Body:       io.NopCloser(strings.NewReader("<Error><Code>AccessDenied</Code></Error>")),
			Header:     http.Header{"Content-Type": {"application/xml"}},
		}, nil
	}

	if req.Method == http.MethodPut {
		body, _ := io.ReadAll(req.Body)
		f.objects[strings.TrimPrefix(req.URL.Path, "/")] = putRequest{
			body:        string(body),
			contentType: req.Header.Get("Content-Type"),
		}
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     http.Header{"ETag": {"\"etag123\""}},
	}, nil
}

func newTestUploader(t *testing.T, fake *fakeS3, prefix string) *Uploader {
	t.Helper()
	u, err := New(context.Background(), Config{
		Bucket:     "exports",
		Endpoint:   "https://mock.s3.local",
		PathStyle:  true,
		Prefix:     prefix,
		HTTPClient: &http.Client{Transport: fake},
		LoadOptions: []func(*config.LoadOptions) error{
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
		},
	})
	if err != nil {
		t.Fatalf("failed to build uploader: %v", err)
	}
	return u
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{objects: map[string]putRequest{}}
	u := newTestUploader(t, fake, "cultos/")

	loc, err := u.Upload(context.Background(), "relatorio_cultos_2024-05-20.csv", "text/csv", []byte("Date,Site\n"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if loc != "s3://exports/cultos/relatorio_cultos_2024-05-20.csv" {
		t.Errorf("unexpected location %q", loc)
	}

	obj, ok := fake.objects["exports/cultos/relatorio_cultos_2024-05-20.csv"]
	if !ok {
		t.Fatalf("object not stored, have %v", fake.objects)
	}
	// The SDK may frame the payload with a trailing checksum.
	if !strings.Contains(obj.body, "Date,Site\n") {
		t.Errorf("unexpected body %q", obj.body)
	}
	if obj.contentType != "text/csv" {
		t.Errorf("unexpected content type %q", obj.contentType)
	}
}

func TestUpload_Failure(t *testing.T) {
	fake := &fakeS3{objects: map[string]putRequest{}, status: http.StatusForbidden}
	u := newTestUploader(t, fake, "")

	_, err := u.Upload(context.Background(), "relatorio.csv", "text/csv", []byte("x"))
	if err == nil {
		t.Fatal("expected error on forbidden upload")
	}
	if !strings.Contains(err.Error(), "relatorio.csv") {
		t.Errorf("error should name the key: %v", err)
	}
}
