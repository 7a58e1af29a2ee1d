package secondary

import "context"

// RowSource decodes a spreadsheet file into rows of cells, header row first.
type RowSource interface {
	ReadRows(ctx context.Context, path string) ([][]string, error)
}

// BlobUploader stores exported files outside the process and returns
// their location.
type BlobUploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}
