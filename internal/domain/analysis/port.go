package analysis

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, b *Bundle) error
	Get(ctx context.Context, tenant string, id RunID) (*Bundle, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Bundle, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Bundle, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (total, failed int, avgScore float64, tokens int64, err error)
}

// ReportRenderer port (interface untuk the document-rendering collaborator)
type ReportRenderer interface {
	WriteFile(payload DocumentPayload, path string) error
}

// ArtifactStore port (interface untuk penyimpanan report artifacts)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
