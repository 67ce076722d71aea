package index

// ArticleIndex defines the interface for article indexing operations.
// Consumers depend on this interface rather than the concrete *DB type.
type ArticleIndex interface {
	UpsertArticle(a ArticleRow, source string) error
	DeleteArticle(slug string) error
	GetChecksum(slug string) (string, error)
	AllChecksums() (map[string]string, error)
	Count() (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ArticleIndex at compile time.
var _ ArticleIndex = (*DB)(nil)
