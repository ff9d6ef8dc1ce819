package document

import "github.com/kailas-cloud/docdex/internal/domain"

// Store is the committed-document surface this service manages.
type Store interface {
	GetDocument(id string) (domain.Document, error)
	RemoveDocument(id string)
	SaveAll(path string) error
	LoadAll(path string) error
	Counts() (documents, chunks int)
}
