package customer

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("customer not found")

	ErrDuplicateCode = errors.New("customer code already exists")
)

// SearchQuery carries a pre-clamped page request to the repository.
// Text is matched case-insensitively against companyName and customerCode;
// an empty Text matches every record.
type SearchQuery struct {
	Text            string
	IncludeInactive bool
	Page            int
	Size            int
}

func (q SearchQuery) Offset() int {
	return q.Page * q.Size
}

type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindByCode(ctx context.Context, customerCode string) (*Customer, error)

	ExistsByCode(ctx context.Context, customerCode string) (bool, error)

	// Search returns one page of matches ordered by companyName ascending,
	// together with the total number of matching records.
	Search(ctx context.Context, query SearchQuery) ([]*Customer, int64, error)

	Count(ctx context.Context) (int64, error)

	CountActive(ctx context.Context) (int64, error)

	// DistinctIndustries lists the non-null industries of active customers,
	// lexicographically sorted.
	DistinctIndustries(ctx context.Context) ([]string, error)

	// MaxAssignedID reports the highest customer ID ever assigned, 0 when
	// the store is empty.
	MaxAssignedID(ctx context.Context) (int64, error)
}

// CustomerCache is the non-authoritative lookup cache in front of the
// repository. Implementations must be safe for concurrent use and must treat
// a stored record as immutable.
type CustomerCache interface {
	Get(key string) (*Customer, bool)

	Put(key string, customer *Customer)

	Invalidate(keys ...string)

	InvalidateAll()
}
