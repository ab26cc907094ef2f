package provider

import (
	"context"

	"github.com/crosslink-crm/crosslink/internal/domain"
)

// Page is one slice of a provider's contact listing
type Page struct {
	Records    []domain.ContactRecord
	NextCursor string
}

// ContactProvider is the operation surface of one remote contact
// system. Implementations are single-attempt; retry policy belongs to
// the caller.
//
//go:generate mockgen -source=provider.go -destination=../mocks/contact_provider.go -package=mocks -mock_names=ContactProvider=MockContactProvider
type ContactProvider interface {
	// GetByID fetches one contact, returning domain.ErrContactNotFound
	// when the remote reports 404.
	GetByID(ctx context.Context, id string) (*domain.ContactRecord, error)
	// FindByEmail locates a contact by its primary email, nil when absent
	FindByEmail(ctx context.Context, email string) (*domain.ContactRecord, error)
	// Create writes a new contact and returns it with the remote id set
	Create(ctx context.Context, fields domain.FlatFields) (*domain.ContactRecord, error)
	// Update overwrites the mapped fields of an existing contact
	Update(ctx context.Context, id string, fields domain.FlatFields) error
	// List pages through all contacts, cursor "" starting from the top
	List(ctx context.Context, cursor string, limit int) (*Page, error)
}
