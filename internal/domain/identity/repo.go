package identity

import "context"

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	Update(ctx context.Context, id string, p *PatientPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

type ProviderRepository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id string) (*Provider, error)
	Update(ctx context.Context, id string, p *ProviderPatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
}

type DepartmentHeadRepository interface {
	Create(ctx context.Context, h *DepartmentHead) error
	GetByID(ctx context.Context, id int) (*DepartmentHead, error)
	// Relink points the head at providerID and rewrites the copied name
	// and email.
	Relink(ctx context.Context, id int, providerID, name string, email *string) (bool, error)
	// RefreshCopies rewrites head_name and head_email of every head linked
	// to providerID from the providers row.
	RefreshCopies(ctx context.Context, providerID string) error
	Delete(ctx context.Context, id int) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*DepartmentHead, int, error)
}
