package bill

import "context"

// Store is the remote collaborator that persists bills and receipts
type Store interface {
	Bills() Bills
}

// Bills groups the bill operations exposed by a Store
type Bills interface {
	// List returns the bills owned by the current user, in store order
	List(ctx context.Context) ([]Bill, error)

	// Create uploads a receipt and allocates a draft bill for it
	Create(ctx context.Context, upload Upload) (*Created, error)

	// Update fills in the remaining fields of the bill identified by id
	Update(ctx context.Context, id string, b Bill) (*Bill, error)
}

// Upload is a receipt file sent when creating a draft bill
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
	Email       string
}

// Created describes the draft allocated by Create
type Created struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Key      string `json:"key"`
}
