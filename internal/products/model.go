package products

// Product is a catalog entry.
type Product struct {
	ID          string  `json:"_id" bson:"_id"`
	Name        string  `json:"name" bson:"name"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64 `json:"price" bson:"price"`
}

// DocID implements docstore.Document.
func (p Product) DocID() string { return p.ID }

// WithDocID implements docstore.Document.
func (p Product) WithDocID(id string) Product {
	p.ID = id
	return p
}

// CreateInput is the payload accepted when creating a product.
type CreateInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

// UpdateInput carries optional field changes.
type UpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}
