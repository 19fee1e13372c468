package catalog

import "encoding/json"

// PriceText is a decimal amount carried as text. The catalog service has
// returned prices both as JSON numbers and as strings; decoding keeps the
// original token verbatim so no float conversion can corrupt the value.
type PriceText string

// UnmarshalJSON accepts a JSON string, number or null.
func (p *PriceText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceText(s)
		return nil
	}
	*p = PriceText(data)
	return nil
}

// String returns the raw text form.
func (p PriceText) String() string { return string(p) }

// Product is a catalog product as returned by GET /products.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Barcode     string    `json:"barcode"`
	Description string    `json:"description"`
	Price       PriceText `json:"price"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category"`
	Expiry      string    `json:"expiry,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   string    `json:"createdAt,omitempty"`
}

// Supplier is a supplier as returned by GET /suppliers.
type Supplier struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CNPJ        string `json:"cnpj"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	MainContact string `json:"mainContact"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// LinkedProduct is one row of a supplier's linked products, carrying the
// link attributes alongside the product identity.
type LinkedProduct struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	NegotiatedPrice PriceText `json:"negotiatedPrice"`
	LeadTimeDays    *int      `json:"leadTimeDays"`
	LinkCreatedAt   string    `json:"linkCreatedAt,omitempty"`
}

// LinkedSupplier is one row of a product's linked suppliers.
type LinkedSupplier struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	CNPJ            string    `json:"cnpj"`
	NegotiatedPrice PriceText `json:"negotiatedPrice"`
	LeadTimeDays    *int      `json:"leadTimeDays"`
	LinkCreatedAt   string    `json:"linkCreatedAt,omitempty"`
}

// SupplierProducts is the response of GET /suppliers/{id}/products.
type SupplierProducts struct {
	Supplier struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"supplier"`
	Products []LinkedProduct `json:"products"`
}

// ProductSuppliers is the response of GET /products/{id}/suppliers.
type ProductSuppliers struct {
	Product struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"product"`
	Suppliers []LinkedSupplier `json:"suppliers"`
}

// CreateProductRequest is the POST /products payload. Price travels as
// canonical dot-decimal text.
type CreateProductRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Barcode     string `json:"barcode"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category"`
	Expiry      string `json:"expiry,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// CreateSupplierRequest is the POST /suppliers payload.
type CreateSupplierRequest struct {
	Name        string `json:"name"`
	CNPJ        string `json:"cnpj"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	MainContact string `json:"mainContact"`
}

// LinkRequest carries the optional link attributes; absent fields are
// omitted from the payload entirely.
type LinkRequest struct {
	Price        *string `json:"price,omitempty"`
	LeadTimeDays *int    `json:"leadTimeDays,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}
