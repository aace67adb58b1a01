package dto

type CreateSupplierRequest struct {
	Name        string  `json:"name"         validate:"required,min=2,max=120"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=120"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Phone       *string `json:"phone"        validate:"omitempty,max=30"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
}

type SupplierResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
	Active      bool    `json:"active"`
}
