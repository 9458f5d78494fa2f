package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/storeapi"
)

// Units offered by the product form.
var Units = []string{"kg", "g", "each", "pack", "bottle", "punnet", "bunch", "L", "mL"}

// DefaultUnit is preselected on new products.
const DefaultUnit = "kg"

// MsgRequiredFields is shown when a required product field is blank.
const MsgRequiredFields = "Please fill in all required fields"

// Form is the product editor input, every field as entered.
type Form struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
	Unit        string `json:"unit" validate:"omitempty,oneof=kg g each pack bottle punnet bunch L mL"`
	Stock       string `json:"stock" validate:"required"`
	CategoryID  string `json:"category_id" validate:"required"`
	ImageURL    string `json:"image_url"`
	Rating      string `json:"rating"`
}

// FormFor pre-populates the editor from an existing product.
func FormFor(p storeapi.Product) Form {
	return Form{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Unit:        p.Unit,
		Stock:       strconv.Itoa(p.Stock),
		CategoryID:  strconv.FormatInt(p.CategoryID, 10),
		ImageURL:    p.ImageURL,
		Rating:      strconv.FormatFloat(p.Rating, 'f', -1, 64),
	}
}

// Validator turns forms into backend payloads.
type Validator struct {
	validate *validator.Validate
}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Payload validates f and converts it. Required fields are checked first
// so a blank form fails with MsgRequiredFields whatever else is wrong.
func (v *Validator) Payload(f Form) (storeapi.ProductPayload, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Price = strings.TrimSpace(f.Price)
	f.Stock = strings.TrimSpace(f.Stock)
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	if f.Unit == "" {
		f.Unit = DefaultUnit
	}

	if err := v.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return storeapi.ProductPayload{}, httpx.Invalid(MsgRequiredFields)
				}
			}
			return storeapi.ProductPayload{}, httpx.Invalid("Unit must be one of " + strings.Join(Units, ", "))
		}
		return storeapi.ProductPayload{}, err
	}

	price, err := strconv.ParseFloat(f.Price, 64)
	if err != nil || price < 0 {
		return storeapi.ProductPayload{}, httpx.Invalid("Price must be a non-negative number")
	}
	stock, err := strconv.Atoi(f.Stock)
	if err != nil || stock < 0 {
		return storeapi.ProductPayload{}, httpx.Invalid("Stock must be a non-negative whole number")
	}
	categoryID, err := strconv.ParseInt(f.CategoryID, 10, 64)
	if err != nil || categoryID <= 0 {
		return storeapi.ProductPayload{}, httpx.Invalid("Select a category")
	}
	rating := 0.0
	if r := strings.TrimSpace(f.Rating); r != "" {
		rating, err = strconv.ParseFloat(r, 64)
		if err != nil || rating < 0 || rating > 5 {
			return storeapi.ProductPayload{}, httpx.Invalid("Rating must be between 0 and 5")
		}
	}

	return storeapi.ProductPayload{
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Unit:        f.Unit,
		Stock:       stock,
		ImageURL:    f.ImageURL,
		CategoryID:  categoryID,
		Rating:      rating,
	}, nil
}

// CategoryForm is the category editor input.
type CategoryForm struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
}

// CategoryPayload validates f.
func (v *Validator) CategoryPayload(f CategoryForm) (storeapi.CategoryPayload, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Slug = strings.TrimSpace(f.Slug)
	if err := v.validate.Struct(f); err != nil {
		return storeapi.CategoryPayload{}, httpx.Invalid(MsgRequiredFields)
	}
	return storeapi.CategoryPayload(f), nil
}
