package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Form field names, also used as keys in FieldErrors.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldStock       = "stock"
)

// FormValue is a raw form input. JSON strings and numbers are both accepted
// so API clients may send either.
type FormValue string

// UnmarshalJSON accepts a JSON string, number or null.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("form value must be a string or number: %w", err)
	}
	*v = FormValue(n.String())
	return nil
}

func (v FormValue) blank() bool {
	return strings.TrimSpace(string(v)) == ""
}

// ProductForm holds the add-product form as typed by the user.
type ProductForm struct {
	Title       FormValue `json:"title"`
	Description FormValue `json:"description"`
	Price       FormValue `json:"price"`
	Category    FormValue `json:"category"`
	Stock       FormValue `json:"stock"`
}

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks required fields and coerces price and stock to numbers.
// Text fields are carried verbatim. An empty stock coerces to zero.
func (f ProductForm) Validate() (Draft, FieldErrors) {
	errs := FieldErrors{}
	draft := Draft{
		Title:       string(f.Title),
		Description: string(f.Description),
		Category:    string(f.Category),
	}

	if f.Title.blank() {
		errs[FieldTitle] = "Title is required"
	}
	if f.Description.blank() {
		errs[FieldDescription] = "Description is required"
	}
	if f.Category.blank() {
		errs[FieldCategory] = "Category is required"
	}

	if f.Price.blank() {
		errs[FieldPrice] = "Price is required"
	} else {
		price, err := strconv.ParseFloat(strings.TrimSpace(string(f.Price)), 64)
		switch {
		case err != nil || math.IsNaN(price) || math.IsInf(price, 0):
			errs[FieldPrice] = "Price must be a number"
		case price < 0:
			errs[FieldPrice] = "Price must be >= 0"
		default:
			draft.Price = price
		}
	}

	if !f.Stock.blank() {
		stock, err := strconv.Atoi(strings.TrimSpace(string(f.Stock)))
		switch {
		case err != nil:
			errs[FieldStock] = "Stock must be a whole number"
		case stock < 0:
			errs[FieldStock] = "Stock must be >= 0"
		default:
			draft.Stock = stock
		}
	}

	if len(errs) > 0 {
		return Draft{}, errs
	}
	return draft, nil
}
