package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ProductID identifies a product record. The remote catalogue issues numeric
// ids while locally synthesized ids are strings, so both JSON forms are accepted.
type ProductID string

// MarshalJSON encodes ids in canonical integer form as JSON numbers and
// everything else, including "007" or "+5", as strings.
func (id ProductID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid product id: %w", err)
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid product id %s: %w", data, err)
	}
	*id = ProductID(n.String())
	return nil
}

// Product represents a catalogue item, either fetched from the remote
// catalogue or created through the add-product wizard.
type Product struct {
	ID          ProductID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
}

// Draft is an unsaved product together with the filter date range that was
// active when the add-product form was submitted. It has no identifier.
type Draft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

// WithRange returns a copy of the draft carrying the given date range.
func (d Draft) WithRange(r DateRange) Draft {
	d.StartDate, d.EndDate = r.Strings()
	return d
}

// Form returns the draft fields as editable form values.
func (d Draft) Form() ProductForm {
	return ProductForm{
		Title:       FormValue(d.Title),
		Description: FormValue(d.Description),
		Price:       FormValue(strconv.FormatFloat(d.Price, 'f', -1, 64)),
		Category:    FormValue(d.Category),
		Stock:       FormValue(strconv.Itoa(d.Stock)),
	}
}

// CreateRequest builds the payload sent to the remote catalogue.
func (d Draft) CreateRequest() CreateProductRequest {
	return CreateProductRequest{
		Title:                d.Title,
		Description:          d.Description,
		Price:                d.Price,
		Category:             d.Category,
		Stock:                d.Stock,
		CreatedFromStartDate: d.StartDate,
		CreatedFromEndDate:   d.EndDate,
	}
}

// CreateProductRequest is the body of POST /products/add.
type CreateProductRequest struct {
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Price                float64 `json:"price"`
	Category             string  `json:"category"`
	Stock                int     `json:"stock"`
	CreatedFromStartDate string  `json:"createdFromStartDate,omitempty"`
	CreatedFromEndDate   string  `json:"createdFromEndDate,omitempty"`
}

// ProductList is the reconciled, filtered list shown to the user.
type ProductList struct {
	Products    []Product   `json:"products"`
	LocalCount  int         `json:"localCount"`
	RemoteCount int         `json:"remoteCount"`
	RemoteError string      `json:"remoteError,omitempty"`
	Filter      FilterState `json:"filter"`
}
