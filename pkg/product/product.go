// Package product defines the product entity served by the products API.
package product

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a single entry of the products API listing.
// The admin view never mutates it; fields are read for display only.
type Product struct {
	// ID is the upstream identifier, used as render key and in action links.
	ID string `json:"_id"`

	Name     string `json:"name"`
	Company  string `json:"company"`
	Category string `json:"category"`

	// Price is decoded as an exact decimal so large integral prices keep
	// every digit.
	Price decimal.Decimal `json:"price"`

	Colors   []string `json:"colors"`
	Featured bool     `json:"featured"`
	Shipping bool     `json:"shipping"`
	Stock    int      `json:"stock"`
	Image    string   `json:"image"`
}

// JoinedColors returns the colors joined by ", ".
func (p Product) JoinedColors() string {
	return strings.Join(p.Colors, ", ")
}

// EditPath returns the admin route for editing the product.
func (p Product) EditPath() string {
	return EditPathPrefix + p.ID
}

// DeletePath returns the admin route for deleting the product.
func (p Product) DeletePath() string {
	return DeletePathPrefix + p.ID
}

// Admin routes owned by other pages.
const (
	NewPath          = "/products/new"
	EditPathPrefix   = "/products/edit/"
	DeletePathPrefix = "/products/delete/"
)

// YesNo renders a boolean flag the way the product table shows it.
func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// DecodeList decodes a JSON array of products.
// A null body decodes to an empty, non-nil slice.
func DecodeList(data []byte) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}
