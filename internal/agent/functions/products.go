package functions

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
)

const (
	GetProductInfo = "get_product_info"
	CheckStock     = "check_stock"
)

// Catalog is the read side of the product catalog the handlers query.
type Catalog interface {
	Lookup(identifier string) (model.Product, error)
	CheckStock(identifier string) (int, error)
}

type ProductArgs struct {
	ProductName string `json:"product_name"`
}

type ProductInfoResult struct {
	Found   bool           `json:"found"`
	Product *model.Product `json:"product,omitempty"`
	Message string         `json:"message"`
}

type StockResult struct {
	Found       bool   `json:"found"`
	ProductName string `json:"product_name"`
	StockCount  int    `json:"stock_count"`
	InStock     bool   `json:"in_stock"`
	Message     string `json:"message"`
}

var productNameParam = map[string]*schema.ParameterInfo{
	"product_name": {
		Type:     schema.String,
		Desc:     "Name or SKU of the product, e.g. \"EcoFriendly Water Bottle\" or \"SKU-101\".",
		Required: true,
	},
}

// NewCatalogRegistry builds the registry with every catalog function.
func NewCatalogRegistry(c Catalog) (*Registry, error) {
	return NewRegistry(
		NewProductInfoFunction(c),
		NewCheckStockFunction(c),
	)
}

func NewProductInfoFunction(c Catalog) Function {
	return NewFunction(
		model.FunctionSchema{
			Name:        GetProductInfo,
			Description: "Returns details of a product (description, price, units in stock) by its name or SKU.",
			Params:      productNameParam,
		},
		func(ctx context.Context, in *ProductArgs) (*ProductInfoResult, error) {
			p, err := c.Lookup(in.ProductName)
			if errors.Is(err, errx.ErrNotFound) {
				return &ProductInfoResult{
					Found:   false,
					Message: fmt.Sprintf("No product found with name or SKU %q.", in.ProductName),
				}, nil
			}
			if err != nil {
				return nil, err
			}
			return &ProductInfoResult{
				Found:   true,
				Product: &p,
				Message: fmt.Sprintf("%s costs $%.2f. %d units in stock.", p.Name, p.Price, p.StockCount),
			}, nil
		},
	)
}

func NewCheckStockFunction(c Catalog) Function {
	return NewFunction(
		model.FunctionSchema{
			Name:        CheckStock,
			Description: "Checks whether a product is in stock and how many units are available.",
			Params:      productNameParam,
		},
		func(ctx context.Context, in *ProductArgs) (*StockResult, error) {
			n, err := c.CheckStock(in.ProductName)
			if errors.Is(err, errx.ErrNotFound) {
				return &StockResult{
					Found:       false,
					ProductName: in.ProductName,
					Message:     fmt.Sprintf("No product found with name or SKU %q.", in.ProductName),
				}, nil
			}
			if err != nil {
				return nil, err
			}
			res := &StockResult{
				Found:       true,
				ProductName: in.ProductName,
				StockCount:  n,
				InStock:     n > 0,
			}
			if res.InStock {
				res.Message = fmt.Sprintf("%q is available: %d units in stock.", in.ProductName, n)
			} else {
				res.Message = fmt.Sprintf("%q is currently out of stock.", in.ProductName)
			}
			return res, nil
		},
	)
}
