package entity

import "github.com/uptrace/bun"

// Category is the product category a transaction is filed under.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:category"`

	ID   int64  `bun:",pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}

// Color is the acrylic sheet color of a transaction.
type Color struct {
	bun.BaseModel `bun:"table:colors,alias:color"`

	ID   int64  `bun:",pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}
