package domain

import (
	"strings"

	"stockflow/internal/pkg/apperr"
)

type Category struct {
	ID   int64
	Name string
}

func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}
	return &Category{Name: name}, nil
}
