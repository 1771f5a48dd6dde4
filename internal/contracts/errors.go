package contracts

import (
	"errors"
	"fmt"
)

// 식별 오류 - 호출자에게 그대로 전달, 재시도/기본값 대체 없음
var (
	ErrItemNotFound     = errors.New("item not recognized")
	ErrCategoryNotFound = errors.New("category not recognized")
)

// IdentityError 식별 실패 상세
type IdentityError struct {
	Kind string // item, category
	ID   string
	Err  error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// NewItemNotFound 상품 식별 실패
func NewItemNotFound(itemID string) error {
	return &IdentityError{Kind: "item", ID: itemID, Err: ErrItemNotFound}
}

// NewCategoryNotFound 카테고리 식별 실패
func NewCategoryNotFound(categoryID string) error {
	return &IdentityError{Kind: "category", ID: categoryID, Err: ErrCategoryNotFound}
}

// IsIdentityError 식별 오류 여부
func IsIdentityError(err error) bool {
	return errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrCategoryNotFound)
}
