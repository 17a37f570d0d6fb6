package ads

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("not the owner")
	ErrCategoryMismatch = errors.New("category does not belong to the website")
	ErrAlreadyPlaced    = errors.New("ad already placed on this website")
)
