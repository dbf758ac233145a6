package dto

type CreateCategoryInput struct {
	ParentID    *string
	Name        string
	Description string
	ImageURL    string
	SortOrder   int
}

// UpdateCategoryInput is a partial update; nil fields are left untouched.
// ClearParent moves the category to the root.
type UpdateCategoryInput struct {
	ID          string
	ParentID    *string
	ClearParent bool
	Name        *string
	Description *string
	ImageURL    *string
	SortOrder   *int
	IsActive    *bool
}
