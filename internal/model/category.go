package model

type Category struct {
	BaseModel
	ParentID    *string    `db:"parent_id" json:"parentId"` // Nullable
	Ancestors   StringList `db:"ancestors" json:"ancestors"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description"`
	ImageURL    *string    `db:"image_url" json:"imageUrl"`
	SortOrder   int        `db:"sort_order" json:"sortOrder"`
	IsActive    bool       `db:"is_active" json:"isActive"`
}

// IsDescendantOf reports whether ancestorID appears in the materialized chain.
func (c *Category) IsDescendantOf(ancestorID string) bool {
	return c.Ancestors.Contains(ancestorID)
}
