package dto

type CategoryResponse struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type CategoryListResponse struct {
	Categories []*CategoryResponse `json:"categories"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" form:"name" validate:"required"`
}

type ShowCategoryResponse struct {
	Category *CategoryResponse `json:"category"`
}

// UpdateCategoryRequest is the older PUT /categories/:id form of a rename.
type UpdateCategoryRequest struct {
	Id   string `json:"-" form:"-"`
	Name string `json:"name" form:"name" validate:"required"`
}

type RenameCategoryRequest struct {
	Id      string `json:"-" form:"-"`
	NewName string `json:"new_name" form:"new_name" validate:"required"`
}
