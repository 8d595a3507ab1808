package dto

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CrearCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
