package handler

import (
	"net/http"

	"shopapp/internal/dto"
	"shopapp/internal/service"

	"github.com/gin-gonic/gin"
)

type ShopsHandler struct{ svc service.ShopService }

func NewShopsHandler(svc service.ShopService) *ShopsHandler { return &ShopsHandler{svc: svc} }

// Create godoc
// @Summary      Create a shop
// @Description  Validates the opening hours and persists the shop with them. createdAt defaults to today.
// @Tags         shops
// @Accept       json
// @Produce      json
// @Param        body body     dto.CrearShopRequest true "Shop"
// @Success      200  {object} dto.ShopResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/v1/shops [post]
func (h *ShopsHandler) Create(c *gin.Context) {
	var req dto.CrearShopRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Replace a shop
// @Description  Full replace: every field and the whole opening-hours set are rewritten.
// @Tags         shops
// @Accept       json
// @Produce      json
// @Param        body body     dto.ActualizarShopRequest true "Shop"
// @Success      200  {object} dto.ShopResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/v1/shops [put]
func (h *ShopsHandler) Update(c *gin.Context) {
	var req dto.ActualizarShopRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary      Get a shop
// @Tags         shops
// @Produce      json
// @Param        id  path     int true "Shop id"
// @Success      200 {object} dto.ShopResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/v1/shops/{id} [get]
func (h *ShopsHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a shop
// @Description  Products of the shop are kept and detached from it.
// @Tags         shops
// @Param        id  path int true "Shop id"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /api/v1/shops/{id} [delete]
func (h *ShopsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List godoc
// @Summary      List shops
// @Tags         shops
// @Produce      json
// @Param        page          query int    false "Page index, 0-based (default 0)"
// @Param        size          query int    false "Page size (default 5, max 100)"
// @Param        sortBy        query string false "name | createdAt | nbProducts (default id)"
// @Param        inVacations   query bool   false "Vacation flag"
// @Param        createdAfter  query string false "YYYY-MM-DD"
// @Param        createdBefore query string false "YYYY-MM-DD"
// @Success      200 {object} dto.Page[dto.ShopDto]
// @Failure      400 {object} apierror.APIError
// @Router       /api/v1/shops [get]
func (h *ShopsHandler) List(c *gin.Context) {
	var filter dto.ShopFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary      Full-text search of shops by name
// @Description  Date bounds are strict. Results are ordered by relevance.
// @Tags         shops
// @Produce      json
// @Param        name          query string true  "Text to match"
// @Param        inVacations   query bool   false "Vacation flag"
// @Param        createdAfter  query string false "YYYY-MM-DD"
// @Param        createdBefore query string false "YYYY-MM-DD"
// @Success      200 {array}  dto.ShopDto
// @Failure      400 {object} apierror.APIError
// @Failure      503 {object} apierror.APIError
// @Router       /api/v1/shops/search [get]
func (h *ShopsHandler) Search(c *gin.Context) {
	var filter dto.ShopSearchFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reindex godoc
// @Summary      Rebuild the search index
// @Description  Blocks until every shop has been re-indexed.
// @Tags         shops
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} apierror.APIError
// @Router       /api/v1/shops/reindex [get]
func (h *ShopsHandler) Reindex(c *gin.Context) {
	if err := h.svc.Reindex(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reindex completed"})
}
