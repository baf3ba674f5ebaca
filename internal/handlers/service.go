package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/models"
	"github.com/rahmatfadhil/gostore/internal/mykafka"
	"github.com/rahmatfadhil/gostore/internal/util"
)

// ServiceHandler manages the bookable-service catalog, the non-stocked half
// of the shop.
type ServiceHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *ServiceHandler) GetService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var svc models.Service
	if err := h.DB.First(&svc, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) GetServices(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var items []models.Service
	if err := h.DB.Where("active = ?", true).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ServiceHandler) CreateService(c echo.Context) error {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}

	svc := models.Service{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Active:      true,
	}
	if err := h.DB.Create(&svc).Error; err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "service_created",
		"serviceID": svc.ID,
		"name":      svc.Name,
	})

	return c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) PatchService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
		Active      *bool    `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var svc models.Service
	if err := h.DB.First(&svc, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}

	if req.Name != "" {
		svc.Name = req.Name
	}
	if req.Description != "" {
		svc.Description = req.Description
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := h.DB.Save(&svc).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) DeleteService(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.DB.Delete(&models.Service{}, id).Error; err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
