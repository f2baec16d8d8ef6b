package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del motor de stock.
type StockHandler struct {
	engine    *stock.Engine
	levelRepo repository.StockLevelRepository
	auditRepo repository.StockAuditRepository
}

// NewStockHandler construye el handler.
func NewStockHandler(engine *stock.Engine, levelRepo repository.StockLevelRepository, auditRepo repository.StockAuditRepository) *StockHandler {
	return &StockHandler{engine: engine, levelRepo: levelRepo, auditRepo: auditRepo}
}

// Compute godoc
// @Summary      Stock disponible (ruta autoritativa)
// @Description  Recalcula desde el libro de movimientos, en la variante pedida.
// @Tags         stock
// @Produce      json
// @Param        articleID        path   string  true   "ID del artículo"
// @Param        unit_variant_id  query  string  true   "Variante de unidad en la que expresar el resultado"
// @Param        warehouse_id     query  string  true   "Bodega"
// @Param        as_of            query  string  false  "Fecha de corte RFC3339 (stock a inicio de período)"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/{articleID} [get]
func (h *StockHandler) Compute(c *fiber.Ctx) error {
	articleID := c.Params("articleID")
	variantID := c.Query("unit_variant_id")
	warehouseID := c.Query("warehouse_id")
	if articleID == "" || variantID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "unit_variant_id y warehouse_id son obligatorios"})
	}

	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of debe ser RFC3339"})
		}
		asOf = &t
	}

	res, err := h.engine.Compute(c.Context(), articleID, variantID, warehouseID, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ArticleID:     res.ArticleID,
		UnitVariantID: res.UnitVariantID,
		VariantCode:   res.VariantCode,
		WarehouseID:   res.WarehouseID,
		Quantity:      res.Quantity,
		Clamped:       res.Clamped,
		AsOf:          res.AsOf,
	})
}

// Levels godoc
// @Summary      Stock cacheado (ruta rápida)
// @Description  Lee la caché materializada; puede quedar detrás del libro.
// @Tags         stock
// @Produce      json
// @Param        articleID     path   string  true  "ID del artículo"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {array}  dto.StockLevelDTO
// @Router       /api/stock/{articleID}/levels [get]
func (h *StockHandler) Levels(c *fiber.Ctx) error {
	articleID := c.Params("articleID")
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es obligatorio"})
	}
	levels, err := h.levelRepo.ListByArticle(articleID, warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockLevelDTO, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.StockLevelDTO{
			UnitVariantID: l.UnitVariantID,
			WarehouseID:   l.WarehouseID,
			ArticleID:     l.ArticleID,
			Quantity:      l.Quantity,
			UpdatedAt:     l.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// Sync godoc
// @Summary      Resincroniza la caché de un ámbito (artículo, bodega)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncRequest  true  "article_id, warehouse_id, actor, reason"
// @Success      200  {array}   dto.StockLevelDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/sync [post]
func (h *StockHandler) Sync(c *fiber.Ctx) error {
	var in dto.SyncRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ArticleID == "" || in.WarehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "article_id y warehouse_id son obligatorios"})
	}
	levels, err := h.engine.Sync(c.Context(), in.ArticleID, in.WarehouseID, in.Actor, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockLevelDTO, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.StockLevelDTO{
			UnitVariantID: l.UnitVariantID,
			WarehouseID:   l.WarehouseID,
			ArticleID:     l.ArticleID,
			Quantity:      l.Quantity,
			UpdatedAt:     l.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// Correct godoc
// @Summary      Ajuste por conteo físico
// @Description  Propaga la cantidad observada a todas las variantes hermanas
//
//	del artículo y sincroniza, de forma atómica.
//
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CorrectionRequest  true  "cantidad observada en una variante"
// @Success      201  {object}  dto.CorrectionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/corrections [post]
func (h *StockHandler) Correct(c *fiber.Ctx) error {
	var in dto.CorrectionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ArticleID == "" || in.WarehouseID == "" || in.ObservedVariantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "article_id, warehouse_id y observed_variant_id son obligatorios"})
	}

	res, err := h.engine.Correct(c.Context(), stock.CorrectionInput{
		ArticleID:         in.ArticleID,
		WarehouseID:       in.WarehouseID,
		ObservedVariantID: in.ObservedVariantID,
		ObservedQuantity:  in.ObservedQuantity,
		Actor:             in.Actor,
		Note:              in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}

	lines := make([]dto.CorrectionLineDTO, 0, len(res.Lines))
	for _, l := range res.Lines {
		lines = append(lines, dto.CorrectionLineDTO{
			UnitVariantID: l.UnitVariantID,
			VariantCode:   l.VariantCode,
			Quantity:      l.Quantity,
		})
	}
	levels := make([]dto.StockLevelDTO, 0, len(res.Levels))
	for _, l := range res.Levels {
		levels = append(levels, dto.StockLevelDTO{
			UnitVariantID: l.UnitVariantID,
			WarehouseID:   l.WarehouseID,
			ArticleID:     l.ArticleID,
			Quantity:      l.Quantity,
			UpdatedAt:     l.UpdatedAt,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CorrectionResponse{
		BaseQuantity: res.BaseQuantity,
		Lines:        lines,
		Levels:       levels,
	})
}

// Audit godoc
// @Summary      Auditoría de ajustes de caché de una variante
// @Tags         stock
// @Produce      json
// @Param        variantID     path   string  true   "Variante de unidad"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        limit         query  int     false  "Máximo de filas (default 50)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}  entity.StockAudit
// @Router       /api/stock/audit/{variantID} [get]
func (h *StockHandler) Audit(c *fiber.Ctx) error {
	variantID := c.Params("variantID")
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es obligatorio"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	entries, err := h.auditRepo.ListByVariant(variantID, warehouseID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
