package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/movements"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// MovementHandler maneja las peticiones HTTP del libro de movimientos.
type MovementHandler struct {
	uc      *movements.UseCase
	movRepo repository.MovementRepository
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *movements.UseCase, movRepo repository.MovementRepository) *MovementHandler {
	return &MovementHandler{uc: uc, movRepo: movRepo}
}

// Register godoc
// @Summary      Registrar movimiento de inventario
// @Description  RECEIPT, SALE, EXIT, CREDIT_RETURN o TRANSFER (dos patas).
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "movimiento"
// @Success      201  {object}  dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.Register(c.Context(), movements.MovementInput{
		ArticleID:       in.ArticleID,
		UnitVariantID:   in.UnitVariantID,
		WarehouseID:     in.WarehouseID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Kind:            in.Kind,
		Quantity:        in.Quantity,
		Validated:       in.Validated,
		Actor:           in.Actor,
		Note:            in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementDTO(mov))
}

// List godoc
// @Summary      Movimientos de un ámbito (artículo, bodega)
// @Tags         movements
// @Produce      json
// @Param        article_id    query  string  true   "Artículo"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        limit         query  int     false  "Máximo de filas (default 50)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.MovementDTO
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	articleID := c.Query("article_id")
	warehouseID := c.Query("warehouse_id")
	if articleID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "article_id y warehouse_id son obligatorios"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	list, err := h.movRepo.ListByScope(articleID, warehouseID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementDTO(m))
	}
	return c.JSON(out)
}

// Validate godoc
// @Summary      Validar una venta (el chequeo de suficiencia ocurre aquí)
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del movimiento"
// @Param        body  body  dto.ValidateSaleRequest  true  "actor"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/validate [post]
func (h *MovementHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.ValidateSale(c.Context(), c.Params("id"), in.Actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "venta validada"})
}

// Void godoc
// @Summary      Anular un movimiento (borrado lógico)
// @Description  Las patas de un traslado y los lotes de conteo se anulan juntos.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del movimiento"
// @Param        body  body  dto.VoidMovementRequest  true  "actor, reason"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/void [post]
func (h *MovementHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Void(c.Context(), c.Params("id"), in.Actor, in.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "movimiento anulado"})
}

func toMovementDTO(m *entity.Movement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:            m.ID,
		TransferID:    m.TransferID,
		ArticleID:     m.ArticleID,
		UnitVariantID: m.UnitVariantID,
		WarehouseID:   m.WarehouseID,
		Kind:          m.Kind,
		Quantity:      m.Quantity,
		Validated:     m.Validated,
		Voided:        m.Voided,
		Date:          m.Date,
		CreatedBy:     m.CreatedBy,
		Note:          m.Note,
	}
}
