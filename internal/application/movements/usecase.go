package movements

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// KindTransfer es el tipo lógico que expone el productor: una sola petición
// que el caso de uso desdobla en TRANSFER_OUT + TRANSFER_IN.
const KindTransfer = "TRANSFER"

// UseCase registra movimientos de inventario de forma transaccional con
// bloqueo exclusivo del ámbito (artículo, bodega) y sincronización de la
// caché en la misma transacción. El chequeo de suficiencia ocurre dentro del
// bloqueo y antes del commit: dos ventas concurrentes no pueden observar
// ambas stock suficiente.
type UseCase struct {
	txRunner      stock.TxRunner
	engine        *stock.Engine
	articleRepo   repository.ArticleRepository
	warehouseRepo repository.WarehouseRepository
	unitRepo      repository.UnitVariantRepository
}

// NewUseCase construye el caso de uso de movimientos.
func NewUseCase(
	txRunner stock.TxRunner,
	engine *stock.Engine,
	articleRepo repository.ArticleRepository,
	warehouseRepo repository.WarehouseRepository,
	unitRepo repository.UnitVariantRepository,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		engine:        engine,
		articleRepo:   articleRepo,
		warehouseRepo: warehouseRepo,
		unitRepo:      unitRepo,
	}
}

// MovementInput entrada para registrar un movimiento.
// Para RECEIPT/SALE/EXIT/CREDIT_RETURN: ArticleID, UnitVariantID, WarehouseID,
// Quantity. Para TRANSFER: FromWarehouseID y ToWarehouseID en vez de
// WarehouseID. Validated solo aplica a SALE.
type MovementInput struct {
	ArticleID       string
	UnitVariantID   string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	Kind            string
	Quantity        decimal.Decimal
	Validated       bool
	Actor           string
	Note            string
}

// Register valida la entrada, escribe el movimiento y sincroniza la caché del
// ámbito afectado, todo en una transacción.
func (uc *UseCase) Register(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	if in.ArticleID == "" || in.UnitVariantID == "" {
		return nil, domain.ErrInvalidInput
	}

	switch in.Kind {
	case entity.MovementKindReceipt, entity.MovementKindSale, entity.MovementKindExit, entity.MovementKindCreditReturn:
		if in.WarehouseID == "" {
			return nil, domain.ErrInvalidInput
		}
	case KindTransfer:
		if in.FromWarehouseID == "" || in.ToWarehouseID == "" || in.FromWarehouseID == in.ToWarehouseID {
			return nil, domain.ErrInvalidInput
		}
	default:
		// Los conteos físicos solo entran por el flujo de corrección.
		return nil, domain.ErrInvalidInput
	}

	if err := uc.checkCatalog(in); err != nil {
		return nil, err
	}

	now := time.Now()
	var created *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		unitRepo repository.UnitVariantRepository,
		levelRepo repository.StockLevelRepository,
		auditRepo repository.StockAuditRepository,
	) error {
		var err error
		switch in.Kind {
		case KindTransfer:
			created, err = uc.doTransfer(movRepo, unitRepo, levelRepo, auditRepo, in, now)
		case entity.MovementKindSale:
			created, err = uc.doSale(movRepo, unitRepo, levelRepo, auditRepo, in, now)
		default:
			created, err = uc.doSimple(movRepo, unitRepo, levelRepo, auditRepo, in, now)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// checkCatalog verifica que artículo, variante y bodega(s) existan y casen.
func (uc *UseCase) checkCatalog(in MovementInput) error {
	article, err := uc.articleRepo.GetByID(in.ArticleID)
	if err != nil {
		return err
	}
	if article == nil {
		return domain.ErrNotFound
	}
	variant, err := uc.unitRepo.GetByID(in.UnitVariantID)
	if err != nil {
		return err
	}
	if variant == nil || variant.Deleted || variant.ArticleID != in.ArticleID {
		return domain.ErrNotFound
	}

	warehouses := []string{in.WarehouseID}
	if in.Kind == KindTransfer {
		warehouses = []string{in.FromWarehouseID, in.ToWarehouseID}
	}
	for _, id := range warehouses {
		wh, err := uc.warehouseRepo.GetByID(id)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// doSimple: RECEIPT, EXIT o CREDIT_RETURN. Bloquea el ámbito, inserta y sincroniza.
func (uc *UseCase) doSimple(
	movRepo repository.MovementRepository,
	unitRepo repository.UnitVariantRepository,
	levelRepo repository.StockLevelRepository,
	auditRepo repository.StockAuditRepository,
	in MovementInput,
	now time.Time,
) (*entity.Movement, error) {
	if err := levelRepo.LockScope(in.ArticleID, in.WarehouseID); err != nil {
		return nil, err
	}
	mov := newMovement(in, in.Kind, in.WarehouseID, "", now)
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	if _, err := uc.engine.SyncInTx(movRepo, unitRepo, levelRepo, auditRepo,
		in.ArticleID, in.WarehouseID, in.Actor, reasonFor(in.Kind)); err != nil {
		return nil, err
	}
	return mov, nil
}

// doSale: una venta validada exige el chequeo autoritativo de suficiencia
// dentro del bloqueo y antes del commit. Una venta sin validar se registra
// sin chequeo y no afecta el stock hasta validarse.
func (uc *UseCase) doSale(
	movRepo repository.MovementRepository,
	unitRepo repository.UnitVariantRepository,
	levelRepo repository.StockLevelRepository,
	auditRepo repository.StockAuditRepository,
	in MovementInput,
	now time.Time,
) (*entity.Movement, error) {
	if err := levelRepo.LockScope(in.ArticleID, in.WarehouseID); err != nil {
		return nil, err
	}
	if in.Validated {
		res, err := uc.engine.ComputeWith(unitRepo, movRepo, in.ArticleID, in.UnitVariantID, in.WarehouseID, nil)
		if err != nil {
			return nil, err
		}
		if res.Quantity.LessThan(in.Quantity) {
			return nil, domain.ErrInsufficientStock
		}
	}
	mov := newMovement(in, entity.MovementKindSale, in.WarehouseID, "", now)
	mov.Validated = in.Validated
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	if in.Validated {
		if _, err := uc.engine.SyncInTx(movRepo, unitRepo, levelRepo, auditRepo,
			in.ArticleID, in.WarehouseID, in.Actor, "venta validada"); err != nil {
			return nil, err
		}
	}
	return mov, nil
}

// doTransfer: resta en origen y suma en destino con dos filas que comparten
// TransferID, en la misma transacción. Los ámbitos se bloquean en orden
// determinista para evitar interbloqueos entre traslados cruzados.
func (uc *UseCase) doTransfer(
	movRepo repository.MovementRepository,
	unitRepo repository.UnitVariantRepository,
	levelRepo repository.StockLevelRepository,
	auditRepo repository.StockAuditRepository,
	in MovementInput,
	now time.Time,
) (*entity.Movement, error) {
	scopes := []string{in.FromWarehouseID, in.ToWarehouseID}
	sort.Strings(scopes)
	for _, wh := range scopes {
		if err := levelRepo.LockScope(in.ArticleID, wh); err != nil {
			return nil, err
		}
	}

	res, err := uc.engine.ComputeWith(unitRepo, movRepo, in.ArticleID, in.UnitVariantID, in.FromWarehouseID, nil)
	if err != nil {
		return nil, err
	}
	if res.Quantity.LessThan(in.Quantity) {
		return nil, domain.ErrInsufficientStock
	}

	transferID := uuid.New().String()
	outMov := newMovement(in, entity.MovementKindTransferOut, in.FromWarehouseID, transferID, now)
	if err := movRepo.Create(outMov); err != nil {
		return nil, err
	}
	inMov := newMovement(in, entity.MovementKindTransferIn, in.ToWarehouseID, transferID, now)
	if err := movRepo.Create(inMov); err != nil {
		return nil, err
	}

	for _, wh := range []string{in.FromWarehouseID, in.ToWarehouseID} {
		if _, err := uc.engine.SyncInTx(movRepo, unitRepo, levelRepo, auditRepo,
			in.ArticleID, wh, in.Actor, "traslado entre bodegas"); err != nil {
			return nil, err
		}
	}
	return outMov, nil
}

// ValidateSale marca una venta como validada tras repetir el chequeo de
// suficiencia bajo el bloqueo del ámbito, y sincroniza.
func (uc *UseCase) ValidateSale(ctx context.Context, movementID, actor string) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		unitRepo repository.UnitVariantRepository,
		levelRepo repository.StockLevelRepository,
		auditRepo repository.StockAuditRepository,
	) error {
		mov, err := movRepo.GetByID(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if mov.Kind != entity.MovementKindSale || mov.Voided || mov.Validated {
			return domain.ErrConflict
		}
		if err := levelRepo.LockScope(mov.ArticleID, mov.WarehouseID); err != nil {
			return err
		}
		res, err := uc.engine.ComputeWith(unitRepo, movRepo, mov.ArticleID, mov.UnitVariantID, mov.WarehouseID, nil)
		if err != nil {
			return err
		}
		if res.Quantity.LessThan(mov.Quantity) {
			return domain.ErrInsufficientStock
		}
		if err := movRepo.SetValidated(movementID); err != nil {
			return err
		}
		_, err = uc.engine.SyncInTx(movRepo, unitRepo, levelRepo, auditRepo,
			mov.ArticleID, mov.WarehouseID, actor, "venta validada")
		return err
	})
}

// Void anula un movimiento (borrado lógico) y resincroniza los ámbitos
// afectados. Las patas de un traslado y las filas de un lote de conteo se
// anulan juntas: representan un único hecho físico.
func (uc *UseCase) Void(ctx context.Context, movementID, actor, reason string) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		unitRepo repository.UnitVariantRepository,
		levelRepo repository.StockLevelRepository,
		auditRepo repository.StockAuditRepository,
	) error {
		mov, err := movRepo.GetByID(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if mov.Voided {
			return domain.ErrConflict
		}

		group := []*entity.Movement{mov}
		if mov.TransferID != "" {
			group, err = movRepo.ListByTransferID(mov.TransferID)
			if err != nil {
				return err
			}
		}

		warehouses := make([]string, 0, 2)
		seen := map[string]bool{}
		for _, m := range group {
			if !seen[m.WarehouseID] {
				seen[m.WarehouseID] = true
				warehouses = append(warehouses, m.WarehouseID)
			}
		}
		sort.Strings(warehouses)
		for _, wh := range warehouses {
			if err := levelRepo.LockScope(mov.ArticleID, wh); err != nil {
				return err
			}
		}

		for _, m := range group {
			if m.Voided {
				continue
			}
			if err := movRepo.SetVoided(m.ID, true); err != nil {
				return err
			}
		}
		for _, wh := range warehouses {
			if _, err := uc.engine.SyncInTx(movRepo, unitRepo, levelRepo, auditRepo,
				mov.ArticleID, wh, actor, "anulación: "+reason); err != nil {
				return err
			}
		}
		return nil
	})
}

func newMovement(in MovementInput, kind, warehouseID, transferID string, now time.Time) *entity.Movement {
	return &entity.Movement{
		ID:            uuid.New().String(),
		TransferID:    transferID,
		ArticleID:     in.ArticleID,
		UnitVariantID: in.UnitVariantID,
		WarehouseID:   warehouseID,
		Kind:          kind,
		Quantity:      in.Quantity,
		Date:          now,
		CreatedAt:     now,
		CreatedBy:     in.Actor,
		Note:          in.Note,
	}
}

func reasonFor(kind string) string {
	switch kind {
	case entity.MovementKindReceipt:
		return "entrada por compra"
	case entity.MovementKindExit:
		return "salida manual"
	case entity.MovementKindCreditReturn:
		return "devolución por nota crédito"
	default:
		return "movimiento de inventario"
	}
}
