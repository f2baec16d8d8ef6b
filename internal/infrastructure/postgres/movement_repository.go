package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, transfer_id, article_id, unit_variant_id, warehouse_id, kind,
	quantity, validated, voided, date, created_at, created_by, note`

// Create persiste un movimiento de inventario.
func (r *MovementRepo) Create(m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, transfer_id, article_id, unit_variant_id, warehouse_id, kind,
			quantity, validated, voided, date, created_at, created_by, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	transferID := (*string)(nil)
	if m.TransferID != "" {
		transferID = &m.TransferID
	}
	_, err := r.q.Exec(context.Background(), query,
		m.ID, transferID, m.ArticleID, m.UnitVariantID, m.WarehouseID, m.Kind,
		m.Quantity, m.Validated, m.Voided, m.Date, m.CreatedAt, m.CreatedBy, m.Note,
	)
	if err != nil {
		return storageErr("create movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get movement", err)
	}
	return m, nil
}

// SumByKind suma cantidades por tipo para una variante en una bodega,
// excluyendo anulados y ventas sin validar. since acota Date > since y asOf
// acota Date <= asOf (consultas a fecha de corte).
func (r *MovementRepo) SumByKind(articleID, unitVariantID, warehouseID string, since, asOf *time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT kind, COALESCE(SUM(quantity), 0)
		FROM movements
		WHERE article_id = $1 AND unit_variant_id = $2 AND warehouse_id = $3
		  AND voided = false
		  AND (kind <> 'SALE' OR validated = true)
		  AND ($4::timestamptz IS NULL OR date > $4)
		  AND ($5::timestamptz IS NULL OR date <= $5)
		GROUP BY kind`
	rows, err := r.q.Query(context.Background(), query, articleID, unitVariantID, warehouseID, since, asOf)
	if err != nil {
		return nil, storageErr("sum movements", err)
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var kind string
		var sum decimal.Decimal
		if err := rows.Scan(&kind, &sum); err != nil {
			return nil, storageErr("scan sum", err)
		}
		sums[kind] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("sum movements", err)
	}
	return sums, nil
}

// LatestCount devuelve la fila más reciente del último lote de conteo físico
// no anulado del ámbito, prefiriendo la variante de menor nivel (base) dentro
// del lote; nil si nunca se ha contado.
func (r *MovementRepo) LatestCount(articleID, warehouseID string, asOf *time.Time) (*entity.Movement, error) {
	query := `
		SELECT m.` + movementColumnsQualified() + `
		FROM movements m
		JOIN unit_variants uv ON uv.id = m.unit_variant_id
		WHERE m.article_id = $1 AND m.warehouse_id = $2
		  AND m.kind = 'INVENTORY_COUNT' AND m.voided = false
		  AND ($3::timestamptz IS NULL OR m.date <= $3)
		ORDER BY m.date DESC, uv.level ASC
		LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, articleID, warehouseID, asOf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("latest count", err)
	}
	return m, nil
}

// ListByScope lista los movimientos de un artículo en una bodega, más
// recientes primero.
func (r *MovementRepo) ListByScope(articleID, warehouseID string, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE article_id = $1 AND warehouse_id = $2
		ORDER BY date DESC, created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, articleID, warehouseID, limit, offset)
	if err != nil {
		return nil, storageErr("list movements", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, storageErr("scan movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list movements", err)
	}
	return list, nil
}

// ListByTransferID devuelve las filas que comparten grupo (patas de un
// traslado o lote de conteo).
func (r *MovementRepo) ListByTransferID(transferID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE transfer_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, storageErr("list by transfer", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, storageErr("scan movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list by transfer", err)
	}
	return list, nil
}

// SetVoided marca o desmarca el borrado lógico de un movimiento.
func (r *MovementRepo) SetVoided(id string, voided bool) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE movements SET voided = $2 WHERE id = $1`, id, voided)
	if err != nil {
		return storageErr("set voided", err)
	}
	return nil
}

// SetValidated marca una venta como validada.
func (r *MovementRepo) SetValidated(id string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE movements SET validated = true WHERE id = $1 AND kind = 'SALE'`, id)
	if err != nil {
		return storageErr("set validated", err)
	}
	return nil
}

func movementColumnsQualified() string {
	return `id, m.transfer_id, m.article_id, m.unit_variant_id, m.warehouse_id, m.kind,
	m.quantity, m.validated, m.voided, m.date, m.created_at, m.created_by, m.note`
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var transferID, createdBy, note *string
	err := row.Scan(
		&m.ID, &transferID, &m.ArticleID, &m.UnitVariantID, &m.WarehouseID, &m.Kind,
		&m.Quantity, &m.Validated, &m.Voided, &m.Date, &m.CreatedAt, &createdBy, &note,
	)
	if err != nil {
		return nil, err
	}
	if transferID != nil {
		m.TransferID = *transferID
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	if note != nil {
		m.Note = *note
	}
	return &m, nil
}
