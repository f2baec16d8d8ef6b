package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ stock.TxRunner                   = (*Store)(nil)
	_ repository.ArticleRepository     = articleView{}
	_ repository.WarehouseRepository   = warehouseView{}
	_ repository.UnitVariantRepository = variantView{}
	_ repository.MovementRepository    = movementView{}
	_ repository.StockLevelRepository  = levelView{}
	_ repository.StockAuditRepository  = auditView{}
)

// Store implementa todos los puertos de persistencia en memoria. Se usa en
// modo desarrollo/demo (sin PostgreSQL) y en los tests del motor. Cada puerto
// se obtiene como vista (Articles(), Movements(), ...) porque los nombres de
// método chocan entre puertos.
//
// Run simula la transacción: serializa las unidades atómicas, clona el estado
// antes del callback y lo restaura si falla, de modo que las escrituras
// parciales nunca sobreviven a un error.
type Store struct {
	mu sync.Mutex // protege todos los mapas
	tx sync.Mutex // serializa unidades atómicas

	articles   map[string]entity.Article
	warehouses map[string]entity.Warehouse
	variants   map[string]entity.UnitVariant
	movements  map[string]*entity.Movement
	movOrder   []string
	levels     map[string]entity.StockLevel // clave: variante|bodega
	audits     []entity.StockAudit
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		articles:   map[string]entity.Article{},
		warehouses: map[string]entity.Warehouse{},
		variants:   map[string]entity.UnitVariant{},
		movements:  map[string]*entity.Movement{},
		levels:     map[string]entity.StockLevel{},
	}
}

func levelKey(unitVariantID, warehouseID string) string {
	return unitVariantID + "|" + warehouseID
}

// SeedArticle registra un artículo de catálogo.
func (s *Store) SeedArticle(a entity.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.ID] = a
}

// SeedWarehouse registra una bodega.
func (s *Store) SeedWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = w
}

// SeedVariant registra una variante de unidad.
func (s *Store) SeedVariant(v entity.UnitVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[v.ID] = v
}

// AuditCount devuelve el total de entradas de auditoría (inspección en tests).
func (s *Store) AuditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audits)
}

// Vistas por puerto.

func (s *Store) Articles() repository.ArticleRepository { return articleView{s} }

func (s *Store) Warehouses() repository.WarehouseRepository { return warehouseView{s} }

func (s *Store) Variants() repository.UnitVariantRepository { return variantView{s} }

func (s *Store) Movements() repository.MovementRepository { return movementView{s} }

func (s *Store) Levels() repository.StockLevelRepository { return levelView{s} }

func (s *Store) Audits() repository.StockAuditRepository { return auditView{s} }

// Run ejecuta fn como unidad atómica sobre el propio almacén.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	unitRepo repository.UnitVariantRepository,
	levelRepo repository.StockLevelRepository,
	auditRepo repository.StockAuditRepository,
) error) error {
	_ = ctx
	s.tx.Lock()
	defer s.tx.Unlock()

	s.mu.Lock()
	snapshot := s.clone()
	s.mu.Unlock()

	if err := fn(s.Movements(), s.Variants(), s.Levels(), s.Audits()); err != nil {
		s.mu.Lock()
		s.restore(snapshot)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) clone() *Store {
	c := NewStore()
	for k, v := range s.articles {
		c.articles[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.movements {
		m := *v
		c.movements[k] = &m
	}
	c.movOrder = append([]string(nil), s.movOrder...)
	for k, v := range s.levels {
		c.levels[k] = v
	}
	c.audits = append([]entity.StockAudit(nil), s.audits...)
	return c
}

func (s *Store) restore(from *Store) {
	s.articles = from.articles
	s.warehouses = from.warehouses
	s.variants = from.variants
	s.movements = from.movements
	s.movOrder = from.movOrder
	s.levels = from.levels
	s.audits = from.audits
}

type articleView struct{ s *Store }

func (v articleView) GetByID(id string) (*entity.Article, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if a, ok := v.s.articles[id]; ok {
		return &a, nil
	}
	return nil, nil
}

type warehouseView struct{ s *Store }

func (v warehouseView) GetByID(id string) (*entity.Warehouse, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if w, ok := v.s.warehouses[id]; ok {
		return &w, nil
	}
	return nil, nil
}

type variantView struct{ s *Store }

func (v variantView) ListByArticle(articleID string) ([]entity.UnitVariant, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []entity.UnitVariant
	for _, uv := range v.s.variants {
		if uv.ArticleID == articleID && !uv.Deleted {
			out = append(out, uv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (v variantView) GetByID(id string) (*entity.UnitVariant, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if uv, ok := v.s.variants[id]; ok {
		return &uv, nil
	}
	return nil, nil
}

type movementView struct{ s *Store }

func (v movementView) Create(m *entity.Movement) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	cp := *m
	v.s.movements[m.ID] = &cp
	v.s.movOrder = append(v.s.movOrder, m.ID)
	return nil
}

func (v movementView) GetByID(id string) (*entity.Movement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if m, ok := v.s.movements[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (v movementView) SumByKind(articleID, unitVariantID, warehouseID string, since, asOf *time.Time) (map[string]decimal.Decimal, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sums := map[string]decimal.Decimal{}
	for _, id := range v.s.movOrder {
		m := v.s.movements[id]
		if m.ArticleID != articleID || m.UnitVariantID != unitVariantID || m.WarehouseID != warehouseID {
			continue
		}
		if !m.Affects() {
			continue
		}
		if since != nil && !m.Date.After(*since) {
			continue
		}
		if asOf != nil && m.Date.After(*asOf) {
			continue
		}
		sums[m.Kind] = sums[m.Kind].Add(m.Quantity)
	}
	return sums, nil
}

func (v movementView) LatestCount(articleID, warehouseID string, asOf *time.Time) (*entity.Movement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var best *entity.Movement
	bestLevel := 0
	for _, id := range v.s.movOrder {
		m := v.s.movements[id]
		if m.ArticleID != articleID || m.WarehouseID != warehouseID {
			continue
		}
		if m.Kind != entity.MovementKindInventoryCount || m.Voided {
			continue
		}
		if asOf != nil && m.Date.After(*asOf) {
			continue
		}
		level := 0
		if uv, ok := v.s.variants[m.UnitVariantID]; ok {
			level = uv.Level
		}
		switch {
		case best == nil,
			m.Date.After(best.Date),
			m.Date.Equal(best.Date) && level < bestLevel:
			cp := *m
			best = &cp
			bestLevel = level
		}
	}
	return best, nil
}

func (v movementView) ListByScope(articleID, warehouseID string, limit, offset int) ([]*entity.Movement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var all []*entity.Movement
	for _, id := range v.s.movOrder {
		m := v.s.movements[id]
		if m.ArticleID == articleID && m.WarehouseID == warehouseID {
			cp := *m
			all = append(all, &cp)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (v movementView) ListByTransferID(transferID string) ([]*entity.Movement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []*entity.Movement
	if transferID == "" {
		return nil, nil
	}
	for _, id := range v.s.movOrder {
		m := v.s.movements[id]
		if m.TransferID == transferID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (v movementView) SetVoided(id string, voided bool) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if m, ok := v.s.movements[id]; ok {
		m.Voided = voided
	}
	return nil
}

func (v movementView) SetValidated(id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if m, ok := v.s.movements[id]; ok && m.Kind == entity.MovementKindSale {
		m.Validated = true
	}
	return nil
}

type levelView struct{ s *Store }

func (v levelView) Get(unitVariantID, warehouseID string) (*entity.StockLevel, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if l, ok := v.s.levels[levelKey(unitVariantID, warehouseID)]; ok {
		return &l, nil
	}
	return nil, nil
}

func (v levelView) Upsert(level *entity.StockLevel) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.levels[levelKey(level.UnitVariantID, level.WarehouseID)] = *level
	return nil
}

func (v levelView) ListByArticle(articleID, warehouseID string) ([]entity.StockLevel, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []entity.StockLevel
	for _, l := range v.s.levels {
		if l.ArticleID == articleID && l.WarehouseID == warehouseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return v.s.variants[out[i].UnitVariantID].Level < v.s.variants[out[j].UnitVariantID].Level
	})
	return out, nil
}

// LockScope es un no-op: Run ya serializa las unidades atómicas.
func (v levelView) LockScope(articleID, warehouseID string) error {
	return nil
}

type auditView struct{ s *Store }

func (v auditView) Append(entry *entity.StockAudit) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.audits = append(v.s.audits, *entry)
	return nil
}

func (v auditView) ListByVariant(unitVariantID, warehouseID string, limit, offset int) ([]*entity.StockAudit, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var all []*entity.StockAudit
	for i := len(v.s.audits) - 1; i >= 0; i-- {
		e := v.s.audits[i]
		if e.UnitVariantID == unitVariantID && e.WarehouseID == warehouseID {
			all = append(all, &e)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
