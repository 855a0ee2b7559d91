// Package workshop is the entity registry of the workshop application. Each
// entity is a typed view of one sheet with CRUD helpers built from the
// quire builders.
package workshop

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/elbader17/quire/pkg/quire"
)

// Sheet names.
const (
	VehiclesTable     = "Vehicles"
	CustomersTable    = "Customers"
	WorkOrdersTable   = "WorkOrders"
	AppointmentsTable = "Appointments"
	InvoicesTable     = "Invoices"
	InventoryTable    = "Inventory"
)

// IDColumn is the column entities are addressed by.
const IDColumn = "id"

// Store groups the known entities over one DB.
type Store struct {
	db  *quire.DB
	now func() time.Time

	Vehicles     Vehicles
	Customers    *Entity[Customer]
	WorkOrders   WorkOrders
	Appointments Appointments
	Invoices     Invoices
	Inventory    Inventory
}

// New creates a Store over db.
func New(db *quire.DB) *Store {
	s := &Store{
		db:  db,
		now: time.Now,
	}
	s.Vehicles = Vehicles{NewEntity[Vehicle](db, VehiclesTable)}
	s.Customers = NewEntity[Customer](db, CustomersTable)
	s.WorkOrders = WorkOrders{NewEntity[WorkOrder](db, WorkOrdersTable)}
	s.Appointments = Appointments{NewEntity[Appointment](db, AppointmentsTable)}
	s.Invoices = Invoices{Entity: NewEntity[Invoice](db, InvoicesTable), now: s.clock}
	s.Inventory = Inventory{NewEntity[InventoryItem](db, InventoryTable)}
	return s
}

func (s *Store) clock() time.Time {
	return s.now()
}

// DB returns the underlying database handle.
func (s *Store) DB() *quire.DB {
	return s.db
}

// Entity is a typed sheet with conventional CRUD helpers.
type Entity[T any] struct {
	db    *quire.DB
	table string
}

// NewEntity returns the entity stored in table.
func NewEntity[T any](db *quire.DB, table string) *Entity[T] {
	return &Entity[T]{db: db, table: table}
}

// Table returns the sheet name.
func (e *Entity[T]) Table() string {
	return e.table
}

// Query starts a typed query on the entity's sheet.
func (e *Entity[T]) Query() *quire.Query[T] {
	return quire.From[T](e.db, e.table)
}

// GetAll returns every row of the entity's sheet.
func (e *Entity[T]) GetAll(ctx context.Context) quire.Result[[]T] {
	return e.Query().Execute(ctx)
}

// GetByID returns the row with the given id, or nil data when none exists.
func (e *Entity[T]) GetByID(ctx context.Context, id any) quire.Result[*T] {
	var res quire.Result[*T]
	for _, candidate := range idCandidates(id) {
		res = e.Query().Eq(IDColumn, candidate).Single().Execute(ctx)
		if res.Error != nil || res.Data != nil {
			return res
		}
	}
	return res
}

// Where returns every row whose column equals value.
func (e *Entity[T]) Where(ctx context.Context, column string, value any) quire.Result[[]T] {
	return e.Query().Eq(column, value).Execute(ctx)
}

// Create appends row and returns it as echoed by the backend.
func (e *Entity[T]) Create(ctx context.Context, row any) quire.Result[*T] {
	return e.Query().Insert(row).Select(ctx)
}

// Update patches the row with the given id and returns it as echoed by the
// backend.
func (e *Entity[T]) Update(ctx context.Context, id any, patch any) quire.Result[*T] {
	var res quire.Result[*T]
	for i, candidate := range idCandidates(id) {
		next := firstOf(e.Query().Update(patch).Eq(IDColumn, candidate).Select(ctx))
		if i > 0 && next.Error != nil && strings.Contains(next.Error.Message, quire.ErrFilterCollision.Error()) {
			// The patch pins the string id, so no numeric cell can be the target.
			return res
		}
		res = next
		if res.Error != nil || res.Data != nil {
			return res
		}
	}
	return res
}

// UpdateStatus sets the status column of the row with the given id.
func (e *Entity[T]) UpdateStatus(ctx context.Context, id any, status string) quire.Result[*T] {
	return e.Update(ctx, id, quire.Row{"status": status})
}

// idCandidates lists the cell values id may be stored as. Model IDs are
// strings, but a sheet may hold numeric ids that decode as "1", so a
// canonical numeric string is also tried as the number it spells.
func idCandidates(id any) []any {
	s, ok := id.(string)
	if !ok {
		return []any{id}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || strconv.FormatFloat(n, 'f', -1, 64) != s {
		return []any{id}
	}
	return []any{id, n}
}

func firstOf[T any](res quire.Result[[]T]) quire.Result[*T] {
	if res.Error != nil {
		return quire.Result[*T]{Error: res.Error}
	}
	if len(res.Data) == 0 {
		return quire.Result[*T]{}
	}
	return quire.Result[*T]{Data: &res.Data[0]}
}
