package workshop

import (
	"context"
	"time"

	"github.com/elbader17/quire/pkg/quire"
)

// Work order and invoice statuses used by the helpers below.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusPaid       = "paid"
)

type Vehicles struct {
	*Entity[Vehicle]
}

func (v Vehicles) ByCustomer(ctx context.Context, customerID any) quire.Result[[]Vehicle] {
	return v.Where(ctx, "customer_id", customerID)
}

type WorkOrders struct {
	*Entity[WorkOrder]
}

func (w WorkOrders) ByVehicle(ctx context.Context, vehicleID any) quire.Result[[]WorkOrder] {
	return w.Where(ctx, "vehicle_id", vehicleID)
}

func (w WorkOrders) ByStatus(ctx context.Context, status string) quire.Result[[]WorkOrder] {
	return w.Where(ctx, "status", status)
}

type Appointments struct {
	*Entity[Appointment]
}

// ByDate lists appointments on date (YYYY-MM-DD).
func (a Appointments) ByDate(ctx context.Context, date string) quire.Result[[]Appointment] {
	return a.Where(ctx, "date", date)
}

type Invoices struct {
	*Entity[Invoice]
	now func() time.Time
}

// MarkPaid records payment of an invoice.
func (i Invoices) MarkPaid(ctx context.Context, id any, method string) quire.Result[*Invoice] {
	return i.Update(ctx, id, quire.Row{
		"status":         StatusPaid,
		"payment_method": method,
		"paid_at":        i.now().UTC().Format(time.RFC3339),
	})
}

type Inventory struct {
	*Entity[InventoryItem]
}

func (inv Inventory) BySKU(ctx context.Context, sku string) quire.Result[*InventoryItem] {
	return inv.Query().Eq("sku", sku).Single().Execute(ctx)
}
