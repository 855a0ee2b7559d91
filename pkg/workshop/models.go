package workshop

// Vehicle is a row of the Vehicles sheet.
type Vehicle struct {
	ID           string `json:"id,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Year         int    `json:"year,omitempty"`
	Plate        string `json:"license_plate,omitempty"`
	VIN          string `json:"vin,omitempty"`
	Mileage      int    `json:"mileage,omitempty"`
	Status       string `json:"status,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	LastServiced string `json:"last_service_date,omitempty"`
}

// Customer is a row of the Customers sheet.
type Customer struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// WorkOrder is a row of the WorkOrders sheet.
type WorkOrder struct {
	ID          string  `json:"id,omitempty"`
	VehicleID   string  `json:"vehicle_id,omitempty"`
	CustomerID  string  `json:"customer_id,omitempty"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Technician  string  `json:"assigned_technician,omitempty"`
	Estimate    float64 `json:"estimated_cost,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	CompletedAt string  `json:"completed_at,omitempty"`
}

// Appointment is a row of the Appointments sheet.
type Appointment struct {
	ID          string `json:"id,omitempty"`
	CustomerID  string `json:"customer_id,omitempty"`
	VehicleID   string `json:"vehicle_id,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	ServiceType string `json:"service_type,omitempty"`
	Status      string `json:"status,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Invoice is a row of the Invoices sheet.
type Invoice struct {
	ID            string  `json:"id,omitempty"`
	WorkOrderID   string  `json:"work_order_id,omitempty"`
	CustomerID    string  `json:"customer_id,omitempty"`
	Subtotal      float64 `json:"subtotal,omitempty"`
	Tax           float64 `json:"tax,omitempty"`
	Total         float64 `json:"total,omitempty"`
	Status        string  `json:"status,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	IssuedAt      string  `json:"issued_at,omitempty"`
	PaidAt        string  `json:"paid_at,omitempty"`
}

// InventoryItem is a row of the Inventory sheet.
type InventoryItem struct {
	ID        string  `json:"id,omitempty"`
	SKU       string  `json:"sku,omitempty"`
	Name      string  `json:"name,omitempty"`
	Category  string  `json:"category,omitempty"`
	Quantity  int     `json:"quantity,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	Supplier  string  `json:"supplier,omitempty"`
	Status    string  `json:"status,omitempty"`
}
