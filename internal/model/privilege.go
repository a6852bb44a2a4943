package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Privilege codes checked by route middleware.
const (
	PrivUserView         = "user:view"
	PrivUserManage       = "user:manage"
	PrivCatalogView      = "catalog:view"
	PrivCatalogEdit      = "catalog:edit"
	PrivCatalogDelete    = "catalog:delete"
	PrivSaleView         = "sale:view"
	PrivSaleCreate       = "sale:create"
	PrivPaymentCreate    = "payment:create"
	PrivCustomerView     = "customer:view"
	PrivCustomerEdit     = "customer:edit"
	PrivReorderView      = "reorder:view"
	PrivPurchaseOrder    = "purchase_order:manage"
	PrivPurchaseReceive  = "purchase_order:receive"
	PrivRepairView       = "repair:view"
	PrivRepairManage     = "repair:manage"
	PrivDashboardView    = "dashboard:view"
	PrivMaintenanceTasks = "maintenance:run"
)

var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View Users"},
	{Code: PrivUserManage, Name: "Manage Users"},
	{Code: PrivCatalogView, Name: "View Catalog"},
	{Code: PrivCatalogEdit, Name: "Edit Catalog"},
	{Code: PrivCatalogDelete, Name: "Delete Catalog Entries"},
	{Code: PrivSaleView, Name: "View Sales"},
	{Code: PrivSaleCreate, Name: "Record Sale"},
	{Code: PrivPaymentCreate, Name: "Collect Payment"},
	{Code: PrivCustomerView, Name: "View Customers"},
	{Code: PrivCustomerEdit, Name: "Edit Customers"},
	{Code: PrivReorderView, Name: "View Reorder Suggestions"},
	{Code: PrivPurchaseOrder, Name: "Manage Purchase Orders"},
	{Code: PrivPurchaseReceive, Name: "Receive Purchase Orders"},
	{Code: PrivRepairView, Name: "View Repairs"},
	{Code: PrivRepairManage, Name: "Manage Repairs"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivMaintenanceTasks, Name: "Run Maintenance Tasks"},
}

// CashierExcluded lists privileges the CASHIER role does not get.
var CashierExcluded = map[string]bool{
	PrivUserView:         true,
	PrivUserManage:       true,
	PrivCatalogDelete:    true,
	PrivPurchaseOrder:    true,
	PrivMaintenanceTasks: true,
}
