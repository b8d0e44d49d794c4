// Package auth identifies the acting employee and decides what they may do.
package auth

import "errors"

// ErrForbidden is returned when the actor's role does not allow an operation.
var ErrForbidden = errors.New("operation not permitted for role")

// Role is an employee's access level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// Operation is something an actor asks the system to do.
type Operation string

const (
	OpPostSale        Operation = "post_sale"
	OpViewSales       Operation = "view_sales"
	OpViewInvoice     Operation = "view_invoice"
	OpViewInventory   Operation = "view_inventory"
	OpManageProducts  Operation = "manage_products"
	OpDeleteProducts  Operation = "delete_products"
	OpManageSuppliers Operation = "manage_suppliers"
	OpManageUsers     Operation = "manage_users"
)

var permissions = map[Operation][]Role{
	OpPostSale:        {RoleAdmin, RoleManager, RoleCashier},
	OpViewSales:       {RoleAdmin, RoleManager, RoleCashier},
	OpViewInvoice:     {RoleAdmin, RoleManager, RoleCashier},
	OpViewInventory:   {RoleAdmin, RoleManager, RoleCashier},
	OpManageProducts:  {RoleAdmin, RoleManager},
	OpManageSuppliers: {RoleAdmin, RoleManager},
	OpDeleteProducts:  {RoleAdmin},
	OpManageUsers:     {RoleAdmin},
}

// Allowed reports whether role may perform op. Unknown roles and unknown
// operations are denied.
func Allowed(role Role, op Operation) bool {
	for _, r := range permissions[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the authenticated employee behind a request.
type Actor struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
}

// Authorize returns ErrForbidden unless the actor may perform op.
func (a Actor) Authorize(op Operation) error {
	if !Allowed(a.Role, op) {
		return ErrForbidden
	}
	return nil
}
