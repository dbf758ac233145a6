package model

import "time"

const (
	MovementSale         = "sale"
	MovementRestock      = "restock"
	MovementCancellation = "cancellation"
	MovementDeletion     = "deletion"
	MovementReinstate    = "reinstate"
	MovementAdjustment   = "adjustment"

	ReferenceOrder = "order"
)

type InventoryMovement struct {
	ID             string    `db:"id" json:"id"`
	ProductID      string    `db:"product_id" json:"productId"`
	MovementType   string    `db:"movement_type" json:"movementType"`
	QuantityChange int       `db:"quantity_change" json:"quantityChange"`
	QuantityBefore int       `db:"quantity_before" json:"quantityBefore"`
	QuantityAfter  int       `db:"quantity_after" json:"quantityAfter"`
	ReferenceType  *string   `db:"reference_type" json:"referenceType"`
	ReferenceID    *string   `db:"reference_id" json:"referenceId"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"createdBy"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
