package infrastructure

import "time"

// OrderModel maps the orders table.
type OrderModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	StoreID   int64  `gorm:"index;not null"`
	UserID    int64  `gorm:"index;not null"`
	Status    string `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel maps the order_items table.
type OrderItemModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	OrderID   int64 `gorm:"index;not null"`
	ProductID int64 `gorm:"not null"`
	Quantity  int   `gorm:"not null;check:quantity > 0"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}
