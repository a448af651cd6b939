package port

import (
	"context"

	"stockflow/internal/service/store/domain"
)

// StockNotifier pushes applied stock changes to live subscribers.
type StockNotifier interface {
	NotifyStockChanged(ctx context.Context, change domain.StockChange)
}
