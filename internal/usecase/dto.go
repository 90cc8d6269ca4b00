package usecase

import "github.com/xavierca1/stockwatch/internal/entity"

type CheckStockOutput struct {
	Available        bool
	Decision         Classification
	Previous         *entity.StockState
	State            *entity.StockState
	RestockEmailSent bool
	StatusEmailSent  bool
	StatePersisted   bool
}
