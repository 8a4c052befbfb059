package api

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/auth"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/sales"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/store"
)

type ItemService interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, in models.ItemInput) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, in models.ItemInput) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type SaleService interface {
	SubmitSale(ctx context.Context, req sales.Request) (*models.Sale, error)
	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	GetReceipt(ctx context.Context, id int64) (*models.Receipt, error)
	ListSales(ctx context.Context, params sales.ListParams) (*store.CursorPage, error)
}

type ReportService interface {
	Summary(ctx context.Context, period string) (*models.SalesReport, error)
	Dashboard(ctx context.Context, threshold decimal.Decimal) (*models.Dashboard, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Register(ctx context.Context, username, password, role string) (*models.User, error)
	Validate(token string) (*auth.Claims, error)
}

type UserService interface {
	ListUsers(ctx context.Context, page, pageSize int) (*store.OffsetPage, error)
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}
