package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/api"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/events"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	Publisher    events.Publisher // nil means events are dropped

	// Clock overrides the wall clock of the services. Tests only.
	Clock func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	UserService    user.Service
	ItemService    item.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo)

	// Booking Module reads items through the catalog adapter
	itemRepo := item.NewPgxRepository(cfg.DBPool)
	bookingOpts := []booking.Option{
		booking.WithPublisher(publisher),
		booking.WithLogger(log.Named("booking")),
	}
	if cfg.Clock != nil {
		bookingOpts = append(bookingOpts, booking.WithClock(cfg.Clock))
	}
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, userService, item.NewCatalog(itemRepo), bookingOpts...)

	// Item Module
	itemOpts := []item.Option{item.WithLogger(log.Named("item"))}
	if cfg.Clock != nil {
		itemOpts = append(itemOpts, item.WithClock(cfg.Clock))
	}
	itemService := item.NewService(itemRepo, userService, bookingService, itemOpts...)

	// API Router Config
	routerParams := api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         log,
		UserService:    userService,
		ItemService:    itemService,
		BookingService: bookingService,
	}
	if cfg.DBPool != nil {
		routerParams.DB = cfg.DBPool
	}

	// Router
	router, err := api.NewRouter(routerParams)
	if err != nil {
		return nil, err
	}

	return &Container{
		Router:         router,
		UserService:    userService,
		ItemService:    itemService,
		BookingService: bookingService,
	}, nil
}
