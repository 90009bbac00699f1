package app

import (
	"log/slog"

	"settle_go/internal/clock"
	"settle_go/internal/infra"
	"settle_go/internal/infra/ledger"
	"settle_go/internal/infra/storage"
	"settle_go/internal/infra/wallet"
	"settle_go/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config      *infra.Config
	Storage     *storage.Storage
	Ledger      *ledger.Client
	Coordinator *service.Coordinator
	Stream      *ledger.Stream
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, engine wiring)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping settlement engine...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Ledger client + engine wiring
	b.Ledger = ledger.NewClient(cfg)
	observer := service.NewObserver(b.Ledger, cfg.Ledger.Asset)
	settler := service.NewSettlementExecutor(b.Ledger)

	b.Coordinator = service.NewCoordinator(
		store,
		wallet.NewProvisioner(),
		observer,
		settler,
		clock.NewSystem(),
		cfg.Ledger.MasterWallet,
		cfg.PaymentWindow(),
		cfg.Payment.GasFloor,
	)
	slog.Info("✅ Coordinator ready",
		slog.String("asset", cfg.Ledger.Asset),
		slog.String("gas_floor", cfg.Payment.GasFloor.String()))

	// 5. Transfer stream (optional: polling alone is sufficient)
	if cfg.Ledger.WSURL != "" {
		b.Stream = ledger.NewStream(cfg.Ledger.WSURL, store, b.Coordinator)
	}

	return nil
}
