package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/domain/repository"
	"github.com/jhoicas/acumulus-sync/internal/domain/vat"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/acumulus"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/memory"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/postgres"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/settings"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/templating"
	"github.com/jhoicas/acumulus-sync/internal/infrastructure/whmcs"
	"github.com/jhoicas/acumulus-sync/pkg/config"
)

// Options ajustes de arranque.
type Options struct {
	// InMemory usa el Store en memoria en vez de PostgreSQL (pruebas locales).
	InMemory bool
	// Offline no exige credenciales de Acumulus (vista previa sin envío).
	Offline bool
}

// Container dependencias ya conectadas, compartidas por la API y la CLI.
type Container struct {
	Sync     *billing.LedgerSync
	Billing  *whmcs.Client
	Ledger   *acumulus.Client
	Tokens   repository.LedgerTokenRepository
	Events   repository.SyncEventRepository
	Settings *settings.Provider
	Pool     *pgxpool.Pool // nil con InMemory
}

// Close libera el pool de base de datos si existe.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// New valida la configuración y conecta todas las piezas.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*Container, error) {
	provider := settings.NewProvider(cfg.Sync)
	if _, err := provider.GetConfig(ctx); err != nil {
		return nil, err
	}

	acuCfg := AcumulusConfig(cfg.Acumulus)
	if !opts.Offline {
		if err := acuCfg.Validate(); err != nil {
			return nil, err
		}
	}
	whmcsCfg := whmcs.Config{
		URL:        cfg.WHMCS.URL,
		Identifier: cfg.WHMCS.Identifier,
		Secret:     cfg.WHMCS.Secret,
		AccessKey:  cfg.WHMCS.AccessKey,
		Timeout:    cfg.WHMCS.Timeout,
	}
	if err := whmcsCfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Settings: provider}
	if opts.InMemory {
		store := memory.New()
		c.Tokens, c.Events = store, store
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.Pool = pool
		c.Tokens = postgres.NewLedgerTokenRepository(pool)
		c.Events = postgres.NewSyncEventRepository(pool)
	}

	renderer := templating.New()
	aggregator := vat.NewAggregator(vat.NewClassifier(vat.NewMembership(vat.DefaultMembershipRules)), renderer)

	c.Billing = whmcs.NewClient(whmcsCfg, log)
	c.Ledger = acumulus.NewClient(acuCfg, renderer, log)
	c.Sync = billing.NewLedgerSync(c.Billing, provider, c.Ledger, c.Tokens, c.Events, aggregator, log)
	return c, nil
}

// AcumulusConfig traduce la configuración cargada al cliente de Acumulus.
func AcumulusConfig(cfg config.AcumulusConfig) acumulus.Config {
	return acumulus.Config{
		Endpoint:     cfg.Endpoint,
		ContractCode: cfg.ContractCode,
		Username:     cfg.Username,
		Password:     cfg.Password,
		ErrorEmail:   cfg.ErrorEmail,
		WarningEmail: cfg.WarningEmail,
		Timeout:      cfg.Timeout,
		Connector: acumulus.ConnectorInfo{
			Application: cfg.Application,
			Webkoppel:   cfg.Webkoppel,
		},
	}
}
