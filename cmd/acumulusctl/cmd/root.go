package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/acumulus-sync/internal/bootstrap"
	"github.com/jhoicas/acumulus-sync/internal/domain"
	"github.com/jhoicas/acumulus-sync/pkg/config"
	"github.com/jhoicas/acumulus-sync/pkg/logger"
)

var version = "0.1.0"

var (
	// Global flags
	configFile   string
	inMemory     bool
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "acumulusctl",
	Short: "Sincroniza facturas de WHMCS con Acumulus",
	Long: `acumulusctl ejecuta a mano las mismas operaciones que los webhooks.

Ejemplos:
  # Enviar la factura 77
  acumulusctl send 77

  # Registrar el pago con fecha explícita
  acumulusctl paid 77 --date 2024-03-20

  # Ver clasificación de IVA y totales sin enviar
  acumulusctl preview 77

  # Crear las tablas
  acumulusctl migrate`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute ejecuta el comando raíz.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode 2 configuración, 3 rechazo del libro, 4 transporte, 1 el resto.
func ExitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return 2
	case errors.Is(err, domain.ErrBusiness):
		return 3
	case errors.Is(err, domain.ErrTransport):
		return 4
	default:
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Archivo de configuración (.env); por defecto .env / config/config.env")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "Guardar tokens en memoria en lugar de PostgreSQL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log de depuración (peticiones enmascaradas)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "Formato de salida (text, json)")
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

// newContainer carga configuración y logger y conecta las dependencias.
func newContainer(cmd *cobra.Command, opts bootstrap.Options) (*bootstrap.Container, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.App.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Output: cmd.ErrOrStderr()})
	opts.InMemory = opts.InMemory || inMemory
	return bootstrap.New(cmd.Context(), cfg, log.Zerolog(), opts)
}

func parseInvoiceID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id de factura %q", domain.ErrInvalidInput, arg)
	}
	return id, nil
}

// printJSON salida indentada para --format json.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
