package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/acumulus-sync/internal/application/billing"
	"github.com/jhoicas/acumulus-sync/internal/application/dto"
	"github.com/jhoicas/acumulus-sync/internal/bootstrap"
)

var paidDate string

var sendCmd = &cobra.Command{
	Use:   "send <invoice-id>",
	Short: "Envía la factura a Acumulus (o actualiza la entrada existente)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, args[0], func(s *billing.LedgerSync, id int64) (*billing.SyncResult, error) {
			return s.SendInvoice(cmd.Context(), id)
		})
	},
}

var paidCmd = &cobra.Command{
	Use:   "paid <invoice-id>",
	Short: "Marca la factura como pagada en Acumulus",
	Long: `Marca la factura como pagada. Si aún no se envió, se envía completa.
Sin --date se usa la fecha de pago de WHMCS, o hoy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var date *time.Time
		if paidDate != "" {
			d, err := time.Parse("2006-01-02", paidDate)
			if err != nil {
				return fmt.Errorf("--date debe ser YYYY-MM-DD: %w", err)
			}
			date = &d
		}
		return runSync(cmd, args[0], func(s *billing.LedgerSync, id int64) (*billing.SyncResult, error) {
			return s.UpdateInvoice(cmd.Context(), id, date)
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <invoice-id>",
	Short: "Anula la factura con una nota de crédito (solo con numeración secuencial)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, args[0], func(s *billing.LedgerSync, id int64) (*billing.SyncResult, error) {
			return s.CancelInvoice(cmd.Context(), id)
		})
	},
}

func init() {
	paidCmd.Flags().StringVar(&paidDate, "date", "", "Fecha de pago (YYYY-MM-DD)")
	rootCmd.AddCommand(sendCmd, paidCmd, cancelCmd)
}

func runSync(cmd *cobra.Command, arg string, op func(*billing.LedgerSync, int64) (*billing.SyncResult, error)) error {
	id, err := parseInvoiceID(arg)
	if err != nil {
		return err
	}
	deps, err := newContainer(cmd, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer deps.Close()

	res, err := op(deps.Sync, id)
	if err != nil {
		return err
	}
	out := dto.NewSyncResultResponse(res)
	if outputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), out)
	}
	printResult(cmd.OutOrStdout(), out)
	return nil
}

func printResult(w io.Writer, r dto.SyncResultResponse) {
	fmt.Fprintf(w, "factura %d: %s (%s) estado=%s\n", r.InvoiceID, r.Outcome, r.Operation, r.State)
	if r.Token != "" {
		fmt.Fprintf(w, "  token:   %s\n  entrada: %d\n", r.Token, r.EntryID)
	}
	if r.RemoteStatus != "" {
		fmt.Fprintf(w, "  acumulus: %s\n", r.RemoteStatus)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "  avisos:\n    - %s\n", strings.Join(r.Warnings, "\n    - "))
	}
}
