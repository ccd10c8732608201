package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/acumulus-sync/internal/application/dto"
	"github.com/jhoicas/acumulus-sync/internal/bootstrap"
)

var tokenCmd = &cobra.Command{
	Use:   "token <invoice-id>",
	Short: "Muestra el estado local, el token de Acumulus y el log de sincronización",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	id, err := parseInvoiceID(args[0])
	if err != nil {
		return err
	}
	deps, err := newContainer(cmd, bootstrap.Options{Offline: true})
	if err != nil {
		return err
	}
	defer deps.Close()

	state, tok, err := deps.Sync.State(cmd.Context(), id)
	if err != nil {
		return err
	}
	events, err := deps.Events.ListByInvoice(cmd.Context(), id)
	if err != nil {
		return err
	}
	out := dto.NewSyncStateResponse(id, state, tok, events)
	if outputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "factura %d: %s\n", id, out.State)
	if tok == nil {
		fmt.Fprintln(w, "  sin token: nunca se envió a Acumulus")
	} else {
		fmt.Fprintf(w, "  token:   %s\n  entrada: %d\n", out.Token, out.EntryID)
		if out.CreditedAt != nil {
			fmt.Fprintf(w, "  nota de crédito: %s\n", out.CreditedAt.Format("2006-01-02 15:04"))
		}
	}
	for _, ev := range out.Events {
		fmt.Fprintf(w, "  %s  %-14s %-9s %s %s\n", ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Operation, ev.Outcome, ev.Total.StringFixed(2), ev.Messages)
	}
	return nil
}
