package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/acumulus-sync/internal/application/dto"
	"github.com/jhoicas/acumulus-sync/internal/bootstrap"
	"github.com/jhoicas/acumulus-sync/internal/domain/entity"
)

var previewCmd = &cobra.Command{
	Use:   "preview <invoice-id>",
	Short: "Clasifica la factura y muestra el desglose de IVA sin enviarla",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

// previewLine línea anotada para la salida JSON.
type previewLine struct {
	Description string `json:"description"`
	Taxed       bool   `json:"taxed"`
	Correction  bool   `json:"correction,omitempty"`
	Amount      string `json:"amount"`
	PriceExcl   string `json:"price_excl"`
	PriceIncl   string `json:"price_incl"`
	Tax         string `json:"tax"`
}

func runPreview(cmd *cobra.Command, args []string) error {
	id, err := parseInvoiceID(args[0])
	if err != nil {
		return err
	}
	deps, err := newContainer(cmd, bootstrap.Options{Offline: true, InMemory: true})
	if err != nil {
		return err
	}
	defer deps.Close()

	inv, err := deps.Sync.Preview(cmd.Context(), id)
	if err != nil {
		return err
	}
	lines := make([]previewLine, 0, len(inv.Items))
	for _, it := range inv.Items {
		lines = append(lines, previewLine{
			Description: it.Description,
			Taxed:       it.Taxed,
			Correction:  it.Correction,
			Amount:      it.Amount.StringFixed(2),
			PriceExcl:   it.Tax.PriceExclUnrounded.StringFixed(4),
			PriceIncl:   it.Tax.PriceInclUnrounded.StringFixed(4),
			Tax:         it.Tax.TaxUnrounded.StringFixed(4),
		})
	}

	if outputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"invoice_id": inv.ID,
			"number":     inv.DisplayNumber(),
			"summary":    dto.NewTaxSummaryResponse(inv.Summary),
			"lines":      lines,
		})
	}

	w := cmd.OutOrStdout()
	s := inv.Summary
	fmt.Fprintf(w, "factura %s (id %d)\n", inv.DisplayNumber(), inv.ID)
	fmt.Fprintf(w, "  tipo de IVA: %d %s\n  tasa:        %s\n", int(s.VatType), s.VatType, rateLabel(s))
	for _, l := range lines {
		mark := " "
		if l.Correction {
			mark = "*"
		}
		fmt.Fprintf(w, "  %s %-40.40s %12s %12s %12s\n", mark, l.Description, l.PriceExcl, l.Tax, l.PriceIncl)
	}
	fmt.Fprintf(w, "  subtotal con IVA (sin impuesto): %s\n", s.SubtotalTaxedExclTax.StringFixed(2))
	fmt.Fprintf(w, "  subtotal con IVA (con impuesto): %s\n", s.SubtotalTaxedInclTax.StringFixed(2))
	fmt.Fprintf(w, "  subtotal sin IVA:                %s\n", s.SubtotalUntaxed.StringFixed(2))
	fmt.Fprintf(w, "  IVA redondeado por línea:        %s\n", s.TotalTaxRoundedPerItem.StringFixed(2))
	fmt.Fprintf(w, "  IVA sin redondear:               %s\n", s.TotalTaxUnrounded.StringFixed(4))
	return nil
}

func rateLabel(s *entity.InvoiceTaxSummary) string {
	if s.TaxRate.IsNegative() {
		return "exento (-1)"
	}
	return s.TaxRate.String() + "%"
}
