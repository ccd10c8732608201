package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/acumulus-sync/pkg/jwt"
)

var (
	hookSubject string
	hookMinutes int
)

var hookTokenCmd = &cobra.Command{
	Use:   "hook-token",
	Short: "Genera el Bearer token que WHMCS usa para llamar a los webhooks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		minutes := hookMinutes
		if minutes <= 0 {
			minutes = cfg.JWT.Expiration
		}
		tok, err := jwt.Generate(cfg.JWT.Secret, hookSubject, cfg.JWT.Issuer, []string{jwt.ScopeHooks}, minutes)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	hookTokenCmd.Flags().StringVar(&hookSubject, "subject", "whmcs", "Emisor (claim sub)")
	hookTokenCmd.Flags().IntVar(&hookMinutes, "minutes", 0, "Validez en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	rootCmd.AddCommand(hookTokenCmd)
}
