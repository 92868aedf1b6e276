package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conecta-senac/aprendiz/internal/store"
)

var leadsLimit int

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Lista os contatos capturados",
	RunE:  runLeads,
}

func init() {
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 100, "máximo de leads exibidos")
	rootCmd.AddCommand(leadsCmd)
}

func runLeads(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	leads, err := st.ListLeads(ctx, leadsLimit)
	if err != nil {
		return err
	}
	if len(leads) == 0 {
		fmt.Println("Nenhum lead capturado ainda.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NOME\tE-MAIL\tCAPTURADO EM")
	for _, l := range leads {
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.Name, l.Email, l.CaptureTime.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
