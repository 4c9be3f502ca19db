package main

import (
	"fmt"
	"text/tabwriter"

	"arelyz/internal/config"
	"arelyz/internal/infra"
	"arelyz/internal/worker"

	"github.com/spf13/cobra"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspecciona o reencola los trabajos fallidos (exportaciones, correos)",
	RunE:  runDLQ,
}

func init() {
	dlqCmd.Flags().String("cola", worker.QueueArqueoExport, "Cola de origen")
	dlqCmd.Flags().Int64("limit", 20, "Entradas a listar")
	dlqCmd.Flags().Int("reencolar", 0, "Mueve las N entradas más antiguas a su cola de origen")
}

func runDLQ(cmd *cobra.Command, _ []string) error {
	cola, _ := cmd.Flags().GetString("cola")
	limit, _ := cmd.Flags().GetInt64("limit")
	reencolar, _ := cmd.Flags().GetInt("reencolar")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	if reencolar > 0 {
		n, err := worker.RequeueDLQ(cmd.Context(), rdb, cola, reencolar)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d trabajos reencolados en %s\n", n, cola)
		return nil
	}

	entries, err := worker.ListDLQ(cmd.Context(), rdb, cola, limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FALLÓ\tTIPO\tINTENTOS\tMOTIVO\tPAYLOAD")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", e.FailedAt, e.JobType, e.Attempts, e.Reason, string(e.Payload))
	}
	return w.Flush()
}
