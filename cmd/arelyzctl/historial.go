package main

import (
	"fmt"
	"text/tabwriter"

	"arelyz/internal/calculo"
	"arelyz/internal/repository"
	"arelyz/internal/service"

	"github.com/spf13/cobra"
)

var historialCmd = &cobra.Command{
	Use:   "historial",
	Short: "Lista los arqueos más recientes",
	RunE:  runHistorial,
}

func init() {
	historialCmd.Flags().Int("limit", 0, "Cantidad de arqueos (por defecto ARQUEO_HISTORY_LIMIT, máximo 100)")
	historialCmd.Flags().Bool("resumen", false, "Muestra también las estadísticas del periodo listado")
}

func runHistorial(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	conResumen, _ := cmd.Flags().GetBool("resumen")

	cfg, db, loc, err := connect()
	if err != nil {
		return err
	}
	svc := service.NewHistorialService(repository.NewArqueoRepository(db), loc, cfg.ArqueoHistoryLimit, cfg.BusinessName)

	arqueos, err := svc.ListarRecientes(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FECHA\tOPERADOR\tEFECTIVO NETO\tCONTADO\tDIFERENCIA\tID")
	for _, a := range arqueos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s (%s)\t%s\n",
			a.CreatedAt.In(loc).Format("2006-01-02 15:04"), a.Operador,
			calculo.Moneda(a.EfectivoNeto), calculo.Moneda(a.EfectivoContado),
			calculo.Moneda(a.Diferencia), a.Etiqueta, a.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !conResumen {
		return nil
	}
	r, err := svc.Resumen(cmd.Context(), limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d arqueos: %d exactos, %d con sobrante (%s), %d con faltante (%s)\n",
		r.Cantidad, r.Exactos, r.ConSobrante, calculo.Moneda(r.TotalSobrante), r.ConFaltante, calculo.Moneda(r.TotalFaltante))
	return nil
}
