package main

import (
	"fmt"
	"os"
	"path/filepath"

	"arelyz/internal/repository"
	"arelyz/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var exportarCmd = &cobra.Command{
	Use:     "exportar <arqueo-id>",
	Short:   "Exporta un arqueo cerrado a XLSX o PDF",
	Example: `  arelyzctl exportar 3f0e... --formato pdf --out /tmp`,
	Args:    cobra.ExactArgs(1),
	RunE:    runExportar,
}

func init() {
	exportarCmd.Flags().String("formato", service.FormatoXLSX, "xlsx | pdf")
	exportarCmd.Flags().String("out", ".", "Directorio de salida")
}

func runExportar(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("id invalido: %w", err)
	}
	formato, _ := cmd.Flags().GetString("formato")
	out, _ := cmd.Flags().GetString("out")

	cfg, db, loc, err := connect()
	if err != nil {
		return err
	}
	svc := service.NewHistorialService(repository.NewArqueoRepository(db), loc, cfg.ArqueoHistoryLimit, cfg.BusinessName)

	doc, err := svc.Exportar(cmd.Context(), id, formato)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}
	path := filepath.Join(out, doc.Nombre)
	if err := os.WriteFile(path, doc.Contenido, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
