package main

import (
	"fmt"
	"os"

	"arelyz/internal/dto"
	"arelyz/internal/repository"
	"arelyz/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var seedUserCmd = &cobra.Command{
	Use:   "seed-user",
	Short: "Crea o actualiza un usuario operador",
	Example: `  arelyzctl seed-user --username recepcion --nombre "Ana López" --rol recepcion
  ARELYZ_PASSWORD=secreto arelyzctl seed-user --username admin --nombre Admin --rol administrador`,
	RunE: runSeedUser,
}

func init() {
	f := seedUserCmd.Flags()
	f.String("username", "", "Username de acceso")
	f.String("nombre", "", "Nombre mostrado como operador en los arqueos")
	f.String("email", "", "Email (opcional)")
	f.String("password", "", "Password (o variable ARELYZ_PASSWORD)")
	f.String("rol", "recepcion", "recepcion | administrador")
	_ = seedUserCmd.MarkFlagRequired("username")
	_ = seedUserCmd.MarkFlagRequired("nombre")
}

func runSeedUser(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	req := dto.UsuarioSeed{}
	req.Username, _ = f.GetString("username")
	req.Nombre, _ = f.GetString("nombre")
	req.Rol, _ = f.GetString("rol")
	req.Password, _ = f.GetString("password")
	if req.Password == "" {
		req.Password = os.Getenv("ARELYZ_PASSWORD")
	}
	if email, _ := f.GetString("email"); email != "" {
		req.Email = &email
	}
	if err := validator.New().Struct(req); err != nil {
		return fmt.Errorf("datos invalidos: %w", err)
	}

	cfg, db, _, err := connect()
	if err != nil {
		return err
	}
	svc := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	u, err := svc.GuardarUsuario(cmd.Context(), req)
	if err != nil {
		return err
	}
	log.Info().Str("username", u.Username).Str("rol", u.Rol).Msg("usuario guardado")
	fmt.Fprintf(cmd.OutOrStdout(), "Usuario '%s' (%s) creado/actualizado\n", u.Username, u.Rol)
	return nil
}
