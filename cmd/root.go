package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conecta-senac/aprendiz/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "aprendiz",
	Short: "Assistente conversacional do Conecta Senac",
	Long:  "Responde perguntas sobre cursos, inscrições, EAD e unidades do Senac, com busca web opcional e captura de leads.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
