package main

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"librarycard/internal/recommend"
)

func newSuggestCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		apiKey  string
		model   string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "suggest <department>",
		Short: "Print course suggestions for a department as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			opts := []recommend.Option{recommend.WithTimeout(timeout), recommend.WithLogger(log)}
			if apiKey != "" {
				gen, err := recommend.NewGenAIGenerator(cmd.Context(), apiKey, model)
				if err != nil {
					return err
				}
				opts = append(opts, recommend.WithGenerator(gen))
			}
			res := recommend.NewEngine(opts...).Recommend(cmd.Context(), strings.Join(args, " "))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("GENAI_API_KEY"), "Gemini API key (enables generated suggestions)")
	cmd.Flags().StringVar(&model, "model", os.Getenv("GENAI_MODEL"), "Gemini model")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "backend timeout")
	return cmd
}
