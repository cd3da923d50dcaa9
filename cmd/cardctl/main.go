// Command cardctl renders library cards and course suggestions offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"librarycard/internal/logging"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "cardctl",
		Short:         "Render digital library cards from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log degradations and backend calls")

	logger := func() *zap.Logger {
		if !verbose {
			return zap.NewNop()
		}
		l, err := logging.New("dev", "debug")
		if err != nil {
			return zap.NewNop()
		}
		return l
	}
	root.AddCommand(newRenderCmd(logger), newSuggestCmd(logger))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cardctl:", err)
		os.Exit(1)
	}
}
