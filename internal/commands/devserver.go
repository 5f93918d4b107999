package commands

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/serenelabs/serene/internal/devserver"
)

var devserverAddrFlag string

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local stub backend",
	Long: `Run a local stub of the companion backend with scripted replies.

Useful for trying the client without an account:

  serene devserver --addr :8787
  SERENE_TOKEN=dev serene --base-url http://localhost:8787 chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := devserver.NewService()
		srv := &http.Server{
			Addr:              devserverAddrFlag,
			Handler:           devserver.NewRouter(svc),
			ReadHeaderTimeout: 5 * time.Second,
		}

		log.Printf("stub backend listening on %s", devserverAddrFlag)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("devserver failed: %w", err)
		}
		return nil
	},
}

func init() {
	devserverCmd.Flags().StringVar(&devserverAddrFlag, "addr", ":8787", "Listen address")
}
