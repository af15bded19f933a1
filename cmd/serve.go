package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"campusbite/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = cfg.Server.Port
			}
			gin.SetMode(cfg.Server.Mode)

			rt, err := openRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := &http.Server{
				Addr:    ":" + port,
				Handler: routes.NewRouter(rt.newApp, rt.diskFiles),
			}
			errc := make(chan error, 1)
			go func() {
				log.Printf("🚀 Server running on http://localhost:%s (%s backend)", port, cfg.Backend.Driver)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-cmd.Context().Done():
			}
			log.Printf("Shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default server.port)")
	return cmd
}
