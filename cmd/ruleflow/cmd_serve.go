package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ruleflow-dev/ruleflow/events"
	"github.com/ruleflow-dev/ruleflow/server"
	"github.com/ruleflow-dev/ruleflow/session"
	"github.com/ruleflow-dev/ruleflow/storage/redis"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the flow engine server",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetUint("port")
			cors, _ := cmd.Flags().GetBool("cors")
			pretty, _ := cmd.Flags().GetBool("pretty")
			redisAddr, _ := cmd.Flags().GetString("redis")
			namespace, _ := cmd.Flags().GetString("namespace")

			var managerOpts []session.ManagerOption
			managerOpts = append(managerOpts,
				session.WithCompileOptions(compileOptions(cmd)...))
			if redisAddr != "" {
				store := redis.NewRedisStorage(redis.Options{
					Addr:     redisAddr,
					Password: os.Getenv("REDIS_PASSWORD"),
				}, namespace)
				managerOpts = append(managerOpts, session.WithStorage(&store))
			}

			hub := events.NewEventHub()
			manager := session.NewManager(managerOpts...)

			serverOpts := []server.Option{
				server.WithPort(port),
				server.WithEventHub(hub),
			}
			if cors {
				serverOpts = append(serverOpts, server.WithCORS())
			}
			if pretty {
				serverOpts = append(serverOpts, server.WithPrettyPrint())
			}
			srv := server.New(manager, serverOpts...)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("shutting down")
				if err := srv.Shutdown(); err != nil {
					log.Err(err).Msg("server shutdown failed")
				}
				hub.Shutdown()
			}()

			return srv.Serve()
		},
	}
	cmd.Flags().Uint("port", 4040, "Port to serve on")
	cmd.Flags().Bool("cors", false, "Enable CORS")
	cmd.Flags().Bool("pretty", false, "Human readable console log output")
	cmd.Flags().String("redis", "", "Redis address for session snapshots")
	cmd.Flags().String("namespace", "ruleflow", "Storage key namespace")
	return cmd
}
