package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"paramload/internal/config"
	"paramload/internal/target"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sample /print-param application",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Env, os.Stdout)

		srv := target.NewServer(logger, target.ServerConfig{
			Host:            cfg.Target.Host,
			Port:            cfg.Target.Port,
			ReadTimeout:     cfg.Target.ReadTimeout,
			ShutdownTimeout: cfg.Target.ShutdownTimeout,
		})
		return srv.Run(cmd.Context())
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("bind", "0.0.0.0", "Address to listen on")
	f.IntP("port", "p", 8080, "Port to listen on")

	bindFlag(f, "target.host", "bind")
	bindFlag(f, "target.port", "port")
}
