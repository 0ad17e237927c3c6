package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"paramload/internal/config"
	"paramload/internal/scenario"
	"paramload/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Attach to a locust master and run the print-param task",
	Long: `Runs as a locust worker. The master owns users, spawn rate and run time.
Each user still waits --min-wait to --max-wait between requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Env, os.Stderr)

		fmt.Printf("👷 Worker for %s -> master %s:%d\n", cfg.Load.Host, cfg.Worker.MasterHost, cfg.Worker.MasterPort)
		worker.Run(cmd.Context(), logger, worker.Config{
			MasterHost: cfg.Worker.MasterHost,
			MasterPort: cfg.Worker.MasterPort,
			TargetHost: cfg.Load.Host,
			Timeout:    cfg.Load.Timeout,
			Insecure:   cfg.Load.Insecure,
		}, scenario.NewPrintParamUser(scenario.Between(cfg.Load.MinWait, cfg.Load.MaxWait), cfg.Load.ParamLength))
		return nil
	},
}

func init() {
	f := workerCmd.Flags()
	f.String("master-host", "127.0.0.1", "Locust master host")
	f.Int("master-port", 5557, "Locust master port")

	bindFlag(f, "worker.master-host", "master-host")
	bindFlag(f, "worker.master-port", "master-port")
}
