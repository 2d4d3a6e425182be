// Command simrunner is the CLI entry point for running simcore's
// reference SIR model end to end: it wires Context, the model and
// (optionally) the JSONL reporter, then drives Context.Execute to
// completion. It does not start the statusapi server.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smilemakc/simcore/config"
	"github.com/smilemakc/simcore/logging"
	"github.com/smilemakc/simcore/models/sir"
	"github.com/smilemakc/simcore/report"
	"github.com/smilemakc/simcore/simcontext"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "simrunner",
		Short: "Run simcore reference simulations",
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

// version is stamped at release time; "dev" outside a tagged build.
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the simrunner version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var (
		seed               uint64
		population         int
		initialInfected    int
		transmissionRate   float64
		contactsPerDay     float64
		recoveryRate       float64
		durationDays       float64
		reportIntervalDays float64
		reportPath         string
		pretty             bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reference SIR model and print its attack rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if seed == 0 {
				seed = cfg.Seed
			}
			if !cmd.Flags().Changed("population") {
				population = cfg.Population
			}
			if !cmd.Flags().Changed("report-interval-days") {
				reportIntervalDays = cfg.ReportIntervalDay
			}
			if !cmd.Flags().Changed("report-path") {
				reportPath = cfg.ReportPath
			}

			var logger = logging.Setup(cfg.LogLevel)
			if pretty {
				logger = logging.Text(cfg.LogLevel)
			}

			runID := uuid.New()
			logger.Info("starting run", "run_id", runID.String(), "seed", seed)

			ctx := simcontext.New(seed, logger)
			model := sir.Build(ctx, sir.Params{
				Population:         population,
				InitialInfected:    initialInfected,
				TransmissionRate:   transmissionRate,
				ContactsPerDay:     contactsPerDay,
				RecoveryRatePerDay: recoveryRate,
				DurationDays:       durationDays,
			})
			model.Seed()
			model.ScheduleShutdown()

			if reportPath != "" {
				f, err := os.Create(reportPath)
				if err != nil {
					return fmt.Errorf("open report file: %w", err)
				}
				defer f.Close()
				r := report.New(f, zerolog.New(os.Stderr).With().Timestamp().Logger(), sir.PersonType, []string{"health_status"})
				if err := r.Attach(ctx, reportIntervalDays); err != nil {
					return fmt.Errorf("attach reporter: %w", err)
				}
			}

			ctx.Execute()

			fmt.Fprintf(cmd.OutOrStdout(), "attack_rate=%.4f\n", model.AttackRate())
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "base RNG seed (0 = use config default)")
	cmd.Flags().IntVar(&population, "population", 1000, "population size")
	cmd.Flags().IntVar(&initialInfected, "initial-infected", 5, "initially infected count")
	cmd.Flags().Float64Var(&transmissionRate, "transmission-rate", 0.3, "probability an S-I contact infects")
	cmd.Flags().Float64Var(&contactsPerDay, "contacts-per-day", 4, "contact rate per infected person, events/day")
	cmd.Flags().Float64Var(&recoveryRate, "recovery-rate", 0.15, "recovery rate per infected person, events/day")
	cmd.Flags().Float64Var(&durationDays, "duration-days", 180, "simulation horizon in days")
	cmd.Flags().Float64Var(&reportIntervalDays, "report-interval-days", 1, "JSONL report tick interval")
	cmd.Flags().StringVar(&reportPath, "report-path", "", "write a JSONL report to this path (empty disables reporting)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "use a human-readable text logger instead of JSON")

	return cmd
}
