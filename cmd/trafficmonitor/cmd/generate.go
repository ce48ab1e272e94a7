package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/G-Research/trafficmonitor/internal/common/logging"
	"github.com/G-Research/trafficmonitor/internal/common/util"
	"github.com/G-Research/trafficmonitor/internal/trafficmonitor/source"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic traffic readings",
		Long: `Writes a deterministic sequence of "<timestamp> <signal_id> <vehicle_count>" readings, suitable as input
for trafficmonitor. The same seed always produces the same readings.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureCliLogging()

			generator, err := generatorFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := generator.Validate(); err != nil {
				return err
			}

			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return errors.Errorf("error reading output: %s", err)
			}
			var out io.Writer = cmd.OutOrStdout()
			destination := "stdout"
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrapf(err, "unable to create %s", output)
				}
				defer util.CloseResource(output, f)
				out = f
				destination = output
			}

			written, err := generator.WriteTo(out)
			if err != nil {
				return err
			}
			log.Infof("Wrote %d readings (%d bytes) to %s", generator.Count, written, destination)
			return nil
		},
	}
	cmd.Flags().Int("count", 100, "Number of readings to generate.")
	cmd.Flags().Int("signals", 10, "Number of distinct signals.")
	cmd.Flags().Int64("max-vehicles", 50, "Largest vehicle count of a single reading.")
	cmd.Flags().Int64("seed", 1, "Seed of the random sequence.")
	cmd.Flags().Int64("first-signal", 101, "Id of the first signal; the rest are numbered consecutively.")
	cmd.Flags().Int64("start-timestamp", 1, "Timestamp of the first reading; each later reading is one more.")
	cmd.Flags().StringP("output", "o", "", "File to write to. Defaults to stdout.")
	return cmd
}

func generatorFromFlags(cmd *cobra.Command) (source.Generator, error) {
	var generator source.Generator
	var err error
	if generator.Count, err = cmd.Flags().GetInt("count"); err != nil {
		return generator, errors.Errorf("error reading count: %s", err)
	}
	if generator.Signals, err = cmd.Flags().GetInt("signals"); err != nil {
		return generator, errors.Errorf("error reading signals: %s", err)
	}
	if generator.MaxVehicles, err = cmd.Flags().GetInt64("max-vehicles"); err != nil {
		return generator, errors.Errorf("error reading max-vehicles: %s", err)
	}
	if generator.Seed, err = cmd.Flags().GetInt64("seed"); err != nil {
		return generator, errors.Errorf("error reading seed: %s", err)
	}
	if generator.FirstSignalId, err = cmd.Flags().GetInt64("first-signal"); err != nil {
		return generator, errors.Errorf("error reading first-signal: %s", err)
	}
	if generator.StartTimestamp, err = cmd.Flags().GetInt64("start-timestamp"); err != nil {
		return generator, errors.Errorf("error reading start-timestamp: %s", err)
	}
	return generator, nil
}
