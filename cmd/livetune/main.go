// Command livetune is a small debugging front end for the livetune
// library: watch a parameter file and print values as they change, or
// fetch a single value with an optional timeout.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/livetune/logging"
	"github.com/grovetools/livetune/tune"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "livetune",
		Short:         "Live parameter tuning from human-edited files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newGetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Watch a parameter file and print values on every change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.NewLogger("cli")
			params := tune.NewParams(args[0])

			params.OnChange(func() {
				values := params.Values()
				keys := make([]string, 0, len(values))
				for k := range values {
					keys = append(keys, k)
				}
				sort.Strings(keys)

				fmt.Printf("--- %s\n", time.Now().Format("15:04:05.000"))
				for _, k := range keys {
					fmt.Printf("%s = %s\n", k, values[k])
				}
			})

			if err := params.StartWatching(); err != nil {
				return err
			}
			defer params.StopWatching()
			log.Infof("watching %s", args[0])

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if !params.Poll() && params.HasError() {
						log.Debugf("check failed: %v", params.LastError())
					}
				case <-stop:
					return nil
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 50*time.Millisecond,
		"how often pending changes are applied")
	return cmd
}

func newGetCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "get <file>",
		Short: "Read the first value from a file, waiting for it to become valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tuner := tune.NewTuner(args[0])

			var value string
			if !tuner.GetTimeout(tune.String(&value, ""), timeout) {
				if lastErr := tuner.LastError(); lastErr.IsError() {
					return lastErr
				}
				return fmt.Errorf("no value read from %s", args[0])
			}
			fmt.Println(value)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second,
		"give up after this long (0 = one non-blocking attempt)")
	return cmd
}
