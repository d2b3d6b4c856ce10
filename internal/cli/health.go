package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/health"
	"github.com/pratik-mahalle/linkboost/pkg/client"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
	}

	cmd.AddCommand(newHealthProbeCmd())
	cmd.AddCommand(newHealthReportCmd())

	return cmd
}

// probeOutput is the machine-readable form of one probe result
type probeOutput struct {
	Target         string         `json:"target" yaml:"target"`
	Status         string         `json:"status" yaml:"status"`
	Message        string         `json:"message" yaml:"message"`
	ResponseTimeMs int64          `json:"responseTimeMs" yaml:"responseTimeMs"`
	CheckedAt      time.Time      `json:"checkedAt" yaml:"checkedAt"`
	Details        map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

func newHealthProbeCmd() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Probe a health endpoint",
		Long: `Send a single GET to a health endpoint and classify the answer.
With --watch the endpoint is probed repeatedly until interrupted.
Exits non-zero when the last result is unhealthy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			prober := health.NewProber(nil)

			if !watch {
				r := prober.Probe(context.Background(), target, timeout)
				if err := printProbe(target, r); err != nil {
					return err
				}
				if r.Status == health.StatusUnhealthy {
					return fmt.Errorf("%s is unhealthy", target)
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := prober.Watch(ctx, target, interval, timeout, func(r health.Result) {
				if err := printProbe(target, r); err != nil {
					fmt.Fprintln(os.Stderr, "Error:", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "probe repeatedly until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "time between probes with --watch")
	cmd.Flags().DurationVar(&timeout, "timeout", health.DefaultTimeout, "per-probe timeout")

	return cmd
}

func printProbe(target string, r health.Result) error {
	out := probeOutput{
		Target:         target,
		Status:         string(r.Status),
		Message:        r.Message,
		ResponseTimeMs: r.ResponseTime.Milliseconds(),
		CheckedAt:      time.Now().UTC(),
		Details:        r.Details,
	}

	if getOutputFormat() != "table" {
		return printOutput(out)
	}

	fmt.Printf("%s  %-16s %5dms  %s\n",
		out.CheckedAt.Format(time.RFC3339), formatHealth(out.Status), out.ResponseTimeMs, out.Message)
	return nil
}

func newHealthReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the server's aggregated health report",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := apiClient.Health(context.Background())
			if report == nil {
				return fmt.Errorf("failed to get health report: %w", err)
			}

			if getOutputFormat() != "table" {
				if perr := printOutput(report); perr != nil {
					return perr
				}
				return err
			}

			printHealthReport(report)
			return err
		},
	}
}

func printHealthReport(report *client.HealthReport) {
	fmt.Printf("%s %s (%s)  %s\n", report.Service, report.Version, report.Environment, formatHealth(report.Status))
	fmt.Printf("Uptime: %s\n\n", (time.Duration(report.Uptime) * time.Second).String())

	table := NewTable("SERVICE", "REQUIRED", "STATUS", "TIME", "MESSAGE")
	for _, s := range report.Services {
		rt := "-"
		if s.ResponseTimeMs != nil {
			rt = fmt.Sprintf("%dms", *s.ResponseTimeMs)
		}
		required := "no"
		if s.Required {
			required = "yes"
		}
		table.AddRow(s.Service, required, formatHealth(s.Status), rt, truncate(s.Message, 50))
	}
	table.Render()

	o := report.Overall
	fmt.Printf("\n%d healthy, %d degraded, %d unhealthy of %d\n", o.Healthy, o.Degraded, o.Unhealthy, o.Total)
}
