package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pratik-mahalle/linkboost/pkg/client"
	"github.com/spf13/cobra"
)

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "metrics",
		Aliases: []string{"m"},
		Short:   "Record and read LinkedIn metrics",
	}

	cmd.AddCommand(newMetricsRecordProfileCmd())
	cmd.AddCommand(newMetricsRecordEngagementCmd())
	cmd.AddCommand(newMetricsDashboardCmd())
	cmd.AddCommand(newMetricsAnalyticsCmd())
	cmd.AddCommand(newMetricsTimeRangeCmd())

	return cmd
}

func newMetricsRecordProfileCmd() *cobra.Command {
	var (
		in client.ProfileMetricInput
		at string
	)

	cmd := &cobra.Command{
		Use:   "record-profile",
		Short: "Record a profile snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := parseTimestamp(at)
			if err != nil {
				return err
			}
			in.Timestamp = ts

			if err := apiClient.Metrics().RecordProfile(context.Background(), in); err != nil {
				return fmt.Errorf("failed to record profile metrics: %w", err)
			}
			fmt.Println("Profile metrics recorded")
			return nil
		},
	}

	cmd.Flags().Int64Var(&in.ProfileViews, "views", 0, "profile views")
	cmd.Flags().Int64Var(&in.SearchAppearances, "search-appearances", 0, "search appearances")
	cmd.Flags().Int64Var(&in.Connections, "connections", 0, "connection count")
	cmd.Flags().Int64Var(&in.Followers, "followers", 0, "follower count")
	cmd.Flags().Int64Var(&in.PostImpressions, "post-impressions", 0, "post impressions")
	cmd.Flags().Float64Var(&in.ProfileScore, "score", 0, "profile score (0-100)")
	cmd.Flags().StringVar(&at, "at", "", "snapshot time, RFC3339 or YYYY-MM-DD (default now)")

	return cmd
}

func newMetricsRecordEngagementCmd() *cobra.Command {
	var (
		in client.EngagementMetricInput
		at string
	)

	cmd := &cobra.Command{
		Use:   "record-engagement",
		Short: "Record engagement for a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := parseTimestamp(at)
			if err != nil {
				return err
			}
			in.Timestamp = ts

			if err := apiClient.Metrics().RecordEngagement(context.Background(), in); err != nil {
				return fmt.Errorf("failed to record engagement metrics: %w", err)
			}
			fmt.Println("Engagement metrics recorded")
			return nil
		},
	}

	cmd.Flags().StringVar(&in.PostID, "post", "", "post ID")
	cmd.Flags().Int64Var(&in.Likes, "likes", 0, "likes")
	cmd.Flags().Int64Var(&in.Comments, "comments", 0, "comments")
	cmd.Flags().Int64Var(&in.Shares, "shares", 0, "shares")
	cmd.Flags().Int64Var(&in.Impressions, "impressions", 0, "impressions")
	cmd.Flags().Int64Var(&in.Clicks, "clicks", 0, "clicks")
	cmd.Flags().StringVar(&at, "at", "", "engagement time, RFC3339 or YYYY-MM-DD (default now)")

	return cmd
}

func newMetricsDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the 30 day overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, meta, err := apiClient.Metrics().Dashboard(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get dashboard: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(map[string]any{"data": d, "metadata": meta})
			}

			fmt.Printf("LinkBoost Dashboard (%s)\n", formatWindow(meta.TimeRange))
			fmt.Println()
			if p := d.Profile; p != nil {
				fmt.Printf("  Profile views:      %d\n", p.ProfileViews)
				fmt.Printf("  Search appearances: %d\n", p.SearchAppearances)
				fmt.Printf("  Connections:        %d (%+d)\n", p.Connections, d.Growth.Connections)
				fmt.Printf("  Followers:          %d (%+d)\n", p.Followers, d.Growth.Followers)
				fmt.Printf("  Profile score:      %.1f (%+.1f)\n", p.ProfileScore, d.Growth.ProfileScore)
			} else {
				fmt.Println("  No profile snapshots recorded")
			}
			fmt.Println()
			printEngagement(d.Engagement)

			if len(d.TopPosts) > 0 {
				fmt.Println()
				table := NewTable("POST", "INTERACTIONS", "IMPRESSIONS")
				for _, p := range d.TopPosts {
					table.AddRow(truncate(p.PostID, 40), formatInt(p.Interactions), formatInt(p.Impressions))
				}
				table.Render()
			}
			return nil
		},
	}
}

func newMetricsAnalyticsCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show daily analytics for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, meta, err := apiClient.Metrics().Analytics(context.Background(), period)
			if err != nil {
				return fmt.Errorf("failed to get analytics: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(map[string]any{"data": a, "metadata": meta})
			}

			fmt.Printf("Analytics for %s (%s), %d records\n\n", a.Period, formatWindow(meta.TimeRange), meta.TotalRecords)
			table := NewTable("DATE", "VIEWS", "FOLLOWERS", "LIKES", "COMMENTS", "SHARES", "IMPRESSIONS", "RATE")
			for _, b := range a.Daily {
				table.AddRow(b.Date,
					formatInt(b.ProfileViews),
					formatInt(b.Followers),
					formatInt(b.Likes),
					formatInt(b.Comments),
					formatInt(b.Shares),
					formatInt(b.Impressions),
					formatPercent(b.EngagementRate),
				)
			}
			table.Render()
			fmt.Println()
			printEngagement(a.Engagement)
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "period: 7d, 30d or 90d (default 30d)")

	return cmd
}

func newMetricsTimeRangeCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "time-range",
		Short: "List raw metrics between two dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" || end == "" {
				return fmt.Errorf("--start and --end are required")
			}
			from, err := parseDate(start)
			if err != nil {
				return err
			}
			to, err := parseDate(end)
			if err != nil {
				return err
			}

			data, meta, err := apiClient.Metrics().TimeRange(context.Background(), from, to)
			if err != nil {
				return fmt.Errorf("failed to get metrics: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(map[string]any{"data": data, "metadata": meta})
			}

			fmt.Printf("Profile snapshots (%d)\n", len(data.Profile))
			pt := NewTable("TIME", "VIEWS", "CONNECTIONS", "FOLLOWERS", "SCORE")
			for _, p := range data.Profile {
				pt.AddRow(p.Timestamp.Format(time.RFC3339),
					formatInt(p.ProfileViews),
					formatInt(p.Connections),
					formatInt(p.Followers),
					fmt.Sprintf("%.1f", p.ProfileScore),
				)
			}
			pt.Render()

			fmt.Printf("\nEngagement (%d)\n", len(data.Engagement))
			et := NewTable("TIME", "POST", "LIKES", "COMMENTS", "SHARES", "IMPRESSIONS", "CLICKS")
			for _, e := range data.Engagement {
				et.AddRow(e.Timestamp.Format(time.RFC3339),
					truncate(e.PostID, 24),
					formatInt(e.Likes),
					formatInt(e.Comments),
					formatInt(e.Shares),
					formatInt(e.Impressions),
					formatInt(e.Clicks),
				)
			}
			et.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start date, RFC3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "end date, RFC3339 or YYYY-MM-DD")

	return cmd
}

func printEngagement(e client.EngagementTotals) {
	fmt.Printf("  Posts:           %d\n", e.Posts)
	fmt.Printf("  Likes:           %d\n", e.Likes)
	fmt.Printf("  Comments:        %d\n", e.Comments)
	fmt.Printf("  Shares:          %d\n", e.Shares)
	fmt.Printf("  Impressions:     %d\n", e.Impressions)
	fmt.Printf("  Engagement rate: %s\n", formatPercent(e.EngagementRate))
}

func formatWindow(tr client.TimeRange) string {
	return tr.Start.Format("2006-01-02") + " to " + tr.End.Format("2006-01-02")
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// parseTimestamp returns nil for an empty value so the server stamps the record
func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
