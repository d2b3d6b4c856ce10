package client_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pratik-mahalle/linkboost/pkg/client"
)

// Example demonstrates basic usage of the LinkBoost client
func Example() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.linkboost.io",
	})

	ctx := context.Background()

	auth, err := c.Login(ctx, "user@example.com", "password")
	if err != nil {
		log.Fatal(err)
	}
	c.SetToken(auth.Token)

	fmt.Printf("Logged in as: %s\n", auth.User.Email)

	dashboard, meta, err := c.Metrics().Dashboard(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d records, %d top posts\n", meta.TotalRecords, len(dashboard.TopPosts))
}

// ExampleMetricsService_RecordProfile demonstrates recording a profile snapshot
func ExampleMetricsService_RecordProfile() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.linkboost.io",
	})
	c.SetToken("your-jwt-token")

	err := c.Metrics().RecordProfile(context.Background(), client.ProfileMetricInput{
		ProfileViews: 120,
		Connections:  512,
		ProfileScore: 78.5,
	})
	if err != nil {
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.IsForbidden() {
			fmt.Println("Upgrade to a basic plan to record metrics")
			return
		}
		log.Fatal(err)
	}
}

// ExampleMetricsService_TimeRange demonstrates reading raw records for a week
func ExampleMetricsService_TimeRange() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.linkboost.io",
	})
	c.SetToken("your-jwt-token")

	end := time.Now()
	data, meta, err := c.Metrics().TimeRange(context.Background(), end.AddDate(0, 0, -7), end)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d profile snapshots, %d engagement records (%d total)\n",
		len(data.Profile), len(data.Engagement), meta.TotalRecords)
}

// ExampleClient_Health demonstrates reading the aggregate health report
func ExampleClient_Health() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.linkboost.io",
		Timeout: 5 * time.Second,
	})

	report, err := c.Health(context.Background())
	if report != nil {
		for _, s := range report.Services {
			fmt.Printf("%s: %s (%s)\n", s.Service, s.Status, s.Message)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}
