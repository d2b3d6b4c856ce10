package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pratik-mahalle/linkboost/pkg/client"
	"github.com/pratik-mahalle/linkboost/pkg/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	apiClient    *client.Client
	sessionStore *session.Store
)

var rootCmd = &cobra.Command{
	Use:   "linkboost",
	Short: "LinkBoost CLI - LinkedIn profile and engagement analytics",
	Long: `LinkBoost CLI provides command-line access to the LinkBoost platform
for recording LinkedIn profile and post metrics, reading dashboards and
analytics, and checking the health of a deployment.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		switch {
		case cmd.Name() == "probe", cmd.Name() == "help", !cmd.Runnable():
			return nil
		case cmd.Parent() != nil && cmd.Parent().Name() == "auth":
			return initClient()
		case cmd.Name() == "report":
			return initClient()
		}
		return initAuthenticatedClient()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.linkboost/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newMetricsCmd())
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".linkboost"), nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		_ = os.MkdirAll(dir, 0700)
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LINKBOOST")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:3000")
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL: url,
	})
	sessionStore = session.New(apiClient, newViperStorage(), session.WithRedirector(printRedirect))
	return nil
}

func initAuthenticatedClient() error {
	if err := initClient(); err != nil {
		return err
	}

	token, _, err := newViperStorage().Load()
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("not authenticated. Run 'linkboost auth login' first")
	}

	apiClient.SetToken(token)
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}

func printRedirect(authURL string) error {
	fmt.Println("Open this URL in your browser to connect LinkedIn:")
	fmt.Println()
	fmt.Println("  " + authURL)
	return nil
}
