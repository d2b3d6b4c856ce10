package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pratik-mahalle/linkboost/pkg/client"
	"github.com/pratik-mahalle/linkboost/pkg/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthVerifyCmd())
	cmd.AddCommand(newAuthRefreshCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())
	cmd.AddCommand(newAuthUpdateCmd())
	cmd.AddCommand(newAuthLinkedInCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to LinkBoost",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
			}

			if err := sessionStore.Login(context.Background(), email, password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Printf("Logged in as %s\n", sessionStore.User().Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a LinkBoost account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Email == "" {
				req.Email = promptInput("Email: ")
			}
			if req.FirstName == "" {
				req.FirstName = promptInput("First name: ")
			}
			if req.LastName == "" {
				req.LastName = promptInput("Last name: ")
			}
			if req.Password == "" {
				req.Password = promptPassword("Password: ")
				confirm := promptPassword("Confirm password: ")
				if req.Password != confirm {
					return fmt.Errorf("passwords do not match")
				}
			}

			if err := sessionStore.Register(context.Background(), req); err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Printf("Account created. Logged in as %s\n", sessionStore.User().Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")

	return cmd
}

func newAuthVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored session with the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(context.Background()); err != nil {
				return err
			}
			fmt.Println("Session is valid")
			return nil
		},
	}
}

func newAuthRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a new one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := restoreSession(ctx); err != nil {
				return err
			}
			if err := sessionStore.Refresh(ctx); err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}
			fmt.Println("Token refreshed")
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sessionStore.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show current user info",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(context.Background()); err != nil {
				return err
			}
			user := sessionStore.User()

			if getOutputFormat() != "table" {
				return printOutput(user)
			}

			fmt.Printf("Email:    %s\n", user.Email)
			if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
				fmt.Printf("Name:     %s\n", name)
			}
			fmt.Printf("Plan:     %s\n", user.SubscriptionLevel)
			fmt.Printf("LinkedIn: %s\n", formatConnected(user.LinkedInConnected))
			fmt.Printf("ID:       %s\n", user.ID)
			return nil
		},
	}
}

func newAuthUpdateCmd() *cobra.Command {
	var email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the locally cached profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(context.Background()); err != nil {
				return err
			}

			var upd session.UserUpdate
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}
			if cmd.Flags().Changed("first-name") {
				upd.FirstName = &firstName
			}
			if cmd.Flags().Changed("last-name") {
				upd.LastName = &lastName
			}

			if err := sessionStore.UpdateUser(upd); err != nil {
				return err
			}
			fmt.Println("Profile updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")

	return cmd
}

func newAuthLinkedInCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkedin",
		Short: "Connect or disconnect a LinkedIn account",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "connect",
		Short: "Print the LinkedIn authorization URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := restoreSession(ctx); err != nil {
				return err
			}
			_, err := sessionStore.ConnectLinkedIn(ctx)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disconnect",
		Short: "Unlink the LinkedIn account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := restoreSession(ctx); err != nil {
				return err
			}
			if err := sessionStore.DisconnectLinkedIn(ctx); err != nil {
				return err
			}
			fmt.Println("LinkedIn disconnected")
			return nil
		},
	})

	return cmd
}

// restoreSession loads the saved session and verifies it with the server
func restoreSession(ctx context.Context) error {
	if err := sessionStore.Init(ctx); err != nil {
		return err
	}
	if !sessionStore.IsAuthenticated() {
		return fmt.Errorf("not authenticated. Run 'linkboost auth login' first")
	}
	return nil
}

func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}
