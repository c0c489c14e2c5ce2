// Package profile manages profiles and their password gate
package profile

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"fjacquet/rabbit/cmd/root"
	"fjacquet/rabbit/internal/store"

	"github.com/spf13/cobra"
)

var (
	password    string
	newPassword string
)

// Cmd represents the profile command
var Cmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
	Long:  `List, create and delete profiles, and protect a profile with a password.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return List(cmd.Context(), root.App().GetStore(), cmd.OutOrStdout())
	},
}

var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an empty profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Create(cmd.Context(), root.App().GetStore(), args[0], cmd.OutOrStdout())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a profile with its categories and rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Delete(cmd.Context(), root.App().GetStore(), args[0], password, cmd.OutOrStdout())
	},
}

var privacyCmd = &cobra.Command{
	Use:   "privacy NAME on|off",
	Short: "Enable or disable the password gate of a profile",
	Long: `Enabling privacy requires --new-password. Disabling it requires the current
--password and forgets it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		private, err := strconv.ParseBool(onOff(args[1]))
		if err != nil {
			return fmt.Errorf("expected on or off, got %q", args[1])
		}
		return SetPrivacy(cmd.Context(), root.App().GetStore(), args[0], private, password, newPassword, cmd.OutOrStdout())
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd NAME",
	Short: "Change the password of a private profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.App().GetStore().ChangePassword(cmd.Context(), args[0], password, newPassword); err != nil {
			return err
		}
		root.Printf(cmd.OutOrStdout(), "Password changed for profile %s\n", args[0])
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().StringVar(&password, "password", "", "Current password of a private profile")
	privacyCmd.Flags().StringVar(&newPassword, "new-password", "", "Password to set")
	passwdCmd.Flags().StringVar(&newPassword, "new-password", "", "Password to set")
	Cmd.AddCommand(listCmd, createCmd, deleteCmd, privacyCmd, passwdCmd)
}

func onOff(s string) string {
	switch s {
	case "on":
		return "true"
	case "off":
		return "false"
	}
	return s
}

// List prints the profile names with their privacy.
func List(ctx context.Context, s *store.SQLStore, out io.Writer) error {
	names, err := s.ListProfiles(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		root.Printf(out, "No profiles\n")
		return nil
	}
	for _, name := range names {
		settings, err := s.ProfileSettings(ctx, name)
		if err != nil {
			return err
		}
		marker := ""
		if settings.IsPrivate {
			marker = " (private)"
		}
		root.Printf(out, "%s%s\n", name, marker)
	}
	return nil
}

// Create adds a profile.
func Create(ctx context.Context, s *store.SQLStore, name string, out io.Writer) error {
	created, err := s.CreateProfile(ctx, name)
	if err != nil {
		return err
	}
	root.Printf(out, "Profile %s created\n", created)
	return nil
}

// Delete removes a profile after checking its password.
func Delete(ctx context.Context, s *store.SQLStore, name, password string, out io.Writer) error {
	if err := root.Authorize(ctx, s, name, password); err != nil {
		return err
	}
	if err := s.DeleteProfile(ctx, name); err != nil {
		return err
	}
	root.Printf(out, "Profile %s deleted\n", name)
	return nil
}

// SetPrivacy toggles the password gate. Turning it off needs the current password.
func SetPrivacy(ctx context.Context, s *store.SQLStore, name string, private bool, password, newPassword string, out io.Writer) error {
	if err := root.Authorize(ctx, s, name, password); err != nil {
		return err
	}
	if _, err := s.SetPrivacy(ctx, name, private, newPassword); err != nil {
		return err
	}
	state := "public"
	if private {
		state = "private"
	}
	root.Printf(out, "Profile %s is now %s\n", name, state)
	return nil
}
