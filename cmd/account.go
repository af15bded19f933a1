package cmd

import (
	"context"
	"fmt"
	"os"

	"campusbite/app"
	"campusbite/backend"
	"campusbite/models"
	"campusbite/profile"
	"campusbite/session"

	"github.com/spf13/cobra"
)

func signupCmd() *cobra.Command {
	var in profile.RegisterInput
	var role string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and its profile",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			in.Role = models.UserRole(role)
			if !in.Role.Valid() {
				return fmt.Errorf("invalid role %q, must be student, hotel_manager or delivery", role)
			}
			user, err := a.Profiles.Register(ctx, in)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Account created for %s (%s)\n", user.Username, user.Role)
			return printJSON(user)
		}),
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&in.Username, "username", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(models.RoleStudent), "student, hotel_manager or delivery")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session on this device",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			active, err := a.Sessions.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Signed in as %s (%s)\n", active.Profile.Username, active.Profile.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the session of this device",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			if err := a.Sessions.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		}),
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in profile",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			active, err := a.Sessions.EnsureActive(ctx, "")
			if err != nil {
				return err
			}
			return printJSON(active.Profile)
		}),
	}
}

func settingsCmd() *cobra.Command {
	var username, language, avatar string
	var public bool
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change username, language, visibility or avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd profile.SettingsUpdate
			if cmd.Flags().Changed("username") {
				upd.Username = &username
			}
			if cmd.Flags().Changed("language") {
				upd.Language = &language
			}
			if cmd.Flags().Changed("public") {
				upd.IsPublic = &public
			}
			if avatar != "" {
				data, err := os.ReadFile(avatar)
				if err != nil {
					return err
				}
				upd.Avatar = &backend.FileInput{Name: avatar, Data: data}
			}
			return withApp(func(ctx context.Context, a *app.App, args []string) error {
				active, err := a.Sessions.EnsureActive(ctx, "")
				if err != nil {
					return err
				}
				user, err := a.Profiles.UpdateSettings(ctx, active.UserID, upd)
				if err != nil {
					return err
				}
				if upd.Language != nil || upd.IsPublic != nil {
					syncPrefs(a.KV, upd)
				}
				return printJSON(user)
			})(cmd, args)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&language, "language", "", "en or am")
	cmd.Flags().BoolVar(&public, "public", true, "show the profile to others")
	cmd.Flags().StringVar(&avatar, "avatar", "", "path of a jpeg, png or gif avatar")
	return cmd
}

// syncPrefs mirrors profile settings into the device preferences.
func syncPrefs(kv session.KV, upd profile.SettingsUpdate) {
	p, err := session.LoadPreferences(kv)
	if err != nil {
		return
	}
	if upd.Language != nil {
		p.Language = *upd.Language
	}
	if upd.IsPublic != nil {
		p.IsPublicProfile = *upd.IsPublic
	}
	_ = session.SavePreferences(kv, p)
}

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show device preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := session.LoadPreferences(session.NewFileKV(cfg.Local.Path))
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}

	var theme, language string
	var orderUpdates, promotions, reminders bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Change device preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			kv := session.NewFileKV(cfg.Local.Path)
			p, err := session.LoadPreferences(kv)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("theme") {
				p.Theme = session.Theme(theme)
			}
			if flags.Changed("language") {
				p.Language = language
			}
			if flags.Changed("order-updates") {
				p.Notifications.OrderUpdates = orderUpdates
			}
			if flags.Changed("promotions") {
				p.Notifications.Promotions = promotions
			}
			if flags.Changed("reminders") {
				p.Notifications.Reminders = reminders
			}
			if err := session.SavePreferences(kv, p); err != nil {
				return err
			}
			return printJSON(p)
		},
	}
	set.Flags().StringVar(&theme, "theme", "", "light or dark")
	set.Flags().StringVar(&language, "language", "", "en or am")
	set.Flags().BoolVar(&orderUpdates, "order-updates", true, "notify on order updates")
	set.Flags().BoolVar(&promotions, "promotions", true, "notify on promotions")
	set.Flags().BoolVar(&reminders, "reminders", true, "notify with reminders")
	cmd.AddCommand(set)
	return cmd
}
