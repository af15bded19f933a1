package cmd

import (
	"context"
	"fmt"

	"campusbite/app"

	"github.com/spf13/cobra"
)

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Read your notifications",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your notifications, newest first",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			active, err := a.Sessions.EnsureActive(ctx, "")
			if err != nil {
				return err
			}
			list, err := a.Workflow.Notifications(ctx, active.UserID)
			if err != nil {
				return err
			}
			for _, n := range list {
				mark := "•"
				if n.Read {
					mark = " "
				}
				fmt.Printf("%s %s  %s  %s\n", mark, n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Message)
			}
			return nil
		}),
	}

	read := &cobra.Command{
		Use:   "read NOTIFICATION_ID",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			return a.Workflow.MarkNotificationRead(ctx, args[0])
		}),
	}

	cmd.AddCommand(list, read)
	return cmd
}
