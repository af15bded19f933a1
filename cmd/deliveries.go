package cmd

import (
	"context"
	"fmt"

	"campusbite/app"
	"campusbite/models"

	"github.com/spf13/cobra"
)

func deliveriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deliveries",
		Short: "Work through delivery assignments",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your delivery assignments",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			active, err := a.Sessions.EnsureActive(ctx, "")
			if err != nil {
				return err
			}
			assignments, err := a.Workflow.GetAssignments(ctx, active.UserID)
			if err != nil {
				return err
			}
			for _, as := range assignments {
				note := ""
				if !as.Current {
					note = "  (reassigned)"
				}
				fmt.Printf("%s  order #%s  %-10s%s\n", as.Delivery.ID, models.ShortID(as.Order.ID), as.Order.Status, note)
			}
			return nil
		}),
	}

	accept := &cobra.Command{
		Use:   "accept DELIVERY_ID ORDER_ID",
		Short: "Pick up an assigned order",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			order, err := a.Workflow.AcceptDelivery(ctx, args[0], args[1])
			if err != nil && order == nil {
				return err
			}
			fmt.Printf("✅ Order #%s picked up\n", models.ShortID(args[1]))
			return err
		}),
	}

	complete := &cobra.Command{
		Use:   "complete DELIVERY_ID ORDER_ID",
		Short: "Mark a picked-up order as delivered",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			order, err := a.Workflow.CompleteDelivery(ctx, args[0], args[1])
			if err != nil && order == nil {
				return err
			}
			fmt.Printf("✅ Order #%s delivered\n", models.ShortID(args[1]))
			return err
		}),
	}

	cmd.AddCommand(list, accept, complete)
	return cmd
}
