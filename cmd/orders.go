package cmd

import (
	"context"
	"fmt"

	"campusbite/app"
	"campusbite/models"
	"campusbite/workflow"

	"github.com/spf13/cobra"
)

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place and manage orders",
	}

	var items []string
	var payment, phone string
	var total float64
	create := &cobra.Command{
		Use:   "create",
		Short: "Order food items from one restaurant",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			active, err := a.Sessions.EnsureActive(ctx, "")
			if err != nil {
				return err
			}
			in := workflow.OrderInput{
				CustomerID:    active.UserID,
				Total:         total,
				PaymentMethod: models.PaymentMethod(payment),
				Phone:         phone,
			}
			for _, id := range items {
				in.Items = append(in.Items, workflow.OrderItem{FoodID: id})
			}
			order, err := a.Workflow.CreateOrder(ctx, in)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Order #%s placed, total %.2f ETB\n", models.ShortID(order.ID), order.Total)
			return printJSON(order)
		}),
	}
	create.Flags().StringSliceVar(&items, "item", nil, "food item id, repeatable")
	create.Flags().StringVar(&payment, "payment", string(models.PaymentTelebirr), "telebirr or mpesa")
	create.Flags().StringVar(&phone, "phone", "", "phone number for payment")
	create.Flags().Float64Var(&total, "total", 0, "expected total, checked against item prices")
	_ = create.MarkFlagRequired("item")
	_ = create.MarkFlagRequired("phone")

	mine := &cobra.Command{
		Use:   "mine",
		Short: "List your orders",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			active, err := a.Sessions.EnsureActive(ctx, "")
			if err != nil {
				return err
			}
			orders, err := a.Workflow.CustomerOrders(ctx, active.UserID)
			if err != nil {
				return err
			}
			printOrders(orders)
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your restaurant's orders",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			orders, err := a.Workflow.ManagerOrders(ctx)
			if err != nil {
				return err
			}
			printOrders(orders)
			return nil
		}),
	}

	var to, name string
	assign := &cobra.Command{
		Use:   "assign ORDER_ID",
		Short: "Hand a pending order to a delivery person",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			delivery, err := a.Workflow.AssignDelivery(ctx, args[0], to, name)
			if err != nil && delivery == nil {
				return err
			}
			fmt.Printf("✅ Order #%s assigned to %s\n", models.ShortID(args[0]), name)
			return err
		}),
	}
	assign.Flags().StringVar(&to, "to", "", "delivery person's profile id")
	assign.Flags().StringVar(&name, "name", "", "delivery person's name")
	_ = assign.MarkFlagRequired("to")
	_ = assign.MarkFlagRequired("name")

	couriers := &cobra.Command{
		Use:   "couriers",
		Short: "List delivery personnel",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			people, err := a.Profiles.DeliveryPersonnel(ctx)
			if err != nil {
				return err
			}
			for _, p := range people {
				fmt.Printf("%s  %s\n", p.ID, p.Username)
			}
			return nil
		}),
	}

	cmd.AddCommand(create, mine, list, assign, couriers)
	return cmd
}

func printOrders(orders []*models.Order) {
	for _, o := range orders {
		fmt.Printf("#%s  %-10s %8.2f ETB  %d items  %s\n",
			models.ShortID(o.ID), o.Status, o.Total, len(o.FoodItemIDs), o.CreatedAt.Format("2006-01-02 15:04"))
	}
}
