package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"campusbite/app"
	"campusbite/catalog"

	"github.com/spf13/cobra"
)

func foodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foods",
		Short: "Browse and manage food posts",
	}

	var page, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List food posts, newest first",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			items, err := a.Catalog.ListFoodPosts(ctx, page, limit)
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Printf("%s  %-24s %8.2f ETB  %s\n", it.ID, it.Name, it.Price, it.Category)
			}
			return nil
		}),
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&limit, "limit", 10, "items per page")

	show := &cobra.Command{
		Use:   "show FOOD_ID",
		Short: "Show one food item",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			item, err := a.Catalog.GetFood(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(item)
		}),
	}

	var in catalog.FoodInput
	var image string
	var unavailable bool
	post := &cobra.Command{
		Use:   "post",
		Short: "Post a food item to your restaurant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if image != "" {
				data, err := os.ReadFile(image)
				if err != nil {
					return err
				}
				in.Image = data
				in.ImageName = filepath.Base(image)
			}
			if cmd.Flags().Changed("unavailable") {
				available := !unavailable
				in.Available = &available
			}
			return withApp(func(ctx context.Context, a *app.App, args []string) error {
				item, err := a.Catalog.PostFood(ctx, in)
				if err != nil {
					return err
				}
				fmt.Printf("✅ Posted %s\n", item.Name)
				return printJSON(item)
			})(cmd, args)
		},
	}
	post.Flags().StringVar(&in.Name, "name", "", "food name")
	post.Flags().StringVar(&in.Description, "desc", "", "description")
	post.Flags().Float64Var(&in.Price, "price", 0, "price in birr")
	post.Flags().StringVar(&in.Category, "category", "", "category, e.g. breakfast")
	post.Flags().StringVar(&image, "image", "", "path of a jpeg, png or gif image")
	post.Flags().BoolVar(&unavailable, "unavailable", false, "post as not available yet")

	mine := &cobra.Command{
		Use:   "mine",
		Short: "List your restaurant's food items",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			active, err := a.Sessions.EnsureActive(ctx, "")
			if err != nil {
				return err
			}
			items, err := a.Catalog.ManagerFoodPosts(ctx, active.AccountID)
			if err != nil {
				return err
			}
			return printJSON(items)
		}),
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Repair your restaurant's food items",
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			n, err := a.Catalog.VerifyFoodItems(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Verified food items, %d updated\n", n)
			return nil
		}),
	}

	rate := &cobra.Command{
		Use:   "rate FOOD_ID RATING",
		Short: "Rate a food item from 0 to 5",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			rating, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid rating %q", args[1])
			}
			item, err := a.Catalog.UpdateFoodRating(ctx, args[0], rating)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now rated %.1f\n", item.Name, item.Rating)
			return nil
		}),
	}

	cmd.AddCommand(list, show, post, mine, verify, rate)
	return cmd
}
