package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/recipeapp/recipe-server/internal/service"
)

type seedRecipe struct {
	title       string
	description string
	minutes     int
	price       string
	tags        []string
	ingredients []string
}

var seedRecipes = []seedRecipe{
	{
		title:       "Thai Green Curry",
		description: "Simmer the paste in coconut milk, then add vegetables.",
		minutes:     35,
		price:       "8.50",
		tags:        []string{"Thai", "Dinner", "Spicy"},
		ingredients: []string{"Coconut Milk", "Green Curry Paste", "Aubergine", "Basil"},
	},
	{
		title:       "Pancakes",
		description: "Whisk, rest for ten minutes, fry in butter.",
		minutes:     20,
		price:       "2.25",
		tags:        []string{"Breakfast", "Vegetarian"},
		ingredients: []string{"Flour", "Milk", "Eggs", "Butter"},
	},
	{
		title:       "Lentil Soup",
		description: "Soften onions, add lentils and stock, blend half.",
		minutes:     45,
		price:       "3.75",
		tags:        []string{"Vegan", "Dinner"},
		ingredients: []string{"Red Lentils", "Onion", "Vegetable Stock", "Cumin"},
	},
}

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create a demo user with sample recipes, tags and ingredients",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Value: "demo@example.com", Usage: "Demo user email"},
			&cli.StringFlag{Name: "password", Value: "demopass", Usage: "Demo user password"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, func(svc *services) error {
				return seed(ctx, svc, cmd.String("email"), cmd.String("password"), stdout(cmd))
			})
		},
	}
}

func seed(ctx context.Context, svc *services, email, password string, out io.Writer) error {
	user, err := svc.users.Register(ctx, service.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Demo Cook",
	})
	if err != nil {
		return fmt.Errorf("create demo user: %w", err)
	}
	fmt.Fprintf(out, "Created user %s\n", user.Email)

	for _, r := range seedRecipes {
		minutes := r.minutes
		recipe, err := svc.recipes.Create(ctx, user.ID, service.RecipeCreateRequest{
			Title:       r.title,
			Description: r.description,
			TimeMinutes: &minutes,
			Price:       r.price,
			Tags:        attributeInputs(r.tags),
			Ingredients: attributeInputs(r.ingredients),
		})
		if err != nil {
			return fmt.Errorf("create recipe %q: %w", r.title, err)
		}
		fmt.Fprintf(out, "Created recipe %d: %s\n", recipe.ID, recipe.Title)
	}

	return nil
}

func attributeInputs(names []string) []service.AttributeInput {
	out := make([]service.AttributeInput, len(names))
	for i, n := range names {
		out[i] = service.AttributeInput{Name: n}
	}
	return out
}
