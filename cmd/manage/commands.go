package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/recipeapp/recipe-server/internal/auth"
	"github.com/recipeapp/recipe-server/internal/config"
	"github.com/recipeapp/recipe-server/internal/dbwait"
	"github.com/recipeapp/recipe-server/internal/logger"
	"github.com/recipeapp/recipe-server/internal/media/images"
	"github.com/recipeapp/recipe-server/internal/service"
	"github.com/recipeapp/recipe-server/internal/store/sqlite"
)

const (
	name          = "manage"
	dataPathFlag  = "data-path"
	mediaPathFlag = "media-path"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "Recipe server administration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  dataPathFlag,
				Usage: "Directory for the database and auth key (overrides DATA_PATH)",
			},
			&cli.StringFlag{
				Name:  mediaPathFlag,
				Usage: "Directory for uploaded media (overrides MEDIA_PATH)",
			},
		},
		Commands: []*cli.Command{
			waitForDBCmd(),
			createSuperuserCmd(),
			seedCmd(),
			deleteUserCmd(),
			pruneTokensCmd(),
		},
	}
}

func waitForDBCmd() *cli.Command {
	return &cli.Command{
		Name:  "wait-for-db",
		Usage: "Block until the database answers",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:   "interval",
				Value:  dbwait.DefaultInterval,
				Hidden: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := sqlite.Connect(cfg.Storage.DatabasePath())
			if err != nil {
				return err
			}
			defer db.Close()

			_, err = dbwait.Wait(ctx, dbwait.PingFunc(db.PingContext), cmd.Duration("interval"), stdout(cmd))
			return err
		},
	}
}

func createSuperuserCmd() *cli.Command {
	return &cli.Command{
		Name:  "create-superuser",
		Usage: "Create a staff user with every permission",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, Usage: "Login email"},
			&cli.StringFlag{Name: "password", Required: true, Usage: "Password, at least 5 characters"},
			&cli.StringFlag{Name: "name", Usage: "Display name"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, func(svc *services) error {
				user, err := svc.users.CreateSuperuser(ctx, service.RegisterRequest{
					Email:    cmd.String("email"),
					Password: cmd.String("password"),
					Name:     cmd.String("name"),
				})
				if err != nil {
					return fmt.Errorf("create superuser: %w", err)
				}
				fmt.Fprintf(stdout(cmd), "Superuser %s created.\n", user.Email)
				return nil
			})
		},
	}
}

func deleteUserCmd() *cli.Command {
	return &cli.Command{
		Name:  "delete-user",
		Usage: "Delete a user with their recipes, tags, ingredients and tokens",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, Usage: "Login email"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, func(svc *services) error {
				if err := svc.users.DeleteUser(ctx, cmd.String("email")); err != nil {
					return fmt.Errorf("delete user: %w", err)
				}
				fmt.Fprintf(stdout(cmd), "User %s deleted.\n", cmd.String("email"))
				return nil
			})
		},
	}
}

func pruneTokensCmd() *cli.Command {
	return &cli.Command{
		Name:  "prune-tokens",
		Usage: "Remove expired bearer tokens",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withServices(ctx, cmd, func(svc *services) error {
				n, err := svc.auth.PruneExpiredTokens(ctx)
				if err != nil {
					return fmt.Errorf("prune tokens: %w", err)
				}
				fmt.Fprintf(stdout(cmd), "Removed %d expired tokens.\n", n)
				return nil
			})
		},
	}
}

// services is what the account commands need, opened against the configured paths.
type services struct {
	users   *service.UserService
	auth    *service.AuthService
	recipes *service.RecipeService
}

func withServices(ctx context.Context, cmd *cli.Command, fn func(*services) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Writer:      stderr(cmd),
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := sqlite.Open(cfg.Storage.DatabasePath(), log.Logger)
	if err != nil {
		return err
	}
	defer st.Close()

	storage, err := images.NewStorageWithSubdir(cfg.Storage.MediaPath, "uploads/recipe")
	if err != nil {
		return err
	}

	key, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return fn(&services{
		users:   service.NewUserService(st, log.Logger),
		auth:    service.NewAuthService(st, tokens, log.Logger),
		recipes: service.NewRecipeService(st, storage, log.Logger),
	})
}

// loadConfig reads env-only configuration and applies the global path flags.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	if p := cmd.String(dataPathFlag); p != "" {
		cfg.Storage.DataPath = p
	}
	if p := cmd.String(mediaPathFlag); p != "" {
		cfg.Storage.MediaPath = p
	}
	return cfg, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
