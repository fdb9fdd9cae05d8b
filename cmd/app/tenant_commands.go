package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/tenantsec/tenantgate/cmd/app/commands"
	"github.com/tenantsec/tenantgate/internal/app"
	"github.com/tenantsec/tenantgate/internal/config"
)

func getTenantCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "register-tenant",
			Usage: "Register a tenant secret and scope declaration",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "tenant-id",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Tenant identifier",
				},
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Tenant secret (omit to generate one)",
				},
				&cli.StringSliceFlag{
					Name:    "read-scope",
					Aliases: []string{"r"},
					Usage:   "Tenant partition this tenant may read (repeatable)",
				},
				&cli.StringFlag{
					Name:    "write-scope",
					Aliases: []string{"w"},
					Usage:   "Tenant partition this tenant writes to (defaults to its own)",
				},
				&cli.StringFlag{
					Name:    "policy",
					Aliases: []string{"p"},
					Value:   "",
					Usage:   "Scope policy: 'explicit' (default) or 'deny_all'",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				lifecycleManager, err := container.SecretLifecycleManager()
				if err != nil {
					return err
				}

				scopeRepo, err := container.ScopeDeclarationRepository()
				if err != nil {
					return err
				}

				auditEventUseCase, err := container.AuditEventUseCase()
				if err != nil {
					return err
				}

				return commands.RunRegisterTenant(
					ctx,
					lifecycleManager,
					scopeRepo,
					auditEventUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("tenant-id"),
					cmd.String("secret"),
					cmd.StringSlice("read-scope"),
					cmd.String("write-scope"),
					cmd.String("policy"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-secret",
			Usage: "Rotate a tenant's secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "tenant-id",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Tenant identifier",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				lifecycleManager, err := container.SecretLifecycleManager()
				if err != nil {
					return err
				}

				auditEventUseCase, err := container.AuditEventUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateSecret(
					ctx,
					lifecycleManager,
					auditEventUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("tenant-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "show-secret",
			Usage: "Decrypt and print a tenant's current secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "tenant-id",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Tenant identifier",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				lifecycleManager, err := container.SecretLifecycleManager()
				if err != nil {
					return err
				}

				return commands.RunShowSecret(
					ctx,
					lifecycleManager,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("tenant-id"),
					cmd.String("format"),
				)
			},
		},
	}
}
