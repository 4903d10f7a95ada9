package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/infrastructure/config"
	"github.com/99minutos/identity-service/pkg/logger"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts directly against the store",
	}
	cmd.AddCommand(newUserCreateCommand())
	return cmd
}

type userCreateOptions struct {
	username  string
	email     string
	password  string
	firstName string
	lastName  string
	role      string
	status    string
}

// newUserCreateCommand bootstraps accounts, typically the first SUPER_ADMIN,
// without going through the HTTP API.
func newUserCreateCommand() *cobra.Command {
	var opts userCreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return createUser(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.username, "username", "", "account username (required)")
	f.StringVar(&opts.email, "email", "", "account email (required)")
	f.StringVar(&opts.password, "password", "", "initial password (required)")
	f.StringVar(&opts.firstName, "first-name", "", "first name")
	f.StringVar(&opts.lastName, "last-name", "", "last name")
	f.StringVar(&opts.role, "role", string(domain.RoleUser), "SUPER_ADMIN, ADMIN or USER")
	f.StringVar(&opts.status, "status", string(domain.StatusActive), "ACTIVE or INACTIVE")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func createUser(ctx context.Context, cmd *cobra.Command, opts userCreateOptions) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "identityd"})

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.close(context.Background()) }()

	user, err := a.users.Create(ctx, domain.NewUser{
		Username:  opts.username,
		Email:     opts.email,
		Password:  opts.password,
		FirstName: opts.firstName,
		LastName:  opts.lastName,
		Role:      domain.Role(opts.role),
		Status:    domain.Status(opts.status),
	})
	if err != nil {
		return fmt.Errorf("create user %q: %w", opts.username, err)
	}

	a.audit.Enqueue(domain.AuditEvent{
		Type:      domain.AuditUserCreated,
		Username:  user.Username,
		SubjectID: user.ID,
		Success:   true,
		At:        user.CreatedAt,
	})
	fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", user.ID, user.Username, user.Role)
	return nil
}
