package cli

import (
	"bufio"
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/cli/config"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSecret() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "Manage the CRM client secret in the OS keychain",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store a client secret read from stdin",
				ArgsUsage: "<account>",
				Action: func(ctx context.Context, c *cli.Command) error {
					account := c.Args().First()
					if account == "" {
						return goerr.New("account is required")
					}

					secret, err := bufio.NewReader(c.Root().Reader).ReadString('\n')
					if err != nil && secret == "" {
						return goerr.Wrap(err, "failed to read secret from stdin")
					}

					if err := config.StoreSecret(account, strings.TrimSpace(secret)); err != nil {
						return err
					}
					logging.Default().Info("Secret stored", "service", config.KeyringService, "account", account)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a stored client secret",
				ArgsUsage: "<account>",
				Action: func(ctx context.Context, c *cli.Command) error {
					account := c.Args().First()
					if account == "" {
						return goerr.New("account is required")
					}

					if err := config.DeleteSecret(account); err != nil {
						return err
					}
					logging.Default().Info("Secret deleted", "service", config.KeyringService, "account", account)
					return nil
				},
			},
		},
	}
}
