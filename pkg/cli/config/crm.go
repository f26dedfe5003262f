package config

import (
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	domainConfig "github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/secmon-lab/talentbridge/pkg/service/crm"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"github.com/zalando/go-keyring"
)

// KeyringService groups this application's secrets in the OS keychain
const KeyringService = "talentbridge"

// CRM holds the OAuth application and API endpoint settings of the CRM
type CRM struct {
	clientID      string
	clientSecret  string
	secretKeyring string
	redirectURL   string
	authURL       string
	baseURL       string
	scopes        []string
	stateKey      string
	rateBurst     int
	maxRetries    int
}

func (x *CRM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "crm-client-id",
			Usage:       "CRM OAuth client ID; the CRM integration is disabled when empty",
			Category:    "CRM",
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "crm-client-secret",
			Usage:       "CRM OAuth client secret",
			Category:    "CRM",
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_CLIENT_SECRET"),
			Destination: &x.clientSecret,
		},
		&cli.StringFlag{
			Name:        "crm-client-secret-keyring",
			Usage:       "OS keychain account holding the CRM client secret, used when --crm-client-secret is empty",
			Category:    "CRM",
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_CLIENT_SECRET_KEYRING"),
			Destination: &x.secretKeyring,
		},
		&cli.StringFlag{
			Name:        "crm-redirect-url",
			Usage:       "OAuth redirect URL registered with the CRM",
			Category:    "CRM",
			Value:       "http://localhost:3000/auth/callback",
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_REDIRECT_URL"),
			Destination: &x.redirectURL,
		},
		&cli.StringFlag{
			Name:        "crm-auth-url",
			Usage:       "CRM authorization page URL",
			Category:    "CRM",
			Value:       crm.DefaultAuthURL,
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_AUTH_URL"),
			Destination: &x.authURL,
		},
		&cli.StringFlag{
			Name:        "crm-base-url",
			Usage:       "CRM API base URL",
			Category:    "CRM",
			Value:       crm.DefaultBaseURL,
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringSliceFlag{
			Name:        "crm-scope",
			Usage:       "OAuth scope to request (repeatable); defaults to contacts, companies and deals read/write",
			Category:    "CRM",
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_SCOPES"),
			Destination: &x.scopes,
		},
		&cli.StringFlag{
			Name:        "crm-state-key",
			Usage:       "Key signing the OAuth state parameter; random per process when empty",
			Category:    "CRM",
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_STATE_KEY"),
			Destination: &x.stateKey,
		},
		&cli.IntFlag{
			Name:        "crm-rate-burst",
			Usage:       "Burst size of the outbound CRM rate limiter",
			Category:    "CRM",
			Value:       5,
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_RATE_BURST"),
			Destination: &x.rateBurst,
		},
		&cli.IntFlag{
			Name:        "crm-max-retries",
			Usage:       "Retries for transient CRM failures",
			Category:    "CRM",
			Value:       crm.DefaultMaxRetries,
			Sources:     cli.EnvVars("TALENTBRIDGE_CRM_MAX_RETRIES"),
			Destination: &x.maxRetries,
		},
	}
}

func (x CRM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", x.clientID),
		slog.Int("client_secret.len", len(x.clientSecret)),
		slog.String("client_secret_keyring", x.secretKeyring),
		slog.String("redirect_url", x.redirectURL),
		slog.String("base_url", x.baseURL),
		slog.Any("scopes", x.scopes),
		slog.Bool("state_key", x.stateKey != ""),
	)
}

// IsConfigured reports whether the CRM integration should be enabled
func (x *CRM) IsConfigured() bool {
	return x.clientID != ""
}

func (x *CRM) secret() (string, error) {
	if x.clientSecret != "" {
		return x.clientSecret, nil
	}
	if x.secretKeyring == "" {
		return "", goerr.Wrap(ErrMissingFlag, "CRM client secret is not set",
			goerr.V(FlagKey, "crm-client-secret"))
	}

	secret, err := keyring.Get(KeyringService, x.secretKeyring)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read CRM client secret from keychain",
			goerr.V("account", x.secretKeyring))
	}
	if strings.TrimSpace(secret) == "" {
		return "", goerr.Wrap(ErrMissingFlag, "CRM client secret in keychain is empty",
			goerr.V("account", x.secretKeyring))
	}
	return secret, nil
}

// Configure builds the CRM API client and OAuth provider. The client's
// timeout and rate come from settings.
func (x *CRM) Configure(settings *domainConfig.Settings) (*crm.Client, *crm.OAuth, error) {
	if !x.IsConfigured() {
		return nil, nil, goerr.Wrap(ErrMissingFlag, "CRM client ID is not set", goerr.V(FlagKey, "crm-client-id"))
	}

	secret, err := x.secret()
	if err != nil {
		return nil, nil, err
	}

	client := crm.New(
		crm.WithBaseURL(x.baseURL),
		crm.WithTimeout(settings.Sync.Timeout),
		crm.WithRateLimit(settings.Sync.RatePerSecond, x.rateBurst),
		crm.WithRetry(x.maxRetries, crm.DefaultBackoff),
	)

	provider, err := crm.NewOAuth(client, crm.OAuthConfig{
		ClientID:     x.clientID,
		ClientSecret: secret,
		RedirectURL:  x.redirectURL,
		Scopes:       x.scopes,
		AuthURL:      x.authURL,
	})
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure CRM OAuth")
	}

	logging.Default().Info("CRM integration enabled", "base_url", x.baseURL, "redirect_url", x.redirectURL)
	return client, provider, nil
}

// OAuthOptions returns the OAuth use case options derived from flags
func (x *CRM) OAuthOptions() []usecase.OAuthOption {
	if x.stateKey == "" {
		logging.Default().Warn("OAuth state key not set; pending authorizations will not survive a restart")
		return nil
	}
	return []usecase.OAuthOption{usecase.WithStateKey([]byte(x.stateKey))}
}

// StoreSecret saves a CRM client secret in the OS keychain
func StoreSecret(account, secret string) error {
	if strings.TrimSpace(account) == "" {
		return goerr.Wrap(ErrMissingFlag, "keychain account is empty")
	}
	if strings.TrimSpace(secret) == "" {
		return goerr.Wrap(ErrMissingFlag, "secret is empty")
	}
	if err := keyring.Set(KeyringService, account, secret); err != nil {
		return goerr.Wrap(err, "failed to store secret in keychain", goerr.V("account", account))
	}
	return nil
}

// DeleteSecret removes a CRM client secret from the OS keychain
func DeleteSecret(account string) error {
	if strings.TrimSpace(account) == "" {
		return goerr.Wrap(ErrMissingFlag, "keychain account is empty")
	}
	if err := keyring.Delete(KeyringService, account); err != nil {
		return goerr.Wrap(err, "failed to delete secret from keychain", goerr.V("account", account))
	}
	return nil
}
