package crm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"golang.org/x/oauth2"
)

const DefaultAuthURL = "https://app.hubspot.com/oauth/authorize"

// DefaultTokenLifetime is assumed when a token response has no expires_in
const DefaultTokenLifetime = 30 * time.Minute

// DefaultScopes grants read and write on contacts, companies and deals
var DefaultScopes = []string{
	"crm.objects.contacts.read",
	"crm.objects.contacts.write",
	"crm.objects.companies.read",
	"crm.objects.companies.write",
	"crm.objects.deals.read",
	"crm.objects.deals.write",
	"oauth",
}

// OAuth implements interfaces.OAuthProvider on top of x/oauth2, sending
// token requests through the same HTTP client, timeout and rate limit as
// the object API
type OAuth struct {
	client *Client
	config *oauth2.Config
}

var _ interfaces.OAuthProvider = &OAuth{}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string `masq:"secret"`
	RedirectURL  string
	Scopes       []string
	AuthURL      string
}

func NewOAuth(client *Client, cfg OAuthConfig) (*OAuth, error) {
	if cfg.ClientID == "" {
		return nil, goerr.New("CRM client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, goerr.New("CRM client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, goerr.New("CRM redirect URL is required")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}

	return &OAuth{
		client: client,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  client.BaseURL() + "/oauth/v1/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}, nil
}

func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state)
}

func (o *OAuth) tokenContext(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := o.client.limiter.Wait(ctx); err != nil {
		return nil, nil, goerr.Wrap(model.ErrNetwork, "rate limiter wait aborted", goerr.V("error", err.Error()))
	}
	callCtx, cancel := context.WithTimeout(ctx, o.client.timeout)
	return context.WithValue(callCtx, oauth2.HTTPClient, o.client.httpClient), cancel, nil
}

func (o *OAuth) Exchange(ctx context.Context, code string) (*model.TokenGrant, error) {
	if code == "" {
		return nil, goerr.Wrap(model.ErrRemoteValidation, "authorization code is empty")
	}

	callCtx, cancel, err := o.tokenContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	token, err := o.config.Exchange(callCtx, code)
	if err != nil {
		return nil, mapTokenError(err, "failed to exchange authorization code")
	}
	return toGrant(token), nil
}

func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error) {
	if refreshToken == "" {
		return nil, goerr.Wrap(model.ErrRemoteValidation, "refresh token is empty")
	}

	callCtx, cancel, err := o.tokenContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	// An already expired token makes the source go straight to the refresh grant
	src := o.config.TokenSource(callCtx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Unix(1, 0),
	})
	token, err := src.Token()
	if err != nil {
		return nil, mapTokenError(err, "failed to refresh token")
	}
	return toGrant(token), nil
}

type accountInfoResponse struct {
	PortalID    int64  `json:"portalId"`
	CompanyName string `json:"companyName"`
}

func (o *OAuth) AccountInfo(ctx context.Context, accessToken string) (*model.AccountInfo, error) {
	var resp accountInfoResponse
	if err := o.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/account-info/v3/details",
		token:  accessToken,
	}, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch account info")
	}
	if resp.PortalID == 0 {
		return nil, goerr.Wrap(model.ErrRemoteValidation, "account info has no portal id")
	}

	return &model.AccountInfo{
		PortalID:    resp.PortalID,
		CompanyName: resp.CompanyName,
	}, nil
}

func toGrant(token *oauth2.Token) *model.TokenGrant {
	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(DefaultTokenLifetime)
	}
	return &model.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiry.UTC(),
	}
}

func mapTokenError(err error, msg string) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		code := re.Response.StatusCode
		_, mapped := classifyStatus(request{method: http.MethodPost, path: "/oauth/v1/token"}, code, re.Body)
		return goerr.Wrap(mapped, msg)
	}
	return goerr.Wrap(model.ErrNetwork, msg, goerr.V("error", err.Error()))
}
