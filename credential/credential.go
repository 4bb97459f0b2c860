package credential

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/byte4ever/gitreq/remote"
)

// TokenKey is the scoped config key holding an API
// token.
const TokenKey = "apikey"

// Store persists API tokens per provider domain.
type Store interface {
	// Token returns the stored token for domain. The
	// boolean is false when none is stored.
	Token(ctx context.Context, domain string) (string, bool, error)

	// SetToken stores token for domain.
	SetToken(ctx context.Context, domain string, token string) error
}

// Prompter asks the user for a value.
type Prompter interface {
	Ask(ctx context.Context, message string) (string, error)
}

// PrompterFunc adapts a plain function to the Prompter
// interface.
type PrompterFunc func(
	ctx context.Context,
	message string,
) (string, error)

// Ask delegates to the wrapped function.
func (f PrompterFunc) Ask(
	ctx context.Context,
	message string,
) (string, error) {
	return f(ctx, message)
}

// ScopedConfig reads and writes settings scoped by
// provider domain. *git.Repo satisfies it.
type ScopedConfig interface {
	GetScopedConfig(
		ctx context.Context,
		scope string,
		key string,
	) (string, bool, error)
	SetScopedConfig(
		ctx context.Context,
		scope string,
		key string,
		value string,
	) error
}

// ConfigStore keeps tokens in git config as
// req.<domain>.apikey.
type ConfigStore struct {
	Config ScopedConfig
}

// Token implements Store.
func (s ConfigStore) Token(
	ctx context.Context,
	domain string,
) (string, bool, error) {
	const errCtx = "reading api token"

	tok, ok, err := s.Config.GetScopedConfig(ctx, domain, TokenKey)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return tok, ok, nil
}

// SetToken implements Store.
func (s ConfigStore) SetToken(
	ctx context.Context,
	domain string,
	token string,
) error {
	const errCtx = "storing api token"

	if err := s.Config.SetScopedConfig(
		ctx, domain, TokenKey, token,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Resolver hands out one token per domain, asking for
// it at most once per invocation.
type Resolver struct {
	store    Store
	prompter Prompter
	tokens   map[string]string
	asked    map[string]bool
}

// NewResolver returns a Resolver reading from store. A
// nil prompter turns every miss into
// remote.ErrCredentialMissing.
func NewResolver(store Store, prompter Prompter) *Resolver {
	return &Resolver{
		store:    store,
		prompter: prompter,
		tokens:   make(map[string]string),
		asked:    make(map[string]bool),
	}
}

// Token returns the API token for domain. A stored
// empty or blank token counts as not configured.
func (r *Resolver) Token(
	ctx context.Context,
	domain string,
) (string, error) {
	const errCtx = "resolving api token"

	if tok, ok := r.tokens[domain]; ok {
		return tok, nil
	}

	tok, ok, err := r.store.Token(ctx, domain)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if tok = strings.TrimSpace(tok); ok && tok != "" {
		slog.Debug("using stored api token", "domain", domain)

		r.tokens[domain] = tok

		return tok, nil
	}

	tok, err = r.ask(ctx, domain)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := r.store.SetToken(ctx, domain, tok); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	r.tokens[domain] = tok

	return tok, nil
}

func (r *Resolver) ask(
	ctx context.Context,
	domain string,
) (string, error) {
	if r.prompter == nil || r.asked[domain] {
		return "", fmt.Errorf(
			"no api token for %s: %w",
			domain, remote.ErrCredentialMissing,
		)
	}

	r.asked[domain] = true

	ans, err := r.prompter.Ask(
		ctx,
		fmt.Sprintf(
			"No API token for %s found. Create a personal "+
				"access token with read access to the "+
				"project.\n%s API token:",
			domain, domain,
		),
	)
	if err != nil {
		return "", fmt.Errorf(
			"asking for %s token: %w", domain, err,
		)
	}

	ans = strings.TrimSpace(ans)
	if ans == "" {
		return "", fmt.Errorf(
			"empty api token for %s: %w",
			domain, remote.ErrCredentialMissing,
		)
	}

	return ans, nil
}
