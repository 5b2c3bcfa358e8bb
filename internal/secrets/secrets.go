package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"leadgen-engine/internal/config"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "leadgen"

	AccountSearch = "search"
	AccountLLM    = "llm"
)

// envKeys lists the environment fallbacks per account, first match wins.
var envKeys = map[string][]string{
	AccountSearch: {"SERPER_API_KEY", "LEADGEN_SEARCH_API_KEY"},
	AccountLLM:    {"LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY", "LEADGEN_LLM_API_KEY"},
}

// Store is the keychain surface; tests swap it out.
type Store interface {
	Get(service, account string) (string, error)
	Set(service, account, secret string) error
	Delete(service, account string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, account string) (string, error) { return keyring.Get(service, account) }
func (osKeyring) Set(service, account, secret string) error   { return keyring.Set(service, account, secret) }
func (osKeyring) Delete(service, account string) error        { return keyring.Delete(service, account) }

var store Store = osKeyring{}

func validAccount(account string) error {
	if _, ok := envKeys[account]; !ok {
		return fmt.Errorf("unknown secret %q (want %s or %s)", account, AccountSearch, AccountLLM)
	}
	return nil
}

// Get looks in the keychain first, then the environment.
func Get(account string) (string, error) {
	if err := validAccount(account); err != nil {
		return "", err
	}

	v, err := store.Get(KeyringService, account)
	if err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}

	for _, k := range envKeys[account] {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s key not found (set it in keychain or via %s)", account, envKeys[account][0])
}

func Set(account, secret string) error {
	if err := validAccount(account); err != nil {
		return err
	}
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret is empty")
	}
	return store.Set(KeyringService, account, strings.TrimSpace(secret))
}

func Delete(account string) error {
	if err := validAccount(account); err != nil {
		return err
	}
	err := store.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Resolve gathers every credential cfg needs and fails with
// config.ErrMissingCredentials when one is absent.
func Resolve(cfg config.Config) (config.Credentials, error) {
	var c config.Credentials
	c.SearchKey, _ = Get(AccountSearch)
	c.LLMKey, _ = Get(AccountLLM)
	return c, c.Check(cfg)
}
