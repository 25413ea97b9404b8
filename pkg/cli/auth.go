package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "api_token"
	keyringService = "creditscore"
	keyringUser    = "api_token"
	tokenBytes     = 24

	// APITokenEnvVar overrides the stored token when set, which is what
	// containerized deployments use instead of the OS keychain.
	APITokenEnvVar = "CREDIT_API_TOKEN"
)

var authCmd = &cli.Command{
	Name:            "auth",
	HideHelpCommand: true,
	Usage:           "Manage the API token used by the local server and remote classifier",
	Subcommands: []*cli.Command{
		{
			Name:   "init",
			Usage:  "Generate a new API token and store it in the OS keychain",
			Action: cmdInitAuth,
		},
		{
			Name:   "show",
			Usage:  "Print the stored API token",
			Action: cmdShowAuth,
		},
	},
}

func cmdInitAuth(c *cli.Context) error {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	token := hex.EncodeToString(b)

	if err := saveAPIToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Printf("API token: %s\n", token)
	fmt.Println("Token saved, pass it as a bearer token when calling the server API")
	return nil
}

func cmdShowAuth(c *cli.Context) error {
	token, err := getAPIToken()
	if err != nil {
		return fmt.Errorf("no token found, run auth init first: %w", err)
	}
	fmt.Println(token)
	return nil
}

func saveAPIToken(token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveAPITokenFile(token)
	}

	// Clean up the file copy if a previous fallback left one
	os.Remove(path.Join(getHomeDir(), tokenFileName))

	return nil
}

func getAPIToken() (string, error) {
	if token := os.Getenv(APITokenEnvVar); token != "" {
		return token, nil
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	return getAPITokenFile()
}

func saveAPITokenFile(token string) error {
	tokenPath := path.Join(getHomeDir(), tokenFileName)
	return os.WriteFile(tokenPath, []byte(token), 0600)
}

func getAPITokenFile() (string, error) {
	tokenPath := path.Join(getHomeDir(), tokenFileName)
	b, err := os.ReadFile(tokenPath)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", tokenPath, err)
	}
	return string(b), nil
}
