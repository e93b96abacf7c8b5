package assistant

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
)

// DefaultKeyEnv names the environment variable holding the API key.
const DefaultKeyEnv = "OPENAI_API_KEY"

// ResolveAPIKey reads the API key from the environment variable envName,
// falling back to keyFile, which holds the key base64-encoded.
func ResolveAPIKey(envName, keyFile string) (string, error) {
	if envName == "" {
		envName = DefaultKeyEnv
	}
	if key := strings.TrimSpace(os.Getenv(envName)); key != "" {
		return key, nil
	}
	if keyFile == "" {
		return "", clierr.Newf(clierr.AssistantUnavailable, "no API key: set %s or assistant.api_key_file", envName).
			WithDetails(map[string]any{"env": envName})
	}

	data, err := os.ReadFile(keyFile) //nolint:gosec // key path from config
	if err != nil {
		return "", clierr.Wrap(clierr.AssistantUnavailable, err, "reading API key file").
			WithDetails(map[string]any{"file": keyFile})
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return "", clierr.Wrap(clierr.AssistantUnavailable, err, "API key file is not base64-encoded").
			WithDetails(map[string]any{"file": keyFile})
	}
	key := strings.TrimSpace(string(decoded))
	if key == "" {
		return "", clierr.New(clierr.AssistantUnavailable, "API key file is empty").
			WithDetails(map[string]any{"file": keyFile})
	}
	return key, nil
}
