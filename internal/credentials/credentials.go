// Package credentials resolves the Google service account used by the
// spreadsheet integration. Resolution fails open: any problem yields no
// credential and the integrations degrade to log-only.
package credentials

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode"

	"github.com/fixam/fixam-site/pkg/logging"
)

// ServiceAccount is a parsed service-account key. JSON keeps the original
// bytes so the Google client can consume them unchanged.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`

	JSON []byte `json:"-"`
}

// Load resolves raw into a service account. raw may be inline JSON, a path
// to a JSON file, or base64-encoded JSON. It returns nil when raw is empty or
// cannot be resolved.
func Load(raw string, logger *logging.Logger) *ServiceAccount {
	if logger == nil {
		logger = logging.Default()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	account, err := resolve(raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("GOOGLE_APPLICATION_CREDENTIALS points to a file that does not exist")
		} else {
			logger.Error("failed to parse GOOGLE_APPLICATION_CREDENTIALS", "error", err)
		}
		return nil
	}

	logger.Info("google service account loaded", "client_email", account.ClientEmail, "project_id", account.ProjectID)
	return account
}

func resolve(raw string) (*ServiceAccount, error) {
	switch {
	case strings.HasPrefix(raw, "{"):
		return parse([]byte(raw))
	case isPath(raw):
		data, err := os.ReadFile(raw)
		if err != nil {
			return nil, fmt.Errorf("credentials: read %s: %w", raw, err)
		}
		return parse(data)
	default:
		decoded, err := decodeBase64(stripSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("credentials: decode base64: %w", err)
		}
		decoded = strings.NewReplacer("\r", "", "\n", "").Replace(decoded)
		return parse([]byte(decoded))
	}
}

func isPath(raw string) bool {
	return strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "./") ||
		strings.HasPrefix(raw, "../") ||
		strings.HasSuffix(raw, ".json")
}

func parse(data []byte) (*ServiceAccount, error) {
	var account ServiceAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("credentials: parse json: %w", err)
	}
	account.JSON = data
	return &account, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// decodeBase64 accepts padded and unpadded, standard and URL-safe alphabets.
func decodeBase64(s string) (string, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		out, err := enc.DecodeString(s)
		if err == nil {
			return string(out), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}
