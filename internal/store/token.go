package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

type fileTokenStore struct {
	path   string
	now    func() time.Time
	logger *logger.Logger
}

// NewFileTokenStore constructs a [TokenStore] keeping the token as JSON at
// path, readable by the owner only.
func NewFileTokenStore(path string, log *logger.Logger) TokenStore {
	return &fileTokenStore{path: path, now: time.Now, logger: log}
}

// Load implements [TokenStore].
func (s *fileTokenStore) Load(ctx context.Context) (models.OAuthToken, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.OAuthToken{}, ErrTokenNotFound
		}
		return models.OAuthToken{}, fmt.Errorf("read linkedin token %s: %w", s.path, err)
	}

	var token models.OAuthToken
	if err = json.Unmarshal(data, &token); err != nil {
		return models.OAuthToken{}, fmt.Errorf("decode linkedin token %s: %w", s.path, err)
	}
	if token.AccessToken == "" {
		return models.OAuthToken{}, ErrTokenNotFound
	}
	if token.Expired(s.now()) {
		s.logger.Warn().Time("expired_at", token.ExpiresAt).Msg("linkedin token has expired, re-authenticate with linkedin-auth")
		return models.OAuthToken{}, ErrTokenExpired
	}
	return token, nil
}

// Save implements [TokenStore].
func (s *fileTokenStore) Save(ctx context.Context, token models.OAuthToken) error {
	err := utils.WriteFileAtomic(s.path, 0o600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(token)
	})
	if err != nil {
		return fmt.Errorf("save linkedin token %s: %w", s.path, err)
	}

	s.logger.Info().Str("path", s.path).Msg("linkedin token saved")
	return nil
}
