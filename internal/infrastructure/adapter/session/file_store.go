// Package session persists the logged-in identity between CLI invocations.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	sessionport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/session"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is written into every session token
const Issuer = "atm-cli"

// claims is the token body. The subject holds the account id.
type claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// FileStore keeps the session as an HS256-signed JWT in a single file.
// The signature stops a hand-edited file from impersonating another account;
// the token is not encrypted and does not expire.
type FileStore struct {
	path         string
	signingKey   []byte
	timeProvider coreport.TimeProvider
}

var _ sessionport.Store = (*FileStore)(nil)

// NewFileStore creates a store writing to path
func NewFileStore(path string, signingKey []byte, timeProvider coreport.TimeProvider) *FileStore {
	return &FileStore{
		path:         path,
		signingKey:   signingKey,
		timeProvider: timeProvider,
	}
}

// Path returns the session file location
func (s *FileStore) Path() string {
	return s.path
}

// Save replaces any existing session. The file is written to a temporary
// name and renamed so a crash never leaves a truncated token behind.
func (s *FileStore) Save(ctx context.Context, sess entity.Session) error {
	issuedAt := sess.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = s.timeProvider.Now()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: sess.AccountName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   Issuer,
			Subject:  strconv.FormatUint(sess.AccountID, 10),
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("protect session file: %w", err)
	}
	if _, err := tmp.WriteString(signed + "\n"); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Load returns the active session. A missing file means no session.
// A file whose token does not verify is reported as ErrNotAuthenticated.
func (s *FileStore) Load(ctx context.Context) (entity.Session, bool, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entity.Session{}, false, nil
	}
	if err != nil {
		return entity.Session{}, false, fmt.Errorf("read session file: %w", err)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)

	var parsed claims
	_, err = parser.ParseWithClaims(strings.TrimSpace(string(raw)), &parsed, func(*jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil {
		return entity.Session{}, false, fmt.Errorf("%w: session file rejected: %v", errs.ErrNotAuthenticated, err)
	}

	accountID, err := strconv.ParseUint(parsed.Subject, 10, 64)
	if err != nil || accountID == 0 {
		return entity.Session{}, false, fmt.Errorf("%w: session file has no account", errs.ErrNotAuthenticated)
	}

	sess := entity.Session{
		AccountID:   accountID,
		AccountName: parsed.Name,
	}
	if parsed.IssuedAt != nil {
		sess.IssuedAt = parsed.IssuedAt.Time
	}
	return sess, true, nil
}

// Clear removes the session file. A missing file is not an error.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
