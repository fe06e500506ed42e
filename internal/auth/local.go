// ABOUTME: LocalProvider is a self-contained identity service backed by SQLite.
// ABOUTME: bcrypt password hashes, JWT session tokens, optional email verification.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
	MinPasswordLength = 6
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    verified INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
`

// LocalProvider implements Provider without any network service.
type LocalProvider struct {
	db                  *sql.DB
	file                sessionFile
	tokens              tokenSigner
	requireVerification bool
	accessTTL           time.Duration
	refreshTTL          time.Duration
	now                 func() time.Time
	hashCost            int
}

var _ Provider = (*LocalProvider)(nil)

// LocalOption configures a LocalProvider.
type LocalOption func(*LocalProvider)

// WithRequireVerification makes new accounts unable to sign in until Verify.
func WithRequireVerification(required bool) LocalOption {
	return func(p *LocalProvider) { p.requireVerification = required }
}

// WithTokenTTL overrides access and refresh token lifetimes.
func WithTokenTTL(access, refresh time.Duration) LocalOption {
	return func(p *LocalProvider) {
		p.accessTTL = access
		p.refreshTTL = refresh
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LocalOption {
	return func(p *LocalProvider) { p.now = now }
}

// WithHashCost sets the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) LocalOption {
	return func(p *LocalProvider) { p.hashCost = cost }
}

// OpenLocal opens the user database at dbPath and persists sessions at
// sessionPath. secret signs the tokens and must not be empty.
func OpenLocal(dbPath, sessionPath string, secret []byte, opts ...LocalOption) (*LocalProvider, error) {
	if len(secret) == 0 {
		return nil, errors.New("open auth: empty signing secret")
	}

	db, err := storage.OpenSQLiteDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open auth db: %w", err)
	}
	if _, err := db.Exec(usersSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize auth schema: %w", err)
	}

	p := &LocalProvider{
		db:         db,
		file:       sessionFile{path: sessionPath},
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
		hashCost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tokens = tokenSigner{secret: secret, now: p.now}
	return p, nil
}

// Close closes the user database.
func (p *LocalProvider) Close() error {
	return p.db.Close()
}

type user struct {
	id       string
	email    string
	hash     string
	verified bool
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (p *LocalProvider) findUser(ctx context.Context, email string) (*user, error) {
	var u user
	err := p.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, verified FROM users WHERE email = ?`, email,
	).Scan(&u.id, &u.email, &u.hash, &u.verified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// SignUp creates an account. Without required verification the new user is
// signed straight in.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, MinPasswordLength)
	}

	existing, err := p.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user{id: uuid.NewString(), email: email, hash: string(hash), verified: !p.requireVerification}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, verified, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.id, u.email, u.hash, u.verified, p.now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if p.requireVerification {
		return &SignUpResult{NeedsVerification: true}, nil
	}

	session, err := p.startSession(u)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Session: session}, nil
}

// SignIn checks the password and starts a new session.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := p.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.verified {
		return nil, ErrUnverifiedAccount
	}
	return p.startSession(u)
}

// Verify marks an account's email as confirmed.
func (p *LocalProvider) Verify(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `UPDATE users SET verified = 1 WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownAccount
	}
	return nil
}

// Restore loads the saved session. An expired access token is refreshed
// while the refresh token is still valid; otherwise the file is discarded.
func (p *LocalProvider) Restore(ctx context.Context) (*models.Session, error) {
	session, err := p.file.load()
	if err != nil || session == nil {
		return nil, err
	}

	_, err = p.tokens.parse(session.AccessToken, kindAccess)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, ErrSessionExpired):
		refreshed, rerr := p.Refresh(ctx, session)
		if rerr == nil {
			return refreshed, nil
		}
		if errors.Is(rerr, ErrSessionExpired) || errors.Is(rerr, ErrInvalidCredentials) {
			return nil, p.file.clear()
		}
		return nil, rerr
	default:
		return nil, p.file.clear()
	}
}

// SignOut forgets the persisted session.
func (p *LocalProvider) SignOut(_ context.Context, _ *models.Session) error {
	return p.file.clear()
}

// Refresh trades a valid refresh token for a new session.
func (p *LocalProvider) Refresh(ctx context.Context, session *models.Session) (*models.Session, error) {
	claims, err := p.tokens.parse(session.RefreshToken, kindRefresh)
	if err != nil {
		return nil, err
	}
	if claims.Subject != session.UserID {
		return nil, fmt.Errorf("%w: token subject mismatch", ErrInvalidCredentials)
	}

	u, err := p.findUser(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.id != claims.Subject {
		return nil, ErrInvalidCredentials
	}
	return p.startSession(u)
}

func (p *LocalProvider) startSession(u *user) (*models.Session, error) {
	id := ulid.Make().String()

	access, expires, err := p.tokens.sign(kindAccess, u.id, u.email, id, p.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, _, err := p.tokens.sign(kindRefresh, u.id, u.email, id, p.refreshTTL)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:           id,
		UserID:       u.id,
		Email:        u.email,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expires,
		CreatedAt:    p.now(),
	}
	if err := p.file.save(session); err != nil {
		return nil, err
	}
	return session, nil
}
