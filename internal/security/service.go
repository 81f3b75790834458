package security

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

const challengeTTL = 5 * time.Minute

var pinPattern = regexp.MustCompile(`^[0-9]{6}$`)

// CodeSender delivers one-time codes. Satisfied by the sms service.
type CodeSender interface {
	Send(ctx context.Context, phone, message, companyID string) error
}

// Service implements the optional per-user security factors. Every
// operation is self-scoped: callers act only on their own record.
type Service struct {
	repo   Repository
	store  EphemeralStore
	sender CodeSender
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, store EphemeralStore, sender CodeSender, logger *slog.Logger) *Service {
	return &Service{repo: repo, store: store, sender: sender, logger: logger}
}

// Status reports which factors the user has configured.
func (s *Service) Status(ctx context.Context, userID string) (*StatusResponse, error) {
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rec.Credentials))
	for _, c := range rec.Credentials {
		ids = append(ids, c.ID)
	}
	return &StatusResponse{
		PINEnabled:          rec.PINEnabled,
		SMSEnabled:          rec.SMSEnabled,
		WebAuthnCredentials: ids,
	}, nil
}

// SetupPIN stores a bcrypt hash of a six-digit numeric PIN.
func (s *Service) SetupPIN(ctx context.Context, userID, pin string) error {
	if !pinPattern.MatchString(pin) {
		return fmt.Errorf("%w: pin must be exactly 6 digits", httpx.ErrValidation)
	}
	if _, err := s.repo.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SavePIN(ctx, userID, string(hash))
}

// VerifyPIN checks a PIN against the stored hash. Not-set-up and mismatch
// both fail closed.
func (s *Service) VerifyPIN(ctx context.Context, userID, pin string) error {
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if !rec.PINEnabled || rec.PINHash == "" {
		return fmt.Errorf("%w: pin not configured", httpx.ErrConflict)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PINHash), []byte(pin)); err != nil {
		return fmt.Errorf("%w: pin mismatch", httpx.ErrUnauthorized)
	}
	return nil
}

func smsCodeKey(phone, userID string) string {
	return "security:smscode:" + phone + ":" + userID
}

// SendSMSCode generates a six-digit code, parks it for five minutes keyed
// by phone and requester, and delivers it through the notification gateway.
func (s *Service) SendSMSCode(ctx context.Context, userID, companyID, phone string) error {
	if _, err := s.repo.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.store.Put(ctx, smsCodeKey(phone, userID), code, challengeTTL); err != nil {
		return err
	}
	message := fmt.Sprintf("Il tuo codice di verifica è: %s", code)
	if err := s.sender.Send(ctx, phone, message, companyID); err != nil {
		return fmt.Errorf("%w: code delivery failed", httpx.ErrConflict)
	}
	return nil
}

// VerifySMSCode consumes a one-time code. The code survives a mismatch and
// dies on success, so a typo does not force a resend but a correct guess
// works exactly once.
func (s *Service) VerifySMSCode(ctx context.Context, userID, phone, code string) error {
	key := smsCodeKey(phone, userID)
	stored, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no code pending for this phone", httpx.ErrUnauthorized)
	}
	if stored != code {
		return fmt.Errorf("%w: code mismatch", httpx.ErrUnauthorized)
	}
	if err := s.store.Del(ctx, key); err != nil {
		return err
	}
	if err := s.repo.SetSMSEnabled(ctx, userID, true); err != nil {
		return err
	}
	return nil
}

func registerChallengeKey(userID string) string { return "security:webauthn:register:" + userID }
func loginChallengeKey(userID string) string    { return "security:webauthn:login:" + userID }

func newChallenge() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// BeginRegister issues a registration challenge valid for five minutes.
func (s *Service) BeginRegister(ctx context.Context, userID string) (*ChallengeResponse, error) {
	if _, err := s.repo.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	challenge, err := newChallenge()
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, registerChallengeKey(userID), challenge, challengeTTL); err != nil {
		return nil, err
	}
	return &ChallengeResponse{Challenge: challenge}, nil
}

// FinishRegister validates the pending challenge and appends the new
// credential with a zero signature counter.
func (s *Service) FinishRegister(ctx context.Context, userID string, req FinishRegisterRequest) error {
	key := registerChallengeKey(userID)
	stored, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || stored != req.Challenge {
		return fmt.Errorf("%w: registration challenge invalid or expired", httpx.ErrUnauthorized)
	}
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range rec.Credentials {
		if c.ID == req.CredentialID {
			return fmt.Errorf("%w: credential already registered", httpx.ErrConflict)
		}
	}
	rec.Credentials = append(rec.Credentials, Credential{
		ID:        req.CredentialID,
		PublicKey: req.PublicKey,
		SignCount: 0,
		CreatedAt: time.Now().UTC(),
	})
	if err := s.repo.SaveCredentials(ctx, userID, rec.Credentials); err != nil {
		return err
	}
	if err := s.store.Del(ctx, key); err != nil {
		return err
	}
	s.logger.Info("webauthn credential registered", slog.String("user_id", userID))
	return nil
}

// BeginLogin issues an assertion challenge listing the user's registered
// credentials.
func (s *Service) BeginLogin(ctx context.Context, userID string) (*ChallengeResponse, error) {
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rec.Credentials) == 0 {
		return nil, fmt.Errorf("%w: no credentials registered", httpx.ErrConflict)
	}
	challenge, err := newChallenge()
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, loginChallengeKey(userID), challenge, challengeTTL); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rec.Credentials))
	for _, c := range rec.Credentials {
		ids = append(ids, c.ID)
	}
	return &ChallengeResponse{Challenge: challenge, AllowCredentials: ids}, nil
}

// FinishLogin validates the challenge, the credential, and the monotonic
// signature counter, then persists the new counter value.
func (s *Service) FinishLogin(ctx context.Context, userID string, req FinishLoginRequest) error {
	key := loginChallengeKey(userID)
	stored, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || stored != req.Challenge {
		return fmt.Errorf("%w: login challenge invalid or expired", httpx.ErrUnauthorized)
	}
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	idx := -1
	for i, c := range rec.Credentials {
		if c.ID == req.CredentialID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: unknown credential", httpx.ErrUnauthorized)
	}
	if req.SignCount <= rec.Credentials[idx].SignCount {
		return fmt.Errorf("%w: signature counter did not advance", httpx.ErrUnauthorized)
	}
	rec.Credentials[idx].SignCount = req.SignCount
	if err := s.repo.SaveCredentials(ctx, userID, rec.Credentials); err != nil {
		return err
	}
	return s.store.Del(ctx, key)
}
