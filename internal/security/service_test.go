package security_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucaamst/farmy/internal/platform/httpx"
	"github.com/Lucaamst/farmy/internal/security"
	_ "github.com/Lucaamst/farmy/testing"
)

type stubRepo struct {
	records map[string]*security.Record
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: map[string]*security.Record{}}
}

func (s *stubRepo) GetOrCreate(ctx context.Context, userID string) (*security.Record, error) {
	rec, ok := s.records[userID]
	if !ok {
		rec = &security.Record{UserID: userID, Credentials: []security.Credential{}, CreatedAt: time.Now().UTC()}
		s.records[userID] = rec
	}
	copied := *rec
	copied.Credentials = append([]security.Credential(nil), rec.Credentials...)
	return &copied, nil
}

func (s *stubRepo) SavePIN(ctx context.Context, userID, pinHash string) error {
	rec := s.records[userID]
	rec.PINHash = pinHash
	rec.PINEnabled = true
	return nil
}

func (s *stubRepo) SetSMSEnabled(ctx context.Context, userID string, enabled bool) error {
	s.records[userID].SMSEnabled = enabled
	return nil
}

func (s *stubRepo) SaveCredentials(ctx context.Context, userID string, credentials []security.Credential) error {
	s.records[userID].Credentials = credentials
	return nil
}

type stubSender struct {
	messages []string
	err      error
}

func (s *stubSender) Send(ctx context.Context, phone, message, companyID string) error {
	s.messages = append(s.messages, message)
	return s.err
}

func newTestService(t *testing.T) (*security.Service, *stubRepo, *stubSender, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := security.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	repo := newStubRepo()
	sender := &stubSender{}
	svc := security.NewService(repo, store, sender, slog.Default())
	return svc, repo, sender, mr
}

func TestStatusCreatesRecordLazily(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	status, err := svc.Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, status.PINEnabled)
	assert.False(t, status.SMSEnabled)
	assert.Empty(t, status.WebAuthnCredentials)
	assert.Contains(t, repo.records, "u1")
}

func TestSetupPINRequiresSixDigits(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	for _, pin := range []string{"12345", "1234567", "abcdef", "12 456", ""} {
		err := svc.SetupPIN(ctx, "u1", pin)
		require.Error(t, err, "pin %q", pin)
		assert.True(t, errors.Is(err, httpx.ErrValidation))
	}

	require.NoError(t, svc.SetupPIN(ctx, "u1", "123456"))
	require.NoError(t, svc.VerifyPIN(ctx, "u1", "123456"))

	err := svc.VerifyPIN(ctx, "u1", "654321")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestVerifyPINWithoutSetup(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	err := svc.VerifyPIN(context.Background(), "u1", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrConflict))
}

func TestSMSCodeSingleUse(t *testing.T) {
	svc, repo, sender, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendSMSCode(ctx, "u1", "c1", "+39111"))
	require.Len(t, sender.messages, 1)
	code := sender.messages[0][len(sender.messages[0])-6:]

	// A wrong guess keeps the code alive.
	err := svc.VerifySMSCode(ctx, "u1", "+39111", "000000")
	if code == "000000" {
		t.Skip("generated code collides with the wrong guess")
	}
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))

	require.NoError(t, svc.VerifySMSCode(ctx, "u1", "+39111", code))
	assert.True(t, repo.records["u1"].SMSEnabled)

	// Consumed: a second use fails.
	err = svc.VerifySMSCode(ctx, "u1", "+39111", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestSMSCodeScopedToRequester(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendSMSCode(ctx, "u1", "", "+39111"))
	code := sender.messages[0][len(sender.messages[0])-6:]

	err := svc.VerifySMSCode(ctx, "u2", "+39111", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestSMSCodeExpires(t *testing.T) {
	svc, _, sender, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendSMSCode(ctx, "u1", "", "+39111"))
	code := sender.messages[0][len(sender.messages[0])-6:]

	mr.FastForward(6 * time.Minute)

	err := svc.VerifySMSCode(ctx, "u1", "+39111", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestWebAuthnRegisterFlow(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	begin, err := svc.BeginRegister(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, begin.Challenge)

	err = svc.FinishRegister(ctx, "u1", security.FinishRegisterRequest{
		Challenge: "wrong", CredentialID: "cred1", PublicKey: "pk",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))

	require.NoError(t, svc.FinishRegister(ctx, "u1", security.FinishRegisterRequest{
		Challenge: begin.Challenge, CredentialID: "cred1", PublicKey: "pk",
	}))
	require.Len(t, repo.records["u1"].Credentials, 1)
	assert.Zero(t, repo.records["u1"].Credentials[0].SignCount)

	// Challenge is consumed with the registration.
	err = svc.FinishRegister(ctx, "u1", security.FinishRegisterRequest{
		Challenge: begin.Challenge, CredentialID: "cred2", PublicKey: "pk",
	})
	require.Error(t, err)
}

func TestWebAuthnLoginCounterMonotonic(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	begin, err := svc.BeginRegister(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, svc.FinishRegister(ctx, "u1", security.FinishRegisterRequest{
		Challenge: begin.Challenge, CredentialID: "cred1", PublicKey: "pk",
	}))

	login, err := svc.BeginLogin(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cred1"}, login.AllowCredentials)

	require.NoError(t, svc.FinishLogin(ctx, "u1", security.FinishLoginRequest{
		Challenge: login.Challenge, CredentialID: "cred1", SignCount: 5,
	}))
	assert.Equal(t, uint32(5), repo.records["u1"].Credentials[0].SignCount)

	// A replayed counter value is rejected.
	login, err = svc.BeginLogin(ctx, "u1")
	require.NoError(t, err)
	err = svc.FinishLogin(ctx, "u1", security.FinishLoginRequest{
		Challenge: login.Challenge, CredentialID: "cred1", SignCount: 5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestWebAuthnLoginWithoutCredentials(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.BeginLogin(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrConflict))
}
