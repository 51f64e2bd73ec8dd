package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrappedlabs/wrapped/internal/model"
)

func issuedCode(t *testing.T, env *testEnv, email string) string {
	t.Helper()

	otp, err := env.otpRepo.ByEmail(email)
	require.NoError(t, err)
	return otp.Code
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "ada@example.com")

	session, err := env.auth.StartSession(user, "", "")
	require.NoError(t, err)

	require.NoError(t, env.passwordReset.RequestOTP("ada@example.com"))
	code := issuedCode(t, env, "ada@example.com")
	require.Len(t, code, model.OTPLength)

	// a wrong code does not verify
	err = env.passwordReset.VerifyOTP("ada@example.com", wrongCode(code))
	assert.ErrorIs(t, err, ErrInvalidOTP)

	// the right code verifies, and verifying does not consume
	require.NoError(t, env.passwordReset.VerifyOTP("ada@example.com", code))
	require.NoError(t, env.passwordReset.VerifyOTP("ada@example.com", code))

	newPassword := "N3w!passphrase"
	errs, err := env.passwordReset.ResetPassword("ada@example.com", code, newPassword, newPassword)
	require.NoError(t, err)
	require.Empty(t, errs)

	// the code was consumed by the reset
	err = env.passwordReset.VerifyOTP("ada@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
	_, err = env.passwordReset.ResetPassword("ada@example.com", code, newPassword, newPassword)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	// every session died with the old password
	resolved, _, err := env.auth.UserBySessionToken(session.Token)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	_, err = env.auth.Login("ada@example.com", testPassword, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login("ada@example.com", newPassword, "", "")
	assert.NoError(t, err)
}

func TestRequestOTPUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.passwordReset.RequestOTP("nobody@example.com")
	assert.ErrorIs(t, err, ErrUnknownEmail)
}

func TestRequestOTPReplacesPriorCode(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ada@example.com")

	require.NoError(t, env.passwordReset.RequestOTP("ada@example.com"))
	first := issuedCode(t, env, "ada@example.com")

	require.NoError(t, env.passwordReset.RequestOTP("ada@example.com"))
	second := issuedCode(t, env, "ada@example.com")

	if first == second {
		t.Skip("codes collided, one in a million draw")
	}

	err := env.passwordReset.VerifyOTP("ada@example.com", first)
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.NoError(t, env.passwordReset.VerifyOTP("ada@example.com", second))
}

func TestVerifyOTPRejectsMalformedCodes(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ada@example.com")
	require.NoError(t, env.passwordReset.RequestOTP("ada@example.com"))

	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		err := env.passwordReset.VerifyOTP("ada@example.com", code)
		assert.ErrorIs(t, err, ErrInvalidOTP, "code %q", code)
	}
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ada@example.com")
	require.NoError(t, env.passwordReset.RequestOTP("ada@example.com"))
	code := issuedCode(t, env, "ada@example.com")

	_, err := env.db.Exec(`UPDATE password_reset_otps SET expires_at = $1 WHERE email = $2`,
		time.Now().UTC().Add(-time.Minute), "ada@example.com")
	require.NoError(t, err)

	err = env.passwordReset.VerifyOTP("ada@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestResetPasswordWeakPasswordKeepsCode(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ada@example.com")
	require.NoError(t, env.passwordReset.RequestOTP("ada@example.com"))
	code := issuedCode(t, env, "ada@example.com")

	errs, err := env.passwordReset.ResetPassword("ada@example.com", code, "weak", "weak")
	require.NoError(t, err)
	assert.Contains(t, errs, "password")

	// a rejected password does not burn the code
	assert.NoError(t, env.passwordReset.VerifyOTP("ada@example.com", code))

	// and the old password still works
	_, err = env.auth.Login("ada@example.com", testPassword, "", "")
	assert.NoError(t, err)
}

func TestResetPasswordConfirmationMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ada@example.com")
	require.NoError(t, env.passwordReset.RequestOTP("ada@example.com"))
	code := issuedCode(t, env, "ada@example.com")

	errs, err := env.passwordReset.ResetPassword("ada@example.com", code, "N3w!passphrase", "D1ff!passphrase")
	require.NoError(t, err)
	assert.Contains(t, errs, "password")
}

func TestGenerateOTPFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, model.OTPLength)
		for _, r := range code {
			assert.GreaterOrEqual(t, r, '0')
			assert.LessOrEqual(t, r, '9')
		}
	}
}

// wrongCode returns a syntactically valid code that differs from the
// issued one.
func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}
