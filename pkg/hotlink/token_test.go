package hotlink_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/hotlink"
)

func newIssuer(t *testing.T, now func() time.Time) *hotlink.Issuer {
	t.Helper()
	issuer, err := hotlink.NewIssuer(
		hotlink.Config{Secret: "test-secret", MaxAge: time.Hour},
		hotlink.WithClock(now),
	)
	require.NoError(t, err)
	return issuer
}

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, time.Now)

	tok, err := issuer.Issue("file-1", "fp-abc")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	assert.NoError(t, issuer.Verify(tok, "file-1", "fp-abc"))
}

func TestIssuer_RejectsWrongBinding(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, time.Now)

	tok, err := issuer.Issue("file-1", "fp-abc")
	require.NoError(t, err)

	assert.ErrorIs(t, issuer.Verify(tok, "file-2", "fp-abc"), hotlink.ErrTokenMismatch)
	assert.ErrorIs(t, issuer.Verify(tok, "file-1", "fp-other"), hotlink.ErrTokenMismatch)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	t.Parallel()

	current := time.Now()
	issuer := newIssuer(t, func() time.Time { return current })

	tok, err := issuer.Issue("file-1", "fp-abc")
	require.NoError(t, err)

	current = current.Add(time.Hour + time.Minute)

	assert.ErrorIs(t, issuer.Verify(tok, "file-1", "fp-abc"), hotlink.ErrTokenExpired)
}

func TestIssuer_RejectsTampering(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, time.Now)

	tok, err := issuer.Issue("file-1", "fp-abc")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 2)

	// Flip the payload while keeping the original signature.
	forged := strings.ToUpper(parts[0][:4]) + parts[0][4:] + "." + parts[1]
	err = issuer.Verify(forged, "file-1", "fp-abc")
	assert.Error(t, err)

	assert.ErrorIs(t, issuer.Verify("not-a-token", "file-1", "fp-abc"), hotlink.ErrInvalidToken)
	assert.ErrorIs(t, issuer.Verify("a.b.c", "file-1", "fp-abc"), hotlink.ErrInvalidToken)
}

func TestIssuer_SecretMismatch(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, time.Now)

	other, err := hotlink.NewIssuer(hotlink.Config{Secret: "other-secret", MaxAge: time.Hour})
	require.NoError(t, err)

	tok, err := issuer.Issue("file-1", "fp-abc")
	require.NoError(t, err)

	assert.ErrorIs(t, other.Verify(tok, "file-1", "fp-abc"), hotlink.ErrSignatureInvalid)
}

func TestNewIssuer_Validation(t *testing.T) {
	t.Parallel()

	_, err := hotlink.NewIssuer(hotlink.Config{Secret: "", MaxAge: time.Hour})
	assert.ErrorIs(t, err, hotlink.ErrSecretRequired)

	_, err = hotlink.NewIssuer(hotlink.Config{Secret: "s", MaxAge: 0})
	assert.ErrorIs(t, err, hotlink.ErrInvalidMaxAge)
}
