package cli

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockassist/platform/internal/infrastructure/crypto"
	"github.com/stockassist/platform/pkg/constants"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestSecretGenerate(t *testing.T) {
	out, err := execute(t, "secret", "generate", "--bytes", "48")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	assert.Len(t, raw, 48)

	// too short requests are raised to the minimum
	out, err = execute(t, "secret", "generate", "--bytes", "8")
	require.NoError(t, err)
	raw, err = base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	assert.Len(t, raw, constants.MinSigningKeyBytes)
}

func TestTokenIssue(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("cli-test-secret-that-is-long-enough"))
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt:\n  secret: "+secret+"\n"), 0o600))

	out, err := execute(t, "--config", path, "token", "issue", "--username", "alice", "--authorities", "ROLE_USER,ROLE_ADMIN")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, constants.BearerPrefix))

	key, err := crypto.LoadSigningKey(secret)
	require.NoError(t, err)
	claims, err := crypto.NewJWTCodec(key).ParseAndValidate(strings.TrimPrefix(out, constants.BearerPrefix))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, claims.Authorities)
}

func TestTokenIssue_RequiresUsername(t *testing.T) {
	_, err := execute(t, "token", "issue")
	assert.Error(t, err)
}

func TestNewUser(t *testing.T) {
	user, err := newUser("bob", "pa55word", "Bobby", []string{"ROLE_USER", "ROLE_ANALYST"})
	require.NoError(t, err)

	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "ROLE_USER,ROLE_ANALYST", user.AuthorityList)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "Bobby", user.Profile.Nickname)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pa55word")))

	user, err = newUser("carol", "x", "", nil)
	require.NoError(t, err)
	assert.Nil(t, user.Profile)
}
