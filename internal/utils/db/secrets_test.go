package db

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/claimdesk/claims-crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	value *string
	err   error
	asked string
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.asked = aws.ToString(in.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.value}, nil
}

func TestFetchSecret(t *testing.T) {
	t.Run("decodes username and password", func(t *testing.T) {
		f := &fakeSecrets{value: aws.String(`{"username":"claims","password":"s3cr3t"}`)}
		creds, err := fetchSecret(context.Background(), f, "prod/claims/db")
		require.NoError(t, err)
		assert.Equal(t, "prod/claims/db", f.asked)
		assert.Equal(t, "claims", creds.Username)
		assert.Equal(t, "s3cr3t", creds.Password)
	})

	t.Run("incomplete secret", func(t *testing.T) {
		f := &fakeSecrets{value: aws.String(`{"username":"claims"}`)}
		_, err := fetchSecret(context.Background(), f, "x")
		assert.Error(t, err)
	})

	t.Run("client error", func(t *testing.T) {
		f := &fakeSecrets{err: errors.New("access denied")}
		_, err := fetchSecret(context.Background(), f, "x")
		assert.ErrorContains(t, err, "access denied")
	})
}

func TestRetrieveCredentialsPrefersEnv(t *testing.T) {
	u, p, err := retrieveCredentials(context.Background(), &config.Config{DBUsername: "u", DBPassword: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", u)
	assert.Equal(t, "p", p)

	_, _, err = retrieveCredentials(context.Background(), &config.Config{})
	assert.Error(t, err)
}
