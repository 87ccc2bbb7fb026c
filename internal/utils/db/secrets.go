package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/claimdesk/claims-crm/internal/config"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// secretGetter is the part of the Secrets Manager client we use.
type secretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// retrieveCredentials prefers DB_USERNAME/DB_PASSWORD and falls back to the
// JSON secret named by DB_SECRET_ID.
func retrieveCredentials(ctx context.Context, cfg *config.Config) (string, string, error) {
	if cfg.DBUsername != "" && cfg.DBPassword != "" {
		return cfg.DBUsername, cfg.DBPassword, nil
	}
	if cfg.DBSecretID == "" {
		return "", "", errors.New("database credentials missing: set DB_USERNAME/DB_PASSWORD or DB_SECRET_ID")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return "", "", fmt.Errorf("load aws config: %w", err)
	}
	creds, err := fetchSecret(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.DBSecretID)
	if err != nil {
		return "", "", err
	}
	return creds.Username, creds.Password, nil
}

func fetchSecret(ctx context.Context, client secretGetter, secretID string) (*Credentials, error) {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", secretID, err)
	}
	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", secretID)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &creds); err != nil {
		return nil, fmt.Errorf("decode secret %s: %w", secretID, err)
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("secret %s is missing username or password", secretID)
	}
	return &creds, nil
}
