package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// LoadSSMParameters reads every parameter below path, decrypted, using the default
// AWS credential chain.
func LoadSSMParameters(ctx context.Context, path string) (map[string]string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return readParameters(ctx, ssm.NewFromConfig(awsCfg), path)
}

func readParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, prefix string) (map[string]string, error) {
	params := make(map[string]string)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range page.Parameters {
			params[parameterKey(aws.ToString(p.Name))] = aws.ToString(p.Value)
		}
	}

	return params, nil
}

// parameterKey turns "/taskmanager/prod/session-secret" into "SESSION_SECRET".
func parameterKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(path.Base(name), "-", "_"))
}
