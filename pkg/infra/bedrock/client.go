package bedrock

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRegion      = "us-east-1"
	DefaultSessionName = "ModerationVisionSession"
)

// Runtime is the subset of the Bedrock runtime API the vision checker uses.
type Runtime interface {
	InvokeModel(
		ctx context.Context,
		params *bedrockruntime.InvokeModelInput,
		optFns ...func(*bedrockruntime.Options),
	) (*bedrockruntime.InvokeModelOutput, error)
}

type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	UseRole      bool
	RoleARN      string
	SessionName  string
}

func (c Credentials) key() string {
	return fmt.Sprintf("%s:%s:%v:%s:%s", c.AccessKey, c.Region, c.UseRole, c.RoleARN, c.SessionName)
}

type Client interface {
	// BuildClient returns a cached runtime client for the credentials,
	// creating it on first use.
	BuildClient(ctx context.Context, creds Credentials) (Runtime, error)
}

type client struct {
	pool sync.Map
	sf   singleflight.Group
}

func NewClient() Client {
	return &client{}
}

func (c *client) BuildClient(ctx context.Context, creds Credentials) (Runtime, error) {
	if creds.Region == "" {
		creds.Region = DefaultRegion
	}
	key := creds.key()
	if v, ok := c.pool.Load(key); ok {
		if rt, ok := v.(*bedrockruntime.Client); ok {
			return rt, nil
		}
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if v, ok := c.pool.Load(key); ok {
			return v, nil
		}
		awsCfg, err := buildAwsConfig(ctx, creds)
		if err != nil {
			return nil, err
		}
		rt := bedrockruntime.NewFromConfig(awsCfg)
		c.pool.Store(key, rt)
		return rt, nil
	})
	if err != nil {
		return nil, err
	}
	rt, ok := v.(*bedrockruntime.Client)
	if !ok {
		return nil, fmt.Errorf("invalid client type in pool")
	}
	return rt, nil
}

func buildAwsConfig(ctx context.Context, creds Credentials) (aws.Config, error) {
	if creds.AccessKey == "" {
		// Fall back to the default chain (env, shared config, instance role).
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(creds.Region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return cfg, nil
	}

	if creds.UseRole && creds.RoleARN != "" {
		assumed, err := assumeRole(ctx, creds)
		if err != nil {
			return aws.Config{}, err
		}
		return assumed, nil
	}

	return loadStaticConfig(ctx, creds.AccessKey, creds.SecretKey, creds.SessionToken, creds.Region)
}

func loadStaticConfig(ctx context.Context, accessKey, secretKey, sessionToken, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     accessKey,
					SecretAccessKey: secretKey,
					SessionToken:    sessionToken,
				}, nil
			},
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func assumeRole(ctx context.Context, creds Credentials) (aws.Config, error) {
	baseCfg, err := loadStaticConfig(ctx, creds.AccessKey, creds.SecretKey, creds.SessionToken, creds.Region)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load base AWS config: %w", err)
	}

	sessionName := creds.SessionName
	if sessionName == "" {
		sessionName = DefaultSessionName
	}
	output, err := sts.NewFromConfig(baseCfg).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(creds.RoleARN),
		RoleSessionName: aws.String(sessionName),
	})
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to assume role: %w", err)
	}
	if output.Credentials == nil {
		return aws.Config{}, fmt.Errorf("assume role returned no credentials")
	}
	return loadStaticConfig(ctx,
		aws.ToString(output.Credentials.AccessKeyId),
		aws.ToString(output.Credentials.SecretAccessKey),
		aws.ToString(output.Credentials.SessionToken),
		creds.Region,
	)
}
