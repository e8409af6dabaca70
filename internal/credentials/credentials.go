// Package credentials vends short-lived, tenant-scoped AWS credentials.
// Every credential set carries exactly one STS session tag, tenantId, which
// downstream leading-key access policies key off of; the vendor never emits
// credentials without that tag.
package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"

	domainerrors "github.com/voyagio/mcp-tenant-server/internal/errors"
)

const domain = "credentials"

// sessionTagKey is the single STS session tag every assumed role carries.
// Downstream bucket/table policies condition on aws:PrincipalTag/tenantId,
// so the tag key must never change and no other tag may be added here.
const sessionTagKey = "tenantId"

// TenantCredentials is a short-lived AWS credential set scoped to one
// tenant, plus the time it expires.
type TenantCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
	TenantID        string
}

// stsAPI is the subset of the STS client the vendor calls, so tests can
// substitute a fake without hitting the network.
type stsAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Vendor issues tenant-scoped credentials by assuming a single configured
// IAM role with a tenantId session tag.
type Vendor struct {
	client  stsAPI
	roleARN string
	ttl     time.Duration
}

// New builds a Vendor from ambient AWS configuration (environment,
// instance profile, or shared config file), matching the SDK v2
// config.LoadDefaultConfig idiom used throughout this codebase's AWS
// clients.
func New(ctx context.Context, region, roleARN string, ttl time.Duration) (*Vendor, error) {
	if roleARN == "" {
		return nil, domainerrors.New(domain, "New", domainerrors.ErrBadRequest,
			fmt.Errorf("ROLE_ARN is required")).WithContext("region", region)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, domainerrors.New(domain, "New", domainerrors.ErrInternal, err)
	}

	return &Vendor{
		client:  sts.NewFromConfig(awsCfg),
		roleARN: roleARN,
		ttl:     ttl,
	}, nil
}

// NewWithClient builds a Vendor around an already-configured STS client,
// used by tests to inject a fake.
func NewWithClient(client stsAPI, roleARN string, ttl time.Duration) *Vendor {
	return &Vendor{client: client, roleARN: roleARN, ttl: ttl}
}

// AssumeForTenant assumes the vendor's configured role, tagging the session
// with exactly one tag: tenantId=<tenantID>. The resulting credentials are
// valid only for actions that downstream policies gate on that principal
// tag, so tenant isolation is enforced by IAM, not by application code.
func (v *Vendor) AssumeForTenant(ctx context.Context, tenantID string) (*TenantCredentials, error) {
	if tenantID == "" {
		return nil, domainerrors.New(domain, "AssumeForTenant", domainerrors.ErrBadRequest,
			fmt.Errorf("tenantID is required"))
	}

	sessionName := "tenant-" + tenantID
	durationSeconds := int32(v.ttl.Seconds())

	out, err := v.client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(v.roleARN),
		RoleSessionName: aws.String(sessionName),
		DurationSeconds: aws.Int32(durationSeconds),
		Tags: []types.Tag{
			{Key: aws.String(sessionTagKey), Value: aws.String(tenantID)},
		},
	})
	if err != nil {
		return nil, domainerrors.New(domain, "AssumeForTenant", domainerrors.ErrInternal, err).
			WithContext("tenantId", tenantID)
	}

	if out.Credentials == nil {
		return nil, domainerrors.New(domain, "AssumeForTenant", domainerrors.ErrInternal,
			fmt.Errorf("AssumeRole returned no credentials")).WithContext("tenantId", tenantID)
	}

	return &TenantCredentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Expiration:      aws.ToTime(out.Credentials.Expiration),
		TenantID:        tenantID,
	}, nil
}
