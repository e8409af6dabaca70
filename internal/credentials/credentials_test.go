package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
)

type fakeSTS struct {
	lastInput *sts.AssumeRoleInput
	output    *sts.AssumeRoleOutput
	err       error
}

func (f *fakeSTS) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func TestVendor_AssumeForTenant_TagsSessionWithTenantID(t *testing.T) {
	t.Parallel()

	expiry := time.Now().Add(15 * time.Minute)
	fake := &fakeSTS{
		output: &sts.AssumeRoleOutput{
			Credentials: &types.Credentials{
				AccessKeyId:     aws.String("AKIA..."),
				SecretAccessKey: aws.String("secret"),
				SessionToken:    aws.String("token"),
				Expiration:      aws.Time(expiry),
			},
		},
	}

	v := NewWithClient(fake, "arn:aws:iam::123456789012:role/tenant-access", 15*time.Minute)

	creds, err := v.AssumeForTenant(context.Background(), "tenant-42")
	if err != nil {
		t.Fatalf("AssumeForTenant() error = %v", err)
	}

	if creds.TenantID != "tenant-42" {
		t.Errorf("TenantID = %q, want tenant-42", creds.TenantID)
	}
	if creds.AccessKeyID != "AKIA..." {
		t.Errorf("AccessKeyID = %q, want AKIA...", creds.AccessKeyID)
	}

	if fake.lastInput == nil {
		t.Fatal("AssumeRole was not called")
	}
	if len(fake.lastInput.Tags) != 1 {
		t.Fatalf("session tags = %d, want exactly 1", len(fake.lastInput.Tags))
	}
	tag := fake.lastInput.Tags[0]
	if aws.ToString(tag.Key) != "tenantId" {
		t.Errorf("tag key = %q, want tenantId", aws.ToString(tag.Key))
	}
	if aws.ToString(tag.Value) != "tenant-42" {
		t.Errorf("tag value = %q, want tenant-42", aws.ToString(tag.Value))
	}
	if aws.ToString(fake.lastInput.RoleArn) != "arn:aws:iam::123456789012:role/tenant-access" {
		t.Errorf("RoleArn = %q, want configured role", aws.ToString(fake.lastInput.RoleArn))
	}
}

func TestVendor_AssumeForTenant_EmptyTenantIDRejected(t *testing.T) {
	t.Parallel()

	v := NewWithClient(&fakeSTS{}, "arn:aws:iam::123456789012:role/tenant-access", 15*time.Minute)

	if _, err := v.AssumeForTenant(context.Background(), ""); err == nil {
		t.Error("AssumeForTenant(\"\") should return an error")
	}
}

func TestVendor_AssumeForTenant_STSFailurePropagates(t *testing.T) {
	t.Parallel()

	fake := &fakeSTS{err: errors.New("access denied")}
	v := NewWithClient(fake, "arn:aws:iam::123456789012:role/tenant-access", 15*time.Minute)

	if _, err := v.AssumeForTenant(context.Background(), "tenant-42"); err == nil {
		t.Error("AssumeForTenant() should propagate STS errors")
	}
}

func TestNew_RequiresRoleARN(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), "us-east-1", "", time.Minute); err == nil {
		t.Error("New() with empty roleARN should return an error")
	}
}
