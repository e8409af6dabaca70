// Package resources implements the MCP ResourceDescriptor handlers this
// server exposes — currently the tenant travel policy document, read from
// S3 the same way the pack's S3-backed artifact store does (config.
// LoadDefaultConfig, bucket+key addressing, a HeadObject existence check
// ahead of the read so a missing policy maps cleanly to resource-not-found
// rather than an opaque S3 error).
package resources

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
	domainerrors "github.com/voyagio/mcp-tenant-server/internal/errors"
	"github.com/voyagio/mcp-tenant-server/internal/mcp"
)

const domain = "resources"

// ErrPolicyNotFound indicates the tenant has no policy document in the
// bucket.
var ErrPolicyNotFound = errors.New("resources: travel policy not found")

// s3API is the subset of the S3 client PolicyStore calls.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// PolicyStore reads tenant travel policy documents from S3. Every key is
// namespaced under the tenant id, so a PolicyStore shared across tenants
// still cannot serve one tenant's policy to another.
type PolicyStore struct {
	client s3API
	bucket string
}

// NewPolicyStore builds a PolicyStore from ambient AWS configuration.
func NewPolicyStore(ctx context.Context, region, bucket string) (*PolicyStore, error) {
	if bucket == "" {
		return nil, domainerrors.New(domain, "NewPolicyStore", domainerrors.ErrBadRequest,
			fmt.Errorf("BUCKET_NAME is required"))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, domainerrors.New(domain, "NewPolicyStore", domainerrors.ErrInternal, err)
	}

	return &PolicyStore{client: s3.NewFromConfig(awsCfg), bucket: bucket}, nil
}

// NewPolicyStoreWithClient builds a PolicyStore around an already
// configured client, used by tests to inject a fake.
func NewPolicyStoreWithClient(client s3API, bucket string) *PolicyStore {
	return &PolicyStore{client: client, bucket: bucket}
}

func (p *PolicyStore) key(tenantID string) string {
	return fmt.Sprintf("tenants/%s/policy.json", tenantID)
}

// Read fetches tenantID's policy document, returning ErrPolicyNotFound if
// none exists.
func (p *PolicyStore) Read(ctx context.Context, tenantID string) ([]byte, error) {
	key := p.key(tenantID)

	if _, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}); err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, domainerrors.New(domain, "Read", domainerrors.ErrInternal, err).
			WithContext("tenantId", tenantID)
	}

	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, domainerrors.New(domain, "Read", domainerrors.ErrInternal, err).
			WithContext("tenantId", tenantID)
	}
	defer func() { _ = out.Body.Close() }()

	return io.ReadAll(out.Body)
}

// TravelPolicyDescriptor builds the MCP resource descriptor for the tenant
// travel policy document, backed by store. The registered URI is a fixed
// placeholder; the handler always resolves the actual S3 key from
// ac.TenantID rather than from anything the client sent, so a verified
// caller can never read another tenant's policy.
func TravelPolicyDescriptor(store *PolicyStore) mcp.ResourceDescriptor {
	return mcp.ResourceDescriptor{
		Name:        "travel_policy",
		URI:         "travelpolicy://tenant/policy.json",
		Description: "The calling tenant's travel booking policy document.",
		MimeType:    "application/json",
		Visibility:  mcp.VisibilityAuthenticated,
		Handler: func(ctx context.Context, ac *authctx.AuthContext) (*mcp.ResourceContentPayload, error) {
			if ac == nil || ac.TenantID == "" {
				return nil, fmt.Errorf("resources: no tenant id on verified context")
			}
			body, err := store.Read(ctx, ac.TenantID)
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContentPayload{
				URI:      fmt.Sprintf("travelpolicy://%s/policy.json", ac.TenantID),
				MimeType: "application/json",
				Text:     string(body),
			}, nil
		},
	}
}
