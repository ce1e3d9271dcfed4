package kms

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// Client presents an interface for a sub-part of the AWS KMS client service:
// github.com/aws/aws-sdk-go-v2/service/kms
type Client interface {
	GenerateDataKey(ctx context.Context, params *kms.GenerateDataKeyInput, optFns ...func(*kms.Options)) (*kms.GenerateDataKeyOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}
