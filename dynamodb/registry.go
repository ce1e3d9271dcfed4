// Package dynamodb contains a persistent cipher registry implementation
// built on top of a Dynamodb table. It serves as the provisioning store that
// keeps cipher versions across process restarts.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ln80/symenc/core"
)

const (
	HashKey  = "_pk"
	RangeKey = "_sk"
)

const (
	cipherKeyPrefix = "cipher#"
)

// CipherItem presents the Dynamodb record of a single cipher version.
type CipherItem struct {
	HashKey   string `dynamodbav:"_pk"`
	RangeKey  string `dynamodbav:"_sk"`
	Namespace string `dynamodbav:"_nspace"`
	Version   int    `dynamodbav:"_v"`
	Key       []byte `dynamodbav:"_ckey"`
	IV        []byte `dynamodbav:"_civ"`
	Algorithm string `dynamodbav:"_alg,omitempty"`
	CreatedAt int64  `dynamodbav:"_cr_at"`
}

func (item CipherItem) cipher() core.Cipher {
	return core.Cipher{
		Version:   item.Version,
		Key:       core.Key(item.Key),
		IV:        item.IV,
		Algorithm: core.Algorithm(item.Algorithm),
	}
}

// rangeKeyOf formats the version as a fixed-width sort key
// so that lexical order matches numeric order.
func rangeKeyOf(version int) string {
	return fmt.Sprintf("%s%03d", cipherKeyPrefix, version)
}

type registry struct {
	svc       ClientAPI
	table     string
	namespace string
}

var _ core.CipherRegistry = &registry{}

// NewRegistry returns a core.CipherRegistry implementation built on top of a Dynamodb table.
//
// It requires non-empty values for the Dynamodb client service and table name parameters.
// Otherwise, it will panic.
func NewRegistry(svc ClientAPI, table, namespace string) core.CipherRegistry {
	if svc == nil {
		panic("invalid Dynamodb client service, nil value found")
	}
	if table == "" {
		panic("invalid Dynamodb table name, empty value found")
	}
	if namespace == "" {
		namespace = "default"
	}

	return &registry{
		svc:       svc,
		table:     table,
		namespace: namespace,
	}
}

// SetCipher implements core.CipherRegistry
func (r *registry) SetCipher(ctx context.Context, cipher core.Cipher) (core.Cipher, error) {
	if err := cipher.Validate(); err != nil {
		return core.Cipher{}, err
	}

	item := CipherItem{
		HashKey:   r.namespace,
		RangeKey:  rangeKeyOf(cipher.Version),
		Namespace: r.namespace,
		Version:   cipher.Version,
		Key:       []byte(cipher.Key),
		IV:        cipher.IV,
		Algorithm: string(cipher.Algorithm),
		CreatedAt: time.Now().UTC().Unix(),
	}

	mi, err := attributevalue.MarshalMap(item)
	if err != nil {
		return core.Cipher{}, fmt.Errorf("%w: failed to marshal cipher item", core.ErrPersistCipherFailure)
	}

	// replacing an existing version is allowed, the put is atomic per item
	if _, err := r.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      mi,
	}); err != nil {
		return core.Cipher{}, fmt.Errorf("%w: concerned version %d: %v",
			core.ErrPersistCipherFailure, cipher.Version, err)
	}

	return cipher, nil
}

// CipherForVersion implements core.CipherRegistry
func (r *registry) CipherForVersion(ctx context.Context, version int) (core.Cipher, error) {
	out, err := r.svc.GetItem(ctx, &dynamodb.GetItemInput{
		Key: map[string]types.AttributeValue{
			HashKey:  &types.AttributeValueMemberS{Value: r.namespace},
			RangeKey: &types.AttributeValueMemberS{Value: rangeKeyOf(version)},
		},
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return core.Cipher{}, fmt.Errorf("%w: %v", core.ErrGetCipherFailure, err)
	}
	if len(out.Item) == 0 {
		return core.Cipher{}, fmt.Errorf("%w: version %d", core.ErrUnknownCipherVersion, version)
	}

	item := CipherItem{}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return core.Cipher{}, fmt.Errorf("%w: failed to unmarshal cipher item", core.ErrGetCipherFailure)
	}

	return item.cipher(), nil
}

// CurrentCipher implements core.CipherRegistry
func (r *registry) CurrentCipher(ctx context.Context) (core.Cipher, error) {
	expr, err := expression.
		NewBuilder().
		WithKeyCondition(
			expression.Key(HashKey).Equal(expression.Value(r.namespace)).
				And(expression.Key(RangeKey).BeginsWith(cipherKeyPrefix)),
		).Build()
	if err != nil {
		return core.Cipher{}, fmt.Errorf("%w: failed to build query", core.ErrGetCipherFailure)
	}

	out, err := r.svc.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
		ConsistentRead:            aws.Bool(true),
	})
	if err != nil {
		return core.Cipher{}, fmt.Errorf("%w: %v", core.ErrGetCipherFailure, err)
	}
	if len(out.Items) == 0 {
		return core.Cipher{}, core.ErrNoCipherConfigured
	}

	item := CipherItem{}
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return core.Cipher{}, fmt.Errorf("%w: failed to unmarshal cipher item", core.ErrGetCipherFailure)
	}

	return item.cipher(), nil
}

// Ciphers implements core.CipherRegistry
func (r *registry) Ciphers(ctx context.Context) ([]core.Cipher, error) {
	expr, err := expression.
		NewBuilder().
		WithKeyCondition(
			expression.Key(HashKey).Equal(expression.Value(r.namespace)).
				And(expression.Key(RangeKey).BeginsWith(cipherKeyPrefix)),
		).Build()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build query", core.ErrGetCipherFailure)
	}

	p := dynamodb.NewQueryPaginator(r.svc, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	ciphers := []core.Cipher{}
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrGetCipherFailure, err)
		}

		items := []CipherItem{}
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal cipher items", core.ErrGetCipherFailure)
		}
		for _, item := range items {
			ciphers = append(ciphers, item.cipher())
		}
	}

	return ciphers, nil
}
