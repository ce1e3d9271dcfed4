package testutil

import (
	"context"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Hash & Range keys must be equals to ones defined in dynamodb package and used for cipher storage
const (
	HashKey  string = "_pk"
	RangeKey string = "_sk"
)

var (
	dbsvc  *dynamodb.Client
	dbonce sync.Once
	rdm    = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func genTableName(prefix string) string {
	now := strconv.FormatInt(time.Now().UnixNano(), 36)
	random := strconv.FormatInt(int64(rdm.Int31()), 36)
	return prefix + "-" + now + "-" + random
}

// WithDynamoDBTable runs the given test function against a disposable table on
// a local Dynamodb endpoint. The test is skipped when no endpoint is configured.
func WithDynamoDBTable(t *testing.T, tfn func(dbsvc *dynamodb.Client, table string)) {
	ctx := context.Background()

	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("dynamodb test endpoint not found")
	}

	dbonce.Do(func() {
		cfg, err := config.LoadDefaultConfig(
			ctx,
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("TEST", "TEST", "TEST"),
			),
		)
		if err != nil {
			t.Fatal(err)
		}
		dbsvc = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.EndpointResolver = dynamodb.EndpointResolverFromURL(endpoint)
		})
	})

	table := genTableName("symenc-cipher")

	if _, err := dbsvc.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(HashKey), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(RangeKey), KeyType: types.KeyTypeRange},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(HashKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(RangeKey), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	}); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if _, err := dbsvc.DeleteTable(ctx, &dynamodb.DeleteTableInput{
			TableName: aws.String(table),
		}); err != nil {
			t.Log("failed to remove test table", table, err)
		}
	}()

	tfn(dbsvc, table)
}
