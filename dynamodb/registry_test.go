package dynamodb

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ln80/symenc/core"
	"github.com/ln80/symenc/testutil"
)

// fakeClientAPI is an in-memory single-table ClientAPI double.
// It supports just enough of the query surface the registry relies on.
type fakeClientAPI struct {
	mu    sync.Mutex
	items []map[string]types.AttributeValue

	err error
}

var _ ClientAPI = &fakeClientAPI{}

func strAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeClientAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	pk, sk := strAttr(params.Item, HashKey), strAttr(params.Item, RangeKey)
	for i, item := range f.items {
		if strAttr(item, HashKey) == pk && strAttr(item, RangeKey) == sk {
			f.items[i] = params.Item
			return &dynamodb.PutItemOutput{}, nil
		}
	}
	f.items = append(f.items, params.Item)

	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClientAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	pk, sk := strAttr(params.Key, HashKey), strAttr(params.Key, RangeKey)
	for _, item := range f.items {
		if strAttr(item, HashKey) == pk && strAttr(item, RangeKey) == sk {
			return &dynamodb.GetItemOutput{Item: item}, nil
		}
	}

	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeClientAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	// recover the key condition operands from the expression values:
	// the sort key operand is the one carrying the cipher key prefix
	var pk, prefix string
	for _, v := range params.ExpressionAttributeValues {
		s, ok := v.(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if strings.HasPrefix(s.Value, cipherKeyPrefix) {
			prefix = s.Value
		} else {
			pk = s.Value
		}
	}

	matched := []map[string]types.AttributeValue{}
	for _, item := range f.items {
		if strAttr(item, HashKey) == pk && strings.HasPrefix(strAttr(item, RangeKey), prefix) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return strAttr(matched[i], RangeKey) < strAttr(matched[j], RangeKey)
	})
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	if params.Limit != nil && int(*params.Limit) < len(matched) {
		matched = matched[:*params.Limit]
	}

	return &dynamodb.QueryOutput{
		Items: matched,
		Count: int32(len(matched)),
	}, nil
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	testutil.RegistryTestSuite(t, ctx, NewRegistry(&fakeClientAPI{}, "table", testutil.RandomID()))
}

func TestRegistry_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	svc := &fakeClientAPI{}

	regA := NewRegistry(svc, "table", "tenant-a")
	regB := NewRegistry(svc, "table", "tenant-b")

	if _, err := regA.SetCipher(ctx, testutil.RandomCipher(1)); err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}

	if _, err := regB.CurrentCipher(ctx); !errors.Is(err, core.ErrNoCipherConfigured) {
		t.Fatalf("expect err be %v, got: %v", core.ErrNoCipherConfigured, err)
	}
	if _, err := regA.CurrentCipher(ctx); err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
}

func TestRegistry_InfraFailure(t *testing.T) {
	ctx := context.Background()
	svc := &fakeClientAPI{}
	reg := NewRegistry(svc, "table", testutil.RandomID())

	svc.err = errors.New("throughput exceeded")

	if _, err := reg.SetCipher(ctx, testutil.RandomCipher(1)); !errors.Is(err, core.ErrPersistCipherFailure) {
		t.Fatalf("expect err be %v, got: %v", core.ErrPersistCipherFailure, err)
	}
	if _, err := reg.CipherForVersion(ctx, 1); !errors.Is(err, core.ErrGetCipherFailure) {
		t.Fatalf("expect err be %v, got: %v", core.ErrGetCipherFailure, err)
	}
	if _, err := reg.CurrentCipher(ctx); !errors.Is(err, core.ErrGetCipherFailure) {
		t.Fatalf("expect err be %v, got: %v", core.ErrGetCipherFailure, err)
	}
	if _, err := reg.Ciphers(ctx); !errors.Is(err, core.ErrGetCipherFailure) {
		t.Fatalf("expect err be %v, got: %v", core.ErrGetCipherFailure, err)
	}
}

func TestRegistry_Panics(t *testing.T) {
	tcs := []func(){
		func() { NewRegistry(nil, "table", "tenant") },
		func() { NewRegistry(&fakeClientAPI{}, "", "tenant") },
	}

	for _, tc := range tcs {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Fatal("expect NewRegistry panics")
				}
			}()
			tc()
		}()
	}
}

func TestRegistry_RangeKeyOrder(t *testing.T) {
	// lexical order of the fixed-width sort key must match numeric order,
	// CurrentCipher depends on it to find the highest version
	if !(rangeKeyOf(2) < rangeKeyOf(10) && rangeKeyOf(10) < rangeKeyOf(255)) {
		t.Fatalf("expect range keys be numerically ordered, got: %q %q %q",
			rangeKeyOf(2), rangeKeyOf(10), rangeKeyOf(255))
	}
}

func TestRegistry_Integration(t *testing.T) {
	ctx := context.Background()

	testutil.WithDynamoDBTable(t, func(dbsvc *dynamodb.Client, table string) {
		testutil.RegistryTestSuite(t, ctx, NewRegistry(dbsvc, table, testutil.RandomID()))
	})
}
