package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"wisp/internal/intern"
	"wisp/internal/value"
)

// dynamoItem is the on-the-wire shape of one globals-table row: a
// partition key plus one column per value.Type, only one of which is
// ever populated. Mirroring the sqlite store's column layout keeps
// both backends symmetric even though DynamoDB itself is schemaless.
type dynamoItem struct {
	Name string `dynamodbav:"name"`
	Kind string `dynamodbav:"kind"`
	Num  float64 `dynamodbav:"num,omitempty"`
	Str  string  `dynamodbav:"str,omitempty"`
	Bool bool    `dynamodbav:"bool,omitempty"`
}

// DynamoDBStore persists globals as items in a DynamoDB table keyed
// solely by "name", so that a script run against the same table twice
// — in two separate processes — sees the globals the earlier run left
// behind. That is the entire point of a persistence backend; there is
// deliberately no per-process session id in the key.
type DynamoDBStore struct {
	client *dynamodb.Client
	table  string
	strs   *intern.Table
}

// OpenDynamoDB loads the default AWS config (region, credentials) from
// the environment and returns a store backed by table.
func OpenDynamoDB(ctx context.Context, table string, strs *intern.Table) (*DynamoDBStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &DynamoDBStore{
		client: dynamodb.NewFromConfig(cfg),
		table:  table,
		strs:   strs,
	}, nil
}

func (s *DynamoDBStore) Load(name string) (value.Value, bool, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"name": name})
	if err != nil {
		return value.Value{}, false, fmt.Errorf("marshaling key %q: %w", name, err)
	}

	out, err := s.client.GetItem(context.Background(), &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key,
	})
	if err != nil {
		return value.Value{}, false, fmt.Errorf("getting global %q: %w", name, err)
	}
	if out.Item == nil {
		return value.Value{}, false, nil
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return value.Value{}, false, fmt.Errorf("unmarshaling global %q: %w", name, err)
	}

	switch item.Kind {
	case "nil":
		return value.NilValue, true, nil
	case "bool":
		return value.NewBool(item.Bool), true, nil
	case "number":
		return value.NewNumber(item.Num), true, nil
	case "string":
		return value.NewString(s.strs.Intern(item.Str)), true, nil
	default:
		return value.Value{}, false, fmt.Errorf("global %q: unknown stored kind %q", name, item.Kind)
	}
}

func (s *DynamoDBStore) Store(name string, v value.Value) error {
	item := dynamoItem{Name: name}
	switch v.Type {
	case value.Nil:
		item.Kind = "nil"
	case value.Bool:
		item.Kind, item.Bool = "bool", v.Bool
	case value.Number:
		item.Kind, item.Num = "number", v.Number
	case value.String:
		item.Kind, item.Str = "string", s.strs.Lookup(v.Str)
	default:
		return fmt.Errorf("global %q: unsupported value type %s", name, v.Type)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling global %q: %w", name, err)
	}

	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("storing global %q: %w", name, err)
	}
	return nil
}

// EnsureTable creates the backing table if it does not already exist,
// with "name" as a string partition key — convenient for the CLI's
// --persist-dynamodb flag, which should work against a fresh table
// without a separate provisioning step.
func (s *DynamoDBStore) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("name"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("name"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("creating table %q: %w", s.table, err)
	}
	return nil
}
