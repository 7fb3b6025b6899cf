//go:build small_tests || all_tests

package db

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sesbouncy/sesbouncy/testutils"
)

// TestDatabase is a Database double capturing stored records in order.
type TestDatabase struct {
	Bounces        []*Bounce
	Complaints     []*Complaint
	Deliveries     []*Delivery
	PutErr         error
	Feedback       []*Feedback
	GotAddresses   []string
	GetFeedbackErr error
}

func (dbase *TestDatabase) PutBounce(
	_ context.Context, record *Bounce,
) error {
	if dbase.PutErr != nil {
		return dbase.PutErr
	}
	dbase.Bounces = append(dbase.Bounces, record)
	return nil
}

func (dbase *TestDatabase) PutComplaint(
	_ context.Context, record *Complaint,
) error {
	if dbase.PutErr != nil {
		return dbase.PutErr
	}
	dbase.Complaints = append(dbase.Complaints, record)
	return nil
}

func (dbase *TestDatabase) PutDelivery(
	_ context.Context, record *Delivery,
) error {
	if dbase.PutErr != nil {
		return dbase.PutErr
	}
	dbase.Deliveries = append(dbase.Deliveries, record)
	return nil
}

func (dbase *TestDatabase) GetFeedbackForAddress(
	_ context.Context, address string,
) ([]*Feedback, error) {
	dbase.GotAddresses = append(dbase.GotAddresses, address)

	if dbase.GetFeedbackErr != nil {
		return nil, dbase.GetFeedbackErr
	}

	records := make([]*Feedback, 0, len(dbase.Feedback))
	for _, record := range dbase.Feedback {
		if record.Address == address {
			records = append(records, record)
		}
	}
	return records, nil
}

// TestDynamoDbClient captures PutItem and Query traffic so the record
// marshaling and pagination paths can be tested without a live table.
//
// dynamodb_contract_test.go covers the table management operations against a
// real local DynamoDB; the canned *Output members here let CreateFeedbackTable
// wiring be tested quickly on top of that.
type TestDynamoDbClient struct {
	ServerErr         error
	CreateTableInput  *dynamodb.CreateTableInput
	CreateTableOutput *dynamodb.CreateTableOutput
	CreateTableErr    error
	DescTableInput    *dynamodb.DescribeTableInput
	DescTableOutput   *dynamodb.DescribeTableOutput
	DescTableErr      error
	UpdateTtlInput    *dynamodb.UpdateTimeToLiveInput
	UpdateTtlOutput   *dynamodb.UpdateTimeToLiveOutput
	UpdateTtlErr      error
	PutItems          []dbAttributes
	PutErr            error
	QueryPages        []dbAttributes
	QueryPageSize     int
	QueryInputs       []*dynamodb.QueryInput
	QueryErr          error
}

// NewTestDynamoDbClient returns an initialized TestDynamoDbClient.
//
// Specifically, all of its *Output members are initialized to default non-nil
// values.
func NewTestDynamoDbClient() *TestDynamoDbClient {
	tableDesc := &types.TableDescription{
		TableName:   aws.String(""),
		TableStatus: types.TableStatusActive,
	}

	return &TestDynamoDbClient{
		CreateTableOutput: &dynamodb.CreateTableOutput{
			TableDescription: tableDesc,
		},
		DescTableOutput: &dynamodb.DescribeTableOutput{Table: tableDesc},
		UpdateTtlOutput: &dynamodb.UpdateTimeToLiveOutput{
			TimeToLiveSpecification: &types.TimeToLiveSpecification{},
		},
	}
}

func (client *TestDynamoDbClient) SetAllErrors(msg string) {
	err := testutils.AwsServerError(msg)
	client.ServerErr = err
	client.CreateTableErr = err
	client.DescTableErr = err
	client.UpdateTtlErr = err
	client.PutErr = err
	client.QueryErr = err
}

func (client *TestDynamoDbClient) SetCreateTableError(msg string) {
	client.CreateTableErr = testutils.AwsServerError(msg)
}

func (client *TestDynamoDbClient) SetDescribeTableError(msg string) {
	client.DescTableErr = testutils.AwsServerError(msg)
}

func (client *TestDynamoDbClient) SetUpdateTimeToLiveError(msg string) {
	client.UpdateTtlErr = testutils.AwsServerError(msg)
}

func (client *TestDynamoDbClient) SetPutItemError(msg string) {
	client.PutErr = testutils.AwsServerError(msg)
}

func (client *TestDynamoDbClient) SetQueryError(msg string) {
	client.QueryErr = testutils.AwsServerError(msg)
}

func (client *TestDynamoDbClient) CreateTable(
	_ context.Context,
	input *dynamodb.CreateTableInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.CreateTableOutput, error) {
	client.CreateTableInput = input
	return client.CreateTableOutput, client.CreateTableErr
}

func (client *TestDynamoDbClient) DescribeTable(
	_ context.Context,
	input *dynamodb.DescribeTableInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.DescribeTableOutput, error) {
	client.DescTableInput = input
	return client.DescTableOutput, client.DescTableErr
}

func (client *TestDynamoDbClient) UpdateTimeToLive(
	_ context.Context,
	input *dynamodb.UpdateTimeToLiveInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.UpdateTimeToLiveOutput, error) {
	client.UpdateTtlInput = input
	return client.UpdateTtlOutput, client.UpdateTtlErr
}

func (client *TestDynamoDbClient) DeleteTable(
	context.Context, *dynamodb.DeleteTableInput, ...func(*dynamodb.Options),
) (*dynamodb.DeleteTableOutput, error) {
	return nil, client.ServerErr
}

func (client *TestDynamoDbClient) PutItem(
	_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options),
) (*dynamodb.PutItemOutput, error) {
	if client.PutErr != nil {
		return nil, client.PutErr
	}
	client.PutItems = append(client.PutItems, input.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (client *TestDynamoDbClient) addFeedbackRecord(attrs dbAttributes) {
	client.QueryPages = append(client.QueryPages, attrs)
}

// AddFeedback makes subsequent Query calls return the record, marshaled
// with the default timestamp layout.
func (client *TestDynamoDbClient) AddFeedback(record *Feedback) {
	dyndb := &DynamoDb{}
	client.addFeedbackRecord(dyndb.feedbackAttributes(record))
}

// Query pages through QueryPages in chunks of QueryPageSize (everything at
// once when zero), using the record id as the pagination key.
func (client *TestDynamoDbClient) Query(
	_ context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options),
) (output *dynamodb.QueryOutput, err error) {
	client.QueryInputs = append(client.QueryInputs, input)

	if client.QueryErr != nil {
		return nil, client.QueryErr
	}

	getId := func(attrs dbAttributes) (id string) {
		if attr, ok := attrs["id"].(*dbString); ok {
			id = attr.Value
		}
		return
	}

	startId := getId(input.ExclusiveStartKey)
	started := len(startId) == 0
	items := make([]dbAttributes, 0, len(client.QueryPages))
	var lastKey dbAttributes

	for i, record := range client.QueryPages {
		if !started {
			started = getId(record) == startId
			continue
		}
		items = append(items, record)

		atPageLimit := client.QueryPageSize != 0 &&
			len(items) == client.QueryPageSize
		if atPageLimit {
			if i != (len(client.QueryPages) - 1) {
				lastKey = dbAttributes{"id": record["id"]}
			}
			break
		}
	}
	output = &dynamodb.QueryOutput{Items: items, LastEvaluatedKey: lastKey}
	return
}
