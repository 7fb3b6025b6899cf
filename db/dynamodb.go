package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sesbouncy/sesbouncy/ops"
)

type DynamoDbClient interface {
	CreateTable(
		context.Context, *dynamodb.CreateTableInput, ...func(*dynamodb.Options),
	) (*dynamodb.CreateTableOutput, error)

	DescribeTable(
		context.Context,
		*dynamodb.DescribeTableInput,
		...func(*dynamodb.Options),
	) (*dynamodb.DescribeTableOutput, error)

	UpdateTimeToLive(
		context.Context,
		*dynamodb.UpdateTimeToLiveInput,
		...func(*dynamodb.Options),
	) (*dynamodb.UpdateTimeToLiveOutput, error)

	DeleteTable(
		context.Context, *dynamodb.DeleteTableInput, ...func(*dynamodb.Options),
	) (*dynamodb.DeleteTableOutput, error)

	PutItem(
		context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options),
	) (*dynamodb.PutItemOutput, error)

	Query(
		context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options),
	) (*dynamodb.QueryOutput, error)
}

// DynamoDb stores one item per recipient-level feedback record, keyed by the
// record's uuid.
//
// TimeLayout determines how timestamps marshal to attribute strings. The
// zero value marshals RFC 3339 with offset; events.NaiveTimeLayout drops the
// offset for installations that prefer naive UTC timestamps. Items written
// under one layout parse back only under the same layout.
//
// https://docs.aws.amazon.com/amazondynamodb/latest/developerguide/WorkingWithItems.html
type DynamoDb struct {
	Client     DynamoDbClient
	TableName  string
	TimeLayout string
}

func NewDynamoDb(
	awsConfig *aws.Config, tableName string, opts ...func(*dynamodb.Options),
) *DynamoDb {
	return &DynamoDb{
		Client:    dynamodb.NewFromConfig(*awsConfig, opts...),
		TableName: tableName,
	}
}

var DynamoDbPrimaryKey string = "id"

// Global Secondary Index keyed by recipient address, for per-address lookup.
var DynamoDbAddressIndexName string = "address"
var DynamoDbAddressIndexPartitionKey string = "address"

// Optional Time To Live attribute for external retention policies. Nothing
// here sets it; operators may backfill it to expire old records.
var DynamoDbTtlAttribute string = "ttl"

var DynamoDbIndexProjection *types.Projection = &types.Projection{
	ProjectionType: types.ProjectionTypeAll,
}

var DynamoDbCreateTableInput = &dynamodb.CreateTableInput{
	AttributeDefinitions: []types.AttributeDefinition{
		{
			AttributeName: &DynamoDbPrimaryKey,
			AttributeType: types.ScalarAttributeTypeS,
		},
		{
			AttributeName: &DynamoDbAddressIndexPartitionKey,
			AttributeType: types.ScalarAttributeTypeS,
		},
	},
	KeySchema: []types.KeySchemaElement{
		{AttributeName: &DynamoDbPrimaryKey, KeyType: types.KeyTypeHash},
	},
	BillingMode: types.BillingModePayPerRequest,
	GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
		{
			IndexName: &DynamoDbAddressIndexName,
			KeySchema: []types.KeySchemaElement{
				{
					AttributeName: &DynamoDbAddressIndexPartitionKey,
					KeyType:       types.KeyTypeHash,
				},
			},
			Projection: DynamoDbIndexProjection,
		},
	},
}

func (db *DynamoDb) CreateTable(ctx context.Context) (err error) {
	var input dynamodb.CreateTableInput = *DynamoDbCreateTableInput
	input.TableName = &db.TableName

	if _, err = db.Client.CreateTable(ctx, &input); err != nil {
		err = fmt.Errorf("failed to create db table %s: %s", db.TableName, err)
	}
	return
}

func (db *DynamoDb) WaitForTable(
	ctx context.Context, maxAttempts int, sleep func(),
) error {
	if maxAttempts <= 0 {
		const errFmt = "maxAttempts to wait for DB table must be >= 0, got: %d"
		return fmt.Errorf(errFmt, maxAttempts)
	}

	for current := 0; ; {
		td, err := db.DescribeTable(ctx)

		if err == nil && td.TableStatus == types.TableStatusActive {
			return nil
		} else if current++; current == maxAttempts {
			const errFmt = "db table %s not active after " +
				"%d attempts to check; last error: %s"
			return fmt.Errorf(errFmt, db.TableName, maxAttempts, err)
		}
		sleep()
	}
}

func (db *DynamoDb) DescribeTable(
	ctx context.Context,
) (td *types.TableDescription, err error) {
	input := &dynamodb.DescribeTableInput{TableName: &db.TableName}
	output, descErr := db.Client.DescribeTable(ctx, input)

	if descErr != nil {
		const errFmt = "failed to describe db table %s: %s"
		err = fmt.Errorf(errFmt, db.TableName, descErr)
	} else {
		td = output.Table
	}
	return
}

func (db *DynamoDb) UpdateTimeToLive(
	ctx context.Context,
) (ttlSpec *types.TimeToLiveSpecification, err error) {
	enabled := true
	spec := &types.TimeToLiveSpecification{
		AttributeName: &DynamoDbTtlAttribute, Enabled: &enabled,
	}
	input := &dynamodb.UpdateTimeToLiveInput{
		TableName: &db.TableName, TimeToLiveSpecification: spec,
	}

	var output *dynamodb.UpdateTimeToLiveOutput
	if output, err = db.Client.UpdateTimeToLive(ctx, input); err != nil {
		err = fmt.Errorf("failed to update Time To Live: %s", err)
	} else {
		ttlSpec = output.TimeToLiveSpecification
	}
	return
}

func (db *DynamoDb) DeleteTable(ctx context.Context) error {
	input := &dynamodb.DeleteTableInput{TableName: &db.TableName}
	if _, err := db.Client.DeleteTable(ctx, input); err != nil {
		return fmt.Errorf("failed to delete db table %s: %s", db.TableName, err)
	}
	return nil
}

type (
	dbBool       = types.AttributeValueMemberBOOL
	dbString     = types.AttributeValueMemberS
	dbNumber     = types.AttributeValueMemberN
	dbAttributes = map[string]types.AttributeValue
)

func (db *DynamoDb) timeLayout() string {
	if db.TimeLayout == "" {
		return time.RFC3339
	}
	return db.TimeLayout
}

func (db *DynamoDb) feedbackAttributes(record *Feedback) dbAttributes {
	attrs := dbAttributes{
		"id":             &dbString{Value: record.Id.String()},
		"kind":           &dbString{Value: string(record.Kind)},
		"sns_topic":      &dbString{Value: record.SnsTopic},
		"sns_message_id": &dbString{Value: record.SnsMessageId},
		"address":        &dbString{Value: record.Address},
		"mail_id":        &dbString{Value: record.MailId},
		"mail_from":      &dbString{Value: record.MailFrom},
		"mail_timestamp": db.timestampAttribute(record.MailTimestamp),
	}
	db.setOptionalString(attrs, "feedback_id", record.FeedbackId)
	db.setOptionalTime(attrs, "feedback_timestamp", record.FeedbackTimestamp)
	return attrs
}

func (db *DynamoDb) timestampAttribute(t time.Time) *dbString {
	return &dbString{Value: t.Format(db.timeLayout())}
}

// Optional record fields map to absent attributes, keeping empty values and
// missing values distinguishable on the way back out.
func (db *DynamoDb) setOptionalString(
	attrs dbAttributes, name string, value *string,
) {
	if value != nil {
		attrs[name] = &dbString{Value: *value}
	}
}

func (db *DynamoDb) setOptionalTime(
	attrs dbAttributes, name string, value *time.Time,
) {
	if value != nil {
		attrs[name] = db.timestampAttribute(*value)
	}
}

func (db *DynamoDb) PutBounce(
	ctx context.Context, record *Bounce,
) (err error) {
	attrs := db.feedbackAttributes(&record.Feedback)
	attrs["is_hard"] = &dbBool{Value: record.IsHard}
	attrs["bounce_type"] = &dbString{Value: record.BounceType}
	attrs["bounce_subtype"] = &dbString{Value: record.BounceSubType}
	db.setOptionalString(attrs, "reporting_mta", record.ReportingMta)
	db.setOptionalString(attrs, "action", record.Action)
	db.setOptionalString(attrs, "status", record.Status)
	db.setOptionalString(attrs, "diagnostic_code", record.DiagnosticCode)
	return db.putRecord(ctx, KindBounce, attrs)
}

func (db *DynamoDb) PutComplaint(
	ctx context.Context, record *Complaint,
) (err error) {
	attrs := db.feedbackAttributes(&record.Feedback)
	db.setOptionalString(attrs, "user_agent", record.UserAgent)
	db.setOptionalString(attrs, "feedback_type", record.FeedbackType)
	db.setOptionalTime(attrs, "arrival_date", record.ArrivalDate)
	return db.putRecord(ctx, KindComplaint, attrs)
}

func (db *DynamoDb) PutDelivery(
	ctx context.Context, record *Delivery,
) (err error) {
	attrs := db.feedbackAttributes(&record.Feedback)
	attrs["processing_time_ms"] = &dbNumber{
		Value: strconv.FormatInt(record.ProcessingTimeMs, 10),
	}
	attrs["smtp_response"] = &dbString{Value: record.SmtpResponse}
	db.setOptionalTime(attrs, "delivered_at", record.DeliveredAt)
	return db.putRecord(ctx, KindDelivery, attrs)
}

func (db *DynamoDb) putRecord(
	ctx context.Context, kind FeedbackKind, attrs dbAttributes,
) (err error) {
	input := &dynamodb.PutItemInput{Item: attrs, TableName: &db.TableName}

	if _, err = db.Client.PutItem(ctx, input); err != nil {
		err = ops.AwsError(fmt.Sprintf("failed to put %s record", kind), err)
	}
	return
}

func (db *DynamoDb) GetFeedbackForAddress(
	ctx context.Context, address string,
) (records []*Feedback, err error) {
	const errFmt = "failed to get feedback for %s: %s"
	var startKey dbAttributes

	for {
		input := &dynamodb.QueryInput{
			TableName: &db.TableName,
			IndexName: &DynamoDbAddressIndexName,
			KeyConditionExpression: aws.String(
				DynamoDbAddressIndexPartitionKey + " = :address",
			),
			ExpressionAttributeValues: dbAttributes{
				":address": &dbString{Value: address},
			},
			ExclusiveStartKey: startKey,
		}
		output, queryErr := db.Client.Query(ctx, input)

		if queryErr != nil {
			prefix := fmt.Sprintf("failed to get feedback for %s", address)
			return nil, ops.AwsError(prefix, queryErr)
		}

		errs := make([]error, 0, len(output.Items))
		for _, item := range output.Items {
			record, parseErr := db.parseFeedback(item)

			if parseErr != nil {
				errs = append(errs, parseErr)
			} else {
				records = append(records, record)
			}
		}
		if err = errors.Join(errs...); err != nil {
			return nil, fmt.Errorf(errFmt, address, err)
		}

		if len(output.LastEvaluatedKey) == 0 {
			return
		}
		startKey = output.LastEvaluatedKey
	}
}

type dbParser struct {
	attrs      dbAttributes
	timeLayout string
}

func (db *DynamoDb) parseFeedback(
	attrs dbAttributes,
) (record *Feedback, err error) {
	p := dbParser{attrs, db.timeLayout()}
	r := &Feedback{}
	errs := make([]error, 0, 8)
	addErr := func(e error) {
		if e != nil {
			errs = append(errs, e)
		}
	}

	var kind string
	addErr(p.assignUid(&r.Id, "id"))
	addErr(p.assignString(&kind, "kind"))
	addErr(p.assignString(&r.SnsTopic, "sns_topic"))
	addErr(p.assignString(&r.SnsMessageId, "sns_message_id"))
	addErr(p.assignString(&r.Address, "address"))
	addErr(p.assignString(&r.MailId, "mail_id"))
	addErr(p.assignString(&r.MailFrom, "mail_from"))
	addErr(p.assignTime(&r.MailTimestamp, "mail_timestamp"))
	r.Kind = FeedbackKind(kind)

	if fid, present, fidErr := p.optionalString("feedback_id"); fidErr != nil {
		addErr(fidErr)
	} else if present {
		r.FeedbackId = &fid
	}
	fts, present, ftsErr := p.optionalTime("feedback_timestamp")
	if ftsErr != nil {
		addErr(ftsErr)
	} else if present {
		r.FeedbackTimestamp = &fts
	}

	if err = errors.Join(errs...); err != nil {
		err = errors.New("failed to parse feedback record: " + err.Error())
	} else {
		record = r
	}
	return
}

func (p *dbParser) assignString(dest *string, name string) (err error) {
	*dest, err = getAttribute(
		name, p.attrs, func(attr *dbString) (string, error) {
			return attr.Value, nil
		},
	)
	return
}

func (p *dbParser) assignUid(dest *uuid.UUID, name string) (err error) {
	*dest, err = getAttribute(
		name, p.attrs, func(attr *dbString) (uuid.UUID, error) {
			return uuid.Parse(attr.Value)
		},
	)
	return
}

func (p *dbParser) assignTime(dest *time.Time, name string) (err error) {
	*dest, err = getAttribute(
		name, p.attrs, func(attr *dbString) (time.Time, error) {
			return time.Parse(p.timeLayout, attr.Value)
		},
	)
	return
}

func (p *dbParser) optionalString(
	name string,
) (value string, present bool, err error) {
	if _, present = p.attrs[name]; present {
		err = p.assignString(&value, name)
	}
	return
}

func (p *dbParser) optionalTime(
	name string,
) (value time.Time, present bool, err error) {
	if _, present = p.attrs[name]; present {
		err = p.assignTime(&value, name)
	}
	return
}

func getAttribute[T any, V any](
	name string, attrs dbAttributes, parse func(T) (V, error),
) (value V, err error) {
	if attr, ok := attrs[name]; !ok {
		err = fmt.Errorf("attribute '%s' not in: %+v", name, attrs)
	} else if dbAttr, ok := attr.(T); !ok {
		// Inspired by: https://stackoverflow.com/a/72626548
		const errFmt = "attribute '%s' is of type %T, not %T: %+v"
		err = fmt.Errorf(errFmt, name, attr, new(T), attr)
	} else if value, err = parse(dbAttr); err != nil {
		value = *new(V)
		const errFmt = "failed to parse '%s' from: %+v: %s"
		err = fmt.Errorf(errFmt, name, dbAttr, err)
	}
	return
}
