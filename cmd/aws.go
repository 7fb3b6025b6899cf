package cmd

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sesbouncy/sesbouncy/db"
	"github.com/sesbouncy/sesbouncy/email"
	"github.com/sesbouncy/sesbouncy/ops"
)

var AwsConfig aws.Config = ops.MustLoadDefaultAwsConfig()

type DynamoDbFactoryFunc func(tableName string) *db.DynamoDb

func NewDynamoDb(tableName string) *db.DynamoDb {
	return db.NewDynamoDb(&AwsConfig, tableName)
}

type SesV2FactoryFunc func() email.SesV2Api

func NewSesV2Client() email.SesV2Api {
	return sesv2.NewFromConfig(AwsConfig)
}
