package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type AmericanoStackProps struct {
	awscdk.StackProps
}

func NewAmericanoStack(scope constructs.Construct, id string, props *AmericanoStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	exportBucket := awss3.NewBucket(stack, jsii.String("AmericanoExports"), &awss3.BucketProps{
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		RemovalPolicy:     awscdk.RemovalPolicy_RETAIN,
		Versioned:         jsii.Bool(true),
	})

	lambdaFn := awslambda.NewFunction(stack, jsii.String("AmericanoApi"), &awslambda.FunctionProps{
		Runtime: awslambda.Runtime_PROVIDED_AL2023(),
		Handler: jsii.String("bootstrap"),
		Code:    awslambda.Code_FromAsset(jsii.String("../"), nil),
		Environment: &map[string]*string{
			"APP":                 jsii.String("prod"),
			"LOG_LEVEL":           jsii.String("info"),
			"POSTGRES_DSN":        jsii.String(os.Getenv("POSTGRES_DSN")),
			"JWT_SECRET":          jsii.String(os.Getenv("JWT_SECRET")),
			"ADMIN_PASSWORD_HASH": jsii.String(os.Getenv("ADMIN_PASSWORD_HASH")),
			"CORS_ORIGINS":        jsii.String(os.Getenv("CORS_ORIGINS")),
			"EXPORT_BUCKET":       exportBucket.BucketName(),
			"EXPORT_REGION":       stack.Region(),
		},
	})

	exportBucket.GrantReadWrite(lambdaFn, nil)

	awsapigateway.NewLambdaRestApi(stack, jsii.String("AmericanoApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ExportBucketName"), &awscdk.CfnOutputProps{Value: exportBucket.BucketName()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewAmericanoStack(app, "AmericanoStack", &AmericanoStackProps{})
	app.Synth(nil)
}
