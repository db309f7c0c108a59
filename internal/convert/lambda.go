package convert

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	appconfig "photolock/api/internal/config"
)

var ErrConversionFailed = errors.New("conversion failed")

// Invoker is the slice of the Lambda API the converter needs.
type Invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaConverter transcodes a legacy AVI container into a web-playable MP4 by
// invoking the remote conversion function.
type LambdaConverter struct {
	client       Invoker
	functionName string
}

func NewLambdaConverter(ctx context.Context, cfg appconfig.ConvertConfig) (*LambdaConverter, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &LambdaConverter{
		client:       lambda.NewFromConfig(awsCfg),
		functionName: cfg.FunctionName,
	}, nil
}

// NewWithInvoker wires a converter onto an existing Lambda client; tests use
// it to substitute a fake.
func NewWithInvoker(client Invoker, functionName string) *LambdaConverter {
	return &LambdaConverter{client: client, functionName: functionName}
}

type invokePayload struct {
	Body string `json:"body"`
}

type invokeBody struct {
	AVIData string `json:"avi_data"`
}

type responseEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type responseBody struct {
	MP4Base64 string `json:"mp4_base64"`
}

// Convert sends the AVI bytes through the conversion function and decodes the
// resulting MP4. Any transport error or non-200 envelope is a conversion
// failure; the caller decides what that means for the attachment.
func (c *LambdaConverter) Convert(ctx context.Context, avi []byte) ([]byte, error) {
	body, err := json.Marshal(invokeBody{AVIData: base64.StdEncoding.EncodeToString(avi)})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrConversionFailed, err)
	}
	payload, err := json.Marshal(invokePayload{Body: string(body)})
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrConversionFailed, err)
	}

	out, err := c.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(c.functionName),
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invoke %s: %v", ErrConversionFailed, c.functionName, err)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(out.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrConversionFailed, err)
	}
	if envelope.StatusCode != 200 {
		return nil, fmt.Errorf("%w: function returned status %d", ErrConversionFailed, envelope.StatusCode)
	}

	var result responseBody
	if err := json.Unmarshal([]byte(envelope.Body), &result); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrConversionFailed, err)
	}

	mp4, err := base64.StdEncoding.DecodeString(result.MP4Base64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode mp4 payload: %v", ErrConversionFailed, err)
	}
	return mp4, nil
}
