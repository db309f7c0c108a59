package convert

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoker struct {
	payload []byte
	err     error
	seen    *lambda.InvokeInput
}

func (f *fakeInvoker) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	f.seen = params
	if f.err != nil {
		return nil, f.err
	}
	return &lambda.InvokeOutput{Payload: f.payload}, nil
}

func envelope(statusCode int, mp4 []byte) []byte {
	body, _ := json.Marshal(map[string]string{
		"mp4_base64": base64.StdEncoding.EncodeToString(mp4),
	})
	payload, _ := json.Marshal(map[string]any{
		"statusCode": statusCode,
		"body":       string(body),
	})
	return payload
}

func TestConvertSuccess(t *testing.T) {
	mp4 := []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}
	invoker := &fakeInvoker{payload: envelope(200, mp4)}
	converter := NewWithInvoker(invoker, "AVIupload")

	avi := []byte("RIFF....AVI ")
	got, err := converter.Convert(context.Background(), avi)
	require.NoError(t, err)
	assert.Equal(t, mp4, got)

	require.NotNil(t, invoker.seen)
	assert.Equal(t, "AVIupload", *invoker.seen.FunctionName)

	var payload struct {
		Body string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(invoker.seen.Payload, &payload))
	var body struct {
		AVIData string `json:"avi_data"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload.Body), &body))
	assert.Equal(t, base64.StdEncoding.EncodeToString(avi), body.AVIData)
}

func TestConvertNon200Envelope(t *testing.T) {
	converter := NewWithInvoker(&fakeInvoker{payload: envelope(500, nil)}, "AVIupload")

	_, err := converter.Convert(context.Background(), []byte("avi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversionFailed))
}

func TestConvertInvokeError(t *testing.T) {
	converter := NewWithInvoker(&fakeInvoker{err: fmt.Errorf("throttled")}, "AVIupload")

	_, err := converter.Convert(context.Background(), []byte("avi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversionFailed))
}

func TestConvertMalformedEnvelope(t *testing.T) {
	converter := NewWithInvoker(&fakeInvoker{payload: []byte("not json")}, "AVIupload")

	_, err := converter.Convert(context.Background(), []byte("avi"))
	assert.True(t, errors.Is(err, ErrConversionFailed))
}
