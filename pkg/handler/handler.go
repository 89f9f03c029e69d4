// Package handler is a small runtime for functions that run either on AWS
// Lambda or behind a Lambda-compatible local HTTP server.
package handler

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"lambda-greeter/pkg/logger"
)

// Func processes one invocation event. It has no error return: functions
// are expected to turn every failure into a Response themselves.
type Func func(ctx context.Context, event Event) Response

// LambdaHandler adapts fn to the signature accepted by lambda.Start.
func LambdaHandler(fn Func) func(context.Context, json.RawMessage) (Response, error) {
	return func(ctx context.Context, payload json.RawMessage) (Response, error) {
		log := logger.FromCtx(ctx)
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			log = log.With(zap.String("aws_request_id", lc.AwsRequestID))
			ctx = logger.WithCtx(ctx, log)
		}

		event, err := DecodeEvent(payload)
		if err != nil {
			// The Lambda runtime only delivers valid JSON, so this is a
			// harness bug rather than a caller error.
			log.Warn("Discarding undecodable event", zap.Error(err))
			event = Event{}
		}

		return fn(ctx, event), nil
	}
}

// StartLambda hands control to the Lambda runtime. It does not return.
func StartLambda(fn Func) {
	lambda.Start(LambdaHandler(fn))
}
