package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/bloodwork/internal/async"
	"github.com/joseph-ayodele/bloodwork/internal/common"
	"github.com/joseph-ayodele/bloodwork/internal/pipeline"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bloodwork.v1.PredictionService"

const predictMethod = "/" + ServiceName + "/Predict"

// PredictionServer is the server API for the prediction service. Requests
// and responses are google.protobuf.Struct values:
//
//	request:  {"path": "/abs/path/to/report.pdf"}
//	response: {"prediction", "confidence", "extracted_data", "imputed_fields"}
type PredictionServer interface {
	Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func _PredictionService_Predict_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: predictMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictionServer).Predict(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// PredictionServiceDesc describes the service for grpc.Server.
var PredictionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: _PredictionService_Predict_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bloodwork/v1/prediction.proto",
}

func RegisterPredictionServiceServer(s grpc.ServiceRegistrar, srv PredictionServer) {
	s.RegisterService(&PredictionServiceDesc, srv)
}

// PredictionClient calls the prediction service.
type PredictionClient struct {
	cc grpc.ClientConnInterface
}

func NewPredictionClient(cc grpc.ClientConnInterface) *PredictionClient {
	return &PredictionClient{cc: cc}
}

// Predict asks the server to process the document at path, which must be
// readable by the server process.
func (c *PredictionClient) Predict(ctx context.Context, path string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, predictMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Submitter runs one document. *async.ProcessorQueue implements it.
type Submitter interface {
	Submit(ctx context.Context, path string) (pipeline.Result, error)
}

// PredictionService serves predictions over gRPC.
type PredictionService struct {
	queue   Submitter
	timeout time.Duration
	logger  *slog.Logger
}

func NewPredictionService(queue Submitter, timeout time.Duration, logger *slog.Logger) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{queue: queue, timeout: timeout, logger: logger}
}

// Predict implements PredictionServer.
func (s *PredictionService) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := strings.TrimSpace(req.GetFields()["path"].GetStringValue())
	if path == "" {
		s.logger.Error("predict request missing path")
		return nil, common.InvalidArgumentError("path is required")
	}

	ctx = common.WithRunID(ctx, "")
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	logger := s.logger.With("run_id", common.RunIDFromContext(ctx))
	logger.Info("predict request", "path", path)

	res, err := s.queue.Submit(ctx, path)
	if err != nil {
		return nil, s.toStatus(logger, err)
	}

	out, err := structpb.NewStruct(res.AsMap())
	if err != nil {
		logger.Error("failed to encode result", "error", err)
		return nil, common.InternalError("failed to encode result")
	}
	return out, nil
}

// toStatus maps err to a gRPC status. The failure record travels as a
// Struct detail so clients see the same fields the CLI prints.
func (s *PredictionService) toStatus(logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, async.ErrQueueClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("predict timed out", "timeout", s.timeout)
		return status.Error(codes.DeadlineExceeded, "processing timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}

	f := pipeline.FailureFrom(err)
	logger.Error("predict failed", "kind", f.Kind, "error", err)

	st := status.Convert(common.StatusFromError(err))
	detail := map[string]any{"error": f.Error}
	if f.Trace != "" {
		detail["trace"] = f.Trace
	}
	if f.OCRTextPreview != nil {
		detail["ocr_text_preview"] = *f.OCRTextPreview
	}
	pb, perr := structpb.NewStruct(detail)
	if perr != nil {
		return st.Err()
	}
	if withDetails, derr := st.WithDetails(pb); derr == nil {
		return withDetails.Err()
	}
	return st.Err()
}
