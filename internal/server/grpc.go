package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/proof-extractor/internal/common"
	"github.com/joseph-ayodele/proof-extractor/internal/services/proofs"
)

// ExtractionServiceName is the fully-qualified gRPC service name.
const ExtractionServiceName = "proofs.v1.ExtractionService"

// ExtractionServiceServer is the server API for proofs.v1.ExtractionService.
// It is declared in proto/proofs/v1/extraction.proto; messages are
// google.protobuf.Struct so clients need no generated stubs.
type ExtractionServiceServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CacheStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearCache(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProofs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProof(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ExtractionServiceDesc describes proofs.v1.ExtractionService for grpc.RegisterService.
var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ExtractionServiceName,
	HandlerType: (*ExtractionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: unaryHandler("Extract", ExtractionServiceServer.Extract)},
		{MethodName: "ExtractText", Handler: unaryHandler("ExtractText", ExtractionServiceServer.ExtractText)},
		{MethodName: "CacheStats", Handler: unaryHandler("CacheStats", ExtractionServiceServer.CacheStats)},
		{MethodName: "ClearCache", Handler: unaryHandler("ClearCache", ExtractionServiceServer.ClearCache)},
		{MethodName: "ListProofs", Handler: unaryHandler("ListProofs", ExtractionServiceServer.ListProofs)},
		{MethodName: "GetProof", Handler: unaryHandler("GetProof", ExtractionServiceServer.GetProof)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ExtractionProtoFile,
}

// RegisterExtractionServiceServer registers srv on s.
func RegisterExtractionServiceServer(s grpc.ServiceRegistrar, srv ExtractionServiceServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

type unaryMethod func(ExtractionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		impl := srv.(ExtractionServiceServer)
		if interceptor == nil {
			return call(impl, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ExtractionServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(impl, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ExtractionService adapts the proof service to gRPC.
type ExtractionService struct {
	svc    *proofs.Service
	logger *slog.Logger
}

func NewExtractionService(svc *proofs.Service, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{svc: svc, logger: logger}
}

func (s *ExtractionService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	data, err := decodeContent(req)
	if err != nil {
		return nil, err
	}
	resp, err := s.svc.Extract(ctx, proofs.ExtractRequest{
		Filename:  stringField(req, "filename"),
		MimeType:  stringField(req, "mime_type"),
		Data:      data,
		ProofType: stringField(req, "proof_type"),
	})
	if err != nil {
		s.logger.Error("extract request failed", "filename", stringField(req, "filename"), "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(resp)
}

// ExtractText accepts either "text" or a base64 document with a filename.
func (s *ExtractionService) ExtractText(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	proofType := stringField(req, "proof_type")
	if _, ok := req.GetFields()["content_base64"]; ok {
		data, err := decodeContent(req)
		if err != nil {
			return nil, err
		}
		out, err := s.svc.ExtractDocumentText(ctx, proofs.DocumentTextRequest{
			Filename:  stringField(req, "filename"),
			Data:      data,
			ProofType: proofType,
		})
		if err != nil {
			return nil, common.ToStatus(err)
		}
		return toStruct(out)
	}

	out, err := s.svc.ExtractText(ctx, proofs.TextRequest{Text: stringField(req, "text"), ProofType: proofType})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(out)
}

func (s *ExtractionService) CacheStats(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	st, err := s.svc.CacheStats(ctx)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(st)
}

func (s *ExtractionService) ClearCache(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	n, err := s.svc.ClearCache(ctx)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{"cleared": n})
}

func (s *ExtractionService) ListProofs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.svc.ListProofs(ctx, proofs.ListProofsRequest{
		ProofType: stringField(req, "proof_type"),
		Status:    stringField(req, "status"),
		Limit:     int(req.GetFields()["limit"].GetNumberValue()),
	})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{"proofs": list})
}

func (s *ExtractionService) GetProof(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := s.svc.GetProof(ctx, stringField(req, "id"))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(p)
}

// LoggingInterceptor logs every unary call with its outcome and duration.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx, reqID := common.EnsureRequestID(ctx)
		resp, err := handler(ctx, req)
		attrs := []any{"method", info.FullMethod, "req_id", reqID, "elapsed_ms", time.Since(start).Milliseconds()}
		if err != nil {
			logger.Warn("grpc.call.failed", append(attrs, "error", err)...)
		} else {
			logger.Info("grpc.call.ok", attrs...)
		}
		return resp, err
	}
}

func stringField(s *structpb.Struct, name string) string {
	return strings.TrimSpace(s.GetFields()[name].GetStringValue())
}

func decodeContent(req *structpb.Struct) ([]byte, error) {
	raw := req.GetFields()["content_base64"].GetStringValue()
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("content_base64 must be standard base64: %v", err)
	}
	return data, nil
}

// toStruct converts v to a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, common.ToStatus(fmt.Errorf("encode response: %w", err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, common.ToStatus(fmt.Errorf("decode response: %w", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.ToStatus(fmt.Errorf("build response: %w", err))
	}
	return out, nil
}
