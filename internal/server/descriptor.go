package server

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	_ "google.golang.org/protobuf/types/known/structpb" // registers google/protobuf/struct.proto
)

// ExtractionProtoFile is the path of proto/proofs/v1/extraction.proto
// relative to the proto root.
const ExtractionProtoFile = "proofs/v1/extraction.proto"

// File_proofs_v1_extraction_proto is the runtime descriptor of
// proto/proofs/v1/extraction.proto, registered so that server reflection
// and grpcurl can describe the service.
var File_proofs_v1_extraction_proto protoreflect.FileDescriptor

func init() {
	fd, err := protodesc.NewFile(extractionFileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic("proofs.v1 descriptor: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic("proofs.v1 descriptor: " + err.Error())
	}
	File_proofs_v1_extraction_proto = fd
}

func extractionFileProto() *descriptorpb.FileDescriptorProto {
	const structType = ".google.protobuf.Struct"
	rpc := func(name string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(structType),
			OutputType: proto.String(structType),
		}
	}
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(ExtractionProtoFile),
		Package:    proto.String("proofs.v1"),
		Dependency: []string{"google/protobuf/struct.proto"},
		Syntax:     proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/joseph-ayodele/proof-extractor/internal/server;server"),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("ExtractionService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				rpc("Extract"),
				rpc("ExtractText"),
				rpc("CacheStats"),
				rpc("ClearCache"),
				rpc("ListProofs"),
				rpc("GetProof"),
			},
		}},
	}
}
