package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/farhapartex/stream-search/internal/view"
)

const protoFile = "streamsearch/v1/search.proto"

// The service descriptor is built at init and registered globally so that
// server reflection can describe StreamSearch without generated code.
func init() {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(protoFile),
		Package:    proto.String("streamsearch.v1"),
		Dependency: []string{structpb.File_google_protobuf_struct_proto.Path()},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("StreamSearch"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("Search"),
				InputType:  proto.String(".google.protobuf.Struct"),
				OutputType: proto.String(".google.protobuf.Struct"),
			}},
		}},
	}

	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(err)
	}
}

// SearchServiceDesc describes the StreamSearch service. Messages are
// well-known Struct values, so no generated code is needed.
var SearchServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SearchServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Search",
			Handler:    searchMethodHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

// RegisterSearchServer registers srv on s
func RegisterSearchServer(s grpc.ServiceRegistrar, srv SearchServer) {
	s.RegisterService(&SearchServiceDesc, srv)
}

func searchMethodHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchServer).Search(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SearchMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SearchServer).Search(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the StreamSearch service
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Search sends a search and decodes the returned summary
func (c *Client) Search(ctx context.Context, query, token string, offset, limit int, opts ...grpc.CallOption) (*view.Summary, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"query":  query,
		"token":  token,
		"offset": offset,
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SearchMethod, req, out, opts...); err != nil {
		return nil, err
	}

	return structToSummary(out)
}

func summaryToStruct(s view.Summary) (*structpb.Struct, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func structToSummary(in *structpb.Struct) (*view.Summary, error) {
	data, err := protojson.Marshal(in)
	if err != nil {
		return nil, err
	}

	var s view.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
