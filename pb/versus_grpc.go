package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName          = "blockdrop.Versus"
	Versus_Play_FullName = "/blockdrop.Versus/Play"
)

// VersusClient is the client API for the Versus service.
type VersusClient interface {
	Play(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[GameMessage, GameMessage], error)
}

type versusClient struct {
	cc grpc.ClientConnInterface
}

func NewVersusClient(cc grpc.ClientConnInterface) VersusClient {
	return &versusClient{cc}
}

func (c *versusClient) Play(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[GameMessage, GameMessage], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod(), grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &Versus_ServiceDesc.Streams[0], Versus_Play_FullName, cOpts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[GameMessage, GameMessage]{ClientStream: stream}, nil
}

// VersusServer is the server API for the Versus service.
type VersusServer interface {
	Play(grpc.BidiStreamingServer[GameMessage, GameMessage]) error
}

// UnimplementedVersusServer can be embedded to have forward compatible implementations.
type UnimplementedVersusServer struct{}

func (UnimplementedVersusServer) Play(grpc.BidiStreamingServer[GameMessage, GameMessage]) error {
	return status.Error(codes.Unimplemented, "method Play not implemented")
}

func RegisterVersusServer(s grpc.ServiceRegistrar, srv VersusServer) {
	s.RegisterService(&Versus_ServiceDesc, srv)
}

func _Versus_Play_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(VersusServer).Play(&grpc.GenericServerStream[GameMessage, GameMessage]{ServerStream: stream})
}

// Versus_ServiceDesc is the grpc.ServiceDesc for the Versus service.
var Versus_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VersusServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Play",
			Handler:       _Versus_Play_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "versus.proto",
}
