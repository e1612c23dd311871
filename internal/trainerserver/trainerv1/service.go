package trainerv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "poketrainer.v1.TrainerService"

// TrainerServiceServer is the server API for TrainerService.
type TrainerServiceServer interface {
	OpenSession(context.Context, *OpenSessionRequest) (*OpenSessionResponse, error)
	Unlock(context.Context, *UnlockRequest) (*UnlockResponse, error)
	Lock(context.Context, *SessionRequest) (*Empty, error)
	Scan(context.Context, *ScanRequest) (*ScanResponse, error)
	PushScanEvent(context.Context, *ScanEventRequest) (*Empty, error)
	ConfirmCapture(context.Context, *ConfirmCaptureRequest) (*ConfirmCaptureResponse, error)
	DismissCapture(context.Context, *SessionRequest) (*Empty, error)
	GetRoster(context.Context, *SessionRequest) (*RosterView, error)
	SelectBox(context.Context, *SelectBoxRequest) (*Result, error)
	MoveToBox(context.Context, *MemberRequest) (*Result, error)
	MoveToTeam(context.Context, *MemberRequest) (*Result, error)
	Reorder(context.Context, *ReorderRequest) (*Result, error)
	Release(context.Context, *MemberRequest) (*Result, error)
	GetCaptureLog(context.Context, *SessionRequest) (*CaptureLogResponse, error)
	SearchCatalog(context.Context, *SearchCatalogRequest) (*SearchCatalogResponse, error)
	CloseSession(context.Context, *SessionRequest) (*Empty, error)
}

// UnimplementedTrainerServiceServer returns codes.Unimplemented for every RPC.
type UnimplementedTrainerServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedTrainerServiceServer) OpenSession(context.Context, *OpenSessionRequest) (*OpenSessionResponse, error) {
	return nil, unimplemented("OpenSession")
}
func (UnimplementedTrainerServiceServer) Unlock(context.Context, *UnlockRequest) (*UnlockResponse, error) {
	return nil, unimplemented("Unlock")
}
func (UnimplementedTrainerServiceServer) Lock(context.Context, *SessionRequest) (*Empty, error) {
	return nil, unimplemented("Lock")
}
func (UnimplementedTrainerServiceServer) Scan(context.Context, *ScanRequest) (*ScanResponse, error) {
	return nil, unimplemented("Scan")
}
func (UnimplementedTrainerServiceServer) PushScanEvent(context.Context, *ScanEventRequest) (*Empty, error) {
	return nil, unimplemented("PushScanEvent")
}
func (UnimplementedTrainerServiceServer) ConfirmCapture(context.Context, *ConfirmCaptureRequest) (*ConfirmCaptureResponse, error) {
	return nil, unimplemented("ConfirmCapture")
}
func (UnimplementedTrainerServiceServer) DismissCapture(context.Context, *SessionRequest) (*Empty, error) {
	return nil, unimplemented("DismissCapture")
}
func (UnimplementedTrainerServiceServer) GetRoster(context.Context, *SessionRequest) (*RosterView, error) {
	return nil, unimplemented("GetRoster")
}
func (UnimplementedTrainerServiceServer) SelectBox(context.Context, *SelectBoxRequest) (*Result, error) {
	return nil, unimplemented("SelectBox")
}
func (UnimplementedTrainerServiceServer) MoveToBox(context.Context, *MemberRequest) (*Result, error) {
	return nil, unimplemented("MoveToBox")
}
func (UnimplementedTrainerServiceServer) MoveToTeam(context.Context, *MemberRequest) (*Result, error) {
	return nil, unimplemented("MoveToTeam")
}
func (UnimplementedTrainerServiceServer) Reorder(context.Context, *ReorderRequest) (*Result, error) {
	return nil, unimplemented("Reorder")
}
func (UnimplementedTrainerServiceServer) Release(context.Context, *MemberRequest) (*Result, error) {
	return nil, unimplemented("Release")
}
func (UnimplementedTrainerServiceServer) GetCaptureLog(context.Context, *SessionRequest) (*CaptureLogResponse, error) {
	return nil, unimplemented("GetCaptureLog")
}
func (UnimplementedTrainerServiceServer) SearchCatalog(context.Context, *SearchCatalogRequest) (*SearchCatalogResponse, error) {
	return nil, unimplemented("SearchCatalog")
}
func (UnimplementedTrainerServiceServer) CloseSession(context.Context, *SessionRequest) (*Empty, error) {
	return nil, unimplemented("CloseSession")
}

// unary builds the method descriptor for one RPC.
func unary[Req, Resp any](method string, call func(TrainerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(TrainerServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// TrainerService_ServiceDesc describes TrainerService for grpc.ServiceRegistrar.
var TrainerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrainerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("OpenSession", TrainerServiceServer.OpenSession),
		unary("Unlock", TrainerServiceServer.Unlock),
		unary("Lock", TrainerServiceServer.Lock),
		unary("Scan", TrainerServiceServer.Scan),
		unary("PushScanEvent", TrainerServiceServer.PushScanEvent),
		unary("ConfirmCapture", TrainerServiceServer.ConfirmCapture),
		unary("DismissCapture", TrainerServiceServer.DismissCapture),
		unary("GetRoster", TrainerServiceServer.GetRoster),
		unary("SelectBox", TrainerServiceServer.SelectBox),
		unary("MoveToBox", TrainerServiceServer.MoveToBox),
		unary("MoveToTeam", TrainerServiceServer.MoveToTeam),
		unary("Reorder", TrainerServiceServer.Reorder),
		unary("Release", TrainerServiceServer.Release),
		unary("GetCaptureLog", TrainerServiceServer.GetCaptureLog),
		unary("SearchCatalog", TrainerServiceServer.SearchCatalog),
		unary("CloseSession", TrainerServiceServer.CloseSession),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "poketrainer/v1/trainer.proto",
}

// RegisterTrainerServiceServer registers srv with s.
func RegisterTrainerServiceServer(s grpc.ServiceRegistrar, srv TrainerServiceServer) {
	s.RegisterService(&TrainerService_ServiceDesc, srv)
}

// TrainerServiceClient is the client API for TrainerService.
type TrainerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTrainerServiceClient wraps cc.
func NewTrainerServiceClient(cc grpc.ClientConnInterface) *TrainerServiceClient {
	return &TrainerServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrainerServiceClient) OpenSession(ctx context.Context, in *OpenSessionRequest, opts ...grpc.CallOption) (*OpenSessionResponse, error) {
	return invoke[OpenSessionResponse](ctx, c.cc, "OpenSession", in, opts)
}

func (c *TrainerServiceClient) Unlock(ctx context.Context, in *UnlockRequest, opts ...grpc.CallOption) (*UnlockResponse, error) {
	return invoke[UnlockResponse](ctx, c.cc, "Unlock", in, opts)
}

func (c *TrainerServiceClient) Lock(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "Lock", in, opts)
}

func (c *TrainerServiceClient) Scan(ctx context.Context, in *ScanRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[ScanResponse](ctx, c.cc, "Scan", in, opts)
}

func (c *TrainerServiceClient) PushScanEvent(ctx context.Context, in *ScanEventRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "PushScanEvent", in, opts)
}

func (c *TrainerServiceClient) ConfirmCapture(ctx context.Context, in *ConfirmCaptureRequest, opts ...grpc.CallOption) (*ConfirmCaptureResponse, error) {
	return invoke[ConfirmCaptureResponse](ctx, c.cc, "ConfirmCapture", in, opts)
}

func (c *TrainerServiceClient) DismissCapture(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DismissCapture", in, opts)
}

func (c *TrainerServiceClient) GetRoster(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*RosterView, error) {
	return invoke[RosterView](ctx, c.cc, "GetRoster", in, opts)
}

func (c *TrainerServiceClient) SelectBox(ctx context.Context, in *SelectBoxRequest, opts ...grpc.CallOption) (*Result, error) {
	return invoke[Result](ctx, c.cc, "SelectBox", in, opts)
}

func (c *TrainerServiceClient) MoveToBox(ctx context.Context, in *MemberRequest, opts ...grpc.CallOption) (*Result, error) {
	return invoke[Result](ctx, c.cc, "MoveToBox", in, opts)
}

func (c *TrainerServiceClient) MoveToTeam(ctx context.Context, in *MemberRequest, opts ...grpc.CallOption) (*Result, error) {
	return invoke[Result](ctx, c.cc, "MoveToTeam", in, opts)
}

func (c *TrainerServiceClient) Reorder(ctx context.Context, in *ReorderRequest, opts ...grpc.CallOption) (*Result, error) {
	return invoke[Result](ctx, c.cc, "Reorder", in, opts)
}

func (c *TrainerServiceClient) Release(ctx context.Context, in *MemberRequest, opts ...grpc.CallOption) (*Result, error) {
	return invoke[Result](ctx, c.cc, "Release", in, opts)
}

func (c *TrainerServiceClient) GetCaptureLog(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*CaptureLogResponse, error) {
	return invoke[CaptureLogResponse](ctx, c.cc, "GetCaptureLog", in, opts)
}

func (c *TrainerServiceClient) SearchCatalog(ctx context.Context, in *SearchCatalogRequest, opts ...grpc.CallOption) (*SearchCatalogResponse, error) {
	return invoke[SearchCatalogResponse](ctx, c.cc, "SearchCatalog", in, opts)
}

func (c *TrainerServiceClient) CloseSession(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "CloseSession", in, opts)
}
