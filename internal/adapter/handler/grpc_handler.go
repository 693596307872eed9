package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/core/service"
)

const CartServiceName = "clockshop.cart.v1.CartService"

// CartServiceServer is the gRPC cart API. Messages are google.protobuf.Struct
// values carrying the same fields as the HTTP JSON bodies.
type CartServiceServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddToCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateQuantity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveFromCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OpenCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: CartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateSession", CartServiceServer.CreateSession),
		unaryMethod("GetCart", CartServiceServer.GetCart),
		unaryMethod("AddToCart", CartServiceServer.AddToCart),
		unaryMethod("UpdateQuantity", CartServiceServer.UpdateQuantity),
		unaryMethod("RemoveFromCart", CartServiceServer.RemoveFromCart),
		unaryMethod("OpenCart", CartServiceServer.OpenCart),
		unaryMethod("CloseCart", CartServiceServer.CloseCart),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

type unaryCall func(CartServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CartServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CartServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

type GRPCHandler struct {
	cart   *service.CartService
	logger *zap.Logger
}

func NewGRPCHandler(cart *service.CartService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{cart: cart, logger: logger}
}

func (h *GRPCHandler) CreateSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return h.reply(h.cart.CreateSession(ctx))
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.reply(h.cart.GetCart(ctx, stringField(req, "session_id")))
}

func (h *GRPCHandler) AddToCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID := stringField(req, "product_id")
	if productID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	return h.reply(h.cart.AddToCart(ctx, stringField(req, "session_id"), domain.ProductID(productID), stringField(req, "request_id")))
}

func (h *GRPCHandler) UpdateQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, ok := req.GetFields()["quantity"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "quantity is required")
	}
	q := v.GetNumberValue()
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber || q != math.Trunc(q) {
		return nil, status.Error(codes.InvalidArgument, "quantity must be an integer")
	}
	// float64(math.MaxInt) rounds up to 2^63, which no int can hold.
	if q >= float64(math.MaxInt) || q < float64(math.MinInt) {
		return nil, status.Error(codes.InvalidArgument, "quantity is out of range")
	}
	return h.reply(h.cart.UpdateQuantity(ctx, stringField(req, "session_id"), domain.ProductID(stringField(req, "product_id")), int(q)))
}

func (h *GRPCHandler) RemoveFromCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.reply(h.cart.RemoveFromCart(ctx, stringField(req, "session_id"), domain.ProductID(stringField(req, "product_id"))))
}

func (h *GRPCHandler) OpenCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.reply(h.cart.OpenCart(ctx, stringField(req, "session_id")))
}

func (h *GRPCHandler) CloseCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.reply(h.cart.CloseCart(ctx, stringField(req, "session_id")))
}

func (h *GRPCHandler) reply(view service.CartView, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, h.toStatus(err)
	}

	out, err := toStruct(view)
	if err != nil {
		h.logger.Error("encode cart view", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func (h *GRPCHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return status.Error(codes.NotFound, "session not found")
	case errors.Is(err, service.ErrProductNotFound):
		return status.Error(codes.NotFound, "product not found")
	case errors.Is(err, service.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, "duplicate request")
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return status.Error(codes.FailedPrecondition, "product currency does not match the cart")
	default:
		h.logger.Error("cart rpc failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

// toStruct converts v through its JSON form, so gRPC and HTTP share field names.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
