package grpcapi

import (
	"context"

	ledgerdto "github.com/LavaJover/credit-ledger/internal/usecase/dto/ledger"
	"google.golang.org/grpc"
)

const ServiceName = "creditledger.v1.LedgerService"

type Receipt = ledgerdto.ReceiptOutput

// LedgerServer is implemented by LedgerHandler.
type LedgerServer interface {
	MintAsset(context.Context, *MintAssetRequest) (*Receipt, error)
	ApproveAsset(context.Context, *ApproveAssetRequest) (*Receipt, error)
	TransferAsset(context.Context, *TransferAssetRequest) (*Receipt, error)
	SetAssetVerified(context.Context, *SetAssetVerifiedRequest) (*Receipt, error)
	PledgeAsset(context.Context, *PledgeAssetRequest) (*Receipt, error)
	ReleaseAsset(context.Context, *ReleaseAssetRequest) (*Receipt, error)
	SetAuditor(context.Context, *SetAuditorRequest) (*Receipt, error)
	RequestLoan(context.Context, *RequestLoanRequest) (*Receipt, error)
	ApproveLoan(context.Context, *ApproveLoanRequest) (*Receipt, error)
	ReleaseFunds(context.Context, *LoanRequest) (*Receipt, error)
	RepayLoan(context.Context, *LoanRequest) (*Receipt, error)
	DepositLiquidity(context.Context, *DepositLiquidityRequest) (*Receipt, error)
	WithdrawLiquidity(context.Context, *WithdrawLiquidityRequest) (*Receipt, error)
	SeedCapital(context.Context, *SeedCapitalRequest) (*Receipt, error)
	ApproveCredit(context.Context, *ApproveCreditRequest) (*Receipt, error)
	TransferCredit(context.Context, *TransferCreditRequest) (*Receipt, error)
	TransferCreditFrom(context.Context, *TransferCreditFromRequest) (*Receipt, error)
}

func unary[Req any](name string, call func(LedgerServer, context.Context, *Req) (*Receipt, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(LedgerServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(server, ctx, req.(*Req))
			})
		},
	}
}

func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("MintAsset", LedgerServer.MintAsset),
		unary("ApproveAsset", LedgerServer.ApproveAsset),
		unary("TransferAsset", LedgerServer.TransferAsset),
		unary("SetAssetVerified", LedgerServer.SetAssetVerified),
		unary("PledgeAsset", LedgerServer.PledgeAsset),
		unary("ReleaseAsset", LedgerServer.ReleaseAsset),
		unary("SetAuditor", LedgerServer.SetAuditor),
		unary("RequestLoan", LedgerServer.RequestLoan),
		unary("ApproveLoan", LedgerServer.ApproveLoan),
		unary("ReleaseFunds", LedgerServer.ReleaseFunds),
		unary("RepayLoan", LedgerServer.RepayLoan),
		unary("DepositLiquidity", LedgerServer.DepositLiquidity),
		unary("WithdrawLiquidity", LedgerServer.WithdrawLiquidity),
		unary("SeedCapital", LedgerServer.SeedCapital),
		unary("ApproveCredit", LedgerServer.ApproveCredit),
		unary("TransferCredit", LedgerServer.TransferCredit),
		unary("TransferCreditFrom", LedgerServer.TransferCreditFrom),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "creditledger/v1/ledger.json",
}

func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// LedgerClient is a thin client for the service, used by tests and tooling.
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

// Call invokes method with the JSON codec.
func (c *LedgerClient) Call(ctx context.Context, method string, in interface{}, opts ...grpc.CallOption) (*Receipt, error) {
	out := new(Receipt)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
