package services

import (
	"context"
	"fmt"
	"os"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransGateway creates collections through Midtrans Snap. Selected
// when an order names midtrans as its gateway.
type MidtransGateway struct {
	snapClient snap.Client
	finishURL  string
}

func NewMidtransGateway() *MidtransGateway {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	return &MidtransGateway{
		snapClient: s,
		finishURL:  os.Getenv("APP_URL"),
	}
}

func (g *MidtransGateway) CreateCollection(ctx context.Context, req CollectRequest) (*CollectResponse, error) {
	param := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Receipt,
			GrossAmt: int64(req.Amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.StudentName,
			Email: req.StudentEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.StudentID,
				Name:  req.Description,
				Price: int64(req.Amount),
				Qty:   1,
			},
		},
	}
	if g.finishURL != "" {
		param.Callbacks = &snap.Callbacks{Finish: g.finishURL}
	}

	resp, snapErr := g.snapClient.CreateTransaction(param)
	if snapErr != nil {
		return nil, fmt.Errorf("%w: midtrans: %v", ErrGatewayUnavailable, snapErr)
	}

	return &CollectResponse{
		PaymentURL:       resp.RedirectURL,
		GatewayReference: resp.Token,
	}, nil
}
