package payments

import (
	"context"

	"github.com/CelionLigalamu/Nyumba-Hunt/internal/mpesa"
)

// Gateway is the slice of the M-Pesa client the orchestrator needs.
// *mpesa.Client satisfies it; tests substitute their own.
type Gateway interface {
	NormalizePhone(raw string) string
	STKPush(ctx context.Context, in mpesa.PushInput) (mpesa.PushResponse, error)
}
