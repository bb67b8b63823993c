// Package flows holds the call flows served by the router binary.
package flows

import (
	"context"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
	"github.com/xiaot623/gogo/yemot-router/internal/service"
)

// Welcome asks the caller to press 1 and says goodbye.
func Welcome(ctx context.Context, call *service.Call) error {
	if _, err := call.Read([]domain.Message{domain.Text("שלום, הקש 1 להמשך")}, domain.TapOptions{
		MaxDigits:     1,
		DigitsAllowed: []string{"1"},
	}); err != nil {
		return err
	}
	return call.IDListMessage([]domain.Message{domain.Text("תודה, להתראות")}, domain.IDListMessageOptions{})
}

// Register binds the flows on svc under path.
func Register(svc *service.Service, path string) {
	svc.All(path, Welcome)
}
