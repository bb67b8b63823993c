package flows

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/yemot-router/internal/config"
	"github.com/xiaot623/gogo/yemot-router/internal/domain"
	"github.com/xiaot623/gogo/yemot-router/internal/service"
)

func TestWelcomeFlow(t *testing.T) {
	svc := service.New(config.Defaults{}, nil, nil, nil, nil)
	Register(svc, "/")

	var ended []domain.Event
	svc.Subscribe(func(ev domain.Event) { ended = append(ended, ev) }, domain.EventTypeCallHangup)

	v := url.Values{domain.ParamCallID: {"c1"}}
	first, err := svc.Serve(context.Background(), "POST", "/", domain.ParseParams(v))
	require.NoError(t, err)
	assert.Equal(t, "read=t-שלום, הקש 1 להמשך=val_1,no,1,1,7,No,no,no,,1,,no,None,", first)

	v.Set("val_1", "1")
	second, err := svc.Serve(context.Background(), "POST", "/", domain.ParseParams(v))
	require.NoError(t, err)
	assert.Equal(t, "id_list_message=t-תודה, להתראות", second)

	require.Len(t, ended, 1)
	assert.Equal(t, domain.EndReasonExit, ended[0].Reason)
	assert.Equal(t, 0, svc.ActiveCalls())
}
